// Hello is a small greeting web application with accounts, greeting
// history and a per-client rate limiter in front of its JSON API.
//
// Usage:
//
//	# Start the server with built-in defaults
//	hello run
//
//	# Start with a configuration file
//	hello run --config /etc/hello/config.yaml
//
//	# Create the first administrator
//	hello users create admin --role ADMIN --password s3cret
//
//	# Check a configuration file
//	hello config validate --config config.yaml
//
//	# Show version information
//	hello version
package main

import (
	_ "time/tzdata"
)

func main() {
	Execute()
}
