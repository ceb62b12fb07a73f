// Package security groups the transport and secret handling of the hello
// server.
//
// Subpackages:
//   - tls: HTTPS configuration with certificate reload
//   - secrets: resolution of ${secret:name} references in configuration
package security
