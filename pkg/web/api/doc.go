// Package api serves the JSON endpoints under /api/.
//
// Every route of this package sits behind the admission gate; the handlers
// themselves know nothing about rate limiting.
//
//	GET    /api/hello?name=           greeting, default name World
//	GET    /api/history               every recorded greeting
//	GET    /api/history/{username}    greetings of one user
//	GET    /api/statistics            totals and top 3, ADMIN session only
//	POST   /api/users                 create (form: username, password, role)
//	POST   /api/users/login           check credentials
//	GET    /api/users                 list users
//	GET    /api/users/{username}      one user
//	DELETE /api/users/{username}      delete, 204
package api
