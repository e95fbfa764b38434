// Package middleware groups the HTTP middleware used by the server:
//
//   - rayid: attaches a unique ray id to every request for log correlation
//   - auth: API key protection for all endpoints
package middleware
