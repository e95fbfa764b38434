// Package pim implements the HTTP client for the remote catalog service.
//
// The service exposes a bearer-token API behind a sign-in endpoint. The
// client handles the session lifecycle itself: the token is fetched lazily,
// cached, and refreshed exactly once when the service reports an expired
// session (401/403). Any other failure surfaces to the caller untouched.
//
// # Operations
//
//   - FetchTree: returns the nested catalog tree as raw JSON. Decoding and
//     shape validation are owned by the taxonomy flattener so that a
//     malformed payload is diagnosed where it is understood.
//   - CreateNode: creates one catalog node. The service assigns ids and
//     nested-set bounds; the client never predicts them.
//
// # Envelope
//
// Responses are wrapped in {success, message, data}. A success=false body is
// converted into an error carrying the service message.
package pim
