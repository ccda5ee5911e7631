// Package anytype provides an HTTP client for the Anytype REST API that the
// companion app exposes on the local network.
//
// Only three endpoints matter to gemnote:
//
//   - GET  /v1/spaces                  verify the endpoint, list spaces
//   - GET  /v1/spaces/{id}/types       list object types for a space
//   - POST /v1/spaces/{id}/objects     create a note
//
// Every request carries "Authorization: Bearer <api key>". Listing spaces
// doubles as the discovery probe: a host is the companion API exactly when
// that call succeeds with the user's key.
//
// Non-2xx responses become *APIError. IsConnectionLost singles out 401, 403
// and 404, which callers treat as "the cached endpoint is no longer ours".
package anytype
