// Package httpserver provides the HTTP surface of the vault service.
//
// The routing layer contains no business logic beyond request validation
// (missing fields, the threshold ≤ devices sanity check): every handler
// validates its input, calls exactly one orchestrator operation and wraps
// the result in a uniform envelope:
//
//	{"success": true,  "data": ..., "message": ...}
//	{"success": false, "error": "..."}
//
// Failures are mapped to status codes in one place (writeError): a
// RequestError carries its own code, the shared sentinel errors map to
// 404/400, everything else becomes a 500. Handler panics and errors never
// propagate to process level.
//
// # Endpoints
//
//	GET  /health
//	GET  /
//	POST /api/vaults/fast
//	POST /api/vaults/secure
//	POST /api/vaults/{id}/verify
//	GET  /api/vaults/{id}/address/{chain}
//	POST /api/vaults/{id}/sign
//	GET  /api/vaults
//	GET  /api/vaults/{id}
//	POST /api/vaults/{id}/export
//	GET  /api/vaults/{id}/session
//
// Plus the operational endpoints /livez, /readyz, /drain, /undrain and an
// optional pprof mount.
package httpserver
