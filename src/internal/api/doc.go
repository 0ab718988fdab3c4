// Package api provides the status API of the ripe-addrlist service.
//
// Endpoints:
//   - GET  /api/v1/health: liveness
//   - GET  /api/v1/status: current progress, next scheduled run and the last result
//   - POST /api/v1/sync:   start a synchronization now (409 if one is running)
//
// Access is limited to loopback and private networks.
//
// # Response Format
//
// All successful responses wrap data in a "data" field:
//
//	{
//	  "data": { /* response payload */ }
//	}
//
// Error responses use the following format:
//
//	{
//	  "error": {
//	    "code": "conflict",
//	    "message": "synchronization already in progress"
//	  }
//	}
package api
