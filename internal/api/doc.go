// Tripmatch - Travel Companion Compatibility Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

/*
Package api exposes the compatibility service over HTTP.

Routes are served by a chi router. Every response uses the same envelope:

	{
	  "success": true,
	  "data": { ... },
	  "meta": {"request_id": "...", "timestamp": "...", "duration_ms": 3}
	}

Errors carry {"code", "message", "details", "request_id"} under "error".
Malformed bodies and failed field validation use INVALID_REQUEST like the
service itself; validation failures list the offending fields in details.
Service error codes map to status codes as follows:

	INVALID_REQUEST                            400
	PROFILE_NOT_FOUND                          404
	REQUEST_TOO_LARGE                          413
	PROFILE_INCOMPLETE, INSUFFICIENT_*         422
	TOO_MANY_REQUESTS                          429
	CONFIGURATION_ERROR, INTERNAL_ERROR        500
	CACHE_ERROR                                503
	TIMEOUT                                    504

# Endpoints

	POST   /api/v1/compatibility/pairwise
	POST   /api/v1/compatibility/bulk                    (rate limited per IP)
	GET    /api/v1/compatibility/algorithms
	GET    /api/v1/compatibility/algorithms/{algorithmID} ("default" for the default)
	PATCH  /api/v1/compatibility/algorithms/{algorithmID}
	GET    /api/v1/compatibility/cache/stats
	GET    /api/v1/compatibility/cache/{groupID}/{userID}?other=  ("-" for any group)
	DELETE /api/v1/compatibility/cache?group_id=&user_id=
	PUT    /api/v1/profiles/{userID}
	GET    /api/v1/profiles/{userID}
	DELETE /api/v1/profiles/{userID}
	POST   /api/v1/groups/{groupID}/changed
	GET    /api/v1/health
	GET    /api/v1/health/live
	GET    /metrics
*/
package api
