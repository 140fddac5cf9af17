// Package http provides the REST API for the aimage store.
//
// # Routes
//
//	GET    /                       landing page (public)
//	GET    /api_v1.json            OpenAPI document (public)
//	GET    /api/                   Swagger UI (public)
//	POST   /images                 upload; body is the image, Content-Type its media type
//	GET    /images                 newline separated identifiers
//	GET    /images/{id}            image bytes
//	DELETE /images/{id}            delete
//	GET    /images/{id}/metadata   canonical identifier if the image exists
//	GET    /images/{id}/data       image bytes
//	GET    /metrics                Prometheus metrics, when enabled
//
// Every route except the public ones requires HTTP Basic credentials. Requests
// without them get 401 and a WWW-Authenticate challenge before the service is
// called. Identifiers may be sent hyphenated or bare in any case.
//
// # Errors
//
// Failures are returned as JSON:
//
//	{"error": "not_found", "message": "Image not found"}
//
// Status codes: empty upload 400, disallowed media type 416, identifier
// collision 409, unknown identifier 404, upload over the size limit 413,
// failed delete verification 500.
//
// # Usage
//
//	handler := http.NewHandler(&http.HandlerConfig{
//	    Verifier: verifier,
//	    Metrics:  http.NewMetrics(),
//	}, service)
//	srv := &nethttp.Server{Addr: ":5000", Handler: handler.Router()}
package http
