// Package server exposes lookups over HTTP.
//
// Routes:
//
//	POST /api/buscar-registro-selenium  lookup, body {"cpf": "..."}
//	POST /api/v1/lookup                 same handler
//	GET  /healthz                       liveness
//	GET  /metrics                       Prometheus exposition
//
// A found record is returned as a flat JSON object with status 200.
// Empty outcomes are 404 with a "message". Failures carry an "error":
// 503 when the browser cannot start or the service is saturated, 500
// for timeouts, scrape failures and extraction failures.
package server
