/*
Package middleware holds the gin middleware of the portfolio API.

  - CORS: frontend origin allow-list via gin-contrib/cors
  - RateLimit: per-IP token buckets with per-endpoint rules
  - RequireAdmin: bearer token check for /api/admin routes
  - Recovery: panic to INTERNAL_ERROR envelope with an error id
  - RequestLogger: one zap line per request
  - Gzip: response compression on klauspost/compress

Order in the server: Recovery, tracing, metrics, RequestLogger, CORS, Gzip,
RateLimit.
*/
package middleware
