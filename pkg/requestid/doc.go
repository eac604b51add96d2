// Package requestid tags every HTTP request with a correlation id.
//
// Middleware reuses a well-formed X-Request-ID header from the client or
// generates a UUIDv7, stores it in the request context and echoes it in the
// response. LoggerExtractor plugs the id into logger.New so every record
// logged with the request context carries request_id:
//
//	log := logger.New(logger.WithContextExtractors(requestid.LoggerExtractor()))
//	r.Use(requestid.Middleware())
package requestid
