// Package middleware contains HTTP middleware for the Fiber application.
//
// # Components
//
//   - auth: API key validation (X-API-Key header) protecting every route but swagger.
//   - rayid: assigns each request a RayID, stored in the context locals and echoed
//     in the X-Ray-ID response header for tracing.
package middleware
