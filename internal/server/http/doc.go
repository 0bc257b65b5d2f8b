// Package httpserver exposes the queue runtime over a small JSON HTTP
// API plus an SSE tail endpoint for streaming consumption.
package httpserver
