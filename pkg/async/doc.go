// Package async provides panic-safe goroutine helpers: fire-and-forget
// background tasks and bounded-concurrency batch processing.
package async
