// Package observability provides the runtime's logging setup and Prometheus
// metrics. Metrics live on a private registry so tests can build isolated
// instances; Handler exposes the registry for the /metrics endpoint.
package observability
