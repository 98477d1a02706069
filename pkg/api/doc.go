// Package api exposes the plugin runtime over HTTP: plugin discovery and
// lifecycle, capability listing and search, tool schema export, and
// capability execution under a JSON API rooted at /api/v1.
package api
