// Package manifest defines the static plugin descriptor and its grammar.
//
// # Overview
//
// A plugin declares its identity, capabilities, parameter schemas, execution
// backend, permissions, and configuration fields in a YAML manifest file.
// This package parses and validates those documents and renders capability
// tool schemas for LLM tool-use integration.
//
// # Manifest Files
//
// Directory-based discovery accepts, in priority order:
//
//	hearth-plugin.yaml
//	manifest.yaml
//	plugin.yaml
//
// # Validation
//
// Parse collects every grammar violation into a single *Error rather than
// stopping at the first: plugin names must be lowercase alphanumeric with
// hyphens, versions must be semver, at least one capability is required, and
// the execution block matching the declared backend type must be present.
//
// # Usage Example
//
//	m, err := manifest.LoadDir("/plugins/mailer")
//	if err != nil {
//		log.Fatal(err)
//	}
//	for _, schema := range m.ToolSchemas() {
//		fmt.Println(schema.Name)
//	}
//
// # Related Packages
//
//   - pkg/schema: parameter validation against capability specs
//   - pkg/loader: manifest discovery across plugin sources
package manifest
