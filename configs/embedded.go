// Package configs provides embedded configuration files for feed-relay.
package configs

import _ "embed"

// ExampleConfig is the annotated example configuration written by init-config.
//
//go:embed config.example.yaml
var ExampleConfig []byte
