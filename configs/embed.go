// Package configs provides the embedded configuration template.
//
// The template is embedded at build time so `askresume config init` can
// write a commented starting point without shipping extra files.
package configs

import _ "embed"

// ConfigTemplate is the annotated example configuration written by
// `askresume config init`.
//
//go:embed config.example.yaml
var ConfigTemplate string
