package main

import _ "embed"

// embeddedConfig holds the YAML configuration embedded at build time.
// It carries the sensor list of the target host; build scripts may overwrite
// embed_config.yaml before compiling.
//
//go:embed embed_config.yaml
var embeddedConfig []byte
