package brain

import _ "embed"

// Version is the release version of the library and CLI.
//
//go:embed VERSION
var Version string
