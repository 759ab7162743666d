package templates

import "embed"

//go:embed all:starter
var FS embed.FS
