package appfs

import "embed"

// FS holds the assets shipped with the binary: seed documents and email templates.
//
//go:embed seed templates
var FS embed.FS
