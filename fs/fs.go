package appfs

import "embed"

// FS holds the assets shipped within the binaries.
//go:embed all:templates
var FS embed.FS

// EmailTemplatesDir is the directory of the email templates inside FS.
const EmailTemplatesDir = "templates/email"
