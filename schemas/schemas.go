// Package schemas embeds the JSON schemas for payloads this service emits:
// the CMS property payload and the media backup queue job.
package schemas

import "embed"

//go:embed payloads
var SchemasFS embed.FS
