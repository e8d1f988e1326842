package registry

import (
	"embed"
	"io/fs"
)

//go:embed apps.json
var embeddedRegistry embed.FS

// EmbeddedFS returns the bundled registry. It holds a single apps.json file.
func EmbeddedFS() fs.FS {
	return embeddedRegistry
}
