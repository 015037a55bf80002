// Package web embeds the static observer page served at /.
package web

import "embed"

//go:embed index.html
var Static embed.FS
