// internal/app/features/listscreen/templates.go
package listscreen

import (
	"embed"

	"github.com/dalemusser/waffle/pantry/templates"
)

//go:embed templates/*.gohtml
var FS embed.FS

func init() {
	templates.Register(templates.Set{
		Name:     "listscreen",
		FS:       FS,
		Patterns: []string{"templates/*.gohtml"},
	})
}
