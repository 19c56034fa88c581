// Package migrations embeds the coordinator's Postgres schema files so the
// migrate subcommand ships them inside the binary instead of requiring a
// separate file alongside the deploy artifact.
package migrations

import (
	"embed"
	"sort"
)

//go:embed *.sql
var files embed.FS

// Names returns every migration's filename, sorted so the numeric prefix
// applies them in order.
func Names() []string {
	entries, err := files.ReadDir(".")
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names
}

// Read returns the contents of the named migration file.
func Read(name string) (string, error) {
	b, err := files.ReadFile(name)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
