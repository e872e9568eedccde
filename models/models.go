// Package models contains the persistent entities of the newsletter service
package models

// All returns every model managed by the schema migration, parents first.
func All() []any {
	return []any{
		&Audience{},
		&Newsletter{},
		&SourceFile{},
		&Setting{},
	}
}
