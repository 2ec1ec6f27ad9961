package dbx

import "strings"

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// EscapeLike quotes the LIKE wildcards in s so it only matches literally.
// Postgres uses backslash as the default LIKE escape character.
func EscapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// Contains returns a LIKE pattern matching any value that contains s.
func Contains(s string) string {
	return "%" + EscapeLike(s) + "%"
}
