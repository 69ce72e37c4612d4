// apps/versus-server/assets/embed.go
//
// Embedded default word pool, used when WORDS_FILE is not configured.

package assets

import _ "embed"

// WordsJSON is a JSON array of {"word", "definition"} entries.
//
//go:embed words.json
var WordsJSON []byte
