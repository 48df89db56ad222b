package services

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Decompose, drop combining marks, recompose: "Résumé" -> "Resume".
var diacriticStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// buildObjectName derives the blob-store key for an uploaded file:
// {companyID}/{token}_{sanitizedBase}{ext}. The uuid token keeps
// concurrent uploads of identically named files from colliding; the
// sanitized basename keeps keys filesystem- and URL-safe while the
// exact original name lives on in the metadata row.
func buildObjectName(companyID uuid.UUID, fileName string) string {
	ext := filepath.Ext(fileName)
	base := strings.TrimSuffix(fileName, ext)
	return fmt.Sprintf("%s/%s_%s%s", companyID, uuid.New(), sanitizeName(base), sanitizeName(ext))
}

// sanitizeName lower-cases, strips diacritics, maps every character
// outside [a-z0-9._-] to "_" and collapses runs of "_". Trailing
// underscores are kept so the mapping stays a pure character rewrite.
func sanitizeName(name string) string {
	stripped, _, err := transform.String(diacriticStripper, name)
	if err != nil {
		stripped = name
	}

	mapped := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, strings.ToLower(stripped))

	for strings.Contains(mapped, "__") {
		mapped = strings.ReplaceAll(mapped, "__", "_")
	}
	return mapped
}
