package domain

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// maxSlugLen caps generated slugs so directory and file names stay short.
const maxSlugLen = 80

// Slugify converts text to a filesystem-safe slug: diacritics are
// stripped, the result is lower-cased, non-word characters are removed,
// and runs of whitespace or dashes collapse to a single dash. The slug
// is capped at 80 characters and may be empty if nothing survives.
func Slugify(text string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(t, text); err == nil {
		text = folded
	}
	text = strings.ToLower(text)

	var sb strings.Builder
	pendingDash := false
	for _, r := range text {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			if pendingDash && sb.Len() > 0 {
				sb.WriteByte('-')
			}
			pendingDash = false
			sb.WriteRune(r)
		case r == '-' || unicode.IsSpace(r):
			pendingDash = true
		}
	}

	slug := sb.String()
	if len(slug) > maxSlugLen {
		slug = strings.TrimRight(slug[:maxSlugLen], "-")
	}
	return slug
}

// FigureFilename builds the stored name for an extracted figure from its
// sequential number and slugified description.
func FigureFilename(num int, description, ext string) string {
	slug := Slugify(description)
	if slug == "" {
		slug = "figure"
	}
	return fmt.Sprintf("fig%d-%s.%s", num, slug, ext)
}
