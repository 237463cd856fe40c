package shared

import "strings"

// azReplacer folds Azerbaijani letters to their closest ASCII form.
var azReplacer = strings.NewReplacer(
	"i\u0307", "i", // decomposed İ
	"ə", "e",
	"ğ", "g",
	"ı", "i",
	"ö", "o",
	"ş", "s",
	"ü", "u",
	"ç", "c",
)

// ToSlug lowercases s, transliterates Azerbaijani letters, collapses every
// run of characters outside [a-z0-9] into a single '-' and trims leading and
// trailing dashes.
//
//	ToSlug("Duru Ağardıcı") // "duru-agardici"
func ToSlug(s string) string {
	s = azReplacer.Replace(strings.ToLower(s))

	var b strings.Builder
	b.Grow(len(s))

	dash := false
	for _, r := range s {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash {
			b.WriteByte('-')
			dash = true
		}
	}

	return strings.Trim(b.String(), "-")
}
