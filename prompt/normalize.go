package prompt

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Normalize prepares a prompt for extraction: Unicode NFC, no whitespace
// before . , ! ? ; or :, whitespace runs collapsed to one space, and no
// leading or trailing whitespace.
func Normalize(text string) string {
	text = norm.NFC.String(text)

	runes := []rune(text)
	var b strings.Builder
	b.Grow(len(text))
	for i := 0; i < len(runes); i++ {
		if !unicode.IsSpace(runes[i]) {
			b.WriteRune(runes[i])
			continue
		}
		j := i
		for j < len(runes) && unicode.IsSpace(runes[j]) {
			j++
		}
		if j < len(runes) && isClosingPunct(runes[j]) {
			i = j - 1
			continue
		}
		b.WriteByte(' ')
		i = j - 1
	}
	return strings.TrimSpace(b.String())
}

func isClosingPunct(r rune) bool {
	switch r {
	case '.', ',', '!', '?', ';', ':':
		return true
	}
	return false
}
