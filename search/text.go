package search

import (
	"strings"
	"unicode"
)

// Stop words to filter out when checking for verbatim matches. Media kind
// words are included since the kind signal already covers them.
var stopWords = map[string]bool{
	"image": true, "photo": true, "picture": true, "video": true, "clip": true,
	"audio": true, "song": true, "recording": true, "file": true, "showing": true,
	"the": true, "a": true, "an": true, "be": true, "is": true, "are": true,
	"was": true, "to": true, "of": true, "and": true, "in": true, "that": true,
	"have": true, "it": true, "for": true, "not": true, "on": true, "with": true,
	"as": true, "you": true, "do": true, "at": true, "this": true, "but": true,
	"by": true, "from": true,
}

// tokenizeAndFilter lowercases text, splits it on anything that is not a
// letter or digit, and removes stop words. File names like "red_car.jpg"
// yield "red", "car" and "jpg".
func tokenizeAndFilter(text string) []string {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	filtered := make([]string, 0, len(words))

	for _, word := range words {
		if !stopWords[word] {
			filtered = append(filtered, word)
		}
	}

	return filtered
}

// containsAllQueryWords checks if all query words (after filtering) appear
// somewhere across the documents.
func containsAllQueryWords(query string, documents ...string) bool {
	queryWords := tokenizeAndFilter(query)
	if len(queryWords) == 0 {
		return false
	}

	var docWords []string
	for _, doc := range documents {
		docWords = append(docWords, tokenizeAndFilter(doc)...)
	}
	docWordSet := make(map[string]bool, len(docWords))
	for _, word := range docWords {
		docWordSet[word] = true
	}

	for _, qWord := range queryWords {
		if !docWordSet[qWord] {
			return false
		}
	}

	return true
}
