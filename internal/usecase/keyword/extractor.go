package keyword

import (
	"sort"
	"strings"
	"unicode"
)

// MaxKeywords caps the size of an extracted keyword set
const MaxKeywords = 10

// minLength is the shortest token, in runes, that can become a keyword
const minLength = 4

var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "is": {}, "in": {}, "it": {}, "of": {}, "for": {},
	"on": {}, "with": {}, "to": {}, "from": {}, "and": {}, "or": {}, "we": {}, "our": {},
	"you": {}, "your": {}, "he": {}, "she": {}, "they": {}, "them": {},
}

// Extract returns up to ten of the most frequent words in text, most frequent first.
// Ties keep the order in which the words first appear.
func Extract(text string) []string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || unicode.IsSpace(r) {
			return r
		}
		return -1
	}, strings.ToLower(text))

	counts := make(map[string]int)
	var order []string
	for _, word := range strings.Fields(cleaned) {
		if len([]rune(word)) < minLength {
			continue
		}
		if _, stop := stopWords[word]; stop {
			continue
		}
		if counts[word] == 0 {
			order = append(order, word)
		}
		counts[word]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	if len(order) > MaxKeywords {
		order = order[:MaxKeywords]
	}
	if order == nil {
		return []string{}
	}
	return order
}
