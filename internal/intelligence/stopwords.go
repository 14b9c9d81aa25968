package intelligence

import (
	_ "embed"
	"strings"
)

//go:embed stopwords_en.txt
var stopWordList string

var stopWords = func() map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(stopWordList) {
		set[w] = true
	}
	return set
}()

// IsStopWord reports whether the lower-case word is an English stop word.
func IsStopWord(word string) bool {
	return stopWords[word]
}
