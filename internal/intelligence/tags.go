package intelligence

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultTopN is the number of tags suggested when the caller does not say.
const DefaultTopN = 5

// TagSuggester proposes tags from free text by noun-lemma frequency.
// Suggestions are advisory; callers edit them before persisting.
type TagSuggester struct {
	analyzer Analyzer
}

func NewTagSuggester(a Analyzer) *TagSuggester {
	return &TagSuggester{analyzer: a}
}

// Suggest returns up to topN capitalized noun lemmas, most frequent first.
// Ties keep first-seen order. Text without nouns yields an empty slice.
func (s *TagSuggester) Suggest(text string, topN int) ([]string, error) {
	if topN <= 0 {
		topN = DefaultTopN
	}
	text = strings.ToLower(text)
	if strings.TrimSpace(text) == "" {
		return []string{}, nil
	}

	tokens, err := s.analyzer.Analyze(text)
	if err != nil {
		return nil, err
	}

	type lemmaCount struct {
		lemma string
		count int
	}
	var order []*lemmaCount
	index := make(map[string]*lemmaCount)
	for _, tok := range tokens {
		if !tok.IsNoun() || tok.Stop || !isTagWord(tok.Lemma) {
			continue
		}
		lc, ok := index[tok.Lemma]
		if !ok {
			lc = &lemmaCount{lemma: tok.Lemma}
			index[tok.Lemma] = lc
			order = append(order, lc)
		}
		lc.count++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return order[i].count > order[j].count
	})
	if len(order) > topN {
		order = order[:topN]
	}

	seen := make(map[string]bool, len(order))
	out := make([]string, 0, len(order))
	for _, lc := range order {
		tag := capitalize(lc.lemma)
		if seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out, nil
}

// isTagWord accepts letters, digits and hyphens with at least one letter.
func isTagWord(s string) bool {
	letter := false
	for _, r := range s {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r), r == '-':
		default:
			return false
		}
	}
	return letter
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
