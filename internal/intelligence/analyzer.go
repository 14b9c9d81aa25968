package intelligence

import (
	"strings"
	"unicode"

	"github.com/aaaton/golem/v4"
	"github.com/aaaton/golem/v4/dicts/en"
	"github.com/jdkato/prose/v2"
)

// POS is a coarse part-of-speech class.
type POS string

const (
	POSNoun       POS = "NOUN"
	POSProperNoun POS = "PROPN"
	POSOther      POS = "X"
)

// Token is one analyzed word.
type Token struct {
	Text  string
	POS   POS
	Lemma string
	Stop  bool
}

// IsNoun reports whether the token is a common or proper noun.
func (t Token) IsNoun() bool {
	return t.POS == POSNoun || t.POS == POSProperNoun
}

// Analyzer tags text with parts of speech, lemmas and stop-word flags.
type Analyzer interface {
	Analyze(text string) ([]Token, error)
}

// proseAnalyzer binds prose's pretrained tagger and golem's English lemma
// dictionary.
type proseAnalyzer struct {
	lemmatizer *golem.Lemmatizer
}

// NewProseAnalyzer loads the English lemma dictionary and returns an
// Analyzer backed by prose.
func NewProseAnalyzer() (Analyzer, error) {
	lem, err := golem.New(en.New())
	if err != nil {
		return nil, err
	}
	return &proseAnalyzer{lemmatizer: lem}, nil
}

func (a *proseAnalyzer) Analyze(text string) ([]Token, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	doc, err := prose.NewDocument(text,
		prose.WithExtraction(false),
		prose.WithSegmentation(false),
	)
	if err != nil {
		return nil, err
	}

	tokens := make([]Token, 0, len(doc.Tokens()))
	for _, tok := range doc.Tokens() {
		word := trimMarkup(strings.ToLower(tok.Text))
		var lemma string
		if word != "" {
			lemma = strings.ToLower(a.lemmatizer.Lemma(word))
		}
		tokens = append(tokens, Token{
			Text:  tok.Text,
			POS:   pennToPOS(tok.Tag),
			Lemma: lemma,
			Stop:  IsStopWord(word) || IsStopWord(lemma),
		})
	}
	return tokens, nil
}

// trimMarkup strips punctuation and symbols such as markdown emphasis from
// both ends of a word. prose keeps them attached to lower-cased words.
func trimMarkup(word string) string {
	return strings.TrimFunc(word, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func pennToPOS(tag string) POS {
	switch tag {
	case "NN", "NNS":
		return POSNoun
	case "NNP", "NNPS":
		return POSProperNoun
	default:
		return POSOther
	}
}
