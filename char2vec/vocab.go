package char2vec

import (
	"fmt"

	"github.com/rivo/uniseg"
)

// Reserved tokens marking the start and end of every word.
// The end token doubles as the padding symbol.
const (
	StartToken = "<S>"
	EndToken   = "</S>"
)

// A Vocab maps symbols to dense integer ids.
//
// Ids must cover the range [0, Len()) and the reserved
// start/end tokens must be present.
type Vocab interface {
	// Len returns the number of symbols.
	Len() int

	// ID looks up the id for a symbol.
	// The second return value is false if the symbol is
	// not in the vocabulary.
	ID(symbol string) (int, bool)
}

// MapVocab is a Vocab backed by a plain map.
type MapVocab map[string]int

// Len returns the number of symbols.
func (m MapVocab) Len() int {
	return len(m)
}

// ID looks up the id for a symbol.
func (m MapVocab) ID(symbol string) (int, bool) {
	id, ok := m[symbol]
	return id, ok
}

// A Segmenter splits a word into the atomic units that get
// individual vocabulary ids.
type Segmenter func(word string) []string

// Graphemes is the default Segmenter.
// It splits a word into user-perceived characters
// (grapheme clusters), so that combining sequences count
// as single units.
func Graphemes(word string) []string {
	var units []string
	gr := uniseg.NewGraphemes(word)
	for gr.Next() {
		units = append(units, gr.Str())
	}
	return units
}

// checkVocab verifies that the reserved tokens are present
// and in range.
func checkVocab(v Vocab) error {
	for _, tok := range []string{StartToken, EndToken} {
		id, ok := v.ID(tok)
		if !ok {
			return fmt.Errorf("vocab is missing reserved token %q", tok)
		}
		if id < 0 || id >= v.Len() {
			return fmt.Errorf("vocab id %d for %q out of range", id, tok)
		}
	}
	return nil
}
