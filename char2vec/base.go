package char2vec

import (
	"errors"
	"fmt"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/essentials"
)

// Char2Vec holds the pieces shared by the character-level
// encoders: the character vocabulary, the segmenter, and
// the continuous-space character embedding table.
type Char2Vec struct {
	Vocab   Vocab
	Segment Segmenter
	MaxLen  int

	// Embedding is the character embedding table, with
	// Vocab.Len() rows of CharDims components each.
	Embedding *anydiff.Var
	CharDims  int

	creator anyvec.Creator
}

func newChar2Vec(c anyvec.Creator, vocab Vocab, maxLen int, init Init) (*Char2Vec, error) {
	if err := checkVocab(vocab); err != nil {
		return nil, err
	}
	if maxLen < 2 {
		return nil, fmt.Errorf("max sequence length %d is too small", maxLen)
	}
	dims := charEmbedDims(vocab.Len())
	table := c.MakeVector(vocab.Len() * dims)
	init(table, dims)
	return &Char2Vec{
		Vocab:     vocab,
		Segment:   Graphemes,
		MaxLen:    maxLen,
		Embedding: anydiff.NewVar(table),
		CharDims:  dims,
		creator:   c,
	}, nil
}

// MakeMatrix converts words to a padded character-id
// batch.
//
// Each row gets a start token, up to padLen-2 character
// ids (words longer than that are silently truncated), and
// end tokens filling the remainder.
// A padLen of zero means the configured maximum length.
func (c *Char2Vec) MakeMatrix(words []string, padLen int) (b *Batch, err error) {
	defer essentials.AddCtxTo("make matrix", &err)

	if padLen == 0 {
		padLen = c.MaxLen
	}
	if padLen < 2 {
		return nil, fmt.Errorf("pad length %d is too small", padLen)
	}
	if len(words) == 0 {
		return nil, errors.New("empty word list")
	}

	startID, _ := c.Vocab.ID(StartToken)
	endID, _ := c.Vocab.ID(EndToken)

	res := &Batch{
		IDs:     make([][]int, len(words)),
		Lengths: make([]int, len(words)),
		PadLen:  padLen,
	}
	for i, word := range words {
		units := c.Segment(word)
		row := make([]int, 0, padLen)
		row = append(row, startID)
		for _, unit := range units {
			if len(row) == padLen-1 {
				break
			}
			id, ok := c.Vocab.ID(unit)
			if !ok {
				return nil, fmt.Errorf("no id for %q in word %q", unit, word)
			}
			row = append(row, id)
		}
		for len(row) < padLen {
			row = append(row, endID)
		}
		res.IDs[i] = row
		res.Lengths[i] = essentials.MinInt(padLen, len(units)+2)
	}
	return res, nil
}

// Lookup fetches the character embeddings for a list of
// ids, packed one after another.
//
// The lookup is deduplicated: table rows are gathered once
// per distinct id and then spread to every position, so
// gradient work scales with the number of distinct ids in
// the batch.
func (c *Char2Vec) Lookup(ids []int) anydiff.Res {
	distinct, remapped := dedupIDs(ids)
	rows := gatherRows(c.Embedding, c.CharDims, distinct)
	return gatherRows(rows, c.CharDims, remapped)
}
