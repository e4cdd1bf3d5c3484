// Package char2vec builds word embeddings from the sequence of
// characters composing each word, as an alternative to lookup-table
// word embeddings.
// It includes a recurrent encoder (CharLSTM), a convolutional encoder
// (CharCNN), and a conventional table embedding (BasicEmbedding) to
// compare against.
package char2vec

import (
	"math"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anynet"
	"github.com/unixpickle/anyvec"
)

// An Encoder maps batches of words to embedding vectors.
//
// The embeddings for a batch are packed one after another
// in a single vector, one Dim()-component embedding per
// word.
type Encoder interface {
	anynet.Parameterizer

	// Dim returns the dimensionality of the embeddings.
	Dim() int

	// MakeMatrix converts words to the padded character-id
	// form consumed by Embed.
	MakeMatrix(words []string, padLen int) (*Batch, error)

	// Embed produces one embedding per row of the batch.
	Embed(b *Batch) anydiff.Res
}

// An Init randomizes a newly-created weight vector.
// The fan-in is provided for scaling schemes that use it.
type Init func(v anyvec.Vector, fanIn int)

// UniformInit returns an Init which draws weights
// uniformly from [-r, r).
func UniformInit(r float64) Init {
	return func(v anyvec.Vector, fanIn int) {
		c := v.Creator()
		anyvec.Rand(v, anyvec.Uniform, nil)
		v.Scale(c.MakeNumeric(2 * r))
		v.AddScalar(c.MakeNumeric(-r))
	}
}

// NormalInit returns an Init which draws weights from a
// normal distribution scaled by 1/sqrt(fanIn).
func NormalInit() Init {
	return func(v anyvec.Vector, fanIn int) {
		anyvec.Rand(v, anyvec.Normal, nil)
		if fanIn > 0 {
			v.Scale(v.Creator().MakeNumeric(1 / math.Sqrt(float64(fanIn))))
		}
	}
}

// charEmbedDims derives the character embedding size from
// the vocabulary size.
func charEmbedDims(vocabSize int) int {
	return int(math.Log(float64(vocabSize))) + 1
}
