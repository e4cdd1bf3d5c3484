package char2vec

import (
	"errors"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anynet"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/anyvec/anyvecsave"
	"github.com/unixpickle/essentials"
	"github.com/unixpickle/serializer"
)

func init() {
	var b BasicEmbedding
	serializer.RegisterTypedDeserializer(b.SerializerType(), DeserializeBasicEmbedding)
}

// BasicEmbedding is a conventional lookup-table word
// embedding, used as a baseline to compare the
// character-level encoders against.
//
// When its output is concatenated with a char2vec
// embedding, dropout can keep a model from leaning on the
// table too much during early training.
type BasicEmbedding struct {
	Table *anydiff.Var
	Rows  int
	Cols  int

	// Dropout is nil when no keep probability is set.
	Dropout *anynet.Dropout
}

// DeserializeBasicEmbedding deserializes a BasicEmbedding.
func DeserializeBasicEmbedding(d []byte) (*BasicEmbedding, error) {
	var table *anyvecsave.S
	var rows, cols serializer.Int
	var dropout anynet.Net
	if err := serializer.DeserializeAny(d, &table, &rows, &cols, &dropout); err != nil {
		return nil, essentials.AddCtx("deserialize BasicEmbedding", err)
	}
	if table.Vector.Len() != int(rows*cols) {
		return nil, errors.New("deserialize BasicEmbedding: bad table size")
	}
	res := &BasicEmbedding{
		Table: anydiff.NewVar(table.Vector),
		Rows:  int(rows),
		Cols:  int(cols),
	}
	if len(dropout) == 1 {
		res.Dropout = dropout[0].(*anynet.Dropout)
	}
	return res, nil
}

// NewBasicEmbedding creates a randomized BasicEmbedding
// with vocabSize rows of params.WordEmbedDims components.
func NewBasicEmbedding(c anyvec.Creator, vocabSize int, params *Params) (res *BasicEmbedding, err error) {
	defer essentials.AddCtxTo("new BasicEmbedding", &err)

	err = params.require(map[string]int{
		"word_embed_dims": params.WordEmbedDims,
	})
	if err != nil {
		return nil, err
	}
	if vocabSize <= 0 {
		return nil, errors.New("vocab size must be positive")
	}

	table := c.MakeVector(vocabSize * params.WordEmbedDims)
	params.initFn()(table, params.WordEmbedDims)
	res = &BasicEmbedding{
		Table: anydiff.NewVar(table),
		Rows:  vocabSize,
		Cols:  params.WordEmbedDims,
	}
	if params.DropoutKeepProb > 0 {
		res.Dropout = &anynet.Dropout{Enabled: true, KeepProb: params.DropoutKeepProb}
	}
	return res, nil
}

// Dim returns the embedding dimensionality.
func (b *BasicEmbedding) Dim() int {
	return b.Cols
}

// Embed looks up the embeddings for a list of word ids,
// packed one after another, applying dropout when
// configured.
func (b *BasicEmbedding) Embed(ids []int) anydiff.Res {
	distinct, remapped := dedupIDs(ids)
	rows := gatherRows(b.Table, b.Cols, distinct)
	res := gatherRows(rows, b.Cols, remapped)
	if b.Dropout != nil {
		res = b.Dropout.Apply(res, len(ids))
	}
	return res
}

// Parameters returns the table as the only parameter.
func (b *BasicEmbedding) Parameters() []*anydiff.Var {
	return []*anydiff.Var{b.Table}
}

// SerializerType returns the unique ID used to serialize
// a BasicEmbedding with the serializer package.
func (b *BasicEmbedding) SerializerType() string {
	return "github.com/tuglat/twitter-langid/char2vec.BasicEmbedding"
}

// Serialize serializes the BasicEmbedding.
func (b *BasicEmbedding) Serialize() ([]byte, error) {
	var dropout anynet.Net
	if b.Dropout != nil {
		dropout = anynet.Net{b.Dropout}
	}
	return serializer.SerializeAny(
		&anyvecsave.S{Vector: b.Table.Vector},
		serializer.Int(b.Rows),
		serializer.Int(b.Cols),
		dropout,
	)
}
