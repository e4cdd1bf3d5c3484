package char2vec

import (
	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anydiff/anyseq"
	"github.com/unixpickle/anynet"
	"github.com/unixpickle/anynet/anyrnn"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/essentials"
)

// CharLSTM implements char2vec with a two-layer deep
// bidirectional LSTM over the character sequence.
type CharLSTM struct {
	*Char2Vec

	Layer1Forward  *Cell
	Layer1Backward *Cell
	Layer2Forward  *Cell
	Layer2Backward *Cell

	// OutMat projects the concatenated final states of the
	// second layer down to the embedding size.
	OutMat *anydiff.Var

	// Dropout is applied to the first layer's output.
	// It is nil when no keep probability is configured.
	Dropout *anynet.Dropout

	hidden   int
	wordDims int
}

// NewCharLSTM creates a randomized CharLSTM.
func NewCharLSTM(c anyvec.Creator, vocab Vocab, params *Params) (res *CharLSTM, err error) {
	defer essentials.AddCtxTo("new CharLSTM", &err)

	err = params.require(map[string]int{
		"word_embed_dims":        params.WordEmbedDims,
		"c2v_layer1_hidden_size": params.Layer1HiddenSize,
		"c2v_layer2_hidden_size": params.Layer2HiddenSize,
	})
	if err != nil {
		return nil, err
	}

	base, err := newChar2Vec(c, vocab, params.maxLen(), params.initFn())
	if err != nil {
		return nil, err
	}

	init := params.initFn()
	hidden := params.Layer2HiddenSize
	wordDims := params.WordEmbedDims

	layer1Out := params.Layer1OutSize
	if layer1Out == 0 {
		layer1Out = params.Layer1HiddenSize
	}
	layer2In := 2 * layer1Out

	res = &CharLSTM{
		Char2Vec: base,

		Layer1Forward: NewCell(c, base.CharDims, params.Layer1HiddenSize,
			params.Layer1OutSize, params.Peepholes, init),
		Layer1Backward: NewCell(c, base.CharDims, params.Layer1HiddenSize,
			params.Layer1OutSize, params.Peepholes, init),
		Layer2Forward:  NewCell(c, layer2In, hidden, 0, params.Peepholes, init),
		Layer2Backward: NewCell(c, layer2In, hidden, 0, params.Peepholes, init),

		OutMat: anydiff.NewVar(c.MakeVector(2 * hidden * wordDims)),

		hidden:   hidden,
		wordDims: wordDims,
	}
	init(res.OutMat.Vector, 2*hidden)
	if params.DropoutKeepProb > 0 {
		res.Dropout = &anynet.Dropout{Enabled: true, KeepProb: params.DropoutKeepProb}
	}
	return res, nil
}

// Dim returns the embedding dimensionality.
func (l *CharLSTM) Dim() int {
	return l.wordDims
}

// Embed produces one embedding per row of the batch.
//
// Unlike CharCNN, the batch's pad length does not have to
// match the configured maximum: the recurrent layers adapt
// to any length, and padding beyond a word's true length
// never influences its embedding.
func (l *CharLSTM) Embed(b *Batch) anydiff.Res {
	n := b.Rows()
	seq := l.charSeq(b)
	out1 := l.applyLayer1(seq, b.Lengths)

	fw := anyrnn.Map(out1, l.Layer2Forward)
	bw := anyrnn.Map(reverseSeq(out1, b.Lengths), l.Layer2Backward)

	// The last forward output and the last output over the
	// reversed input (the true backward final state) sit at
	// length-dependent positions in each sequence.
	outFw := lastOutputs(fw, b.Lengths, l.hidden)
	outBw := lastOutputs(bw, b.Lengths, l.hidden)

	joined := anynet.ConcatMixer{}.Mix(outFw, outBw, n)
	return applyWeights(2*l.hidden, l.wordDims, l.OutMat, joined)
}

// applyLayer1 runs the first bidirectional layer: forward
// and length-bounded backward passes concatenated per
// timestep, masked to each word's true length, with
// optional dropout.
func (l *CharLSTM) applyLayer1(seq anyseq.Seq, lens []int) anyseq.Seq {
	outDim := l.Layer1Forward.OutCount() + l.Layer1Backward.OutCount()
	return anyseq.Pool(seq, func(seq anyseq.Seq) anyseq.Seq {
		fw := anyrnn.Map(seq, l.Layer1Forward)
		bw := reverseSeq(anyrnn.Map(reverseSeq(seq, lens), l.Layer1Backward), lens)
		mixed := anyseq.MapN(func(n int, v ...anydiff.Res) anydiff.Res {
			return anynet.ConcatMixer{}.Mix(v[0], v[1], n)
		}, fw, bw)
		masked := maskSeq(mixed, lens, outDim)
		if l.Dropout == nil {
			return masked
		}
		return anyseq.Map(masked, l.Dropout.Apply)
	})
}

// charSeq looks up the character embeddings for a batch,
// one fully-present timestep per column.
func (l *CharLSTM) charSeq(b *Batch) anyseq.Seq {
	n := b.Rows()
	present := make([]bool, n)
	for i := range present {
		present[i] = true
	}
	batches := make([]*anyseq.ResBatch, b.PadLen)
	col := make([]int, n)
	for t := range batches {
		for i, row := range b.IDs {
			col[i] = row[t]
		}
		batches[t] = &anyseq.ResBatch{
			Packed:  l.Lookup(col),
			Present: present,
		}
	}
	return anyseq.ResSeq(l.creator, batches)
}

// Parameters returns the model's parameters, starting with
// the character embedding table.
func (l *CharLSTM) Parameters() []*anydiff.Var {
	res := []*anydiff.Var{l.Embedding}
	cells := []*Cell{l.Layer1Forward, l.Layer1Backward, l.Layer2Forward, l.Layer2Backward}
	for _, c := range cells {
		res = append(res, c.Parameters()...)
	}
	return append(res, l.OutMat)
}
