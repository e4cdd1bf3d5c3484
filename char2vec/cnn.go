package char2vec

import (
	"fmt"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anynet"
	"github.com/unixpickle/anynet/anyconv"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/essentials"
)

// cnnFilterWidths are the kernel widths of the second
// convolution stage.
var cnnFilterWidths = []int{3, 4, 5}

// cnnBiasInit is the initial bias of the convolution
// filters and the residual transform.
const cnnBiasInit = 0.1

// CharCNN implements char2vec with stacked 1-D
// convolutions over the character sequence, multi-width
// max pooling, and a residual output block.
//
// Convolutions run over the full padded sequence, so pad
// characters participate in the first layer's activations.
type CharCNN struct {
	*Char2Vec

	Conv1 *anyconv.Conv

	// Dropout is applied to the first convolution's
	// activation, nil when no keep probability is set.
	Dropout *anynet.Dropout

	// Convs and Pools hold one convolution and one
	// full-time max pool per filter width.
	Convs []*anyconv.Conv
	Pools []*anyconv.MaxPool

	Residual *anyconv.Residual

	hidden int
}

// NewCharCNN creates a randomized CharCNN.
//
// The configured maximum sequence length must leave every
// filter width a non-empty pooling window, so it has to be
// at least the largest width plus two.
func NewCharCNN(c anyvec.Creator, vocab Vocab, params *Params) (res *CharCNN, err error) {
	defer essentials.AddCtxTo("new CharCNN", &err)

	err = params.require(map[string]int{
		"c2v_layer1_out_size":    params.Layer1OutSize,
		"c2v_layer2_hidden_size": params.Layer2HiddenSize,
	})
	if err != nil {
		return nil, err
	}
	maxLen := params.maxLen()
	for _, width := range cnnFilterWidths {
		if maxLen < width+2 {
			return nil, fmt.Errorf("max sequence length %d too small for filter width %d",
				maxLen, width)
		}
	}

	base, err := newChar2Vec(c, vocab, maxLen, params.initFn())
	if err != nil {
		return nil, err
	}

	init := params.initFn()
	layer1Out := params.Layer1OutSize
	hidden := params.Layer2HiddenSize

	res = &CharCNN{
		Char2Vec: base,
		Conv1:    newConv1D(c, maxLen, base.CharDims, 3, layer1Out, init),
		hidden:   hidden,
	}
	if params.DropoutKeepProb > 0 {
		res.Dropout = &anynet.Dropout{Enabled: true, KeepProb: params.DropoutKeepProb}
	}
	for _, width := range cnnFilterWidths {
		res.Convs = append(res.Convs, newConv1D(c, maxLen-2, layer1Out, width, hidden, init))
		span := maxLen - 1 - width
		res.Pools = append(res.Pools, &anyconv.MaxPool{
			SpanX:       1,
			SpanY:       span,
			StrideX:     1,
			StrideY:     span,
			InputWidth:  1,
			InputHeight: span,
			InputDepth:  hidden,
		})
	}

	size := len(cnnFilterWidths) * hidden
	transform := anynet.NewFCZero(c, size, size)
	init(transform.Weights.Vector, size)
	transform.AddBias(c.MakeNumeric(cnnBiasInit))
	res.Residual = &anyconv.Residual{
		Layer: anynet.Net{transform, anynet.ReLU},
	}
	return res, nil
}

// newConv1D builds a 1-D convolution over a length-inLen
// sequence of depth-inDepth vectors, expressed as an
// inLen-by-1 tensor.
func newConv1D(c anyvec.Creator, inLen, inDepth, width, outDepth int, init Init) *anyconv.Conv {
	conv := &anyconv.Conv{
		FilterCount:  outDepth,
		FilterWidth:  1,
		FilterHeight: width,
		StrideX:      1,
		StrideY:      1,
		InputWidth:   1,
		InputHeight:  inLen,
		InputDepth:   inDepth,
	}
	conv.InitZero(c)
	init(conv.Filters.Vector, width*inDepth)
	conv.Biases.Vector.AddScalar(c.MakeNumeric(cnnBiasInit))
	return conv
}

// Dim returns the embedding dimensionality, which is the
// filter-width count times the hidden size.
func (cn *CharCNN) Dim() int {
	return len(cnnFilterWidths) * cn.hidden
}

// Embed produces one embedding per row of the batch.
// The batch's pad length must match the configured maximum
// sequence length, since the convolution shapes are fixed
// at construction.
func (cn *CharCNN) Embed(b *Batch) anydiff.Res {
	if b.PadLen != cn.MaxLen {
		panic(fmt.Sprintf("pad length should be %d, but got %d", cn.MaxLen, b.PadLen))
	}
	n := b.Rows()

	flat := make([]int, 0, n*b.PadLen)
	for _, row := range b.IDs {
		flat = append(flat, row...)
	}
	z := cn.Lookup(flat)

	h := anynet.ReLU.Apply(cn.Conv1.Apply(z, n), n)
	if cn.Dropout != nil {
		h = cn.Dropout.Apply(h, n)
	}

	return anydiff.Pool(h, func(h anydiff.Res) anydiff.Res {
		var joined anydiff.Res
		for i, conv := range cn.Convs {
			pooled := cn.Pools[i].Apply(anynet.ReLU.Apply(conv.Apply(h, n), n), n)
			if joined == nil {
				joined = pooled
			} else {
				joined = anynet.ConcatMixer{}.Mix(joined, pooled, n)
			}
		}
		return cn.Residual.Apply(joined, n)
	})
}

// Parameters returns the model's parameters, starting with
// the character embedding table.
func (cn *CharCNN) Parameters() []*anydiff.Var {
	res := []*anydiff.Var{cn.Embedding}
	res = append(res, cn.Conv1.Parameters()...)
	for _, conv := range cn.Convs {
		res = append(res, conv.Parameters()...)
	}
	return append(res, cn.Residual.Parameters()...)
}
