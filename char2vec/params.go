package char2vec

import (
	"fmt"
	"os"

	"github.com/unixpickle/essentials"
	"gopkg.in/yaml.v3"
)

// DefaultMaxSequenceLen is used when Params does not
// specify a maximum word length.
const DefaultMaxSequenceLen = 15

// Params holds the model hyperparameters.
//
// The zero value of a required field is treated as a
// missing key and rejected at construction time.
type Params struct {
	// WordEmbedDims is the dimensionality of CharLSTM and
	// BasicEmbedding outputs.
	WordEmbedDims int `yaml:"word_embed_dims"`

	// Layer1HiddenSize is the state size of the first
	// recurrent layer, and also the channel count of the
	// first convolution.
	Layer1HiddenSize int `yaml:"c2v_layer1_hidden_size"`

	// Layer1OutSize, if non-zero, enables a projection of
	// the first recurrent layer's output to this size.
	// For CharCNN it is required and sets the first
	// convolution's channel count.
	Layer1OutSize int `yaml:"c2v_layer1_out_size"`

	// Layer2HiddenSize is the state size of the second
	// recurrent layer, and the per-width channel count of
	// the second convolution stage.
	Layer2HiddenSize int `yaml:"c2v_layer2_hidden_size"`

	// Peepholes enables peephole connections in the
	// recurrent cells.
	Peepholes bool `yaml:"peepholes"`

	// MaxSequenceLen bounds the padded word length,
	// sentinels included.
	// Zero means DefaultMaxSequenceLen.
	MaxSequenceLen int `yaml:"max_sequence_len"`

	// DropoutKeepProb, if non-zero, enables dropout with
	// the given keep probability.
	DropoutKeepProb float64 `yaml:"dropout_keep_prob"`

	// Init overrides the weight initialization policy.
	// The default is UniformInit(0.1).
	Init Init `yaml:"-"`
}

// LoadParams reads Params from a YAML file.
func LoadParams(path string) (params *Params, err error) {
	defer essentials.AddCtxTo("load params", &err)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var res Params
	if err := yaml.Unmarshal(data, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// maxLen returns the effective maximum sequence length.
func (p *Params) maxLen() int {
	if p.MaxSequenceLen == 0 {
		return DefaultMaxSequenceLen
	}
	return p.MaxSequenceLen
}

// initFn returns the effective initialization policy.
func (p *Params) initFn() Init {
	if p.Init == nil {
		return UniformInit(0.1)
	}
	return p.Init
}

// require verifies that the named integer hyperparameters
// are all configured.
func (p *Params) require(keys map[string]int) error {
	for name, val := range keys {
		if val <= 0 {
			return fmt.Errorf("missing hyperparameter: %s", name)
		}
	}
	if p.MaxSequenceLen < 0 || p.MaxSequenceLen == 1 || p.maxLen() < 2 {
		return fmt.Errorf("invalid max_sequence_len: %d", p.MaxSequenceLen)
	}
	if p.DropoutKeepProb < 0 || p.DropoutKeepProb > 1 {
		return fmt.Errorf("invalid dropout_keep_prob: %v", p.DropoutKeepProb)
	}
	return nil
}
