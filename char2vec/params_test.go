package char2vec

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/unixpickle/anyvec/anyvec32"
)

func TestLoadParams(t *testing.T) {
	contents := `word_embed_dims: 32
c2v_layer1_hidden_size: 24
c2v_layer1_out_size: 16
c2v_layer2_hidden_size: 24
peepholes: true
max_sequence_len: 12
dropout_keep_prob: 0.8
`
	path := filepath.Join(t.TempDir(), "params.yaml")
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatal(err)
	}
	params, err := LoadParams(path)
	if err != nil {
		t.Fatal(err)
	}
	expected := Params{
		WordEmbedDims:    32,
		Layer1HiddenSize: 24,
		Layer1OutSize:    16,
		Layer2HiddenSize: 24,
		Peepholes:        true,
		MaxSequenceLen:   12,
		DropoutKeepProb:  0.8,
	}
	if !reflect.DeepEqual(*params, expected) {
		t.Errorf("expected %+v but got %+v", expected, *params)
	}
}

func TestLoadParamsMissingFile(t *testing.T) {
	if _, err := LoadParams(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestParamsValidation(t *testing.T) {
	c := anyvec32.CurrentCreator()

	missing := testingParams()
	missing.WordEmbedDims = 0
	if _, err := NewCharLSTM(c, testingVocab(), missing); err == nil {
		t.Error("expected error for missing word_embed_dims")
	}

	badLen := testingParams()
	badLen.MaxSequenceLen = 1
	if _, err := NewCharLSTM(c, testingVocab(), badLen); err == nil {
		t.Error("expected error for max_sequence_len of 1")
	}

	badKeep := testingParams()
	badKeep.DropoutKeepProb = 1.5
	if _, err := NewCharLSTM(c, testingVocab(), badKeep); err == nil {
		t.Error("expected error for dropout_keep_prob above 1")
	}
}

func TestParamsDefaults(t *testing.T) {
	params := testingParams()
	params.MaxSequenceLen = 0
	model := testingLSTM(t, params)
	if model.MaxLen != DefaultMaxSequenceLen {
		t.Errorf("expected max length %d but got %d",
			DefaultMaxSequenceLen, model.MaxLen)
	}
}
