package char2vec

import (
	"reflect"
	"testing"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anydiff/anydifftest"
	"github.com/unixpickle/anyvec/anyvec32"
)

func testingCNN(t *testing.T, params *Params) *CharCNN {
	res, err := NewCharCNN(anyvec32.CurrentCreator(), testingVocab(), params)
	if err != nil {
		t.Fatal(err)
	}
	return res
}

func TestCharCNNDims(t *testing.T) {
	model := testingCNN(t, testingParams())
	if model.Dim() != 9 {
		t.Errorf("expected dimension 9 but got %d", model.Dim())
	}
	words := []string{"ab", "cab", "b"}
	batch, err := model.MakeMatrix(words, model.MaxLen)
	if err != nil {
		t.Fatal(err)
	}
	out := model.Embed(batch)
	if out.Output().Len() != len(words)*model.Dim() {
		t.Errorf("expected %d components but got %d",
			len(words)*model.Dim(), out.Output().Len())
	}
}

func TestCharCNNShortMaxLen(t *testing.T) {
	params := testingParams()
	params.MaxSequenceLen = 6
	_, err := NewCharCNN(anyvec32.CurrentCreator(), testingVocab(), params)
	if err == nil {
		t.Error("expected error for max sequence length below 7")
	}
}

func TestCharCNNPadMismatch(t *testing.T) {
	model := testingCNN(t, testingParams())
	batch, err := model.MakeMatrix([]string{"ab"}, model.MaxLen-1)
	if err != nil {
		t.Fatal(err)
	}
	defer func() {
		if recover() == nil {
			t.Error("expected panic for mismatched pad length")
		}
	}()
	model.Embed(batch)
}

func TestCharCNNDeterministic(t *testing.T) {
	model := testingCNN(t, testingParams())
	batch, err := model.MakeMatrix([]string{"cabba", "b"}, model.MaxLen)
	if err != nil {
		t.Fatal(err)
	}
	first := model.Embed(batch).Output().Data().([]float32)
	second := model.Embed(batch).Output().Data().([]float32)
	if !reflect.DeepEqual(first, second) {
		t.Error("outputs differ between calls")
	}
}

func TestCharCNNProp(t *testing.T) {
	model := testingCNN(t, &Params{
		Layer1OutSize:    3,
		Layer2HiddenSize: 2,
		MaxSequenceLen:   7,
	})
	batch, err := model.MakeMatrix([]string{"ab", "cba"}, model.MaxLen)
	if err != nil {
		t.Fatal(err)
	}
	checker := anydifftest.ResChecker{
		F: func() anydiff.Res {
			return model.Embed(batch)
		},
		V:     model.Parameters(),
		Delta: 1e-3,
		Prec:  5e-3,
	}
	checker.FullCheck(t)
}
