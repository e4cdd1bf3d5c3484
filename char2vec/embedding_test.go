package char2vec

import (
	"reflect"
	"testing"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anydiff/anydifftest"
	"github.com/unixpickle/anyvec/anyvec32"
)

func TestBasicEmbeddingOutput(t *testing.T) {
	c := anyvec32.CurrentCreator()
	model, err := NewBasicEmbedding(c, 3, &Params{WordEmbedDims: 2})
	if err != nil {
		t.Fatal(err)
	}
	model.Table.Vector.SetData(c.MakeNumericList([]float64{
		1, 2,
		3, 4,
		5, 6,
	}))
	actual := model.Embed([]int{2, 0, 2}).Output().Data().([]float32)
	expected := []float32{5, 6, 1, 2, 5, 6}
	if !reflect.DeepEqual(actual, expected) {
		t.Errorf("expected %v but got %v", expected, actual)
	}
}

func TestBasicEmbeddingProp(t *testing.T) {
	c := anyvec32.CurrentCreator()
	model, err := NewBasicEmbedding(c, 4, &Params{WordEmbedDims: 3})
	if err != nil {
		t.Fatal(err)
	}
	checker := anydifftest.ResChecker{
		F: func() anydiff.Res {
			return model.Embed([]int{1, 3, 1, 1, 0})
		},
		V: model.Parameters(),
	}
	checker.FullCheck(t)
}

func TestBasicEmbeddingErrors(t *testing.T) {
	c := anyvec32.CurrentCreator()
	if _, err := NewBasicEmbedding(c, 0, &Params{WordEmbedDims: 2}); err == nil {
		t.Error("expected error for empty vocab")
	}
	if _, err := NewBasicEmbedding(c, 3, &Params{}); err == nil {
		t.Error("expected error for missing word_embed_dims")
	}
}
