package char2vec

import (
	"reflect"
	"testing"

	"github.com/unixpickle/anynet"
	"github.com/unixpickle/anyvec/anyvec32"
	"github.com/unixpickle/serializer"
)

func TestGateSerialize(t *testing.T) {
	c := anyvec32.CurrentCreator()
	gate := NewGate(c, 3, 2, 4, true, anynet.Sigmoid, UniformInit(0.1))
	data, err := serializer.SerializeAny(gate)
	if err != nil {
		t.Fatal(err)
	}
	var newGate *Gate
	if err := serializer.DeserializeAny(data, &newGate); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(gate, newGate) {
		t.Fatal("incorrect result")
	}
}

func TestGateSerializeNoPeephole(t *testing.T) {
	c := anyvec32.CurrentCreator()
	gate := NewGate(c, 3, 2, 4, false, anynet.Tanh, UniformInit(0.1))
	data, err := serializer.SerializeAny(gate)
	if err != nil {
		t.Fatal(err)
	}
	var newGate *Gate
	if err := serializer.DeserializeAny(data, &newGate); err != nil {
		t.Fatal(err)
	}
	if newGate.Peephole != nil {
		t.Error("peephole should stay nil")
	}
	if !reflect.DeepEqual(gate, newGate) {
		t.Fatal("incorrect result")
	}
}

func TestCellSerialize(t *testing.T) {
	c := anyvec32.CurrentCreator()
	for _, cell := range []*Cell{
		NewCell(c, 3, 4, 0, false, UniformInit(0.1)),
		NewCell(c, 3, 4, 2, true, UniformInit(0.1)),
	} {
		data, err := serializer.SerializeAny(cell)
		if err != nil {
			t.Fatal(err)
		}
		var newCell *Cell
		if err := serializer.DeserializeAny(data, &newCell); err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(cell, newCell) {
			t.Fatal("incorrect result")
		}
	}
}

func TestBasicEmbeddingSerialize(t *testing.T) {
	c := anyvec32.CurrentCreator()
	model, err := NewBasicEmbedding(c, 5, &Params{
		WordEmbedDims:   3,
		DropoutKeepProb: 0.8,
	})
	if err != nil {
		t.Fatal(err)
	}
	data, err := serializer.SerializeAny(model)
	if err != nil {
		t.Fatal(err)
	}
	var newModel *BasicEmbedding
	if err := serializer.DeserializeAny(data, &newModel); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(model, newModel) {
		t.Fatal("incorrect result")
	}
}
