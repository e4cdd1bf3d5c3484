package char2vec

import (
	"testing"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anydiff/anydifftest"
	"github.com/unixpickle/anydiff/anyseq"
	"github.com/unixpickle/anynet/anyrnn"
	"github.com/unixpickle/anyvec/anyvec32"
)

func TestCellParameters(t *testing.T) {
	c := anyvec32.CurrentCreator()

	plain := NewCell(c, 3, 2, 0, false, UniformInit(0.1))
	if len(plain.Parameters()) != 14 {
		t.Errorf("expected 14 parameters but got %d", len(plain.Parameters()))
	}
	if plain.OutCount() != 2 {
		t.Errorf("expected output size 2 but got %d", plain.OutCount())
	}

	full := NewCell(c, 3, 4, 2, true, UniformInit(0.1))
	if len(full.Parameters()) != 18 {
		t.Errorf("expected 18 parameters but got %d", len(full.Parameters()))
	}
	if full.OutCount() != 2 {
		t.Errorf("expected output size 2 but got %d", full.OutCount())
	}
}

func TestCellProp(t *testing.T) {
	c := anyvec32.CurrentCreator()
	vars, mkSeq := testSeqVars(c, 3, 2, 3)
	block := NewCell(c, 3, 2, 0, false, UniformInit(0.1))
	checker := anydifftest.SeqChecker{
		F: func() anyseq.Seq {
			return anyrnn.Map(mkSeq(), block)
		},
		V: append(append([]*anydiff.Var{}, vars...), block.Parameters()...),
	}
	checker.FullCheck(t)
}

func TestCellPropPeepholes(t *testing.T) {
	c := anyvec32.CurrentCreator()
	vars, mkSeq := testSeqVars(c, 3, 2, 3)
	block := NewCell(c, 3, 2, 0, true, UniformInit(0.1))
	checker := anydifftest.SeqChecker{
		F: func() anyseq.Seq {
			return anyrnn.Map(mkSeq(), block)
		},
		V: append(append([]*anydiff.Var{}, vars...), block.Parameters()...),
	}
	checker.FullCheck(t)
}

func TestCellPropProjected(t *testing.T) {
	c := anyvec32.CurrentCreator()
	vars, mkSeq := testSeqVars(c, 3, 2, 3)
	block := NewCell(c, 3, 4, 2, true, UniformInit(0.1))
	checker := anydifftest.SeqChecker{
		F: func() anyseq.Seq {
			return anyrnn.Map(mkSeq(), block)
		},
		V: append(append([]*anydiff.Var{}, vars...), block.Parameters()...),
	}
	checker.FullCheck(t)
}
