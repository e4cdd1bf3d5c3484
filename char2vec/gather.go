package char2vec

import (
	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anyvec"
)

// gatherRows selects rows of a row-major matrix result.
// Rows may repeat; gradients for repeated rows accumulate.
func gatherRows(in anydiff.Res, cols int, rows []int) anydiff.Res {
	c := in.Output().Creator()
	table := make([]int, 0, len(rows)*cols)
	for _, r := range rows {
		for j := 0; j < cols; j++ {
			table = append(table, r*cols+j)
		}
	}
	mapper := c.MakeMapper(in.Output().Len(), table)
	out := c.MakeVector(mapper.OutSize())
	mapper.Map(in.Output(), out)
	return &gatherRes{
		In:     in,
		Mapper: mapper,
		OutVec: out,
	}
}

type gatherRes struct {
	In     anydiff.Res
	Mapper anyvec.Mapper
	OutVec anyvec.Vector
}

func (g *gatherRes) Output() anyvec.Vector {
	return g.OutVec
}

func (g *gatherRes) Vars() anydiff.VarSet {
	return g.In.Vars()
}

func (g *gatherRes) Propagate(u anyvec.Vector, grad anydiff.Grad) {
	down := u.Creator().MakeVector(g.Mapper.InSize())
	g.Mapper.MapTranspose(u, down)
	g.In.Propagate(down, grad)
}
