package char2vec

import (
	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anydiff/anyseq"
	"github.com/unixpickle/anyvec"
)

// reverseSeq reverses the first lens[i] timesteps of every
// sequence in s, leaving later (padding) timesteps where
// they are.
//
// All timesteps of s must be fully present.
func reverseSeq(s anyseq.Seq, lens []int) anyseq.Seq {
	in := s.Output()
	return &revSeqRes{
		In:   s,
		Lens: lens,
		Out:  permuteSteps(s.Creator(), in, lens),
	}
}

// permuteSteps applies the length-bounded time reversal to
// a list of fully-present batches.
// The permutation is an involution, so it is its own
// gradient permutation.
func permuteSteps(c anyvec.Creator, in []*anyseq.Batch, lens []int) []*anyseq.Batch {
	if len(in) == 0 {
		return nil
	}
	n := len(lens)
	dim := in[0].Packed.Len() / n
	out := make([]*anyseq.Batch, len(in))
	for t := range in {
		if in[t].NumPresent() != n {
			panic("sequences must be fully present")
		}
		pieces := make([]anyvec.Vector, n)
		for i, l := range lens {
			src := t
			if t < l {
				src = l - 1 - t
			}
			pieces[i] = in[src].Packed.Slice(i*dim, (i+1)*dim)
		}
		out[t] = &anyseq.Batch{
			Packed:  c.Concat(pieces...),
			Present: in[t].Present,
		}
	}
	return out
}

type revSeqRes struct {
	In   anyseq.Seq
	Lens []int
	Out  []*anyseq.Batch
}

func (r *revSeqRes) Creator() anyvec.Creator {
	return r.In.Creator()
}

func (r *revSeqRes) Output() []*anyseq.Batch {
	return r.Out
}

func (r *revSeqRes) Vars() anydiff.VarSet {
	return r.In.Vars()
}

func (r *revSeqRes) Propagate(u []*anyseq.Batch, g anydiff.Grad) {
	r.In.Propagate(permuteSteps(r.Creator(), u, r.Lens), g)
}

// maskSeq zeroes every timestep at or past a sequence's
// true length.
func maskSeq(s anyseq.Seq, lens []int, dim int) anyseq.Seq {
	c := s.Creator()
	steps := len(s.Output())
	n := len(lens)
	batches := make([]*anyseq.Batch, steps)
	for t := range batches {
		data := make([]float64, n*dim)
		for i, l := range lens {
			if t < l {
				for j := 0; j < dim; j++ {
					data[i*dim+j] = 1
				}
			}
		}
		present := make([]bool, n)
		for i := range present {
			present[i] = true
		}
		batches[t] = &anyseq.Batch{
			Packed:  c.MakeVectorData(c.MakeNumericList(data)),
			Present: present,
		}
	}
	mask := anyseq.ConstSeq(c, batches)
	return anyseq.MapN(func(num int, v ...anydiff.Res) anydiff.Res {
		return anydiff.Mul(v[0], v[1])
	}, s, mask)
}

// lastOutputs gathers the final non-padding output of each
// sequence.
//
// Conceptually the timestep outputs form one long
// time-major table of rows; the output for sequence i
// lives at offset batch*(lens[i]-1) + i in that table.
//
// All timesteps of s must be fully present.
func lastOutputs(s anyseq.Seq, lens []int, dim int) anydiff.Res {
	out := s.Output()
	n := len(lens)
	rows := make([]anyvec.Vector, n)
	for i := range lens {
		offset := n*(lens[i]-1) + i
		t, row := offset/n, offset%n
		if out[t].NumPresent() != n {
			panic("sequences must be fully present")
		}
		rows[i] = out[t].Packed.Slice(row*dim, (row+1)*dim)
	}
	return &lastOutputsRes{
		In:     s,
		Lens:   lens,
		Dim:    dim,
		OutVec: s.Creator().Concat(rows...),
	}
}

type lastOutputsRes struct {
	In     anyseq.Seq
	Lens   []int
	Dim    int
	OutVec anyvec.Vector
}

func (l *lastOutputsRes) Output() anyvec.Vector {
	return l.OutVec
}

func (l *lastOutputsRes) Vars() anydiff.VarSet {
	return l.In.Vars()
}

func (l *lastOutputsRes) Propagate(u anyvec.Vector, g anydiff.Grad) {
	c := u.Creator()
	in := l.In.Output()
	n := len(l.Lens)
	zero := c.MakeVector(l.Dim)
	upstream := make([]*anyseq.Batch, len(in))
	for t := range in {
		pieces := make([]anyvec.Vector, n)
		for i := range pieces {
			if l.Lens[i]-1 == t {
				pieces[i] = u.Slice(i*l.Dim, (i+1)*l.Dim)
			} else {
				pieces[i] = zero
			}
		}
		upstream[t] = &anyseq.Batch{
			Packed:  c.Concat(pieces...),
			Present: in[t].Present,
		}
	}
	l.In.Propagate(upstream, g)
}
