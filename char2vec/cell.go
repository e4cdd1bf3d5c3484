package char2vec

import (
	"errors"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anynet"
	"github.com/unixpickle/anynet/anyrnn"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/anyvec/anyvecsave"
	"github.com/unixpickle/essentials"
	"github.com/unixpickle/serializer"
)

const cellRememberBias = 1

func init() {
	var g Gate
	serializer.RegisterTypedDeserializer(g.SerializerType(), DeserializeGate)
	var c Cell
	serializer.RegisterTypedDeserializer(c.SerializerType(), DeserializeCell)
}

// A Gate computes one gate value of a Cell from the block
// input, the previous (possibly projected) output, and
// optionally the internal state via a peephole connection.
type Gate struct {
	InputWeights *anydiff.Var
	StateWeights *anydiff.Var
	Peephole     *anydiff.Var
	Biases       *anydiff.Var
	Activation   anynet.Layer
}

// DeserializeGate deserializes a Gate.
func DeserializeGate(d []byte) (*Gate, error) {
	var iw, sw, p, b *anyvecsave.S
	var a anynet.Layer
	if err := serializer.DeserializeAny(d, &iw, &sw, &p, &b, &a); err != nil {
		return nil, essentials.AddCtx("deserialize Gate", err)
	}
	res := &Gate{
		InputWeights: anydiff.NewVar(iw.Vector),
		StateWeights: anydiff.NewVar(sw.Vector),
		Biases:       anydiff.NewVar(b.Vector),
		Activation:   a,
	}
	if p.Vector.Len() > 0 {
		res.Peephole = anydiff.NewVar(p.Vector)
	}
	return res, nil
}

// NewGate creates a randomized Gate.
// The lateral size is the dimensionality of the previous
// output fed back into the gate.
func NewGate(c anyvec.Creator, in, lateral, state int, peephole bool,
	activation anynet.Layer, init Init) *Gate {
	res := &Gate{
		InputWeights: anydiff.NewVar(c.MakeVector(in * state)),
		StateWeights: anydiff.NewVar(c.MakeVector(lateral * state)),
		Biases:       anydiff.NewVar(c.MakeVector(state)),
		Activation:   activation,
	}
	init(res.InputWeights.Vector, in)
	init(res.StateWeights.Vector, lateral)
	if peephole {
		res.Peephole = anydiff.NewVar(c.MakeVector(state))
		init(res.Peephole.Vector, 1)
	}
	return res
}

// apply computes the gate value for a batch.
// The internal argument may be nil for gates without a
// peephole connection.
func (g *Gate) apply(in, lateral, internal anydiff.Res) anydiff.Res {
	state := g.Biases.Vector.Len()
	inCount := g.InputWeights.Vector.Len() / state
	lateralCount := g.StateWeights.Vector.Len() / state
	sum := anydiff.Add(
		applyWeights(inCount, state, g.InputWeights, in),
		applyWeights(lateralCount, state, g.StateWeights, lateral),
	)
	if g.Peephole != nil {
		sum = anydiff.Add(sum, anydiff.ScaleAddRepeated(internal, g.Peephole, g.Biases))
	} else {
		sum = anydiff.AddRepeated(sum, g.Biases)
	}
	n := in.Output().Len() / inCount
	return g.Activation.Apply(sum, n)
}

// Parameters returns the gate's parameters.
func (g *Gate) Parameters() []*anydiff.Var {
	res := []*anydiff.Var{g.InputWeights, g.StateWeights}
	if g.Peephole != nil {
		res = append(res, g.Peephole)
	}
	return append(res, g.Biases)
}

// SerializerType returns the unique ID used to serialize
// a Gate with the serializer package.
func (g *Gate) SerializerType() string {
	return "github.com/tuglat/twitter-langid/char2vec.Gate"
}

// Serialize serializes the Gate.
func (g *Gate) Serialize() ([]byte, error) {
	peep := g.Biases.Vector.Creator().MakeVector(0)
	if g.Peephole != nil {
		peep = g.Peephole.Vector
	}
	return serializer.SerializeAny(
		&anyvecsave.S{Vector: g.InputWeights.Vector},
		&anyvecsave.S{Vector: g.StateWeights.Vector},
		&anyvecsave.S{Vector: peep},
		&anyvecsave.S{Vector: g.Biases.Vector},
		g.Activation,
	)
}

// A Cell is a long short-term memory block with optional
// peephole connections and an optional linear projection
// of its output, the way projected LSTM variants do it.
//
// It implements anyrnn.Block.
type Cell struct {
	InCount    int
	StateCount int

	// ProjCount is the projected output size.
	// Zero means no projection: the output is the full
	// internal state size.
	ProjCount int

	InValue  *Gate
	In       *Gate
	Remember *Gate
	Out      *Gate

	// Proj is nil when ProjCount is zero.
	Proj *anydiff.Var

	InitInternal *anydiff.Var
	InitLateral  *anydiff.Var
}

// DeserializeCell deserializes a Cell.
func DeserializeCell(d []byte) (*Cell, error) {
	var inCount, stateCount, projCount serializer.Int
	var inVal, in, rem, out *Gate
	var proj, initInternal, initLateral *anyvecsave.S
	err := serializer.DeserializeAny(d, &inCount, &stateCount, &projCount,
		&inVal, &in, &rem, &out, &proj, &initInternal, &initLateral)
	if err != nil {
		return nil, essentials.AddCtx("deserialize Cell", err)
	}
	res := &Cell{
		InCount:      int(inCount),
		StateCount:   int(stateCount),
		ProjCount:    int(projCount),
		InValue:      inVal,
		In:           in,
		Remember:     rem,
		Out:          out,
		InitInternal: anydiff.NewVar(initInternal.Vector),
		InitLateral:  anydiff.NewVar(initLateral.Vector),
	}
	if res.ProjCount > 0 {
		if proj.Vector.Len() != res.ProjCount*res.StateCount {
			return nil, errors.New("deserialize Cell: bad projection size")
		}
		res.Proj = anydiff.NewVar(proj.Vector)
	}
	return res, nil
}

// NewCell creates a randomized Cell.
// A proj of zero disables the output projection.
//
// The remember gate is initially biased to remember.
func NewCell(c anyvec.Creator, in, state, proj int, peepholes bool, init Init) *Cell {
	lateral := state
	if proj > 0 {
		lateral = proj
	}
	res := &Cell{
		InCount:    in,
		StateCount: state,
		ProjCount:  proj,

		InValue:  NewGate(c, in, lateral, state, false, anynet.Tanh, init),
		In:       NewGate(c, in, lateral, state, peepholes, anynet.Sigmoid, init),
		Remember: NewGate(c, in, lateral, state, peepholes, anynet.Sigmoid, init),
		Out:      NewGate(c, in, lateral, state, peepholes, anynet.Sigmoid, init),

		InitInternal: anydiff.NewVar(c.MakeVector(state)),
		InitLateral:  anydiff.NewVar(c.MakeVector(lateral)),
	}
	if proj > 0 {
		res.Proj = anydiff.NewVar(c.MakeVector(proj * state))
		init(res.Proj.Vector, state)
	}
	res.Remember.Biases.Vector.AddScalar(c.MakeNumeric(cellRememberBias))
	return res
}

// OutCount returns the dimensionality of the block's
// outputs.
func (c *Cell) OutCount() int {
	if c.ProjCount > 0 {
		return c.ProjCount
	}
	return c.StateCount
}

// Start produces the start state.
func (c *Cell) Start(n int) anyrnn.State {
	return &cellState{
		Internal: anyrnn.NewVecState(c.InitInternal.Vector, n),
		Lateral:  anyrnn.NewVecState(c.InitLateral.Vector, n),
	}
}

// PropagateStart back-propagates through the start state.
func (c *Cell) PropagateStart(s anyrnn.StateGrad, g anydiff.Grad) {
	cs := s.(*cellState)
	cs.Internal.PropagateStart(c.InitInternal, g)
	cs.Lateral.PropagateStart(c.InitLateral, g)
}

// Step applies the block for a single timestep.
func (c *Cell) Step(s anyrnn.State, in anyvec.Vector) anyrnn.Res {
	st := s.(*cellState)
	res := &cellRes{
		InPool:       anydiff.NewVar(in),
		InternalPool: anydiff.NewVar(st.Internal.Vector),
		LateralPool:  anydiff.NewVar(st.Lateral.Vector),
		V:            anydiff.VarSet{},
	}
	res.V.Add(c.InitInternal)
	res.V.Add(c.InitLateral)

	inVal := c.InValue.apply(res.InPool, res.LateralPool, nil)
	inGate := c.In.apply(res.InPool, res.LateralPool, res.InternalPool)
	remember := c.Remember.apply(res.InPool, res.LateralPool, res.InternalPool)
	res.NewInternal = anydiff.Add(
		anydiff.Mul(remember, res.InternalPool),
		anydiff.Mul(inGate, inVal),
	)

	// The output gate's peephole sees the updated state.
	res.NewInternalPool = anydiff.NewVar(res.NewInternal.Output())
	outGate := c.Out.apply(res.InPool, res.LateralPool, res.NewInternalPool)
	outVal := anydiff.Mul(outGate, anydiff.Tanh(res.NewInternalPool))
	if c.Proj != nil {
		outVal = applyWeights(c.StateCount, c.ProjCount, c.Proj, outVal)
	}
	res.NewLateral = outVal

	pres := st.Present()
	res.OutState = &cellState{
		Internal: &anyrnn.VecState{
			Vector:     res.NewInternal.Output(),
			PresentMap: pres,
		},
		Lateral: &anyrnn.VecState{
			Vector:     res.NewLateral.Output(),
			PresentMap: pres,
		},
	}
	res.V = anydiff.MergeVarSets(res.V, res.NewInternal.Vars(), res.NewLateral.Vars())
	res.V.Del(res.InPool)
	res.V.Del(res.InternalPool)
	res.V.Del(res.LateralPool)
	res.V.Del(res.NewInternalPool)

	return res
}

// Parameters returns the block's parameters.
func (c *Cell) Parameters() []*anydiff.Var {
	res := []*anydiff.Var{c.InitInternal, c.InitLateral}
	for _, g := range []*Gate{c.InValue, c.In, c.Remember, c.Out} {
		res = append(res, g.Parameters()...)
	}
	if c.Proj != nil {
		res = append(res, c.Proj)
	}
	return res
}

// SerializerType returns the unique ID used to serialize
// a Cell with the serializer package.
func (c *Cell) SerializerType() string {
	return "github.com/tuglat/twitter-langid/char2vec.Cell"
}

// Serialize serializes the Cell.
func (c *Cell) Serialize() ([]byte, error) {
	proj := c.InitInternal.Vector.Creator().MakeVector(0)
	if c.Proj != nil {
		proj = c.Proj.Vector
	}
	return serializer.SerializeAny(
		serializer.Int(c.InCount),
		serializer.Int(c.StateCount),
		serializer.Int(c.ProjCount),
		c.InValue, c.In, c.Remember, c.Out,
		&anyvecsave.S{Vector: proj},
		&anyvecsave.S{Vector: c.InitInternal.Vector},
		&anyvecsave.S{Vector: c.InitLateral.Vector},
	)
}

// cellState is the batched state of a Cell: the internal
// memory plus the previous (projected) output.
// It doubles as the corresponding StateGrad.
type cellState struct {
	Internal *anyrnn.VecState
	Lateral  *anyrnn.VecState
}

func (c *cellState) Present() anyrnn.PresentMap {
	return c.Internal.Present()
}

func (c *cellState) Reduce(p anyrnn.PresentMap) anyrnn.State {
	return &cellState{
		Internal: c.Internal.Reduce(p).(*anyrnn.VecState),
		Lateral:  c.Lateral.Reduce(p).(*anyrnn.VecState),
	}
}

func (c *cellState) Expand(p anyrnn.PresentMap) anyrnn.StateGrad {
	return &cellState{
		Internal: c.Internal.Expand(p).(*anyrnn.VecState),
		Lateral:  c.Lateral.Expand(p).(*anyrnn.VecState),
	}
}

type cellRes struct {
	InPool          *anydiff.Var
	InternalPool    *anydiff.Var
	LateralPool     *anydiff.Var
	NewInternalPool *anydiff.Var

	NewInternal anydiff.Res
	NewLateral  anydiff.Res
	OutState    *cellState
	V           anydiff.VarSet
}

func (c *cellRes) State() anyrnn.State {
	return c.OutState
}

func (c *cellRes) Output() anyvec.Vector {
	return c.NewLateral.Output()
}

func (c *cellRes) Vars() anydiff.VarSet {
	return c.V
}

func (c *cellRes) Propagate(u anyvec.Vector, s anyrnn.StateGrad,
	g anydiff.Grad) (anyvec.Vector, anyrnn.StateGrad) {
	cr := u.Creator()
	downIn := cr.MakeVector(c.InPool.Vector.Len())
	downInternal := cr.MakeVector(c.InternalPool.Vector.Len())
	downLateral := cr.MakeVector(c.LateralPool.Vector.Len())
	internalUp := cr.MakeVector(c.NewInternalPool.Vector.Len())
	g[c.InPool] = downIn
	g[c.InternalPool] = downInternal
	g[c.LateralPool] = downLateral
	g[c.NewInternalPool] = internalUp

	if s != nil {
		u.Add(s.(*cellState).Lateral.Vector)
	}
	c.NewLateral.Propagate(u, g)
	delete(g, c.NewInternalPool)

	if s != nil {
		internalUp.Add(s.(*cellState).Internal.Vector)
	}
	c.NewInternal.Propagate(internalUp, g)

	delete(g, c.InPool)
	delete(g, c.InternalPool)
	delete(g, c.LateralPool)

	pres := c.OutState.Present()
	return downIn, &cellState{
		Internal: &anyrnn.VecState{Vector: downInternal, PresentMap: pres},
		Lateral:  &anyrnn.VecState{Vector: downLateral, PresentMap: pres},
	}
}

func applyWeights(in, out int, weights anydiff.Res, batch anydiff.Res) anydiff.Res {
	weightMat := &anydiff.Matrix{Data: weights, Rows: out, Cols: in}
	inMat := &anydiff.Matrix{Data: batch, Rows: batch.Output().Len() / in, Cols: in}
	return anydiff.MatMul(false, true, inMat, weightMat).Data
}
