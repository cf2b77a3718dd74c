package nn

import (
	"fmt"
	"math"

	"github.com/born-ml/stacklstm/internal/optim"
	"gonum.org/v1/gonum/mat"
)

// Cell implements one LSTM cell with a hand-derived backward pass.
//
// One step, with z = concat(x, h_prev):
//
//	f  = σ(Wf·z + bf)
//	cs = tanh(Wc·z + bc)
//	i  = σ(Wi·z + bi)
//	c  = f⊙c_prev + i⊙cs
//	o  = σ(Wo·z + bo)
//	h  = tanh(c)⊙o
//	y  = softmax(Wv·h + bv)   output cell
//	y  = h                    hidden-state cell
//
// Forward records every step in a trace; Backward walks the trace from the
// last step to the first (BPTT), leaves the clipped gradients on the
// parameters and releases the trace. Applying the gradients is the owning
// Layer's job.
//
// A Cell is not safe for concurrent use.
type Cell struct {
	params *ParameterSet
	head   head
	trace  trace
}

// NewCell creates a cell over params.
//
// The output policy is fixed here: a ParameterSet carrying Wv/Bv yields an
// output cell, any other yields a hidden-state cell.
func NewCell(params *ParameterSet) *Cell {
	c := &Cell{params: params, head: hiddenHead{}}
	if params.IsOutput() {
		c.head = softmaxHead{wv: params.Wv, bv: params.Bv}
	}
	return c
}

// Params returns the cell's parameter set.
func (c *Cell) Params() *ParameterSet {
	return c.params
}

// IsOutput reports whether the cell emits distributions.
func (c *Cell) IsOutput() bool {
	return c.head.scoresTargets()
}

// TraceLen returns the number of steps recorded since the last release.
func (c *Cell) TraceLen() int {
	return c.trace.len()
}

// Reset drops the recorded trace without running backward.
func (c *Cell) Reset() {
	c.trace.release()
}

// Step runs one forward step and records it in the trace.
//
// Returns the output y (size V for an output cell, H otherwise), the new
// hidden state h and the new cell state.
func (c *Cell) Step(x, hPrev, cPrev *mat.VecDense) (y, h, cell *mat.VecDense, err error) {
	a, err := c.compute(x, hPrev, cPrev)
	if err != nil {
		return nil, nil, nil, err
	}
	c.trace.push(a)
	return a.y, a.h, a.c, nil
}

// SampleStep runs one forward step without recording anything.
func (c *Cell) SampleStep(x, hPrev, cPrev *mat.VecDense) (y, h, cell *mat.VecDense, err error) {
	a, err := c.compute(x, hPrev, cPrev)
	if err != nil {
		return nil, nil, nil, err
	}
	return a.y, a.h, a.c, nil
}

// Forward runs the cell over xs from zero hidden and cell states.
//
// For an output cell, targets (one-hot, size V) may be given to score the
// outputs: the summed cross-entropy is returned and y_t - target_t is recorded
// for Backward. Targets must be nil for a hidden-state cell.
//
// Any previous trace is discarded. On error the trace is released.
func (c *Cell) Forward(xs, targets []*mat.VecDense) ([]*mat.VecDense, float64, error) {
	if targets != nil {
		if !c.head.scoresTargets() {
			return nil, 0, ErrUnexpectedTargets
		}
		if len(targets) != len(xs) {
			return nil, 0, fmt.Errorf("%w: %d targets for %d inputs", ErrSequenceLength, len(targets), len(xs))
		}
	}

	c.trace.acquire(len(xs))
	hidden := c.params.HiddenSize()
	h := mat.NewVecDense(hidden, nil)
	cell := mat.NewVecDense(hidden, nil)

	outputs := make([]*mat.VecDense, 0, len(xs))
	loss := 0.0
	for t, x := range xs {
		y, hNext, cNext, err := c.Step(x, h, cell)
		if err != nil {
			c.trace.release()
			return nil, 0, fmt.Errorf("step %d: %w", t, err)
		}
		outputs = append(outputs, y)
		h, cell = hNext, cNext

		if targets == nil {
			continue
		}
		stepLoss, signal, err := c.head.score(y, targets[t])
		if err != nil {
			c.trace.release()
			return nil, 0, fmt.Errorf("step %d: %w", t, err)
		}
		loss += stepLoss
		c.trace.pushErr(signal)
	}

	return outputs, loss, nil
}

// Backward runs backpropagation through time over the recorded trace.
//
// upstream must be nil for an output cell (its recorded errors are used) and
// hold one ∂L/∂y_t per step for a hidden-state cell. After accumulation over
// the whole sequence every parameter gradient is clipped element-wise to
// [-clip, clip]; use +Inf to disable clipping.
//
// Returns ∂L/∂x_t for every step (size I-H each). A zero-length trace returns
// an empty sequence and leaves the gradients untouched. The trace is released
// in every case.
func (c *Cell) Backward(upstream []*mat.VecDense, clip float64) ([]*mat.VecDense, error) {
	defer c.trace.release()

	signals, err := c.head.signals(&c.trace, upstream)
	if err != nil {
		return nil, err
	}

	steps := c.trace.len()
	if steps == 0 {
		return []*mat.VecDense{}, nil
	}

	p := c.params
	for _, param := range p.Parameters() {
		param.ZeroGrad()
	}

	hidden := p.HiddenSize()
	external := p.ExternalSize()
	dhNext := mat.NewVecDense(hidden, nil)
	dcNext := mat.NewVecDense(hidden, nil)
	dxs := make([]*mat.VecDense, steps)

	for t := steps - 1; t >= 0; t-- {
		a := c.trace.at(t)
		if signals[t].Len() != c.params.OutputSize() {
			return nil, fmt.Errorf("%w: error signal %d has size %d, want %d",
				ErrShapeMismatch, t, signals[t].Len(), c.params.OutputSize())
		}

		dh := c.head.backward(signals[t], a.h)
		dh.AddVec(dh, dhNext)

		tanhC := mapVec(a.c, math.Tanh)

		// do = dh ⊙ tanh(c)
		do := mat.NewVecDense(hidden, nil)
		do.MulElemVec(dh, tanhC)

		// dc = dh ⊙ o ⊙ (1 - tanh²(c)) + dc_next
		dc := mat.NewVecDense(hidden, nil)
		dc.MulElemVec(dh, a.o)
		dc.MulElemVec(dc, mapVec(tanhC, TanhGrad))
		dc.AddVec(dc, dcNext)

		dcNext = mat.NewVecDense(hidden, nil)
		dcNext.MulElemVec(dc, a.f)

		// No cell state precedes the first step.
		df := mat.NewVecDense(hidden, nil)
		if t > 0 {
			df.MulElemVec(dc, c.trace.at(t-1).c)
		}

		di := mat.NewVecDense(hidden, nil)
		di.MulElemVec(dc, a.cs)

		dcs := mat.NewVecDense(hidden, nil)
		dcs.MulElemVec(dc, a.i)

		dz := mat.NewVecDense(p.InputSize(), nil)
		accumulateGate(p.Wf, p.Bf, localDelta(df, a.f, SigmoidGrad), a.z, dz)
		accumulateGate(p.Wc, p.Bc, localDelta(dcs, a.cs, TanhGrad), a.z, dz)
		accumulateGate(p.Wi, p.Bi, localDelta(di, a.i, SigmoidGrad), a.z, dz)
		accumulateGate(p.Wo, p.Bo, localDelta(do, a.o, SigmoidGrad), a.z, dz)

		dxs[t] = mat.VecDenseCopyOf(dz.SliceVec(0, external))
		dhNext = mat.VecDenseCopyOf(dz.SliceVec(external, p.InputSize()))
	}

	for _, param := range p.Parameters() {
		optim.ClipElementwise(param.Grad(), clip)
	}

	return dxs, nil
}

// compute evaluates one step without touching the trace.
func (c *Cell) compute(x, hPrev, cPrev *mat.VecDense) (activation, error) {
	p := c.params
	hidden := p.HiddenSize()
	if err := checkSize("input", x, p.ExternalSize()); err != nil {
		return activation{}, err
	}
	if err := checkSize("previous hidden state", hPrev, hidden); err != nil {
		return activation{}, err
	}
	if err := checkSize("previous cell state", cPrev, hidden); err != nil {
		return activation{}, err
	}

	var a activation
	a.z = concat(x, hPrev)
	a.f = mapVec(affine(p.Wf.Tensor(), p.Bf.Tensor(), a.z), Sigmoid)
	a.cs = mapVec(affine(p.Wc.Tensor(), p.Bc.Tensor(), a.z), math.Tanh)
	a.i = mapVec(affine(p.Wi.Tensor(), p.Bi.Tensor(), a.z), Sigmoid)

	a.c = mat.NewVecDense(hidden, nil)
	a.c.MulElemVec(a.f, cPrev)
	written := mat.NewVecDense(hidden, nil)
	written.MulElemVec(a.i, a.cs)
	a.c.AddVec(a.c, written)

	a.o = mapVec(affine(p.Wo.Tensor(), p.Bo.Tensor(), a.z), Sigmoid)

	a.h = mat.NewVecDense(hidden, nil)
	a.h.MulElemVec(mapVec(a.c, math.Tanh), a.o)

	a.y, a.v = c.head.emit(a.h)
	return a, nil
}

// localDelta returns upstream ⊙ grad(out), the gradient at a gate's pre-activation.
func localDelta(upstream, out *mat.VecDense, grad func(float64) float64) *mat.VecDense {
	delta := mapVec(out, grad)
	delta.MulElemVec(delta, upstream)
	return delta
}

// accumulateGate adds delta·zᵀ to dW, delta to db and Wᵀ·delta to dz.
func accumulateGate(w, b *Parameter, delta, z, dz *mat.VecDense) {
	w.Grad().RankOne(w.Grad(), 1, delta, z)
	addColumn(b.Grad(), delta)

	back := mat.NewVecDense(dz.Len(), nil)
	back.MulVec(w.Tensor().T(), delta)
	dz.AddVec(dz, back)
}

// checkSize fails when v is nil or not of length want.
func checkSize(name string, v *mat.VecDense, want int) error {
	if v == nil {
		return fmt.Errorf("%w: %s is nil, want size %d", ErrShapeMismatch, name, want)
	}
	if v.Len() != want {
		return fmt.Errorf("%w: %s has size %d, want %d", ErrShapeMismatch, name, v.Len(), want)
	}
	return nil
}
