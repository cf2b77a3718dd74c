package nn

import (
	"gonum.org/v1/gonum/mat"
)

// activation holds everything one forward step produces.
type activation struct {
	z  *mat.VecDense // concat(x, h_prev)
	f  *mat.VecDense // forget gate
	cs *mat.VecDense // candidate cell content
	i  *mat.VecDense // input gate
	c  *mat.VecDense // cell state
	o  *mat.VecDense // output gate
	h  *mat.VecDense // hidden state
	v  *mat.VecDense // pre-softmax logits, nil for hidden-state cells
	y  *mat.VecDense // emitted output (distribution or h)
}

// trace records per-step activations between a forward and its backward.
//
// acquire opens a fresh trace when a sequence forward starts; release drops
// every retained step. Backward always releases, whether it succeeds or not.
type trace struct {
	steps []activation
	errs  []*mat.VecDense // y_t - target_t, output cells only
}

// acquire resets the trace and reserves room for n steps.
func (t *trace) acquire(n int) {
	t.steps = make([]activation, 0, n)
	t.errs = make([]*mat.VecDense, 0, n)
}

// push appends one step.
func (t *trace) push(a activation) {
	t.steps = append(t.steps, a)
}

// pushErr appends one output error signal.
func (t *trace) pushErr(e *mat.VecDense) {
	t.errs = append(t.errs, e)
}

// len returns the number of retained steps.
func (t *trace) len() int {
	return len(t.steps)
}

// at returns step k.
func (t *trace) at(k int) activation {
	return t.steps[k]
}

// release drops every retained step and error signal.
func (t *trace) release() {
	t.steps = nil
	t.errs = nil
}
