package nn

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// head is the part of a cell that turns the hidden state into the cell's output.
//
// A cell picks its head once at construction:
//   - hiddenHead: emits h unchanged and takes error signals from the layer above
//   - softmaxHead: projects h onto V logits, emits softmax(v), scores targets
//     and keeps its own error signals
type head interface {
	// emit maps the hidden state to the cell output. v is nil when no
	// projection is involved.
	emit(h *mat.VecDense) (y, v *mat.VecDense)

	// score returns the loss of y against target and the error signal to record.
	score(y, target *mat.VecDense) (float64, *mat.VecDense, error)

	// signals picks the per-step error sequence for backward.
	signals(tr *trace, upstream []*mat.VecDense) ([]*mat.VecDense, error)

	// backward accumulates head gradients for one step and returns ∂L/∂h.
	backward(signal, h *mat.VecDense) *mat.VecDense

	// scoresTargets reports whether the head accepts targets.
	scoresTargets() bool
}

// hiddenHead passes the hidden state through.
type hiddenHead struct{}

func (hiddenHead) emit(h *mat.VecDense) (*mat.VecDense, *mat.VecDense) {
	return h, nil
}

func (hiddenHead) score(_, _ *mat.VecDense) (float64, *mat.VecDense, error) {
	return 0, nil, ErrUnexpectedTargets
}

func (hiddenHead) signals(tr *trace, upstream []*mat.VecDense) ([]*mat.VecDense, error) {
	if len(upstream) != tr.len() {
		return nil, fmt.Errorf("%w: %d error signals for %d steps", ErrSequenceLength, len(upstream), tr.len())
	}
	return upstream, nil
}

func (hiddenHead) backward(signal, _ *mat.VecDense) *mat.VecDense {
	return mat.VecDenseCopyOf(signal)
}

func (hiddenHead) scoresTargets() bool {
	return false
}

// softmaxHead projects onto the vocabulary and applies softmax.
type softmaxHead struct {
	wv, bv *Parameter
}

func (s softmaxHead) emit(h *mat.VecDense) (*mat.VecDense, *mat.VecDense) {
	v := affine(s.wv.Tensor(), s.bv.Tensor(), h)
	return Softmax(v), v
}

func (s softmaxHead) score(y, target *mat.VecDense) (float64, *mat.VecDense, error) {
	loss, err := CrossEntropy(y, target)
	if err != nil {
		return 0, nil, err
	}
	return loss, CrossEntropyGrad(y, target), nil
}

func (s softmaxHead) signals(tr *trace, upstream []*mat.VecDense) ([]*mat.VecDense, error) {
	if upstream != nil {
		return nil, ErrUnexpectedSignal
	}
	if len(tr.errs) != tr.len() {
		return nil, fmt.Errorf("%w: %d recorded for %d steps", ErrMissingTargets, len(tr.errs), tr.len())
	}
	return tr.errs, nil
}

// backward accumulates dWv += dv·hᵀ and dbv += dv, and returns Wvᵀ·dv.
func (s softmaxHead) backward(dv, h *mat.VecDense) *mat.VecDense {
	s.wv.Grad().RankOne(s.wv.Grad(), 1, dv, h)
	addColumn(s.bv.Grad(), dv)

	_, hidden := s.wv.Dims()
	dh := mat.NewVecDense(hidden, nil)
	dh.MulVec(s.wv.Tensor().T(), dv)
	return dh
}

func (s softmaxHead) scoresTargets() bool {
	return true
}
