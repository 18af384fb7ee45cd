package xfm

import (
	"sync/atomic"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/goresample/utils"
)

// Stack applies its stages in push order. It is safe for concurrent Apply
// once built.
type Stack struct {
	stages []Xfm
	warned atomic.Bool
}

func NewStack(stages ...Xfm) (s *Stack) {
	s = &Stack{}
	for _, x := range stages {
		s.Push(x)
	}
	return
}

func (s *Stack) Push(x Xfm) { s.stages = append(s.stages, x) }

func (s *Stack) Len() int { return len(s.stages) }

func (s *Stack) Stage(i int) Xfm { return s.stages[i] }

// Xfm wraps the stack as a single transform.
func (s *Stack) Xfm() Xfm { return Xfm{Type: STACK, stack: s} }

// Apply runs every stage, even after one reports an invalid point, and is
// valid only when all stages are. The first invalid point is logged once.
func (s *Stack) Apply(p r3.Vec, frame int) (q r3.Vec, valid bool) {
	q, valid = p, true
	for _, x := range s.stages {
		var ok bool
		q, ok = x.Apply(q, frame)
		valid = valid && ok
	}
	if !valid && s.warned.CompareAndSwap(false, true) {
		utils.LogWarnf("point %v transformed outside the domain of a warpfield, such points are reported invalid\n", p)
	}
	return
}

// InvertForResampling maps output space back to input space: stage order is
// reversed and affines inverted. Warpfields are kept as they are.
func (s *Stack) InvertForResampling() (R *Stack, err error) { return s.invert(true) }

func (s *Stack) invert(keepWarps bool) (R *Stack, err error) {
	R = &Stack{stages: make([]Xfm, 0, len(s.stages))}
	for n := len(s.stages) - 1; n >= 0; n-- {
		var (
			x   = s.stages[n]
			inv Xfm
		)
		switch {
		case x.Type == WARPFIELD && keepWarps:
			inv = x
		case x.Type == STACK:
			var sub *Stack
			if sub, err = x.stack.invert(keepWarps); err != nil {
				return
			}
			inv = sub.Xfm()
		default:
			if inv, err = x.Inverse(); err != nil {
				return
			}
		}
		R.Push(inv)
	}
	return
}

// Frames is the length of the longest affine series in the stack, 0 when
// there is none.
func (s *Stack) Frames() (n int) {
	for _, x := range s.stages {
		f := x.Frames()
		if x.Type == STACK {
			f = x.stack.Frames()
		}
		n = max(n, f)
	}
	return
}
