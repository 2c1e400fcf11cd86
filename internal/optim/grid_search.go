// Package optim tunes controller gains by exhaustive grid search.
package optim

import (
	"context"
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/chantakan/2d-drone-sim/internal/control"
)

// Grid is the candidate set for each gain axis.
type Grid struct {
	Kp []float64
	Ki []float64
	Kd []float64
}

// Size is the number of combinations Search will evaluate.
func (g Grid) Size() int {
	return len(g.Kp) * len(g.Ki) * len(g.Kd)
}

// Eval scores one candidate; lower is better. Evaluations that return
// an error are skipped.
type Eval func(control.Gains) (float64, error)

// Candidate pairs gains with their score.
type Candidate struct {
	Gains control.Gains
	Score float64
}

// ErrNoCandidates means every evaluation failed or the grid was empty.
var ErrNoCandidates = errors.New("optim: no candidate evaluated")

// Search tries every combination in the grid and returns the best
// scoring candidate. Cancelling the context stops the sweep between
// evaluations.
func Search(ctx context.Context, grid Grid, eval Eval) (Candidate, error) {
	best := Candidate{Score: math.Inf(1)}
	evaluated := 0

	for _, kp := range grid.Kp {
		for _, ki := range grid.Ki {
			for _, kd := range grid.Kd {
				select {
				case <-ctx.Done():
					return best, ctx.Err()
				default:
				}

				g := control.Gains{Kp: kp, Ki: ki, Kd: kd}
				score, err := eval(g)
				if err != nil {
					continue
				}
				evaluated++
				if score < best.Score {
					best = Candidate{Gains: g, Score: score}
				}
			}
		}
	}

	if evaluated == 0 {
		return best, ErrNoCandidates
	}
	return best, nil
}

// Span returns n evenly spaced candidates over [lo, hi].
func Span(lo, hi float64, n int) []float64 {
	if n <= 1 {
		return []float64{lo}
	}
	return floats.Span(make([]float64, n), lo, hi)
}

// Around scales a base gain by each factor, for grids centered on a
// known-good value. A zero base collapses to {0}.
func Around(base float64, factors ...float64) []float64 {
	if base == 0 {
		return []float64{0}
	}
	vals := make([]float64, len(factors))
	for i, f := range factors {
		vals[i] = base * f
	}
	return vals
}
