// Public domain.

// Package ensemble implements an affine invariant Markov chain Monte
// Carlo sampler using the Goodman-Weare stretch move.
//
// The ensemble of walkers is split into two halves.  Each half is
// advanced against the frozen other half, which makes every walker
// within a half independent of its siblings for that half-step, so a
// pool of workers can advance them concurrently.  Each worker owns its
// own log-probability closure; each walker owns its random stream, so a
// fixed-seed run is repeatable whatever the scheduling.
package ensemble

import (
	"fmt"
	"math"
	"runtime"
	"sync"

	"golang.org/x/exp/rand"
)

// LnProb evaluates the log posterior probability of a free-parameter
// vector.  Implementations need not be safe for concurrent use; the
// sampler requests one per worker through a factory.
type LnProb func(theta []float64) float64

// DefaultStretch is the conventional stretch scale parameter a = 2.
const DefaultStretch = 2

// Sampler advances an ensemble of walkers through stretch moves.
type Sampler struct {
	ndim, nwalkers int
	stretch        float64
	newProb        func() LnProb
	rnd            *rand.Rand

	pos  [][]float64 // current walker positions
	lnp  []float64   // current walker log probabilities
	best []float64   // highest probability position seen
	bestLnp float64

	chain [][]float64 // retained post-burn samples, flattened over walkers
}

// New creates a sampler of nwalkers walkers over an ndim dimensional
// space.  newProb is called once per worker to obtain an independent
// log-probability evaluator.  src seeds all randomness; a fixed-seed
// source makes a run repeatable.
func New(ndim, nwalkers int, newProb func() LnProb, src rand.Source) (*Sampler, error) {
	if ndim < 1 {
		return nil, fmt.Errorf("ensemble: ndim must be positive")
	}
	if nwalkers < 2*ndim || nwalkers%2 != 0 {
		return nil, fmt.Errorf(
			"ensemble: need an even number of walkers, at least %d for %d dimensions",
			2*ndim, ndim)
	}
	return &Sampler{
		ndim:     ndim,
		nwalkers: nwalkers,
		stretch:  DefaultStretch,
		newProb:  newProb,
		rnd:      rand.New(src),
		bestLnp:  math.Inf(-1),
	}, nil
}

// Init scatters the walkers around p0 with the given per-dimension
// scale and evaluates their starting probabilities.
func (s *Sampler) Init(p0, scatter []float64) {
	prob := s.newProb()
	s.pos = make([][]float64, s.nwalkers)
	s.lnp = make([]float64, s.nwalkers)
	for w := range s.pos {
		x := make([]float64, s.ndim)
		for d := range x {
			x[d] = p0[d] + scatter[d]*s.rnd.NormFloat64()
		}
		s.pos[w] = x
		s.lnp[w] = prob(x)
	}
}

// Run advances the ensemble steps steps, retaining samples after the
// first burn steps.  Init must have been called.
func (s *Sampler) Run(steps, burn int) {
	half := s.nwalkers / 2
	nw := runtime.GOMAXPROCS(0)
	if nw > half {
		nw = half
	}

	// per-worker evaluators and proposal buffers
	probs := make([]LnProb, nw)
	bufs := make([][]float64, nw)
	for i := 0; i < nw; i++ {
		probs[i] = s.newProb()
		bufs[i] = make([]float64, s.ndim)
	}
	// per-walker random streams
	rnds := make([]*rand.Rand, s.nwalkers)
	for k := range rnds {
		rnds[k] = rand.New(rand.NewSource(s.rnd.Uint64()))
	}

	for step := 0; step < steps; step++ {
		for _, lo := range [2]int{0, half} {
			ch := make(chan int)
			var wg sync.WaitGroup
			for i := 0; i < nw; i++ {
				wg.Add(1)
				go func(prob LnProb, y []float64) {
					defer wg.Done()
					for k := range ch {
						s.advance(k, lo, half, prob, rnds[k], y)
					}
				}(probs[i], bufs[i])
			}
			for k := lo; k < lo+half; k++ {
				ch <- k
			}
			close(ch)
			wg.Wait()
		}
		for w, lp := range s.lnp {
			if lp > s.bestLnp {
				s.bestLnp = lp
				s.best = append([]float64(nil), s.pos[w]...)
			}
		}
		if step >= burn {
			for _, p := range s.pos {
				s.chain = append(s.chain, append([]float64(nil), p...))
			}
		}
	}
}

// advance applies one stretch move to walker k.  The complementary half
// ensemble begins at index (lo+half) mod nwalkers and is frozen for the
// duration of this half-step.
func (s *Sampler) advance(k, lo, half int, prob LnProb, rnd *rand.Rand, y []float64) {
	comp := (lo + half) % s.nwalkers
	j := comp + rnd.Intn(half)

	a := s.stretch
	z := (a-1)*rnd.Float64() + 1
	z = z * z / a

	for d := 0; d < s.ndim; d++ {
		y[d] = s.pos[j][d] + z*(s.pos[k][d]-s.pos[j][d])
	}
	lp := prob(y)
	logq := float64(s.ndim-1)*math.Log(z) + lp - s.lnp[k]
	if logq >= 0 || math.Log(rnd.Float64()) < logq {
		copy(s.pos[k], y)
		s.lnp[k] = lp
	}
}

// Chain returns the retained post-burn samples, one slice per sample.
// The backing arrays are owned by the sampler.
func (s *Sampler) Chain() [][]float64 { return s.chain }

// Best returns the highest probability position seen and its log
// probability.
func (s *Sampler) Best() ([]float64, float64) { return s.best, s.bestLnp }

// Column copies dimension d of the retained chain into a flat slice,
// handy for quantile summaries.
func (s *Sampler) Column(d int) []float64 {
	col := make([]float64, len(s.chain))
	for i, x := range s.chain {
		col[i] = x[d]
	}
	return col
}
