// Public domain.

// Package rmsolver implements the rotation-map model evaluation engine:
// the sky-to-disk coordinate deprojection, the Keplerian velocity field
// synthesis built on it, and the prior-gated likelihood comparison with
// an observed map.
//
// A Solver is immutable once constructed and may be shared between
// goroutines.  Each goroutine evaluating likelihoods owns an Eval, a
// workspace of scratch grids reused across calls.
package rmsolver

import (
	"math"

	"github.com/soniakeys/rotmap/internal/velmap"
)

// DefaultSurfaceIterations is the pass count of the flared-surface
// fixed-point iteration.  Five passes is an empirical speed/stability
// trade-off rather than a convergence guarantee; see TestSurfaceConverges.
const DefaultSurfaceIterations = 5

// Solver holds the observed map data and settings needed to evaluate the
// rotation-map model.
type Solver struct {
	xaxis, yaxis []float64 // sky offsets, arcsec
	nx, ny, npix int
	data         []float64 // m/s, masked pixels zeroed
	ivar         []float64 // inverse variance weights, masked pixels zero
	vlsr         float64   // systemic estimate from the data, m/s

	// SurfaceIterations is the pass count of the flared-surface solver.
	// Change it only before handing the Solver to concurrent callers.
	SurfaceIterations int
}

// New creates a Solver for the loaded map.  Pixels with non-finite data
// or without a positive uncertainty get zero weight in the likelihood.
func New(m *velmap.Map) *Solver {
	s := NewFromAxes(m.Xaxis, m.Yaxis)
	s.data = make([]float64, s.npix)
	s.ivar = make([]float64, s.npix)
	for k, d := range m.Data {
		e := m.Sigma[k]
		if !finite(d) || !(e > 0) || !finite(e) {
			continue
		}
		s.data[k] = d
		s.ivar[k] = 1 / (e * e)
	}
	s.vlsr = m.Vlsr
	return s
}

// NewFromAxes creates a Solver over bare position axes, with no observed
// data attached.  Coordinate and velocity synthesis work as usual; the
// likelihood methods are meaningless on such a Solver.
func NewFromAxes(xaxis, yaxis []float64) *Solver {
	return &Solver{
		xaxis: xaxis,
		yaxis: yaxis,
		nx:    len(xaxis),
		ny:    len(yaxis),
		npix:  len(xaxis) * len(yaxis),

		SurfaceIterations: DefaultSurfaceIterations,
	}
}

// Vlsr returns the systemic velocity estimated from the map data, m/s.
func (s *Solver) Vlsr() float64 { return s.vlsr }

// Eval is the per-goroutine workspace for repeated model evaluations.
// Scratch grids live here rather than as locals so that the many
// likelihood calls of an optimization or sampling loop allocate nothing.
type Eval struct {
	solver *Solver
	table  Table

	r, t, z []float64 // disk-frame polar coordinates
	model   []float64 // synthesized line-of-sight velocities
}

// NewEval allocates a workspace bound to the solver and a parameter
// table.  The table may be nil if only the coordinate and velocity
// methods are used.
func (s *Solver) NewEval(t Table) *Eval {
	return &Eval{
		solver: s,
		table:  t,
		r:      make([]float64, s.npix),
		t:      make([]float64, s.npix),
		z:      make([]float64, s.npix),
		model:  make([]float64, s.npix),
	}
}

// LnProb returns the log posterior probability of the free-parameter
// vector theta: zero-or-rejected uniform priors plus the chi-squared
// log-likelihood.  Any parameter set outside the prior bounds, and any
// non-finite likelihood of whatever origin, yields -Inf.
func (e *Eval) LnProb(theta []float64) float64 {
	p := e.table.Resolve(theta)
	if math.IsInf(e.solver.lnPrior(&p, e.table.TiltFree()), -1) {
		return math.Inf(-1)
	}
	return e.lnLike(&p)
}

// lnPrior, uniform and uninformative.  The tilt bound applies only when
// tilt is fit as a free parameter; a tilt derived from the near-side
// convention is exactly ±1 by construction.
func (s *Solver) lnPrior(p *Params, tiltFree bool) float64 {
	reject := math.Inf(-1)
	if math.Abs(p.X0) > 0.5 {
		return reject
	}
	if math.Abs(p.Y0) > 0.5 {
		return reject
	}
	if d := p.Inc.Deg(); d <= 0 || d >= 90 {
		return reject
	}
	if d := p.PA.Deg(); d <= -360 || d >= 360 {
		return reject
	}
	if p.Mstar <= 0 || p.Mstar >= 5 {
		return reject
	}
	if math.Abs(s.vlsr-p.Vlsr*1e3) > 1e3 {
		return reject
	}
	if p.Z0 < 0 || p.Z0 >= 1 {
		return reject
	}
	if p.Psi <= 0 || p.Psi >= 2 {
		return reject
	}
	if tiltFree && (p.Tilt <= -1 || p.Tilt >= 1) {
		return reject
	}
	return 0
}

// lnLike, simple chi-squared likelihood with inverse-variance weights.
func (e *Eval) lnLike(p *Params) float64 {
	e.keplerian(p)
	s := e.solver
	var sum float64
	for k, m := range e.model {
		res := s.data[k] - m
		sum += res * res * s.ivar[k]
	}
	ll := -0.5 * sum
	if math.IsNaN(ll) || math.IsInf(ll, 0) {
		return math.Inf(-1)
	}
	return ll
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
