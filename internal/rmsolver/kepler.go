// Public domain.

package rmsolver

import (
	"math"

	"github.com/soniakeys/rotmap/internal/astro"
)

// keplerian fills e.model with the projected line-of-sight Keplerian
// velocity field, m/s.  The rotation speed includes the correction for
// emission arising above the midplane: at height z the circular speed is
// sqrt(G M r² / (r²+z²)^(3/2)), slower than the midplane value.
func (e *Eval) keplerian(p *Params) {
	e.diskPolar(p)
	sini := math.Sin(p.Inc.Rad())
	mkg := p.Mstar * astro.SolarMass
	vsys := p.Vlsr * 1e3 // fit parameter is km/s, the map is m/s
	for k, r := range e.r {
		rm := astro.MetresFromArcsec(r, p.Dist)
		zm := astro.MetresFromArcsec(e.z[k], p.Dist)
		vkep := astro.KeplerianSpeed(rm, zm, mkg)
		e.model[k] = vkep*sini*math.Cos(e.t[k]) + vsys
	}
}

// Keplerian synthesizes the projected line-of-sight velocity field for
// the given parameters and near-side convention, in m/s on the solver's
// pixel grid.  The tilt sign in p is overridden by the convention.
func (s *Solver) Keplerian(p Params, nearest string) ([]float64, error) {
	near, err := ParseNearSide(nearest)
	if err != nil {
		return nil, err
	}
	p.Tilt = near.Tilt()
	e := s.NewEval(nil)
	e.keplerian(&p)
	return append([]float64(nil), e.model...), nil
}
