// Public domain.

package velmap

import (
	"log"
	"math"
)

// SigmaFrac is the fractional uncertainty assumed when a map comes
// without its own uncertainty grid.
const SigmaFrac = 0.1

// defaultSigma builds the fallback uncertainty grid, a fixed fraction of
// the data magnitude.  Missing uncertainties are recoverable, so this
// logs a notice rather than failing.
func defaultSigma(data []float64) []float64 {
	log.Println("no uncertainties found, assuming uncertainties of 10%")
	sigma := make([]float64, len(data))
	for k, d := range data {
		sigma[k] = SigmaFrac * math.Abs(d)
	}
	return sigma
}

// floorSigma sanitizes an uncertainty grid in place.  Inverse-variance
// weighting needs strictly positive uncertainties; a non-finite or
// non-positive entry is replaced with the fractional default for its data
// value, falling back to the grid's median valid uncertainty where the
// data value gives nothing positive either.
func floorSigma(sigma, data []float64) {
	med := medianPositive(sigma)
	for k, e := range sigma {
		if e > 0 && !math.IsInf(e, 0) {
			continue
		}
		if d := SigmaFrac * math.Abs(data[k]); d > 0 && !math.IsInf(d, 0) {
			sigma[k] = d
			continue
		}
		sigma[k] = med
	}
}

func medianPositive(g []float64) float64 {
	s := make([]float64, 0, len(g))
	for _, v := range g {
		if v > 0 && !math.IsInf(v, 0) {
			s = append(s, v)
		}
	}
	if len(s) == 0 {
		return 1
	}
	m := medianFinite(s)
	if m > 0 {
		return m
	}
	return 1
}
