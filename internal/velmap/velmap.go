// Public domain.

// Package velmap holds line-of-sight velocity maps: the data grid, its
// uncertainty companion, and the position axes reconstructed from header
// metadata.  It also provides the preprocessing used to speed fitting up,
// spatial clipping and integer downsampling, and a gob file codec for
// moving prepared maps between programs.
package velmap

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Map is a two dimensional line-of-sight velocity map over a regular
// pixel grid.  Data and Sigma are flat row-major grids, one row per
// Yaxis value.  After construction and optional preprocessing a Map is
// immutable for the lifetime of a fitting session.
type Map struct {
	Data  []float64 // line-of-sight velocity, m/s
	Sigma []float64 // per-pixel uncertainty, same shape, positive
	Xaxis []float64 // sky offset per column, arcsec
	Yaxis []float64 // sky offset per row, arcsec

	Dpix float64 // mean pixel scale of the x axis, arcsec

	// Synthesized beam.  Falls back to the pixel scale when the header
	// carries no beam.
	Bmaj, Bmin float64 // arcsec
	Bpa        float64 // deg

	Vlsr float64 // systemic velocity estimate, median of the data, m/s
}

// Axis is the header metadata describing one position axis.
type Axis struct {
	N     int     // pixel count
	Cdelt float64 // pixel increment, degrees
	Crpix float64 // reference pixel, 1 based
	Crval float64 // world value at the reference pixel, degrees
}

// Header carries the parsed map metadata needed to reconstruct position
// axes and beam.  Absolute selects celestial axis values, keeping the
// reference scaling and applying a cos(declination) correction to the
// first axis; otherwise axes are recentered on the reference pixel and
// expressed as arcsec offsets.
type Header struct {
	Axis1, Axis2 Axis
	Absolute     bool

	// Beam axes in degrees, position angle in degrees.  HasBeam false
	// means the map carries no beam information.
	HasBeam          bool
	Bmaj, Bmin, Bpa float64
}

// axis builds the position axis values for axis a ∈ {1, 2}.
func (h *Header) axis(a int) ([]float64, error) {
	if a != 1 && a != 2 {
		return nil, fmt.Errorf("axis must be 1 or 2")
	}
	ax := h.Axis1
	if a == 2 {
		ax = h.Axis2
	}
	del := ax.Cdelt
	if a == 1 && h.Absolute {
		del /= math.Cos(h.Axis2.Crval * math.Pi / 180)
	}
	pix := ax.Crpix
	ref := ax.Crval
	if !h.Absolute {
		ref = 0
		pix -= 0.5
	}
	axis := make([]float64, ax.N)
	for i := range axis {
		axis[i] = ref + (float64(i)-pix+1)*del
		if !h.Absolute {
			axis[i] *= 3600
		}
	}
	return axis, nil
}

// New builds a Map from a data grid and its header metadata.  sigma may
// be nil, in which case the fractional default applies (see uncert.go).
func New(data, sigma []float64, h Header) (*Map, error) {
	if len(data) != h.Axis1.N*h.Axis2.N {
		return nil, fmt.Errorf("data length %d does not match %d x %d axes",
			len(data), h.Axis1.N, h.Axis2.N)
	}
	if sigma == nil {
		sigma = defaultSigma(data)
	} else if len(sigma) != len(data) {
		return nil, fmt.Errorf("uncertainty length %d does not match data length %d",
			len(sigma), len(data))
	}
	m := &Map{Data: data, Sigma: sigma}
	var err error
	if m.Xaxis, err = h.axis(1); err != nil {
		return nil, err
	}
	if m.Yaxis, err = h.axis(2); err != nil {
		return nil, err
	}
	m.Dpix = meanAbsDiff(m.Xaxis)
	if h.HasBeam {
		m.Bmaj = h.Bmaj * 3600
		m.Bmin = h.Bmin * 3600
		m.Bpa = h.Bpa
	} else {
		// no beam in the header: the pixel scale stands in
		m.Bmaj = m.Dpix
		m.Bmin = m.Dpix
	}
	floorSigma(m.Sigma, m.Data)
	m.Vlsr = medianFinite(m.Data)
	return m, nil
}

// Nx returns the column count.
func (m *Map) Nx() int { return len(m.Xaxis) }

// Ny returns the row count.
func (m *Map) Ny() int { return len(m.Yaxis) }

func meanAbsDiff(axis []float64) float64 {
	if len(axis) < 2 {
		return 0
	}
	var sum float64
	for i := 1; i < len(axis); i++ {
		sum += math.Abs(axis[i] - axis[i-1])
	}
	return sum / float64(len(axis)-1)
}

// medianFinite returns the median of the finite values of g, or 0 when
// none are finite.
func medianFinite(g []float64) float64 {
	s := make([]float64, 0, len(g))
	for _, v := range g {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			s = append(s, v)
		}
	}
	if len(s) == 0 {
		return 0
	}
	sort.Float64s(s)
	return stat.Quantile(0.5, stat.Empirical, s, nil)
}
