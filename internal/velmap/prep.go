// Public domain.

package velmap

import "math"

// Clip crops the map to within radius arcsec of the origin on both axes.
// Retained pixel, axis and uncertainty values are unchanged in content,
// only reduced in extent.  Assumes the conventional sky orientation,
// x axis descending and y axis ascending.
func (m *Map) Clip(radius float64) {
	xa := argminAbs(m.Xaxis, radius)
	xb := argminAbs(m.Xaxis, -radius)
	ya := argminAbs(m.Yaxis, radius)
	yb := argminAbs(m.Yaxis, -radius)

	nx := len(m.Xaxis)
	data := make([]float64, 0, (ya-yb)*(xb-xa))
	sigma := make([]float64, 0, (ya-yb)*(xb-xa))
	for i := yb; i < ya; i++ {
		row := i * nx
		data = append(data, m.Data[row+xa:row+xb]...)
		sigma = append(sigma, m.Sigma[row+xa:row+xb]...)
	}
	m.Data = data
	m.Sigma = sigma
	m.Xaxis = m.Xaxis[xa:xb]
	m.Yaxis = m.Yaxis[yb:ya]
	m.Vlsr = medianFinite(m.Data)
}

// Downsample subsamples both axes and both grids by the integer factor n,
// keeping every nth sample starting at offset n/2.
func (m *Map) Downsample(n int) {
	if n < 2 {
		return
	}
	n0 := n / 2
	nx := len(m.Xaxis)

	xaxis := subsample(m.Xaxis, n0, n)
	yaxis := subsample(m.Yaxis, n0, n)
	data := make([]float64, 0, len(xaxis)*len(yaxis))
	sigma := make([]float64, 0, len(xaxis)*len(yaxis))
	for i := n0; i < len(m.Yaxis); i += n {
		row := i * nx
		for j := n0; j < nx; j += n {
			data = append(data, m.Data[row+j])
			sigma = append(sigma, m.Sigma[row+j])
		}
	}
	m.Xaxis = xaxis
	m.Yaxis = yaxis
	m.Data = data
	m.Sigma = sigma
	m.Vlsr = medianFinite(m.Data)
}

// argminAbs returns the index of the axis value nearest v.
func argminAbs(axis []float64, v float64) int {
	best := 0
	bestd := math.Inf(1)
	for i, a := range axis {
		if d := math.Abs(a - v); d < bestd {
			best, bestd = i, d
		}
	}
	return best
}

func subsample(s []float64, n0, n int) []float64 {
	out := make([]float64, 0, (len(s)-n0+n-1)/n)
	for i := n0; i < len(s); i += n {
		out = append(out, s[i])
	}
	return out
}
