// Public domain.

package rmsolver

import "math"

// The deprojection pipeline, sky plane to emission surface:
//
//   1. offset the pixel axes by the center (x0, y0)
//   2. rotate the pair by -PA, position angle measured from the
//      receding major axis, so the y coordinate leads the rotation
//   3. stretch the axis orthogonal to the major axis by 1/cos(inc)
//   4. iterate the flared-surface correction to a self-consistent
//      (radius, azimuth) on the tilted surface
//
// Everything runs per pixel on flat row-major grids.  This is the inner
// loop of every likelihood call, so the grids stay raw float64 slices.

// diskPolar fills e.r, e.t, e.z with the surface polar coordinates of
// every pixel for the parameters p.
//
// Inclinations at or beyond 90° make step 3 singular; the resulting
// non-finite values propagate and are caught by the likelihood's finite
// check rather than guarded here.
func (e *Eval) diskPolar(p *Params) {
	s := e.solver
	sinPA, cosPA := math.Sincos(-p.PA.Rad())
	cosi := math.Cos(p.Inc.Rad())
	tani := math.Tan(p.Inc.Rad())

	// z0 = 0 is a razor-thin disk: the correction passes would all be
	// no-ops, so skip them.
	iter := s.SurfaceIterations
	if p.Z0 == 0 {
		iter = 0
	}

	k := 0
	for i := 0; i < s.ny; i++ {
		ysky := s.yaxis[i] - p.Y0
		for j := 0; j < s.nx; j++ {
			xsky := s.xaxis[j] - p.X0

			xmid := ysky*cosPA - xsky*sinPA
			ymid := (xsky*cosPA + ysky*sinPA) / cosi

			r := math.Hypot(ymid, xmid)
			t := math.Atan2(ymid, xmid)

			// Fixed-point refinement: the surface height moves the
			// effective y coordinate, which moves the radius the
			// height was evaluated at.  Each pass restarts from the
			// midplane y.
			for n := 0; n < iter; n++ {
				yt := ymid - p.surface(r)*p.Tilt*tani
				r = math.Hypot(yt, xmid)
				t = math.Atan2(yt, xmid)
			}

			e.r[k] = r
			e.t[k] = t
			e.z[k] = p.surface(r)
			k++
		}
	}
}

// DiskCoords returns the disk-frame coordinates of every pixel for the
// given geometry and near-side convention.
//
// Args:
//   g:       disk geometry
//   nearest: "north" or "south", case insensitive
//   frame:   "polar" or "cartesian", case insensitive
//
// Returns three row-major grids: (radius, azimuth, height) for the polar
// frame, (x, y, height) for the cartesian.  Lengths are in arcsec,
// azimuth in radians.  Height is always evaluated from the solved radius
// through the same surface function, never the midplane radius.
func (s *Solver) DiskCoords(g Geometry, nearest, frame string) (c1, c2, c3 []float64, err error) {
	fr, err := ParseFrame(frame)
	if err != nil {
		return nil, nil, nil, err
	}
	near, err := ParseNearSide(nearest)
	if err != nil {
		return nil, nil, nil, err
	}
	p := Params{Geometry: g, Tilt: near.Tilt()}
	e := s.NewEval(nil)
	e.diskPolar(&p)

	c1 = make([]float64, s.npix)
	c2 = make([]float64, s.npix)
	c3 = make([]float64, s.npix)
	if fr == FrameCartesian {
		for k := range c1 {
			sint, cost := math.Sincos(e.t[k])
			c1[k] = e.r[k] * cost
			c2[k] = e.r[k] * sint
			c3[k] = e.z[k]
		}
		return c1, c2, c3, nil
	}
	copy(c1, e.r)
	copy(c2, e.t)
	copy(c3, e.z)
	return c1, c2, c3, nil
}

// SkyCoords returns the polar sky-plane coordinates of every pixel
// offset from the center (x0, y0): radius in arcsec and the angle in
// radians measured from the y axis.
func (s *Solver) SkyCoords(x0, y0 float64) (r, t []float64) {
	r = make([]float64, s.npix)
	t = make([]float64, s.npix)
	k := 0
	for i := 0; i < s.ny; i++ {
		ysky := s.yaxis[i] - y0
		for j := 0; j < s.nx; j++ {
			xsky := s.xaxis[j] - x0
			r[k] = math.Hypot(ysky, xsky)
			t[k] = math.Atan2(xsky, ysky)
			k++
		}
	}
	return r, t
}

// pow, math.Pow with fast paths for the common flaring exponents.
func pow(x, y float64) float64 {
	switch y {
	case 1:
		return x
	case 2:
		return x * x
	}
	return math.Pow(x, y)
}
