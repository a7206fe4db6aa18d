// Public domain.

package rmsolver_test

import (
	"math"
	"testing"

	"github.com/soniakeys/rotmap/internal/rmsolver"
	"github.com/soniakeys/unit"
)

// A razor-thin disk needs no surface iteration, so the deprojection of a
// single pixel can be checked against hand-worked values: offset by the
// center, rotate by -PA with y leading, stretch by 1/cos(inc).
func TestDiskCoordsMidplane(t *testing.T) {
	s := rmsolver.NewFromAxes([]float64{1}, []float64{.5})
	g := rmsolver.Geometry{
		X0:  .25,
		Y0:  -.5,
		Inc: unit.AngleFromDeg(60),
		PA:  unit.AngleFromDeg(90),
	}
	// sky offsets (.75, 1) rotate to disk (x, y) = (.75, -2)
	r, th, z, err := s.DiskCoords(g, "north", "polar")
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(r[0]-2.1360009363293826) > 1e-12 {
		t.Fatal("r:", r[0])
	}
	if math.Abs(th[0]+1.2120256565243244) > 1e-12 {
		t.Fatal("t:", th[0])
	}
	if z[0] != 0 {
		t.Fatal("z:", z[0])
	}
}

// Face-on and flat, the deprojection must collapse to the plain sky
// hypotenuse: rotation preserves the norm and there is nothing to
// stretch or correct.
func TestFaceOnFlat(t *testing.T) {
	x := []float64{1.5, .5, -.5, -1.5}
	y := []float64{-1, 0, 1}
	s := rmsolver.NewFromAxes(x, y)
	g := rmsolver.Geometry{PA: unit.AngleFromDeg(25)}
	r, _, z, err := s.DiskCoords(g, "north", "polar")
	if err != nil {
		t.Fatal(err)
	}
	rsky, _ := s.SkyCoords(0, 0)
	for k := range r {
		if math.Abs(r[k]-rsky[k]) > 1e-12 {
			t.Fatal("r at", k, r[k], rsky[k])
		}
		if z[k] != 0 {
			t.Fatal("z at", k)
		}
	}
}

// TestSurfaceConverges checks the flared-surface fixed point: after the
// default pass count the solved coordinates must satisfy the surface
// equation y = ymid - z0 r^psi tan(inc) to well under a pixel.
func TestSurfaceConverges(t *testing.T) {
	s := rmsolver.NewFromAxes([]float64{1}, []float64{1.5})
	g := rmsolver.Geometry{
		Inc: unit.AngleFromDeg(30),
		PA:  unit.AngleFromDeg(0),
		Z0:  .3,
		Psi: 1,
	}
	r, th, z, err := s.DiskCoords(g, "north", "polar")
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(r[0]-1.7268606326248217) > 1e-12 {
		t.Fatal("r:", r[0])
	}
	if math.Abs(th[0]-0.5183692939041029) > 1e-12 {
		t.Fatal("t:", th[0])
	}
	// height comes from the solved radius
	if math.Abs(z[0]-.3*r[0]) > 1e-15 {
		t.Fatal("z:", z[0])
	}
	// ymid for this pixel at PA = 0 is xsky / cos(inc)
	ymid := 1 / math.Cos(unit.AngleFromDeg(30).Rad())
	yt := r[0] * math.Sin(th[0])
	want := ymid - .3*r[0]*math.Tan(unit.AngleFromDeg(30).Rad())
	if resid := math.Abs(yt - want); resid > 1e-5 {
		t.Fatal("fixed point residual:", resid)
	}
}

// Flipping the near side mirrors the flared radius field across the
// major axis, exactly, and changes it at off-axis pixels.
func TestNearSideMirror(t *testing.T) {
	x := []float64{2, 1, 0, -1, -2}
	y := []float64{-2, -1, 0, 1, 2}
	s := rmsolver.NewFromAxes(x, y)
	g := rmsolver.Geometry{
		Inc: unit.AngleFromDeg(30),
		PA:  unit.AngleFromDeg(0),
		Z0:  .3,
		Psi: 1,
	}
	rn, _, _, err := s.DiskCoords(g, "north", "polar")
	if err != nil {
		t.Fatal(err)
	}
	rs, _, _, err := s.DiskCoords(g, "south", "polar")
	if err != nil {
		t.Fatal(err)
	}
	nx := len(x)
	for i := 0; i < len(y); i++ {
		for j := 0; j < nx; j++ {
			if rn[i*nx+j] != rs[i*nx+nx-1-j] {
				t.Fatal("mirror broken at", i, j)
			}
		}
	}
	// same pixel, different side: the fields must actually differ
	if rn[1*nx+0] == rs[1*nx+0] {
		t.Fatal("near side has no effect")
	}
}

// The cartesian frame is the polar one resolved through cos/sin.
func TestFrameConsistency(t *testing.T) {
	x := []float64{1.5, .5, -.5, -1.5}
	y := []float64{-1, 0, 1}
	s := rmsolver.NewFromAxes(x, y)
	g := rmsolver.Geometry{
		X0:  .1,
		Y0:  -.2,
		Inc: unit.AngleFromDeg(47),
		PA:  unit.AngleFromDeg(123),
		Z0:  .2,
		Psi: 1.3,
	}
	r, th, zp, err := s.DiskCoords(g, "south", "polar")
	if err != nil {
		t.Fatal(err)
	}
	cx, cy, zc, err := s.DiskCoords(g, "south", "cartesian")
	if err != nil {
		t.Fatal(err)
	}
	for k := range r {
		if math.Abs(cx[k]-r[k]*math.Cos(th[k])) > 1e-12 {
			t.Fatal("x at", k)
		}
		if math.Abs(cy[k]-r[k]*math.Sin(th[k])) > 1e-12 {
			t.Fatal("y at", k)
		}
		if math.Abs(math.Hypot(cx[k], cy[k])-r[k]) > 1e-12 {
			t.Fatal("radius at", k)
		}
		if zc[k] != zp[k] {
			t.Fatal("z at", k)
		}
	}
}

func TestDiskCoordsValidation(t *testing.T) {
	s := rmsolver.NewFromAxes([]float64{1, 0}, []float64{0, 1})
	var g rmsolver.Geometry
	if _, _, _, err := s.DiskCoords(g, "nearest", "polar"); err == nil {
		t.Fatal("bad near side accepted")
	}
	if _, _, _, err := s.DiskCoords(g, "north", "cylindrical"); err == nil {
		t.Fatal("bad frame accepted")
	}
}

func TestSkyCoords(t *testing.T) {
	s := rmsolver.NewFromAxes([]float64{3}, []float64{4})
	r, th := s.SkyCoords(0, 0)
	if r[0] != 5 {
		t.Fatal("r:", r[0])
	}
	// angle from the y axis
	if math.Abs(th[0]-math.Atan2(3, 4)) > 1e-15 {
		t.Fatal("t:", th[0])
	}
	r, _ = s.SkyCoords(3, 4)
	if r[0] != 0 {
		t.Fatal("centered r:", r[0])
	}
}
