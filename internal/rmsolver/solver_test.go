// Public domain.

package rmsolver_test

import (
	"math"
	"testing"

	"github.com/soniakeys/rotmap/internal/rmsolver"
	"github.com/soniakeys/rotmap/internal/velmap"
	"github.com/soniakeys/unit"
)

// selfMap synthesizes a map from the default parameter table so that the
// table evaluates against its own noiseless data.
func selfMap(t *testing.T) (*rmsolver.Solver, rmsolver.Table) {
	x := []float64{1.5, .5, -.5, -1.5}
	y := []float64{-1.5, -.5, .5, 1.5}
	table := rmsolver.DefaultTable(rmsolver.NearNorth)
	p := table.Resolve(nil)
	data, err := rmsolver.NewFromAxes(x, y).Keplerian(p, "north")
	if err != nil {
		t.Fatal(err)
	}
	sigma := make([]float64, len(data))
	for k := range sigma {
		sigma[k] = 1
	}
	m := &velmap.Map{
		Data:  data,
		Sigma: sigma,
		Xaxis: x,
		Yaxis: y,
		Vlsr:  p.Vlsr * 1e3,
	}
	return rmsolver.New(m), table
}

// A model evaluated against its own synthesized data has residual zero
// in every pixel, so the log likelihood is exactly zero.
func TestSelfLikelihood(t *testing.T) {
	s, table := selfMap(t)
	e := s.NewEval(table)
	if lp := e.LnProb(nil); lp != 0 {
		t.Fatal("self likelihood:", lp)
	}
}

var priorTestCases = []struct {
	param string
	value float64
}{
	{"x0", .6},
	{"x0", -.6},
	{"y0", .6},
	{"inc", 0},
	{"inc", 90},
	{"pa", 360},
	{"pa", -360},
	{"mstar", 0},
	{"mstar", 5},
	{"vlsr", 1.5}, // km/s, 1500 m/s from the map's systemic estimate
	{"z0", -.1},
	{"z0", 1},
	{"psi", 0},
	{"psi", 2},
}

func TestPriorBounds(t *testing.T) {
	s, _ := selfMap(t)
	for _, tc := range priorTestCases {
		table := rmsolver.DefaultTable(rmsolver.NearNorth)
		table[tc.param] = rmsolver.Free(0)
		e := s.NewEval(table)
		if lp := e.LnProb([]float64{tc.value}); !math.IsInf(lp, -1) {
			t.Errorf("%s = %g not rejected: %g", tc.param, tc.value, lp)
		}
	}
	// just inside every bound
	table := rmsolver.DefaultTable(rmsolver.NearNorth)
	table["x0"] = rmsolver.Free(0)
	e := s.NewEval(table)
	if lp := e.LnProb([]float64{.4}); math.IsInf(lp, -1) {
		t.Fatal("in-bounds point rejected")
	}
}

// The tilt bound applies only when tilt is fit; the conventional ±1 from
// a near-side choice always passes.
func TestTiltPrior(t *testing.T) {
	s, _ := selfMap(t)

	table := rmsolver.DefaultTable(rmsolver.NearSouth)
	table["x0"] = rmsolver.Free(0)
	e := s.NewEval(table)
	if lp := e.LnProb([]float64{0}); math.IsInf(lp, -1) {
		t.Fatal("conventional tilt -1 rejected")
	}

	table = rmsolver.DefaultTable(rmsolver.NearNorth)
	table["tilt"] = rmsolver.Free(0)
	if !table.TiltFree() {
		t.Fatal("TiltFree")
	}
	e = s.NewEval(table)
	if lp := e.LnProb([]float64{1}); !math.IsInf(lp, -1) {
		t.Fatal("free tilt 1 not rejected")
	}
	if lp := e.LnProb([]float64{.5}); math.IsInf(lp, -1) {
		t.Fatal("free tilt .5 rejected")
	}
}

// Masked pixels, non-finite data here, carry no weight in the likelihood.
func TestMaskedPixels(t *testing.T) {
	s, table := selfMap(t)
	e := s.NewEval(table)
	want := e.LnProb(nil)

	x := []float64{1.5, .5, -.5, -1.5}
	y := []float64{-1.5, -.5, .5, 1.5}
	p := table.Resolve(nil)
	data, err := rmsolver.NewFromAxes(x, y).Keplerian(p, "north")
	if err != nil {
		t.Fatal(err)
	}
	sigma := make([]float64, len(data))
	for k := range sigma {
		sigma[k] = 1
	}
	data[5] = math.NaN()
	sigma[10] = 0
	m := &velmap.Map{Data: data, Sigma: sigma, Xaxis: x, Yaxis: y}
	e = rmsolver.New(m).NewEval(table)
	if lp := e.LnProb(nil); lp != want {
		t.Fatal("masked pixels contributed:", lp, want)
	}
}

func TestTableResolve(t *testing.T) {
	table := rmsolver.DefaultTable(rmsolver.NearNorth)
	table["mstar"] = rmsolver.Free(0)
	table["x0"] = rmsolver.Free(1)
	if n := table.NFree(); n != 2 {
		t.Fatal("NFree:", n)
	}
	p := table.Resolve([]float64{2.5, .3})
	if p.Mstar != 2.5 || p.X0 != .3 {
		t.Fatal("free params:", p.Mstar, p.X0)
	}
	if p.Inc != unit.AngleFromDeg(45) || p.Dist != 100 || p.Tilt != 1 {
		t.Fatal("fixed defaults:", p.Inc.Deg(), p.Dist, p.Tilt)
	}
}

func TestParseNearSide(t *testing.T) {
	if n, err := rmsolver.ParseNearSide("South"); err != nil || n != rmsolver.NearSouth {
		t.Fatal(n, err)
	}
	if n, err := rmsolver.ParseNearSide("NORTH"); err != nil || n != rmsolver.NearNorth {
		t.Fatal(n, err)
	}
	if _, err := rmsolver.ParseNearSide("east"); err == nil {
		t.Fatal("bad near side accepted")
	}
	if rmsolver.NearSouth.Tilt() != -1 || rmsolver.NearNorth.Tilt() != 1 {
		t.Fatal("tilt signs")
	}
}
