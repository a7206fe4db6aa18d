// Public domain.

package rmsolver

import (
	"fmt"
	"strings"

	"github.com/soniakeys/unit"
)

// Geometry holds the geometric parameters locating the disk on the sky
// and shaping its emission surface.
type Geometry struct {
	X0, Y0 float64    // sky-plane center offset, arcsec
	Inc    unit.Angle // inclination
	PA     unit.Angle // position angle, from the receding major axis
	Z0     float64    // emission surface height at r = 1″, arcsec
	Psi    float64    // flaring power
}

// Physical holds the parameters of the central star and the systemic
// motion.
type Physical struct {
	Mstar float64 // stellar mass, solar masses
	Dist  float64 // distance, parsecs
	Vlsr  float64 // systemic velocity, km/s
}

// Params is the full parameter set for one model evaluation.
//
// Tilt is the near-side tilt sign applied to the flared-surface solver.
// It is ±1 when derived from a NearSide convention, or a continuous value
// in (-1, 1) when fit as a free degeneracy parameter.
type Params struct {
	Geometry
	Physical
	Tilt float64
}

// surface evaluates the emission surface height z(r) = z0·r^psi,
// both in arcsec.
func (p *Params) surface(r float64) float64 {
	return p.Z0 * pow(r, p.Psi)
}

// NearSide resolves the two-fold near/far ambiguity of a flared surface.
// It is a genuine degeneracy of a single velocity map and must always be
// chosen explicitly.
type NearSide int

const (
	NearNorth NearSide = iota
	NearSouth
)

// ParseNearSide matches a near-side convention case insensitively.
func ParseNearSide(s string) (NearSide, error) {
	switch strings.ToLower(s) {
	case "north":
		return NearNorth, nil
	case "south":
		return NearSouth, nil
	}
	return 0, fmt.Errorf("either %q or %q must be closer", "north", "south")
}

// Tilt returns the surface tilt sign for the convention, +1 for north.
func (n NearSide) Tilt() float64 {
	if n == NearSouth {
		return -1
	}
	return 1
}

func (n NearSide) String() string {
	if n == NearSouth {
		return "south"
	}
	return "north"
}

// Frame selects the disk-frame representation returned by DiskCoords.
type Frame int

const (
	FramePolar Frame = iota
	FrameCartesian
)

// ParseFrame matches a frame name case insensitively.
func ParseFrame(s string) (Frame, error) {
	switch strings.ToLower(s) {
	case "polar":
		return FramePolar, nil
	case "cartesian":
		return FrameCartesian, nil
	}
	return 0, fmt.Errorf("frame must be %q or %q", "cartesian", "polar")
}

func (f Frame) String() string {
	if f == FrameCartesian {
		return "cartesian"
	}
	return "polar"
}

// Param locates one named model parameter for a fitting driver: either
// fixed at a value, or free at an index into the flat parameter vector
// handed to LnProb.
type Param struct {
	free  bool
	index int
	value float64
}

// Fixed returns a Param pinned at v for the whole fit.
func Fixed(v float64) Param { return Param{value: v} }

// Free returns a Param read from element index of the free vector.
func Free(index int) Param { return Param{free: true, index: index} }

// IsFree reports whether the parameter is read from the free vector.
func (p Param) IsFree() bool { return p.free }

// Index returns the free-vector index.  Only meaningful when IsFree.
func (p Param) Index() int { return p.index }

// Value returns the fixed value.  Only meaningful when not IsFree.
func (p Param) Value() float64 { return p.value }

func (p Param) resolve(theta []float64) float64 {
	if p.free {
		return theta[p.index]
	}
	return p.value
}

// PSpec lists the fittable parameters in canonical order with their
// defaults and whether a driver frees them by default.  The vlsr default
// is a placeholder; drivers seed it from the map's own systemic estimate.
var PSpec = []struct {
	Name    string
	Default float64
	Free    bool
}{
	{"x0", 0, true},
	{"y0", 0, true},
	{"inc", 45, true},
	{"pa", 0, true},
	{"mstar", 1, true},
	{"vlsr", 0, true},
	{"z0", 0, false},
	{"psi", 1, false},
	{"tilt", 1, false},
	{"dist", 100, false},
}

// Table maps parameter names to their Fixed/Free dispositions.  Names
// absent from the table take their PSpec default as a fixed value.
type Table map[string]Param

// DefaultTable returns a table with every parameter fixed at its PSpec
// default and the tilt sign taken from the near-side convention.
func DefaultTable(near NearSide) Table {
	t := make(Table, len(PSpec))
	for _, ps := range PSpec {
		t[ps.Name] = Fixed(ps.Default)
	}
	t["tilt"] = Fixed(near.Tilt())
	return t
}

// NFree returns the length of the free vector the table expects,
// one past the largest free index.
func (t Table) NFree() int {
	n := 0
	for _, p := range t {
		if p.free && p.index+1 > n {
			n = p.index + 1
		}
	}
	return n
}

// TiltFree reports whether tilt is fit as a continuous free parameter.
func (t Table) TiltFree() bool { return t["tilt"].IsFree() }

// Resolve fills a Params value from the table and the free vector theta.
func (t Table) Resolve(theta []float64) Params {
	get := func(name string) float64 {
		p, ok := t[name]
		if !ok {
			for _, ps := range PSpec {
				if ps.Name == name {
					return ps.Default
				}
			}
		}
		return p.resolve(theta)
	}
	var p Params
	p.X0 = get("x0")
	p.Y0 = get("y0")
	p.Inc = unit.AngleFromDeg(get("inc"))
	p.PA = unit.AngleFromDeg(get("pa"))
	p.Mstar = get("mstar")
	p.Vlsr = get("vlsr")
	p.Z0 = get("z0")
	p.Psi = get("psi")
	p.Tilt = get("tilt")
	p.Dist = get("dist")
	return p
}
