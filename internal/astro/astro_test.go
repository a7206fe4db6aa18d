// Public domain.

package astro_test

import (
	"math"
	"testing"

	"github.com/soniakeys/rotmap/internal/astro"
)

func TestKeplerianSpeed(t *testing.T) {
	// Earth: 1 AU from one solar mass, in the midplane.
	if v := astro.KeplerianSpeed(astro.AU, 0, astro.SolarMass); math.Abs(v-29785.142169221024) > 1e-6 {
		t.Fatal("Earth orbital speed:", v)
	}
	// a point above the midplane orbits slower than one at the same
	// cylindrical radius in the midplane
	v0 := astro.KeplerianSpeed(3e11, 0, 2e30)
	vz := astro.KeplerianSpeed(3e11, 4e11, 2e30)
	if vz >= v0 {
		t.Fatal("speed at height not slower:", vz, v0)
	}
	if math.Abs(vz-9803.56669789113) > 1e-6 {
		t.Fatal("speed at height:", vz)
	}
}

func TestMetresFromArcsec(t *testing.T) {
	// 1″ at 1 pc subtends 1 AU
	if m := astro.MetresFromArcsec(1, 1); m != astro.AU {
		t.Fatal("parallax relation:", m)
	}
	if m := astro.MetresFromArcsec(2, 100); m != 200*astro.AU {
		t.Fatal("scaling:", m)
	}
}
