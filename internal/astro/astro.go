// Public domain.

// Package astro, stuff generally useful in astronomy.
package astro

import "math"

const (
	// AU, the astronomical unit in metres.
	AU = 1.495978707e11
	// G, the Newtonian constant of gravitation, m³ kg⁻¹ s⁻².
	G = 6.6743e-11
	// SolarMass, the IAU 2015 nominal solar mass in kg.
	SolarMass = 1.98847e30
)

// KeplerianSpeed solves the circular orbital speed around a central point
// mass at cylindrical radius r and height z above the midplane.
//
// Args:
//   r:    cylindrical radius, metres
//   z:    height above the midplane, metres
//   mass: central mass, kg
//
// Returns the speed in m/s, v = sqrt(G M r² / (r²+z²)^(3/2)).  For z = 0
// this reduces to the familiar sqrt(GM/r).
func KeplerianSpeed(r, z, mass float64) float64 {
	return math.Sqrt(G * mass * r * r * math.Pow(math.Hypot(r, z), -3))
}

// MetresFromArcsec converts an angular offset in arcseconds to a projected
// distance in metres at a distance of dist parsecs.
//
// By the parallax relation an offset of 1″ seen from 1 pc subtends 1 AU.
func MetresFromArcsec(as, dist float64) float64 {
	return as * AU * dist
}
