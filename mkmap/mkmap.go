// Public domain.

package main

import (
	"flag"
	"fmt"
	"os"

	xrand "golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/soniakeys/exit"
	"github.com/soniakeys/rotmap/internal/rmsolver"
	"github.com/soniakeys/rotmap/internal/velmap"
	"github.com/soniakeys/unit"
)

const versionString = "mkmap version 0.1 Go source."
const copyrightString = "Public domain."

func main() {
	defer exit.Handler()

	fnOut := flag.String("o", velmap.Mfn, "output file name")
	dv := flag.Bool("v", false, "display version and copyright")
	n := flag.Int("n", 128, "pixels per axis")
	fov := flag.Float64("fov", 8, "field of view, arcsec")
	x0 := flag.Float64("x0", 0, "center offset x, arcsec")
	y0 := flag.Float64("y0", 0, "center offset y, arcsec")
	inc := flag.Float64("inc", 30, "inclination, deg")
	pa := flag.Float64("pa", 0, "position angle, deg")
	mstar := flag.Float64("mstar", 1, "stellar mass, solar masses")
	dist := flag.Float64("dist", 100, "distance, parsec")
	vlsr := flag.Float64("vlsr", 0, "systemic velocity, km/s")
	z0 := flag.Float64("z0", 0, "surface height at 1 arcsec, arcsec")
	psi := flag.Float64("psi", 1, "flaring power")
	near := flag.String("near", "north", "near side of the disk")
	noise := flag.Float64("noise", 0, "Gaussian noise per pixel, m/s")
	seed := flag.Uint64("seed", 1, "noise random seed")
	flag.Parse()
	if *dv {
		fmt.Println(versionString)
		fmt.Println(copyrightString)
		os.Exit(0)
	}
	if *n < 2 || *fov <= 0 {
		exit.Log("need at least 2 pixels per axis and a positive field of view")
	}

	// relative header, x axis descending as on the sky
	del := *fov / float64(*n) / 3600
	h := velmap.Header{
		Axis1: velmap.Axis{N: *n, Cdelt: -del, Crpix: float64(*n)/2 + 0.5},
		Axis2: velmap.Axis{N: *n, Cdelt: del, Crpix: float64(*n)/2 + 0.5},
	}
	// a throwaway map just to reconstruct the axes the way rotmap will
	ax, err := velmap.New(make([]float64, *n**n), make([]float64, *n**n), h)
	if err != nil {
		exit.Log(err)
	}

	s := rmsolver.NewFromAxes(ax.Xaxis, ax.Yaxis)
	p := rmsolver.Params{
		Geometry: rmsolver.Geometry{
			X0:  *x0,
			Y0:  *y0,
			Inc: unit.AngleFromDeg(*inc),
			PA:  unit.AngleFromDeg(*pa),
			Z0:  *z0,
			Psi: *psi,
		},
		Physical: rmsolver.Physical{
			Mstar: *mstar,
			Dist:  *dist,
			Vlsr:  *vlsr,
		},
	}
	data, err := s.Keplerian(p, *near)
	if err != nil {
		exit.Log(err)
	}

	// the uncertainty grid is constant: the noise level, or a nominal
	// 1 m/s on a noiseless map so weights stay defined
	sig := *noise
	if sig <= 0 {
		sig = 1
	}
	sigma := make([]float64, len(data))
	for k := range sigma {
		sigma[k] = sig
	}
	if *noise > 0 {
		nd := distuv.Normal{Sigma: *noise, Src: xrand.NewSource(*seed)}
		for k := range data {
			data[k] += nd.Rand()
		}
	}

	m, err := velmap.New(data, sigma, h)
	if err != nil {
		exit.Log(err)
	}
	if err := velmap.WriteFile(*fnOut, m); err != nil {
		exit.Log(err)
	}
}
