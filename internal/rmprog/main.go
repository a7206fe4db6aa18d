// Public domain.

// Package rmprog implements the rotmap command.
package rmprog

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	sexa "github.com/soniakeys/sexagesimal"
	"github.com/soniakeys/unit"
	xrand "golang.org/x/exp/rand"
	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat"

	"github.com/soniakeys/exit"
	"github.com/soniakeys/rotmap/internal/ensemble"
	"github.com/soniakeys/rotmap/internal/rmsolver"
	"github.com/soniakeys/rotmap/internal/velmap"
)

const versionString = "rotmap version 0.1 Go source."
const copyrightString = "Public domain."

func Main() {
	defer exit.Handler()

	cl := parseCommandLine()
	cfg := readConfig(cl.fnConfig)

	// load the prepared map and apply the speed-up preprocessing
	m, err := velmap.ReadFile(cl.fnMap)
	if err != nil {
		exit.Log(err)
	}
	if cl.clip > 0 {
		m.Clip(cl.clip)
	}
	if cl.down > 1 {
		m.Downsample(cl.down)
	}

	solver := rmsolver.New(m)
	solver.SurfaceIterations = cfg.iterations

	table, names := buildTable(cfg, m)
	ndim := table.NFree()
	if ndim == 0 {
		exit.Log("no free parameters to fit")
	}

	x0 := make([]float64, ndim)
	for _, name := range names {
		x0[table[name].Index()] = defaultFor(name, cfg, m)
	}
	if p := table["tilt"]; p.IsFree() {
		// the tilt prior is an open interval, keep the start inside it
		x0[p.Index()] *= 0.99
	}

	best := refine(solver, table, x0)

	if !cfg.mcmc {
		printPoint(cfg, table, names, best)
		printResidual(solver, m, table, cfg, best)
		return
	}

	smp := sample(solver, table, cfg, ndim, best)
	printPosterior(cfg, table, names, smp)
	b, _ := smp.Best()
	printResidual(solver, m, table, cfg, b)
}

// refine runs a Nelder-Mead maximization of the log probability from the
// starting vector.  A failed or non-converged run is reported and the
// start vector is kept.
func refine(solver *rmsolver.Solver, table rmsolver.Table, x0 []float64) []float64 {
	ev := solver.NewEval(table)
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			lp := ev.LnProb(x)
			if math.IsInf(lp, -1) {
				// a finite wall keeps the simplex moving
				return 1e300
			}
			return -lp
		},
	}
	res, err := optimize.Minimize(problem, x0, nil, &optimize.NelderMead{})
	if err != nil || res == nil {
		log.Println("refinement did not converge, sampling from start values:", err)
		return x0
	}
	return res.X
}

// sample runs the ensemble sampler around the refined position.
func sample(solver *rmsolver.Solver, table rmsolver.Table, cfg *config,
	ndim int, best []float64) *ensemble.Sampler {

	walkers := cfg.walkers
	if walkers < 2*ndim {
		walkers = 2 * ndim
	}
	if walkers%2 != 0 {
		walkers++
	}
	burn := cfg.burn
	if burn >= cfg.steps {
		burn = cfg.steps / 2
	}

	var seed uint64 = 3
	if !cfg.repeatable {
		seed = uint64(time.Now().UnixNano())
	}
	smp, err := ensemble.New(ndim, walkers,
		func() ensemble.LnProb {
			e := solver.NewEval(table)
			return e.LnProb
		},
		xrand.NewSource(seed))
	if err != nil {
		exit.Log(err)
	}

	scatter := make([]float64, ndim)
	for d, v := range best {
		scatter[d] = 1e-3 * (1 + math.Abs(v))
	}
	smp.Init(best, scatter)
	smp.Run(cfg.steps, burn)
	return smp
}

func defaultFor(name string, cfg *config, m *velmap.Map) float64 {
	switch name {
	case "vlsr":
		return m.Vlsr / 1e3 // fit parameter is km/s
	case "tilt":
		return cfg.near.Tilt()
	}
	for _, ps := range rmsolver.PSpec {
		if ps.Name == name {
			return ps.Default
		}
	}
	return 0
}

// buildTable assembles the Fixed/Free parameter table from the config.
// Free indexes are assigned in canonical PSpec order.  The returned
// names list the free parameters in index order.
func buildTable(cfg *config, m *velmap.Map) (rmsolver.Table, []string) {
	table := make(rmsolver.Table, len(rmsolver.PSpec))
	var names []string
	idx := 0
	for _, ps := range rmsolver.PSpec {
		if v, ok := cfg.fixed[ps.Name]; ok {
			table[ps.Name] = rmsolver.Fixed(v)
			continue
		}
		free := ps.Free
		if f, ok := cfg.freed[ps.Name]; ok {
			free = f
		}
		if free {
			table[ps.Name] = rmsolver.Free(idx)
			names = append(names, ps.Name)
			idx++
			continue
		}
		table[ps.Name] = rmsolver.Fixed(defaultFor(ps.Name, cfg, m))
	}
	return table, names
}

func printPoint(cfg *config, table rmsolver.Table, names []string, x []float64) {
	if cfg.headings {
		fmt.Println(versionString)
		fmt.Println("Param       Value")
	}
	for _, name := range names {
		fmt.Printf("%-6s %10.4f%s\n",
			name, x[table[name].Index()], angleNote(name, x[table[name].Index()]))
	}
	printFixed(table)
}

func printPosterior(cfg *config, table rmsolver.Table, names []string, smp *ensemble.Sampler) {
	if cfg.headings {
		fmt.Println(versionString)
		fmt.Println("Param       Value      +Err      -Err")
	}
	for _, name := range names {
		col := smp.Column(table[name].Index())
		sort.Float64s(col)
		lo := stat.Quantile(.16, stat.Empirical, col, nil)
		mid := stat.Quantile(.5, stat.Empirical, col, nil)
		hi := stat.Quantile(.84, stat.Empirical, col, nil)
		fmt.Printf("%-6s %10.4f %9.4f %9.4f%s\n",
			name, mid, hi-mid, mid-lo, angleNote(name, mid))
	}
	printFixed(table)
}

func printFixed(table rmsolver.Table) {
	for _, ps := range rmsolver.PSpec {
		if p := table[ps.Name]; !p.IsFree() {
			fmt.Printf("%-6s %10.4f  (fixed)\n", ps.Name, p.Value())
		}
	}
}

// angleNote formats angle-valued parameters sexagesimally as well.
func angleNote(name string, v float64) string {
	switch name {
	case "inc", "pa":
		return fmt.Sprintf("  (%v)", sexa.FmtAngle(unit.AngleFromDeg(v)))
	}
	return ""
}

func printResidual(solver *rmsolver.Solver, m *velmap.Map,
	table rmsolver.Table, cfg *config, x []float64) {

	p := table.Resolve(x)
	model, err := solver.Keplerian(p, cfg.near.String())
	if err != nil {
		exit.Log(err)
	}
	var sum float64
	var n int
	for k, d := range m.Data {
		if math.IsNaN(d) || math.IsInf(d, 0) {
			continue
		}
		res := d - model[k]
		sum += res * res
		n++
	}
	if n > 0 {
		fmt.Printf("Residual RMS %.2f m/s over %d pixels, near side %s.\n",
			math.Sqrt(sum/float64(n)), n, cfg.near)
	}
}

type commandLine struct {
	fnConfig string
	fnMap    string
	clip     float64
	down     int
}

func parseCommandLine() *commandLine {
	var cl commandLine
	dh := flag.Bool("h", false, "")
	dv := flag.Bool("v", false, "")
	flag.StringVar(&cl.fnConfig, "c", "", "")
	flag.Float64Var(&cl.clip, "clip", 0, "")
	flag.IntVar(&cl.down, "down", 0, "")
	flag.Usage = func() {
		os.Stderr.WriteString(`
Usage: rotmap [options] <mapfile>     fit a rotation map in file
       rotmap -h                      display help and quick reference
       rotmap -v                      display version and copyright

Options:
       -c <config-file>
       -clip <arcsec>    crop the map to this radius before fitting
       -down <n>         downsample the map by this integer factor
`)
	}
	flag.Parse()
	switch {
	case *dh:
		printHelp()
		os.Exit(0)
	case *dv:
		fmt.Println(versionString)
		fmt.Println(copyrightString)
		os.Exit(0)
	case flag.NArg() != 1:
		flag.Usage()
		os.Exit(1)
	}
	cl.fnMap = flag.Arg(0)
	return &cl
}

type config struct {
	headings   bool
	mcmc       bool
	repeatable bool
	near       rmsolver.NearSide
	iterations int
	walkers    int
	steps      int
	burn       int
	fixed      map[string]float64
	freed      map[string]bool
}

func defaultConfig() *config {
	return &config{
		headings:   true,
		mcmc:       true,
		near:       rmsolver.NearNorth,
		iterations: rmsolver.DefaultSurfaceIterations,
		steps:      500,
		burn:       250,
		fixed:      map[string]float64{},
		freed:      map[string]bool{},
	}
}

// readConfig reads the optional keyword config file.  Empty lines and
// lines beginning with # are ignored.  Other lines carry a keyword, a
// "free <param>" declaration, or a "<keyword>=<value>" setting.
func readConfig(fn string) *config {
	cfg := defaultConfig()
	if fn == "" {
		return cfg
	}
	f, err := os.Open(fn)
	if err != nil {
		exit.Log(err)
	}
	defer f.Close()
	if err := parseConfig(f, cfg); err != nil {
		exit.Log(err)
	}
	return cfg
}

func parseConfig(r io.Reader, cfg *config) error {
	scn := bufio.NewScanner(r)
	for scn.Scan() {
		ls := strings.TrimSpace(scn.Text())
		switch {
		case ls == "" || ls[0] == '#':
			continue
		case ls == "headings":
			cfg.headings = true
			continue
		case ls == "noheadings":
			cfg.headings = false
			continue
		case ls == "mcmc":
			cfg.mcmc = true
			continue
		case ls == "nomcmc":
			cfg.mcmc = false
			continue
		case ls == "repeatable":
			cfg.repeatable = true
			continue
		case ls == "random":
			cfg.repeatable = false
			continue
		case ls == "north" || ls == "south":
			near, _ := rmsolver.ParseNearSide(ls)
			cfg.near = near
			continue
		}
		if name, ok := strings.CutPrefix(ls, "free"); ok && strings.TrimSpace(name) != "" {
			name = strings.TrimSpace(name)
			if !knownParam(name) {
				return fmt.Errorf("unrecognized parameter in config file: %s", name)
			}
			cfg.freed[name] = true
			continue
		}
		k, v, ok := strings.Cut(ls, "=")
		if !ok {
			return fmt.Errorf("unrecognized line in config file: %s", ls)
		}
		k = strings.TrimSpace(k)
		val, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return fmt.Errorf("config file line %q: %v", ls, err)
		}
		switch k {
		case "iterations":
			cfg.iterations = int(val)
		case "walkers":
			cfg.walkers = int(val)
		case "steps":
			cfg.steps = int(val)
		case "burn":
			cfg.burn = int(val)
		default:
			if !knownParam(k) {
				return fmt.Errorf("unrecognized parameter in config file: %s", k)
			}
			cfg.fixed[k] = val
		}
	}
	return scn.Err()
}

func knownParam(name string) bool {
	for _, ps := range rmsolver.PSpec {
		if ps.Name == name {
			return true
		}
	}
	return false
}

func printHelp() {
	fmt.Println(`
Rotmap fits a parametric Keplerian rotation model to a two dimensional
line-of-sight velocity map, inferring the disk geometry, emission
surface, stellar mass and systemic velocity.  Input is a prepared map
file as written by mkmap.  Output is the fitted parameter table.

Config file keywords:
   headings
   noheadings
   mcmc
   nomcmc
   repeatable
   random
   north
   south
   free <param>
   <param>=<value>     fix a parameter
   iterations=<n>      flared-surface solver passes
   walkers=<n> steps=<n> burn=<n>

Parameters:`)
	for _, ps := range rmsolver.PSpec {
		disp := "fixed"
		if ps.Free {
			disp = "free"
		}
		fmt.Printf("   %-6s default %8.4g, %s\n", ps.Name, ps.Default, disp)
	}
	fmt.Println(`
For full documentation:
   go doc github.com/soniakeys/rotmap`)
}
