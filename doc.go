/*
Command rotmap fits a parametric Keplerian rotation model to a two
dimensional line-of-sight velocity map, such as the first moment of a
radio interferometric observation of a protoplanetary disk.

Contents

Version 0.1

  Program overview
  Command line usage
  File formats
  Algorithm outline


Program overview

Input is a prepared velocity map file holding the data grid, its
uncertainty companion and the position axes.  Output is a table of
fitted model parameters: the disk center, inclination and position
angle, the emission surface shape, the stellar mass and the systemic
velocity.

Sample run, on a map synthesized by the companion program mkmap:

  mkmap -inc 35 -pa 140 -mstar 1.2 -noise 40
  rotmap rotmap.vmap

with output along the lines of

  rotmap version 0.1 Go source.
  Param       Value      +Err      -Err
  x0         0.0004    0.0021    0.0020
  y0        -0.0007    0.0019    0.0021
  inc       34.9617    0.1411    0.1398  (34°57′42″)
  pa       140.0228    0.0931    0.0921  (140°01′22″)
  mstar      1.2011    0.0052    0.0049
  vlsr       0.0001    0.0034    0.0035
  z0         0.0000  (fixed)
  psi        1.0000  (fixed)
  tilt       1.0000  (fixed)
  dist     100.0000  (fixed)
  Residual RMS 40.11 m/s over 16384 pixels, near side north.

The quoted uncertainties are the 16th and 84th posterior percentiles
from the Markov chain Monte Carlo stage.  They describe the statistical
fit only; the near/far ambiguity of a flared emission surface is a
genuine two-fold degeneracy of a single velocity map.  It must be
resolved by choosing a near side explicitly, it cannot be inferred.


Command line usage

Invoking the program without arguments (or with invalid arguments)
shows a usage prompt.

  Usage: rotmap [options] <mapfile>     fit the rotation map in mapfile
         rotmap -h                      display help and quick reference
         rotmap -v                      display version and copyright

  Options:
         -c <config-file>
         -clip <arcsec>    crop the map to this radius before fitting
         -down <n>         downsample the map by this integer factor

Clipping and downsampling trade coverage and resolution for speed.
Downsampling by n keeps every nth pixel starting at offset n/2 on both
axes.


File formats

The map file is a gob encoded container written by mkmap, or by any
other program using the velmap package to wrap a grid obtained
elsewhere.  Maps that come without an uncertainty grid get a default of
10% of the data magnitude, with a notice.  Maps without beam metadata
fall back to the pixel scale as a nominal beam, silently.

The optional configuration file is a text file with a simple format.
Empty lines and lines beginning with # are ignored.  Other lines carry
a keyword:

   headings
   noheadings
   mcmc
   nomcmc
   repeatable
   random
   north
   south
   free <param>
   <param>=<value>
   iterations=<n>
   walkers=<n>
   steps=<n>
   burn=<n>

The keywords repeatable and random determine if program output is
strictly repeatable or can vary slightly from one run to the next.  The
posterior sampling stage is a Monte Carlo method; by default its random
number generator is seeded randomly.

A line "<param>=<value>" fixes a model parameter; "free <param>" adds
it to the fit.  By default x0, y0, inc, pa, mstar and vlsr are free and
the surface parameters z0, psi are fixed at a razor-thin disk.
Parameter names and defaults are listed by rotmap -h.


Algorithm outline

1.  Each trial parameter set maps every pixel from the sky plane to the
disk frame: offset by the trial center, rotate by the position angle,
deproject by the inclination, then iterate a fixed-point correction so
the pixel lands on the flared emission surface z(r) = z0*r^psi rather
than the midplane.

2.  A Keplerian velocity field is synthesized on those coordinates,
including the slower rotation of gas at height above the midplane, and
projected onto the line of sight.

3.  The field is compared with the observed map through a chi-squared
likelihood with inverse-variance weights, gated by hard-edged uniform
priors.  Parameter sets outside the priors are rejected without
evaluating the model.

4.  A Nelder-Mead simplex refines the starting parameters, then an
affine invariant ensemble sampler explores the posterior with a pool of
concurrent walkers, from which the quoted percentiles are drawn.

-------------
Public domain.
*/
package main
