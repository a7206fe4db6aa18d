/*
Command mkmap prepares a velocity map file for rotmap.

It synthesizes a line-of-sight velocity map of a Keplerian disk from
model parameters given on the command line, optionally adds Gaussian
noise, and writes the map in the gob format read by rotmap.  Its main
use is exercising rotmap end to end: a fit on an mkmap map should
recover the parameters mkmap was given, to within the noise.

Usage

Command line options:

  mkmap                      Write rotmap.vmap with the default model.
  mkmap -v                   Display version and copyright.
  mkmap -o=<file>            Specify an output file name.

Model options, defaults in parentheses:

  -n      pixels per axis (128)
  -fov    field of view, arcsec (8)
  -x0     center offset x, arcsec (0)
  -y0     center offset y, arcsec (0)
  -inc    inclination, deg (30)
  -pa     position angle, deg (0)
  -mstar  stellar mass, solar masses (1)
  -dist   distance, parsec (100)
  -vlsr   systemic velocity, km/s (0)
  -z0     emission surface height at 1 arcsec, arcsec (0)
  -psi    flaring power (1)
  -near   near side of the disk, north or south (north)
  -noise  Gaussian noise per pixel, m/s (0)
  -seed   noise random seed (1)

Output

The output is a single file, rotmap.vmap by default, containing the
synthesized data grid, a constant uncertainty grid, and the position
axes.  The format is the Go "gob" format, a binary format that is not
human readable.
*/
package main
