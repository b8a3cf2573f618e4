// Package xsection turns a tabulated excitation function (energy, cross
// section) into a continuous, immutable curve.
//
// Units are fixed throughout the package: energies in keV, cross sections in
// millibarns. Conversion from the units used by nuclear-data services happens
// in the fetch layer before points reach this package.
package xsection
