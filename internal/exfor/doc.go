// Package exfor retrieves evaluated cross sections from the IAEA EXFOR/ENDF
// web service or from local files.
//
// The web service is queried in two steps: e4list enumerates the evaluated
// sections available for a target and reaction, and e4sig returns the data
// points of one section. Energies arrive in eV and cross sections in barns;
// both are converted to keV and millibarns before leaving this package.
package exfor
