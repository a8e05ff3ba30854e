/*
Copyright © 2022 the stokes authors.
This file is part of stokes.

stokes is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

stokes is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with stokes.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package stokes locates and assembles calibrated solar polarimetric
// observations into labeled data cubes with matching world coordinate
// systems.
//
// Two instrument families are supported: the SDO/HMI 720 s Stokes series
// together with its Milne-Eddington inversion results, and Hinode SP
// scans. File decoding, remote retrieval and image rotation are supplied
// by the caller through the Decoder, Fetcher and Rotator interfaces;
// implementations of the first two live in the fitsfile and jsoc packages.
//
// Data arrays are stored slowest axis first (row major), while coordinate
// systems are stored fastest axis first, as in the FITS WCS convention.
// A Stokes cube with array shape (stokes, wavelength, y, x) is therefore
// described by coordinate axes (x, y, wavelength, stokes).
package stokes

// Version gives the version number.
const Version = "0.3.0"

// Default identifiers for the HMI data series.
const (
	HMIInstrument      = "hmi"
	HMIStokesSeries    = "S_720s"
	HMIInversionSeries = "ME_720s_fd10"
)

// Fixed dimensions of an HMI Level 1 Stokes cube.
const (
	NumStokes      = 4 // I, Q, U, V
	NumWavelengths = 6 // filtergram positions across the Fe I 6173 Å line
)

// StokesLabels are the polarization states along the Stokes axis,
// in array order.
var StokesLabels = []string{"I", "Q", "U", "V"}

// HMIParameters are the default inversion parameters loaded into an
// HMI Level 2 cube.
var HMIParameters = ParameterSpec{"field", "inclination", "azimuth"}

// HinodeParameters are the default inversion parameters loaded into a
// Hinode SP Level 2 cube.
var HinodeParameters = ParameterSpec{"Field_Strength", "Field_Inclination", "Field_Azimuth"}
