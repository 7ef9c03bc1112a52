// internal/labels/adiru.go
package labels

import (
	"math"

	"github.com/tamzrod/a429sched/internal/codec"
	"github.com/tamzrod/a429sched/internal/frame"
)

// ---- ADIRU reference set ----
//
// Inertial reference / GPS hybrid output as seen on an ADIRU bus,
// parked at a fixed position with constant speed and heading.

const (
	adiruLat     = 53.53850
	adiruLon     = 9.85823
	adiruAlt     = 60
	adiruTrack   = 10
	adiruHeading = 150
	adiruSpeed   = 200
	adiruWindDir = 24
	adiruWindSpd = 30
	adiruEquipID = 168
	adiruDiscW1  = 12
)

// ADIRU returns the reference label set, refresh rates 20 to 1000 ms.
func ADIRU() []Definition {
	speedNS := adiruSpeed * math.Cos(adiruHeading*math.Pi/180)
	speedEW := adiruSpeed * math.Sin(adiruHeading*math.Pi/180)

	sdi3 := frame.SDI3
	data := frame.SDIData
	bnr := codec.FormatBNR
	bcd := codec.FormatBCD
	disc := codec.FormatDiscrete

	def := func(label uint8, name string, rate uint32, sdi frame.SDI, f codec.Format, dflt float64, unit string, lsb, size uint8, min, max float64, dec uint8) Definition {
		return Definition{
			Label: label, Name: name, RefreshMs: rate, SDI: sdi, Format: f,
			Default: dflt, Unit: unit, LSB: lsb, Size: size, Min: min, Max: max, Decimals: dec,
		}
	}

	return []Definition{
		def(0o076, "GPS Altitude", 1000, data, bnr, adiruAlt, "ft", 9, 20, 0, 131072, 0),
		def(0o103, "GPS Track Angle True", 1000, sdi3, bnr, adiruTrack, "deg", 14, 15, -180, 180, 0),
		def(0o110, "GPS Present Position Latitude", 1000, data, bnr, adiruLat, "deg", 9, 20, -90, 90, 5),
		def(0o111, "GPS Present Position Longitude", 1000, data, bnr, adiruLon, "deg", 9, 20, -180, 180, 5),
		def(0o112, "GPS Ground Speed", 1000, sdi3, bnr, adiruSpeed, "kt", 14, 15, 0, 4096, 0),
		def(0o120, "GPS Present Position Latitude Fine", 1000, sdi3, bnr, 0, "deg", 18, 11, 0, 0.000172, 6),
		def(0o121, "GPS Present Position Longitude Fine", 1000, sdi3, bnr, 0, "deg", 18, 11, 0, 0.000172, 6),
		def(0o125, "GPS UTC Time", 1000, sdi3, bcd, 0, "hhmm", 11, 19, 0, 1<<19, 0),
		def(0o260, "GPS UTC Date", 1000, sdi3, bcd, 0, "ddmmyy", 11, 19, 0, 1<<19, 0),
		def(0o264, "Hybrid Horizontal Figure Of Merit", 1000, sdi3, bnr, 0, "NM", 11, 18, 0, 16, 2),
		def(0o377, "Equipment Identification IR", 1000, sdi3, bcd, adiruEquipID, "", 11, 12, 0, 1<<12, 0),

		def(0o150, "GPS UTC", 500, sdi3, bnr, 0, "s", 11, 18, 0, 1<<18, 0),
		def(0o270, "Discrete Word 1", 500, sdi3, disc, adiruDiscW1, "", 11, 19, 0, 1<<19, 0),

		def(0o012, "Ground Speed", 250, sdi3, bcd, adiruSpeed, "kt", 15, 15, 0, 4095, 0),
		def(0o013, "Track Angle True", 250, sdi3, bcd, adiruTrack*10, "0.1 deg", 15, 14, 0, 3599, 0),
		def(0o015, "Wind Speed", 250, sdi3, bcd, adiruWindSpd, "kt", 19, 10, 0, 255, 0),
		def(0o016, "Wind Direction True", 250, sdi3, bcd, adiruWindDir, "deg", 19, 10, 0, 359, 0),

		def(0o310, "Present Position Latitude", 200, data, bnr, adiruLat, "deg", 9, 20, -90, 90, 5),
		def(0o311, "Present Position Longitude", 200, data, bnr, adiruLon, "deg", 9, 20, -180, 180, 5),

		def(0o315, "Wind Speed", 100, sdi3, bnr, adiruWindSpd, "kt", 14, 15, 0, 256, 0),
		def(0o316, "Wind Direction True", 100, sdi3, bnr, adiruWindDir, "deg", 14, 15, -180, 180, 0),
		def(0o366, "N-S Velocity", 100, sdi3, bnr, speedNS, "kt", 14, 15, -4096, 4096, 0),
		def(0o367, "E-W Velocity", 100, sdi3, bnr, speedEW, "kt", 14, 15, -4096, 4096, 0),
		def(0o254, "Hybrid Present Position Latitude", 100, data, bnr, adiruLat, "deg", 9, 20, -90, 90, 5),
		def(0o255, "Hybrid Present Position Longitude", 100, data, bnr, adiruLon, "deg", 9, 20, -180, 180, 5),

		def(0o132, "Hybrid True Heading", 40, sdi3, bnr, adiruHeading, "deg", 14, 15, -180, 180, 0),
		def(0o175, "Hybrid Ground Speed", 40, sdi3, bnr, adiruSpeed, "kt", 14, 15, 0, 4096, 0),
		def(0o261, "Hybrid Altitude", 40, data, bnr, adiruAlt, "ft", 9, 20, 0, 131072, 0),
		def(0o312, "Ground Speed", 40, sdi3, bnr, adiruSpeed, "kt", 14, 15, 0, 4096, 0),
		def(0o313, "Track Angle True", 40, sdi3, bnr, adiruTrack, "deg", 14, 15, -180, 180, 0),
		def(0o314, "True Heading", 40, sdi3, bnr, adiruHeading, "deg", 14, 15, -180, 180, 0),
		def(0o320, "Magnetic Heading", 40, sdi3, bnr, adiruHeading, "deg", 14, 15, -180, 180, 0),
		def(0o321, "Drift Angle", 40, sdi3, bnr, 0, "deg", 14, 15, -180, 180, 0),
		def(0o322, "Flight Path Angle", 40, sdi3, bnr, 0, "deg", 14, 15, -180, 180, 0),
		def(0o361, "Inertial Altitude", 40, data, bnr, adiruAlt, "ft", 9, 20, 0, 131072, 0),
		def(0o365, "Inertial Vertical Speed", 40, sdi3, bnr, 0, "ft/min", 14, 15, -32768, 32768, 0),

		def(0o324, "Pitch Angle", 20, sdi3, bnr, 0, "deg", 14, 15, -180, 180, 0),
		def(0o325, "Roll Angle", 20, sdi3, bnr, 0, "deg", 14, 15, -180, 180, 0),
		def(0o326, "Body Pitch Rate", 20, sdi3, bnr, 0, "deg/s", 14, 15, -128, 128, 0),
		def(0o327, "Body Roll Rate", 20, sdi3, bnr, 0, "deg/s", 14, 15, -128, 128, 0),
		def(0o330, "Body Yaw Rate", 20, sdi3, bnr, 0, "deg/s", 14, 15, -128, 128, 0),
		def(0o052, "Pitch Angular Acceleration", 20, sdi3, bnr, 0, "deg/s2", 14, 15, -64, 64, 0),
		def(0o053, "Roll Angular Acceleration", 20, sdi3, bnr, 0, "deg/s2", 14, 15, -64, 64, 0),
		def(0o054, "Yaw Angular Acceleration", 20, sdi3, bnr, 0, "deg/s2", 14, 15, -64, 64, 0),
		def(0o331, "Body Longitudinal Acceleration", 20, sdi3, bnr, 0, "g", 14, 15, -4, 4, 2),
		def(0o332, "Body Lateral Acceleration", 20, sdi3, bnr, 0, "g", 14, 15, -4, 4, 2),
		def(0o333, "Body Normal Acceleration", 20, sdi3, bnr, 0, "g", 14, 15, -4, 4, 2),
		def(0o364, "Vertical Acceleration", 20, sdi3, bnr, 0, "g", 14, 15, -4, 4, 2),
	}
}

// ADIRUTable is ADIRU() already registered.
func ADIRUTable() *Table {
	t, err := NewTable(ADIRU())
	if err != nil {
		panic(err)
	}
	return t
}
