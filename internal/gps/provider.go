package gps

import "math"

// Provider is the interface for GPS data sources.
type Provider interface {
	Name() string
	Connect() error
	Close() error
	// Poll drains any pending receiver bytes into the decoder and
	// returns how many were consumed. Zero means no data was waiting.
	Poll() (int, error)
	// LocationUpdated reports whether a new position fix arrived since
	// the last call. The flag is cleared on read.
	LocationUpdated() bool
	// DateTimeUpdated reports whether a new date/time arrived since the
	// last call. The flag is cleared on read.
	DateTimeUpdated() bool
	// Snapshot returns the decoder's current state.
	Snapshot() Snapshot
}

// Snapshot holds the most recent decoded receiver state.
type Snapshot struct {
	Latitude   float64 `json:"latitude"`   // Decimal degrees
	Longitude  float64 `json:"longitude"`  // Decimal degrees
	Altitude   float64 `json:"altitude"`   // Meters
	Satellites int     `json:"satellites"` // Sats in use
	HDOP       float64 `json:"hdop"`       // Horizontal dilution
	Year       int     `json:"year"`       // 0 until a date is decoded
	Month      int     `json:"month"`
	Day        int     `json:"day"`
	Hour       int     `json:"hour"`
	Minute     int     `json:"minute"`
	Second     int     `json:"second"`
	HasDate    bool    `json:"hasDate"`
}

// DistanceMeters returns the great-circle distance between two lat/lon
// points in meters.
func DistanceMeters(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadiusM = 6371000.0
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusM * c
}

// BaudForModule maps a configured GPS hardware variant to its serial
// rate. The M5Stack 1.1 unit talks at 115200; everything else is
// standard NMEA 9600.
func BaudForModule(module string) int {
	if module == "m5stack-v1.1" {
		return 115200
	}
	return 9600
}
