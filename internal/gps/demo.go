package gps

import (
	"math"
	"time"
)

// DemoProvider generates simulated GPS data for bench testing without a
// receiver attached.
type DemoProvider struct {
	t     float64
	start time.Time
}

func NewDemo() *DemoProvider { return &DemoProvider{start: time.Now()} }

func (d *DemoProvider) Name() string   { return "Demo GPS (Simulated)" }
func (d *DemoProvider) Connect() error { return nil }
func (d *DemoProvider) Close() error   { return nil }

// Poll advances the simulation one step. The returned count stands in
// for the NMEA bytes a real receiver would have produced.
func (d *DemoProvider) Poll() (int, error) {
	d.t += 1.0
	return 128, nil
}

func (d *DemoProvider) LocationUpdated() bool { return true }
func (d *DemoProvider) DateTimeUpdated() bool { return true }

func (d *DemoProvider) Snapshot() Snapshot {
	// Simulate driving in a circle around a point
	centerLat := 43.6532 // Toronto
	centerLon := -79.3832
	radius := 0.005 // ~500m

	now := time.Now().UTC()
	return Snapshot{
		Latitude:   centerLat + radius*math.Sin(d.t*0.1),
		Longitude:  centerLon + radius*math.Cos(d.t*0.1),
		Altitude:   76,
		Satellites: 12,
		HDOP:       0.8,
		Year:       now.Year(),
		Month:      int(now.Month()),
		Day:        now.Day(),
		Hour:       now.Hour(),
		Minute:     now.Minute(),
		Second:     now.Second(),
		HasDate:    true,
	}
}
