// Package session tracks the per-run capture state: the derived output
// file name, the distance traveled and the unique-network counter.
package session

import (
	"fmt"
	"time"

	"github.com/shaunagostinho/gowardrive/internal/gps"
)

// State is the state of one capture run. It is owned by the capture
// loop goroutine; callers elsewhere receive value snapshots.
type State struct {
	baseYear   int
	yearWindow int

	filename   string
	distance   float64 // meters
	lat, lng   float64
	positioned bool
	unique     int
}

// New creates session state. Filenames are only derived from GPS dates
// whose year falls in [baseYear, baseYear+yearWindow); this guards
// against pre-fix garbage timestamps.
func New(baseYear, yearWindow int) *State {
	return &State{baseYear: baseYear, yearWindow: yearWindow}
}

// RecordFix updates the reference position. The first call seeds the
// position with no distance delta; every later call adds the
// great-circle distance from the previous position.
func (s *State) RecordFix(lat, lng float64) {
	if s.positioned {
		s.distance += gps.DistanceMeters(s.lat, s.lng, lat, lng)
	} else {
		s.positioned = true
	}
	s.lat, s.lng = lat, lng
}

// DeriveFilename assigns the session's output file name from the first
// plausible GPS timestamp. Once assigned the name is fixed for the
// remainder of the run; later calls are no-ops.
func (s *State) DeriveFilename(t time.Time) {
	if s.filename != "" || t.IsZero() {
		return
	}
	if y := t.Year(); y < s.baseYear || y >= s.baseYear+s.yearWindow {
		return
	}
	s.filename = fmt.Sprintf("%s_wardriving.csv", t.Format("060102_150405"))
}

// AddNetwork increments the unique-network counter.
func (s *State) AddNetwork() { s.unique++ }

func (s *State) Filename() string { return s.filename }

// DistanceMeters returns the cumulative distance traveled.
func (s *State) DistanceMeters() float64 { return s.distance }

func (s *State) UniqueNetworks() int { return s.unique }

// Position returns the last recorded fix, and whether one exists.
func (s *State) Position() (lat, lng float64, ok bool) {
	return s.lat, s.lng, s.positioned
}
