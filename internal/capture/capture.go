// Package capture runs the GPS-gated acquisition loop: it waits for
// position fixes, triggers WiFi scans and appends deduplicated
// observations to the session's output file.
package capture

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/shaunagostinho/gowardrive/internal/dedup"
	"github.com/shaunagostinho/gowardrive/internal/gps"
	"github.com/shaunagostinho/gowardrive/internal/session"
	"github.com/shaunagostinho/gowardrive/internal/ui"
	"github.com/shaunagostinho/gowardrive/internal/wifi"
	"github.com/shaunagostinho/gowardrive/internal/wigle"
)

// Session-level failure classes. The loop is the only place that
// decides abort vs continue; lower layers report plain errors.
var (
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrGPSUnavailable     = errors.New("gps unavailable")
	ErrIndexInit          = errors.New("index initialization failed")
)

// Options configures a capture loop. Zero values pick the defaults
// below.
type Options struct {
	GPS     gps.Provider
	Scanner wifi.Scanner
	Display ui.Display

	Dir    string // capture directory, default /BruceWardriving
	Device wigle.DeviceInfo

	BaseYear   int // plausible-year window for filename derivation
	YearWindow int

	MaxWait        time.Duration // post-scan wait for the next fix
	LinkPoll       time.Duration // cancel-poll interval while awaiting link
	WaitTick       time.Duration // cancel-poll interval inside MaxWait
	HealthInterval time.Duration // storage re-check period
	MaxMisses      int           // consecutive empty polls before abort

	// OnStatus, when set, receives a Status after every iteration.
	OnStatus func(Status)
}

// Loop is the per-run acquisition state machine. Single-threaded and
// cooperative: all waits are bounded and poll for cancellation.
type Loop struct {
	gps     gps.Provider
	scanner wifi.Scanner
	display ui.Display
	engine  *dedup.Engine
	state   *session.State

	dir    string
	device wigle.DeviceInfo

	maxWait        time.Duration
	linkPoll       time.Duration
	waitTick       time.Duration
	healthInterval time.Duration
	maxMisses      int

	onStatus     func(Status)
	dateTimeSeen bool
	stopOnce     sync.Once
}

// New builds a loop from options, applying defaults.
func New(o Options) *Loop {
	if o.Dir == "" {
		o.Dir = "/BruceWardriving"
	}
	if o.BaseYear == 0 {
		o.BaseYear = 2024
	}
	if o.YearWindow == 0 {
		o.YearWindow = 5
	}
	if o.MaxWait == 0 {
		o.MaxWait = 5000 * time.Millisecond
	}
	if o.LinkPoll == 0 {
		o.LinkPoll = time.Second
	}
	if o.WaitTick == 0 {
		o.WaitTick = 100 * time.Millisecond
	}
	if o.HealthInterval == 0 {
		o.HealthInterval = 5 * time.Minute
	}
	if o.MaxMisses == 0 {
		o.MaxMisses = 5
	}
	if o.Display == nil {
		o.Display = ui.NewHeadless()
	}
	return &Loop{
		gps:            o.GPS,
		scanner:        o.Scanner,
		display:        o.Display,
		engine:         dedup.New(o.Dir),
		state:          session.New(o.BaseYear, o.YearWindow),
		dir:            o.Dir,
		device:         o.Device,
		maxWait:        o.MaxWait,
		linkPoll:       o.LinkPoll,
		waitTick:       o.WaitTick,
		healthInterval: o.HealthInterval,
		maxMisses:      o.MaxMisses,
		onStatus:       o.OnStatus,
	}
}

// State exposes the session state for display layers.
func (l *Loop) State() *session.State { return l.state }

// Run drives the session to completion. It returns nil on operator
// cancellation and an error wrapping one of the failure classes above
// when the session aborts. Resources are released on every exit path;
// the shutdown is safe against repeated invocation.
func (l *Loop) Run(ctx context.Context) error {
	defer l.stop()

	l.display.Banner(l.state)
	l.display.Status("Initializing...")

	if err := l.scanner.Init(); err != nil {
		return fmt.Errorf("capture: radio init: %w", err)
	}
	if err := l.gps.Connect(); err != nil {
		l.display.Error("GPS not found")
		return fmt.Errorf("%w: %v", ErrGPSUnavailable, err)
	}
	if err := l.engine.EnsureIndex(); err != nil {
		l.display.Error("Failed to initialize index file")
		return fmt.Errorf("%w: %v", ErrIndexInit, err)
	}

	if !l.awaitLink(ctx) {
		return nil
	}
	return l.run(ctx)
}

// awaitLink blocks until the receiver produces any bytes, polling for
// cancellation once per interval. Returns false when canceled.
func (l *Loop) awaitLink(ctx context.Context) bool {
	l.display.Status("Waiting for GPS data")
	log.Printf("[capture] gps: %s, wifi: %s", l.gps.Name(), l.scanner.Name())

	for waited := 0; ; waited++ {
		n, err := l.gps.Poll()
		if err != nil {
			log.Printf("[capture] gps read: %v", err)
		}
		if n > 0 {
			return true
		}
		if l.canceled(ctx) {
			return false
		}
		l.display.Status(fmt.Sprintf("Waiting GPS: %ds", waited))
		if !sleepCtx(ctx, l.linkPoll) {
			return false
		}
	}
}

func (l *Loop) run(ctx context.Context) error {
	misses := 0
	lastHealth := time.Now()
	fixReady := false // location update consumed during the wait window
	carry := 0        // bytes drained during the wait window

	for {
		if l.canceled(ctx) {
			return nil
		}
		l.display.Banner(l.state)

		// Catches the storage device being removed and reinserted
		// mid-session. A failed re-check retries next interval.
		if time.Since(lastHealth) >= l.healthInterval {
			if err := l.engine.VerifyStorage(); err != nil {
				log.Printf("[capture] storage check failed: %v", err)
			}
			lastHealth = time.Now()
		}

		n, err := l.gps.Poll()
		if err != nil {
			log.Printf("[capture] gps read: %v", err)
		}
		n += carry
		carry = 0

		if n > 0 {
			misses = 0
			if fixReady || l.gps.LocationUpdated() {
				fixReady = false
				snap := l.gps.Snapshot()
				l.state.RecordFix(snap.Latitude, snap.Longitude)
				if err := l.scanCycle(snap); err != nil {
					return err
				}
			} else {
				l.reportStale()
				if l.state.Filename() == "" {
					l.state.DeriveFilename(l.gps.Snapshot().Time())
				}
			}
		} else {
			misses++
			if misses > l.maxMisses {
				l.display.Error("GPS not found")
				return fmt.Errorf("%w: no data for %d cycles", ErrGPSUnavailable, misses)
			}
			l.display.Status("No GPS data available")
		}

		l.emitStatus()

		updated, waitBytes, ok := l.waitForUpdate(ctx)
		if !ok {
			return nil
		}
		fixReady = updated
		carry = waitBytes
	}
}

// waitForUpdate holds the loop for up to maxWait or until the next
// location update, whichever comes first, polling for cancellation
// every tick. Bytes drained here are credited to the next iteration.
func (l *Loop) waitForUpdate(ctx context.Context) (updated bool, drained int, ok bool) {
	deadline := time.Now().Add(l.maxWait)
	for time.Now().Before(deadline) {
		if l.canceled(ctx) {
			return false, drained, false
		}
		n, err := l.gps.Poll()
		if err != nil {
			log.Printf("[capture] gps read: %v", err)
		}
		if n > 0 {
			drained += n
			if l.gps.LocationUpdated() {
				return true, drained, true
			}
		}
		if !sleepCtx(ctx, l.waitTick) {
			return false, drained, false
		}
	}
	return false, drained, true
}

// reportStale shows whatever receiver data is available while the
// position is not updating.
func (l *Loop) reportStale() {
	if !l.dateTimeSeen && !l.gps.DateTimeUpdated() {
		l.display.Status("Waiting for valid GPS data")
		return
	}
	l.dateTimeSeen = true
	s := l.gps.Snapshot()
	l.display.Status(
		fmt.Sprintf("Date: %04d-%02d-%02d", s.Year, s.Month, s.Day),
		fmt.Sprintf("Time: %02d:%02d:%02d", s.Hour, s.Minute, s.Second),
		fmt.Sprintf("Sat:  %d", s.Satellites),
		fmt.Sprintf("HDOP: %.2f", s.HDOP),
	)
}

func (l *Loop) emitStatus() {
	if l.onStatus == nil {
		return
	}
	snap := l.gps.Snapshot()
	lat, lng, _ := l.state.Position()
	l.onStatus(Status{
		File:           l.state.Filename(),
		UniqueNetworks: l.state.UniqueNetworks(),
		DistanceKm:     l.state.DistanceMeters() / 1000,
		Latitude:       lat,
		Longitude:      lng,
		Satellites:     snap.Satellites,
		HDOP:           snap.HDOP,
		Stamp:          time.Now().UnixMilli(),
	})
}

// canceled reports a context or operator cancellation. Never blocks.
func (l *Loop) canceled(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
	}
	return l.display.CancelRequested()
}

// stop releases the radio and the receiver. Safe to invoke multiple
// times; only the first call acts.
func (l *Loop) stop() {
	l.stopOnce.Do(func() {
		if err := l.scanner.Close(); err != nil {
			log.Printf("[capture] scanner close: %v", err)
		}
		if err := l.gps.Close(); err != nil {
			log.Printf("[capture] gps close: %v", err)
		}
		log.Printf("[capture] session ended: %d unique networks, %.2f km",
			l.state.UniqueNetworks(), l.state.DistanceMeters()/1000)
	})
}

// sleepCtx sleeps for d unless the context ends first. Reports whether
// the sleep completed.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}
