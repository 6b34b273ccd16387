package capture

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shaunagostinho/gowardrive/internal/gps"
	"github.com/shaunagostinho/gowardrive/internal/wifi"
	"github.com/shaunagostinho/gowardrive/internal/wigle"
)

// fakeGPS scripts the Poll byte counts; after the script runs out it
// reports no data. The location flag is one-shot, like the decoder's.
type fakeGPS struct {
	polls []int
	i     int
	loc   bool
	snap  gps.Snapshot
}

func (f *fakeGPS) Name() string   { return "fake gps" }
func (f *fakeGPS) Connect() error { return nil }
func (f *fakeGPS) Close() error   { return nil }

func (f *fakeGPS) Poll() (int, error) {
	if f.i < len(f.polls) {
		n := f.polls[f.i]
		f.i++
		return n, nil
	}
	return 0, nil
}

func (f *fakeGPS) LocationUpdated() bool {
	v := f.loc
	f.loc = false
	return v
}

func (f *fakeGPS) DateTimeUpdated() bool { return f.snap.HasDate }
func (f *fakeGPS) Snapshot() gps.Snapshot { return f.snap }

// steadyGPS always has data; the location flag fires once.
type steadyGPS struct {
	fakeGPS
}

func (s *steadyGPS) Poll() (int, error) { return 64, nil }

// flakyGPS delivers bytes but every read also reports an error, like a
// receiver with intermittent framing problems.
type flakyGPS struct {
	fakeGPS
}

func (f *flakyGPS) Poll() (int, error) { return 16, errors.New("short read") }

type fakeScanner struct {
	nets    []wifi.Network
	scans   int
	initErr error
}

func (f *fakeScanner) Name() string { return "fake scanner" }
func (f *fakeScanner) Init() error  { return f.initErr }
func (f *fakeScanner) Close() error { return nil }

func (f *fakeScanner) Scan() ([]wifi.Network, error) {
	f.scans++
	out := make([]wifi.Network, len(f.nets))
	copy(out, f.nets)
	return out, nil
}

func fastOptions(dir string) Options {
	return Options{
		Dir:            dir,
		Device:         wigle.DefaultDeviceInfo("0.3.0"),
		BaseYear:       2024,
		YearWindow:     5,
		MaxWait:        3 * time.Millisecond,
		LinkPoll:       time.Millisecond,
		WaitTick:       time.Millisecond,
		HealthInterval: time.Hour,
		MaxMisses:      5,
	}
}

func TestRunAbortsWhenGPSGoesSilent(t *testing.T) {
	o := fastOptions(t.TempDir())
	o.GPS = &fakeGPS{polls: []int{32}} // link established, then silence
	o.Scanner = &fakeScanner{}
	l := New(o)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := l.Run(ctx)
	if !errors.Is(err, ErrGPSUnavailable) {
		t.Fatalf("Run = %v, want ErrGPSUnavailable", err)
	}
}

func TestRunStopsCleanlyOnCancel(t *testing.T) {
	o := fastOptions(t.TempDir())
	o.GPS = &steadyGPS{} // data flows but no fix, so the loop idles
	o.Scanner = &fakeScanner{}
	l := New(o)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	if err := l.Run(ctx); err != nil {
		t.Fatalf("Run after cancel = %v, want nil", err)
	}
}

func TestRunScansOnFix(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "capture")
	o := fastOptions(dir)
	g := &steadyGPS{}
	g.loc = true
	g.snap = testSnapshot()
	sc := &fakeScanner{nets: []wifi.Network{
		{BSSID: "AA:BB:CC:DD:EE:FF", SSID: "Home", Channel: 6, RSSI: -40, Auth: wifi.AuthWPA2PSK},
	}}
	o.GPS = g
	o.Scanner = sc
	l := New(o)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if err := l.Run(ctx); err != nil {
		t.Fatalf("Run = %v, want nil", err)
	}
	if sc.scans == 0 {
		t.Fatal("fix never triggered a scan")
	}
	if l.state.UniqueNetworks() != 1 {
		t.Errorf("unique networks = %d, want 1", l.state.UniqueNetworks())
	}
	if _, err := os.Stat(filepath.Join(dir, "251128_143005_wardriving.csv")); err != nil {
		t.Errorf("session file missing: %v", err)
	}
}

func TestRunAbortsWhenIndexCannotInitialize(t *testing.T) {
	// Point the capture directory at a regular file so MkdirAll fails.
	base := t.TempDir()
	blocked := filepath.Join(base, "blocked")
	if err := os.WriteFile(blocked, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	o := fastOptions(blocked)
	o.GPS = &steadyGPS{}
	o.Scanner = &fakeScanner{}
	l := New(o)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	err := l.Run(ctx)
	if !errors.Is(err, ErrIndexInit) {
		t.Fatalf("Run = %v, want ErrIndexInit", err)
	}
}

func TestWaitCreditsBytesReadAlongsideErrors(t *testing.T) {
	o := fastOptions(t.TempDir())
	o.GPS = &flakyGPS{}
	o.Scanner = &fakeScanner{}
	l := New(o)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, drained, ok := l.waitForUpdate(ctx)
	if !ok {
		t.Fatal("wait reported cancellation")
	}
	if drained == 0 {
		t.Error("bytes read alongside an error were not credited")
	}
}

func TestStatusEmitted(t *testing.T) {
	o := fastOptions(t.TempDir())
	o.GPS = &steadyGPS{}
	o.Scanner = &fakeScanner{}
	var got []Status
	o.OnStatus = func(s Status) { got = append(got, s) }
	l := New(o)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := l.Run(ctx); err != nil {
		t.Fatalf("Run = %v", err)
	}
	if len(got) == 0 {
		t.Fatal("no status frames emitted")
	}
}

func TestStopIsReentrant(t *testing.T) {
	o := fastOptions(t.TempDir())
	o.GPS = &fakeGPS{}
	o.Scanner = &fakeScanner{}
	l := New(o)
	l.stop()
	l.stop() // must not panic or double-close
}
