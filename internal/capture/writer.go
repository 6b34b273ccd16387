package capture

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"github.com/shaunagostinho/gowardrive/internal/gps"
	"github.com/shaunagostinho/gowardrive/internal/mac"
	"github.com/shaunagostinho/gowardrive/internal/wifi"
	"github.com/shaunagostinho/gowardrive/internal/wigle"
)

// scanCycle triggers one radio sweep and records the results. An empty
// sweep is a no-op beyond display feedback; a failed sweep is logged
// and the session continues.
func (l *Loop) scanCycle(snap gps.Snapshot) error {
	nets, err := l.scanner.Scan()
	if err != nil {
		log.Printf("[capture] scan failed: %v", err)
		return nil
	}
	if len(nets) == 0 {
		l.display.Status("No Wi-Fi networks found")
		return nil
	}
	l.display.Status(
		fmt.Sprintf("Coord: %.6f, %.6f", snap.Latitude, snap.Longitude),
		fmt.Sprintf("Networks Found: %d", len(nets)),
	)
	return l.appendNetworks(nets, snap)
}

// appendNetworks writes the not-yet-known access points from one sweep
// to the session file. The file is opened and closed within the cycle
// so a row is either fully flushed or absent after power loss.
func (l *Loop) appendNetworks(nets []wifi.Network, snap gps.Snapshot) error {
	if err := l.engine.VerifyStorage(); err != nil {
		l.display.Status("Storage setup error")
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	l.state.DeriveFilename(snap.Time())
	name := l.state.Filename()
	if name == "" {
		// No plausible receiver date yet; keep garbage timestamps out
		// of the directory and catch these networks on a later sweep.
		log.Printf("[capture] no plausible GPS date yet, holding back %d networks", len(nets))
		return nil
	}

	path := filepath.Join(l.dir, name)
	_, statErr := os.Stat(path)
	isNew := errors.Is(statErr, fs.ErrNotExist)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		l.display.Status("Failed to open file for writing")
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	defer f.Close()

	if isNew {
		if _, err := fmt.Fprintf(f, "%s\n%s\n", wigle.Preamble(l.device), wigle.ColumnHeader); err != nil {
			return fmt.Errorf("%w: write header: %v", ErrStorageUnavailable, err)
		}
	}

	for _, n := range nets {
		if !mac.Valid(n.BSSID) {
			log.Printf("[capture] invalid MAC format: %q", n.BSSID)
			continue
		}
		if n.SSID == "" {
			continue
		}
		if l.engine.InCache(n.BSSID) {
			continue
		}
		known, err := l.engine.InIndex(n.BSSID)
		if err != nil {
			log.Printf("[capture] index lookup for %s: %v", n.BSSID, err)
			continue
		}
		if known {
			continue
		}

		// Remember before writing the row so the index never lags the
		// output file.
		if err := l.engine.Remember(n.BSSID); err != nil {
			log.Printf("[capture] failed to index %s: %v", n.BSSID, err)
			continue
		}
		row := wigle.Row(n, snap.Time(), snap.Latitude, snap.Longitude, snap.Altitude, snap.HDOP)
		if _, err := fmt.Fprintln(f, row); err != nil {
			log.Printf("[capture] row write failed for %s: %v", n.BSSID, err)
			continue
		}
		l.state.AddNetwork()
	}
	return nil
}
