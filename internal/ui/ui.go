// Package ui renders capture status and polls for operator
// cancellation. The capture loop only sees the Display interface; the
// tcell console and the headless logger are interchangeable.
package ui

import (
	"log"

	"github.com/shaunagostinho/gowardrive/internal/session"
)

// Display is the narrow contract the capture loop depends on.
type Display interface {
	// Banner redraws the session header (file, networks, distance).
	Banner(s *session.State)
	// Status shows transient per-iteration lines below the banner.
	Status(lines ...string)
	// Error shows a prominent failure message.
	Error(msg string)
	// CancelRequested reports whether the operator asked to stop.
	// Must never block.
	CancelRequested() bool
	Close()
}

// Headless logs status through the standard logger. Used for service
// deployments and tests, where no terminal is attached.
type Headless struct{}

func NewHeadless() *Headless { return &Headless{} }

func (h *Headless) Banner(s *session.State) {
	if s.UniqueNetworks() > 0 {
		log.Printf("[ui] file=%s networks=%d distance=%.2fkm",
			s.Filename(), s.UniqueNetworks(), s.DistanceMeters()/1000)
	}
}

func (h *Headless) Status(lines ...string) {
	for _, l := range lines {
		log.Printf("[ui] %s", l)
	}
}

func (h *Headless) Error(msg string) { log.Printf("[ui] ERROR: %s", msg) }

// CancelRequested always reports false; headless runs stop via signal.
func (h *Headless) CancelRequested() bool { return false }

func (h *Headless) Close() {}
