package ui

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/gdamore/tcell/v2"

	"github.com/shaunagostinho/gowardrive/internal/session"
)

// Console renders the session banner on a tcell screen and watches for
// a cancel key (ESC or q). Key events are consumed by a background
// goroutine so CancelRequested never blocks the capture loop.
type Console struct {
	screen    tcell.Screen
	cancel    atomic.Bool
	done      chan struct{}
	closeOnce sync.Once

	statusRow int // first row below the banner
}

const bannerTitle = "Wardriving"

func NewConsole() (*Console, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("ui: create screen: %w", err)
	}
	return newConsole(screen)
}

func newConsole(screen tcell.Screen) (*Console, error) {
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("ui: init screen: %w", err)
	}
	screen.SetStyle(tcell.StyleDefault)
	screen.Clear()

	c := &Console{screen: screen, done: make(chan struct{})}
	go c.watchKeys()
	return c, nil
}

func (c *Console) watchKeys() {
	for {
		select {
		case <-c.done:
			return
		default:
		}
		ev := c.screen.PollEvent()
		switch ev := ev.(type) {
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC ||
				(ev.Key() == tcell.KeyRune && ev.Rune() == 'q') {
				c.cancel.Store(true)
			}
		case *tcell.EventResize:
			c.screen.Sync()
		case nil:
			return // screen finalized
		}
	}
}

func (c *Console) Banner(s *session.State) {
	c.screen.Clear()
	style := tcell.StyleDefault.Bold(true)
	c.print(0, 0, style, bannerTitle)
	c.print(0, 1, tcell.StyleDefault, strings.Repeat("-", len(bannerTitle)))

	row := 2
	if s.UniqueNetworks() > 0 {
		name := strings.TrimSuffix(s.Filename(), ".csv")
		c.print(0, row, tcell.StyleDefault, "File: "+name)
		row++
		c.print(0, row, tcell.StyleDefault, fmt.Sprintf("Unique Networks Found: %d", s.UniqueNetworks()))
		row++
		c.print(0, row, tcell.StyleDefault, fmt.Sprintf("Distance: %.2fkm", s.DistanceMeters()/1000))
		row++
	}
	c.statusRow = row + 1
	c.screen.Show()
}

func (c *Console) Status(lines ...string) {
	for _, l := range lines {
		c.print(0, c.statusRow, tcell.StyleDefault, l)
		c.statusRow++
	}
	c.screen.Show()
}

func (c *Console) Error(msg string) {
	style := tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorRed)
	c.print(0, c.statusRow, style, " "+msg+" ")
	c.statusRow++
	c.screen.Show()
}

func (c *Console) CancelRequested() bool { return c.cancel.Load() }

// Close finalizes the screen. Safe to call more than once; the capture
// loop and main both release the display on their exit paths.
func (c *Console) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.screen.Fini()
	})
}

func (c *Console) print(x, y int, style tcell.Style, text string) {
	w, h := c.screen.Size()
	if y >= h {
		return
	}
	col := x
	for _, r := range text {
		if col >= w {
			break
		}
		c.screen.SetContent(col, y, r, nil, style)
		col++
	}
}
