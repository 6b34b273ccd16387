package gps

import (
	"bytes"
	"fmt"
	"log"
	"math"
	"strconv"
	"strings"
	"time"

	"go.bug.st/serial"
)

// NMEAProvider reads standard NMEA 0183 sentences from a UART GPS.
// Compatible with u-blox NEO-M8N, the M5Stack GPS units and any other
// standard NMEA receiver.
type NMEAProvider struct {
	portPath string
	baudRate int
	port     serial.Port
	pending  []byte
	dec      decoder
}

// NMEAConfig holds configuration for the NMEA GPS provider.
type NMEAConfig struct {
	PortPath string `yaml:"port_path" json:"portPath"`
	BaudRate int    `yaml:"baud_rate" json:"baudRate"`
}

// NewNMEA creates a new NMEA GPS provider.
func NewNMEA(cfg NMEAConfig) *NMEAProvider {
	if cfg.BaudRate == 0 {
		cfg.BaudRate = 9600 // Standard NMEA default
	}
	return &NMEAProvider{
		portPath: cfg.PortPath,
		baudRate: cfg.BaudRate,
	}
}

func (n *NMEAProvider) Name() string { return "NMEA GPS" }

func (n *NMEAProvider) Connect() error {
	mode := &serial.Mode{
		BaudRate: n.baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(n.portPath, mode)
	if err != nil {
		return fmt.Errorf("gps: failed to open %s: %w", n.portPath, err)
	}
	// Short timeout so Poll returns promptly when the receiver is quiet.
	port.SetReadTimeout(50 * time.Millisecond)
	n.port = port
	log.Printf("[gps] connected to %s at %d baud", n.portPath, n.baudRate)
	return nil
}

func (n *NMEAProvider) Close() error {
	if n.port != nil {
		return n.port.Close()
	}
	return nil
}

// Poll reads whatever bytes the receiver has buffered and feeds them to
// the sentence decoder. A timed-out read with no bytes ends the drain.
func (n *NMEAProvider) Poll() (int, error) {
	if n.port == nil {
		return 0, fmt.Errorf("gps: not connected")
	}
	total := 0
	chunk := make([]byte, 512)
	for i := 0; i < 8; i++ {
		read, err := n.port.Read(chunk)
		if err != nil {
			return total, fmt.Errorf("gps: read %s: %w", n.portPath, err)
		}
		if read == 0 {
			break
		}
		total += read
		n.consume(chunk[:read])
	}
	return total, nil
}

func (n *NMEAProvider) LocationUpdated() bool { return n.dec.takeLocationUpdated() }
func (n *NMEAProvider) DateTimeUpdated() bool { return n.dec.takeDateTimeUpdated() }
func (n *NMEAProvider) Snapshot() Snapshot    { return n.dec.snap }

// consume splits the byte stream into lines and decodes each complete
// sentence. A partial trailing line is kept for the next Poll.
func (n *NMEAProvider) consume(data []byte) {
	n.pending = append(n.pending, data...)
	for {
		idx := bytes.IndexByte(n.pending, '\n')
		if idx < 0 {
			return
		}
		line := strings.TrimSpace(string(n.pending[:idx]))
		n.pending = n.pending[idx+1:]
		if line != "" {
			n.dec.feedLine(line)
		}
	}
}

// decoder turns validated NMEA sentences into a Snapshot. It is kept
// free of I/O so it can be tested with canned sentences.
type decoder struct {
	snap       Snapshot
	locUpdated bool
	dtUpdated  bool
}

func (d *decoder) takeLocationUpdated() bool {
	v := d.locUpdated
	d.locUpdated = false
	return v
}

func (d *decoder) takeDateTimeUpdated() bool {
	v := d.dtUpdated
	d.dtUpdated = false
	return v
}

func (d *decoder) feedLine(line string) {
	if !strings.HasPrefix(line, "$") {
		return
	}
	if !validateNMEAChecksum(line) {
		return
	}
	switch {
	case strings.HasPrefix(line, "$GPRMC"), strings.HasPrefix(line, "$GNRMC"):
		d.parseRMC(line)
	case strings.HasPrefix(line, "$GPGGA"), strings.HasPrefix(line, "$GNGGA"):
		d.parseGGA(line)
	}
}

func (d *decoder) parseRMC(line string) {
	// $GPRMC,hhmmss.ss,A,llll.ll,a,yyyyy.yy,a,x.x,x.x,ddmmyy,x.x,a*hh
	parts := splitNMEA(line)
	if len(parts) < 10 {
		return
	}

	gotClock := d.parseClock(parts[1])
	gotDate := d.parseDate(parts[9])
	if gotClock && gotDate {
		d.dtUpdated = true
		d.snap.HasDate = true
	}

	if parts[2] == "A" {
		d.snap.Latitude = parseNMEACoord(parts[3], parts[4])
		d.snap.Longitude = parseNMEACoord(parts[5], parts[6])
		d.locUpdated = true
	}
}

func (d *decoder) parseGGA(line string) {
	// $GPGGA,hhmmss.ss,llll.ll,a,yyyyy.yy,a,x,xx,x.x,x.x,M,x.x,M,x.x,xxxx*hh
	parts := splitNMEA(line)
	if len(parts) < 11 {
		return
	}

	if sats, err := strconv.Atoi(parts[7]); err == nil {
		d.snap.Satellites = sats
	}
	if hdop, err := strconv.ParseFloat(parts[8], 64); err == nil {
		d.snap.HDOP = hdop
	}
	if alt, err := strconv.ParseFloat(parts[9], 64); err == nil {
		d.snap.Altitude = alt
	}
}

func (d *decoder) parseClock(raw string) bool {
	if len(raw) < 6 {
		return false
	}
	h, err1 := strconv.Atoi(raw[0:2])
	m, err2 := strconv.Atoi(raw[2:4])
	s, err3 := strconv.Atoi(raw[4:6])
	if err1 != nil || err2 != nil || err3 != nil {
		return false
	}
	d.snap.Hour, d.snap.Minute, d.snap.Second = h, m, s
	return true
}

func (d *decoder) parseDate(raw string) bool {
	if len(raw) != 6 {
		return false
	}
	day, err1 := strconv.Atoi(raw[0:2])
	mon, err2 := strconv.Atoi(raw[2:4])
	yr, err3 := strconv.Atoi(raw[4:6])
	if err1 != nil || err2 != nil || err3 != nil {
		return false
	}
	d.snap.Day, d.snap.Month, d.snap.Year = day, mon, 2000+yr
	return true
}

// Time assembles the snapshot's date and clock into a UTC time.
// The zero time is returned until a date has been decoded.
func (s Snapshot) Time() time.Time {
	if !s.HasDate {
		return time.Time{}
	}
	return time.Date(s.Year, time.Month(s.Month), s.Day, s.Hour, s.Minute, s.Second, 0, time.UTC)
}

// splitNMEA splits a sentence and strips the checksum suffix.
func splitNMEA(line string) []string {
	// Strip checksum: everything after *
	if idx := strings.Index(line, "*"); idx >= 0 {
		line = line[:idx]
	}
	// Strip leading $
	if strings.HasPrefix(line, "$") {
		line = line[1:]
	}
	return strings.Split(line, ",")
}

// parseNMEACoord converts NMEA ddmm.mmmm format to decimal degrees.
func parseNMEACoord(raw, dir string) float64 {
	if raw == "" || dir == "" {
		return 0
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	deg := math.Floor(val / 100)
	min := val - deg*100
	result := deg + min/60

	if dir == "S" || dir == "W" {
		result = -result
	}
	return result
}

// validateNMEAChecksum checks the XOR checksum after *.
func validateNMEAChecksum(line string) bool {
	idx := strings.Index(line, "*")
	if idx < 0 || idx+3 > len(line) {
		return false
	}
	body := line[1:idx] // Between $ and *
	var calc byte
	for i := 0; i < len(body); i++ {
		calc ^= body[i]
	}
	expected, err := strconv.ParseUint(line[idx+1:idx+3], 16, 8)
	if err != nil {
		return false
	}
	return byte(expected) == calc
}
