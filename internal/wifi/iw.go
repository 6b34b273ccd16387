package wifi

import (
	"fmt"
	"log"
	"math"
	"os/exec"
	"strconv"
	"strings"
)

// IWScanner drives a Linux wireless interface through the iw(8) tool.
type IWScanner struct {
	iface string
}

// NewIW creates a scanner for the given interface (e.g. wlan0).
func NewIW(iface string) *IWScanner {
	return &IWScanner{iface: iface}
}

func (s *IWScanner) Name() string { return "iw " + s.iface }

// Init brings the interface up and drops any association so the radio
// is a plain disconnected client before the first sweep.
func (s *IWScanner) Init() error {
	if out, err := exec.Command("ip", "link", "set", s.iface, "up").CombinedOutput(); err != nil {
		return fmt.Errorf("wifi: bring up %s: %v (%s)", s.iface, err, strings.TrimSpace(string(out)))
	}
	// Disconnect is best-effort; it fails harmlessly when not associated.
	if err := exec.Command("iw", "dev", s.iface, "disconnect").Run(); err != nil {
		log.Printf("[wifi] disconnect %s: %v", s.iface, err)
	}
	return nil
}

func (s *IWScanner) Close() error { return nil }

// Scan runs one sweep and parses the BSS list.
func (s *IWScanner) Scan() ([]Network, error) {
	out, err := exec.Command("iw", "dev", s.iface, "scan").Output()
	if err != nil {
		return nil, fmt.Errorf("wifi: scan %s: %w", s.iface, err)
	}
	return parseIWScan(string(out)), nil
}

// bssInfo accumulates the attributes of one BSS block during parsing.
type bssInfo struct {
	net     Network
	privacy bool
	hasRSN  bool
	hasWPA  bool
	sae     bool
	psk     bool
	eap     bool
}

// parseIWScan extracts networks from `iw dev <ifc> scan` output.
func parseIWScan(out string) []Network {
	var nets []Network
	var cur *bssInfo

	flush := func() {
		if cur == nil {
			return
		}
		cur.net.Auth = cur.resolveAuth()
		nets = append(nets, cur.net)
		cur = nil
	}

	for _, raw := range strings.Split(out, "\n") {
		line := strings.TrimSpace(raw)
		switch {
		case strings.HasPrefix(raw, "BSS ") && len(line) >= 21:
			flush()
			cur = &bssInfo{}
			cur.net.BSSID = strings.ToUpper(line[4:21])
		case cur == nil:
			// Skip preamble before the first BSS block.
		case strings.HasPrefix(line, "SSID: "):
			cur.net.SSID = strings.TrimPrefix(line, "SSID: ")
		case strings.HasPrefix(line, "signal: "):
			v := strings.TrimSuffix(strings.TrimPrefix(line, "signal: "), " dBm")
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				cur.net.RSSI = int(math.Round(f))
			}
		case strings.HasPrefix(line, "DS Parameter set: channel "):
			if n, err := strconv.Atoi(strings.TrimPrefix(line, "DS Parameter set: channel ")); err == nil {
				cur.net.Channel = n
			}
		case strings.HasPrefix(line, "* primary channel: "):
			if cur.net.Channel == 0 {
				if n, err := strconv.Atoi(strings.TrimPrefix(line, "* primary channel: ")); err == nil {
					cur.net.Channel = n
				}
			}
		case strings.HasPrefix(line, "capability:"):
			cur.privacy = strings.Contains(line, "Privacy")
		case strings.HasPrefix(line, "RSN:"):
			cur.hasRSN = true
		case strings.HasPrefix(line, "WPA:"):
			cur.hasWPA = true
		case strings.HasPrefix(line, "* Authentication suites:"):
			if strings.Contains(line, "SAE") {
				cur.sae = true
			}
			if strings.Contains(line, "PSK") {
				cur.psk = true
			}
			if strings.Contains(line, "IEEE 802.1X") {
				cur.eap = true
			}
		}
	}
	flush()
	return nets
}

func (b *bssInfo) resolveAuth() AuthMode {
	switch {
	case !b.privacy:
		return AuthOpen
	case b.hasRSN && b.hasWPA:
		return AuthWPAWPA2PSK
	case b.hasRSN && b.sae && b.psk:
		return AuthWPA2WPA3PSK
	case b.hasRSN && b.sae:
		return AuthWPA3PSK
	case b.hasRSN && b.eap:
		return AuthWPA2Enterprise
	case b.hasRSN:
		return AuthWPA2PSK
	case b.hasWPA:
		return AuthWPAPSK
	default:
		return AuthWEP
	}
}
