package wifi

import "math/rand"

// DemoScanner returns a fixed neighborhood of simulated access points
// with jittered signal levels, for bench runs without a radio.
type DemoScanner struct {
	nets []Network
}

func NewDemo() *DemoScanner {
	return &DemoScanner{
		nets: []Network{
			{BSSID: "AA:BB:CC:DD:EE:01", SSID: "DemoHome", Channel: 6, RSSI: -42, Auth: AuthWPA2PSK},
			{BSSID: "AA:BB:CC:DD:EE:02", SSID: "DemoCafe", Channel: 1, RSSI: -67, Auth: AuthOpen},
			{BSSID: "AA:BB:CC:DD:EE:03", SSID: "DemoOffice", Channel: 11, RSSI: -55, Auth: AuthWPA2Enterprise},
			{BSSID: "AA:BB:CC:DD:EE:04", SSID: "", Channel: 3, RSSI: -71, Auth: AuthWPA2PSK}, // hidden
			{BSSID: "AA:BB:CC:DD:EE:05", SSID: "DemoLegacy", Channel: 14, RSSI: -80, Auth: AuthWEP},
		},
	}
}

func (d *DemoScanner) Name() string { return "Demo Scanner (Simulated)" }
func (d *DemoScanner) Init() error  { return nil }
func (d *DemoScanner) Close() error { return nil }

func (d *DemoScanner) Scan() ([]Network, error) {
	out := make([]Network, len(d.nets))
	copy(out, d.nets)
	for i := range out {
		out[i].RSSI += rand.Intn(7) - 3
	}
	return out, nil
}
