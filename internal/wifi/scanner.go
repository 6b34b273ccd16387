// Package wifi abstracts the access-point scan driver.
package wifi

// AuthMode enumerates the encryption modes a scan can report.
type AuthMode int

const (
	AuthOpen AuthMode = iota
	AuthWEP
	AuthWPAPSK
	AuthWPA2PSK
	AuthWPAWPA2PSK
	AuthWPA2Enterprise
	AuthWPA3PSK
	AuthWPA2WPA3PSK
	AuthWAPIPSK
	AuthUnknown
)

var authLabels = map[AuthMode]string{
	AuthOpen:           "OPEN",
	AuthWEP:            "WEP",
	AuthWPAPSK:         "WPA_PSK",
	AuthWPA2PSK:        "WPA2_PSK",
	AuthWPAWPA2PSK:     "WPA_WPA2_PSK",
	AuthWPA2Enterprise: "WPA2_ENTERPRISE",
	AuthWPA3PSK:        "WPA3_PSK",
	AuthWPA2WPA3PSK:    "WPA2_WPA3_PSK",
	AuthWAPIPSK:        "WAPI_PSK",
}

// String returns the fixed textual label used in output rows.
func (m AuthMode) String() string {
	if s, ok := authLabels[m]; ok {
		return s
	}
	return "UNKNOWN"
}

// Network is one observed access point. Values are valid only for the
// scan cycle that produced them.
type Network struct {
	BSSID   string   // Uppercase colon-hex hardware address
	SSID    string   // May be empty for hidden networks
	Channel int      // 2.4 GHz channel number
	RSSI    int      // Signal strength, dBm
	Auth    AuthMode // Encryption mode
}

// Scanner is the interface for WiFi scan drivers. Scan blocks until the
// radio sweep completes; there is no mid-scan cancellation point.
type Scanner interface {
	Name() string
	// Init puts the radio into a disconnected client mode.
	Init() error
	Close() error
	Scan() ([]Network, error)
}
