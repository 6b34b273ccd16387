// Package wigle formats capture output in the WigleWifi-1.6 CSV
// interchange format.
package wigle

import (
	"fmt"
	"time"

	"github.com/shaunagostinho/gowardrive/internal/wifi"
)

// ColumnHeader is the second line of every new output file.
const ColumnHeader = "MAC,SSID,AuthMode,FirstSeen,Channel,Frequency,RSSI,CurrentLatitude,CurrentLongitude,AltitudeMeters,AccuracyMeters,RCOIs,MfgrId,Type"

// DeviceInfo describes the capturing device for the preamble line.
type DeviceInfo struct {
	AppRelease string
	Model      string
	Release    string
	Device     string
	Display    string
	Board      string
	Brand      string
}

// DefaultDeviceInfo returns the preamble fields for this build.
func DefaultDeviceInfo(version string) DeviceInfo {
	return DeviceInfo{
		AppRelease: version,
		Model:      "M5Stack GPS Unit",
		Release:    version,
		Device:     "ESP32 M5Stack",
		Display:    "SPI TFT",
		Board:      "ESP32 M5Stack",
		Brand:      "Bruce",
	}
}

// Preamble builds the first line of a new output file.
func Preamble(info DeviceInfo) string {
	return fmt.Sprintf(
		"WigleWifi-1.6,appRelease=v%s,model=%s,release=v%s,device=%s,display=%s,board=%s,brand=%s,star=Sol,body=4,subBody=1",
		info.AppRelease, info.Model, info.Release, info.Device, info.Display, info.Board, info.Brand,
	)
}

// ChannelFrequency maps a 2.4 GHz channel number to its center
// frequency in MHz. Channel 14 sits outside the 5 MHz grid.
func ChannelFrequency(channel int) int {
	if channel == 14 {
		return 2484
	}
	return 2407 + channel*5
}

// Row formats one data row. Accuracy is the HDOP value used as a proxy
// for positional accuracy; vendor and RCOI columns stay empty.
func Row(n wifi.Network, seen time.Time, lat, lng, altitude, accuracy float64) string {
	return fmt.Sprintf("%s,%s,[%s],%s,%d,%d,%d,%.6f,%.6f,%.2f,%.2f,,,WIFI",
		n.BSSID,
		n.SSID,
		n.Auth,
		seen.Format("2006-01-02 15:04:05"),
		n.Channel,
		ChannelFrequency(n.Channel),
		n.RSSI,
		lat,
		lng,
		altitude,
		accuracy,
	)
}
