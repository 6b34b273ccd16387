package capture

// Status is a point-in-time view of the session, emitted after every
// loop iteration for display layers and the live-status server.
type Status struct {
	File           string  `json:"file"`
	UniqueNetworks int     `json:"uniqueNetworks"`
	DistanceKm     float64 `json:"distanceKm"`
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	Satellites     int     `json:"satellites"`
	HDOP           float64 `json:"hdop"`
	Stamp          int64   `json:"stamp"` // Unix ms
}
