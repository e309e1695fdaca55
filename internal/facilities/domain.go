package facilities

import "time"

// WiFiNetwork is an on-site network credential record.
type WiFiNetwork struct {
	ID        int64     `json:"id"`
	SSID      string    `json:"ssid"`
	Password  string    `json:"password"`
	Location  string    `json:"location"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// WiFiInput creates or updates a network record.
type WiFiInput struct {
	SSID     string `json:"ssid"`
	Password string `json:"password"`
	Location string `json:"location"`
	Active   bool   `json:"active"`
}

// Material transaction directions.
const (
	DirectionIn  = "in"
	DirectionOut = "out"
)

// MaterialTransaction logs teaching material stock moving in or out.
type MaterialTransaction struct {
	ID         int64     `json:"id"`
	Material   string    `json:"material"`
	Direction  string    `json:"direction"`
	Quantity   int       `json:"quantity"`
	Note       string    `json:"note,omitempty"`
	RecordedBy int64     `json:"recorded_by"`
	CreatedAt  time.Time `json:"created_at"`
}

// MaterialInput records a stock movement.
type MaterialInput struct {
	Material  string `json:"material"`
	Direction string `json:"direction"`
	Quantity  int    `json:"quantity"`
	Note      string `json:"note"`
}
