// Package responses defines JSON response types served by the page server.
package responses

import "time"

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Uptime    float64   `json:"uptime"`
	Posts     int       `json:"posts"`
	Visible   int       `json:"visible"`
	Debug     bool      `json:"debug"`
}
