// Package ingest holds what every import source reports back.
package ingest

// Result holds the outcome of an ingest operation.
type Result struct {
	WorkoutsReceived int `json:"workouts_received"`
	WorkoutsInserted int `json:"workouts_inserted"`
	WorkoutsReplaced int `json:"workouts_replaced"`

	SetsReceived int   `json:"sets_received"`
	SetsInserted int64 `json:"sets_inserted"`
	PRsDetected  int   `json:"prs_detected"`

	Message string `json:"message,omitempty"`
}
