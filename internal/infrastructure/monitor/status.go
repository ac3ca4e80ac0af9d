package monitor

import "time"

type Status struct {
	Storage   bool      `json:"storage"`
	Sessions  bool      `json:"sessions"`
	LastCheck time.Time `json:"last_check"`
}
