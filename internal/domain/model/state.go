package model

import "time"

// State is the live value of one entity as reported by the home-automation bridge.
type State struct {
	Entity      string `json:"entity"`
	Value       string `json:"state"`
	Unit        string `json:"unit,omitempty"`
	LastChanged string `json:"last_changed,omitempty"`
}

// StateUpdate is a state change flowing through the update queue.
type StateUpdate struct {
	UpdateID   string    // unique id for tracing
	State      State     // new state
	ReceivedAt time.Time // when the update entered the system
}
