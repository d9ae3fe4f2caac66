package teststates

import "time"

// Config holds configuration for the state feed test.
type Config struct {
	BaseURL    string        // Base URL of the service
	NumStates  int           // Number of states to generate
	NumPlants  int           // Number of simulated plants
	Workers    int           // Number of concurrent workers
	Timeout    time.Duration // HTTP request timeout
	Settle     time.Duration // Wait between submission and verification
	OutputFile string        // Output file for states
	LogFile    string        // Log file for test output
	Verbose    bool          // Enable verbose logging
}

// State is one sensor state as posted to /states.
type State struct {
	Entity      string `json:"entity"`
	State       string `json:"state"`
	Unit        string `json:"unit,omitempty"`
	LastChanged string `json:"last_changed,omitempty"`
}

// AckResponse represents the response from state submission.
type AckResponse struct {
	Status   string `json:"status"`
	UpdateID string `json:"update_id"`
}

// Entry is a stored state as returned by GET /states/{entity}.
type Entry struct {
	State    State  `json:"state"`
	UpdateID string `json:"update_id"`
}

// CardSummary is one element of GET /cards.
type CardSummary struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Entities int    `json:"entities"`
}

// Stats holds test statistics.
type Stats struct {
	StatesGenerated  int
	StatesSubmitted  int
	StatesAccepted   int
	StatesThrottled  int
	StatesFailed     int
	EntitiesVerified int
	EntitiesMissing  int
	CardsEvaluated   int
	CardsDry         int
	StartTime        time.Time
	EndTime          time.Time
	Duration         time.Duration
}
