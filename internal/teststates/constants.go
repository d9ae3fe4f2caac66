package teststates

import "time"

// Worker configuration constants.
const (
	WorkerChannelMultiplier = 2
)

// Runner configuration constants.
const (
	DefaultSettleDelay   = 2 * time.Second
	PercentageMultiplier = 100
)
