package teststates

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/okian/plantcard/pkg/logger"
)

const randomFloatDivisor = 1000000

// sensor describes one simulated sensor type and its value range.
type sensor struct {
	kind     string
	unit     string
	min, max float64
	decimals int
}

// sensors covers every row type a plant card shows. Moisture dips below the
// usual 15 % floor so some cards go dry.
var sensors = []sensor{
	{kind: "moisture", unit: "%", min: 5, max: 70, decimals: 0},
	{kind: "battery", unit: "%", min: 0, max: 100, decimals: 0},
	{kind: "temperature", unit: "°C", min: 10, max: 35, decimals: 1},
	{kind: "illuminance", unit: "lx", min: 0, max: 20000, decimals: 0},
	{kind: "conductivity", unit: "µS/cm", min: 0, max: 2000, decimals: 0},
}

// getRandomFloat returns a random float64 between 0.0 and 1.0 using crypto/rand.
func getRandomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

func randomIndex(n int) int {
	i, _ := rand.Int(rand.Reader, big.NewInt(int64(n)))
	return int(i.Int64())
}

// EntityID names the sensor entity of a simulated plant.
func EntityID(plant int, kind string) string {
	return "sensor.plant_" + fmt.Sprintf("%03d", plant) + "_" + kind
}

// generateStates creates the configured number of states spread over the plants.
func generateStates(ctx context.Context, config *Config, stats *Stats) ([]State, error) {
	logger.Get().Info(ctx, "generating sensor states",
		logger.Int("numStates", config.NumStates),
		logger.Int("numPlants", config.NumPlants))

	if config.NumPlants <= 0 {
		return nil, fmt.Errorf("number of plants must be positive")
	}

	states := make([]State, 0, config.NumStates)
	now := time.Now().UTC()
	for i := 0; i < config.NumStates; i++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("context cancelled during state generation: %w", err)
		}
		plant := randomIndex(config.NumPlants)
		s := sensors[randomIndex(len(sensors))]
		states = append(states, generateSingleState(plant, s, now.Add(-time.Duration(randomIndex(86400))*time.Second)))
	}

	stats.StatesGenerated = len(states)
	logger.Get().Info(ctx, "generated states successfully", logger.Int("count", len(states)))
	return states, nil
}

// generateSingleState creates a reading for one sensor of one plant.
func generateSingleState(plant int, s sensor, changed time.Time) State {
	value := s.min + getRandomFloat()*(s.max-s.min)
	return State{
		Entity:      EntityID(plant, s.kind),
		State:       strconv.FormatFloat(value, 'f', s.decimals, 64),
		Unit:        s.unit,
		LastChanged: changed.Format(time.RFC3339),
	}
}
