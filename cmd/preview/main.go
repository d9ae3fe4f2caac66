// Command preview renders configured cards in the terminal from a file of sensor states.
//
//	preview -config cards.yaml -states states.yaml [-card ficus] [-width 30]
//
// The states file holds a list of entity states:
//
//	states:
//	  - entity: sensor.ficus_moisture
//	    state: 12
//	    unit: "%"
//	    last_changed: "2024-06-01T12:00:00Z"
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/okian/plantcard/internal/adapters/preview"
	app "github.com/okian/plantcard/internal/app"
	"github.com/okian/plantcard/internal/config"
	"github.com/okian/plantcard/internal/domain/model"
	"github.com/okian/plantcard/internal/domain/relative"
	"github.com/okian/plantcard/pkg/logger"
)

func main() {
	var (
		configPath = flag.String("config", os.Getenv("PLANTCARD_CONFIG"), "YAML file with card definitions")
		statesPath = flag.String("states", "", "YAML file with entity states")
		cardID     = flag.String("card", "", "render only this card")
		width      = flag.Int("width", 30, "range bar width in cells")
		noIcons    = flag.Bool("no-icons", false, "hide the icon column")
	)
	flag.Parse()

	if err := logger.Init(logger.WithOutput(os.Stderr)); err != nil {
		fmt.Fprintln(os.Stderr, "failed to initialize logging:", err)
		os.Exit(1)
	}

	opts := []preview.Option{preview.WithBarWidth(*width), preview.WithIcons(!*noIcons)}
	if err := run(context.Background(), os.Stdout, *configPath, *statesPath, *cardID, time.Now(), opts...); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, w io.Writer, configPath, statesPath, cardID string, now time.Time, opts ...preview.Option) error {
	cfg, err := config.LoadFile(ctx, configPath)
	if err != nil {
		return err
	}
	strategy, err := cfg.Strategy()
	if err != nil {
		return err
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	states, err := loadStates(statesPath)
	if err != nil {
		return err
	}

	formatter := relative.New(
		relative.WithDateFormatter(relative.LayoutFormatter(cfg.DateLayout, loc)),
		relative.WithLocation(loc),
	)
	eval := app.NewEvaluator(strategy, formatter, logger.Named("preview"))
	renderer := preview.New(opts...)

	rendered := 0
	for _, card := range cfg.Cards {
		if cardID != "" && card.ID != cardID {
			continue
		}
		fmt.Fprintln(w, renderer.Render(eval.EvaluateCard(ctx, card, states, now)))
		rendered++
	}
	if rendered == 0 {
		if cardID != "" {
			return fmt.Errorf("%w: %s", app.ErrUnknownCard, cardID)
		}
		return fmt.Errorf("no cards configured")
	}
	return nil
}

// loadStates reads a states file. An empty path yields no states, so every item
// renders as unavailable.
func loadStates(path string) (app.StateMap, error) {
	states := app.StateMap{}
	if path == "" {
		return states, nil
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("load states %s: %w", path, err)
	}
	var list []model.State
	if err := k.UnmarshalWithConf("states", &list, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, fmt.Errorf("decode states %s: %w", path, err)
	}
	for _, st := range list {
		if st.Entity == "" {
			continue
		}
		states[st.Entity] = st
	}
	return states, nil
}
