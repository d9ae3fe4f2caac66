package service

import (
	"context"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/okian/plantcard/internal/domain/gradient"
	"github.com/okian/plantcard/internal/domain/icon"
	"github.com/okian/plantcard/internal/domain/model"
	"github.com/okian/plantcard/internal/domain/reading"
	"github.com/okian/plantcard/internal/domain/relative"
	"github.com/okian/plantcard/internal/domain/thresholds"
	"github.com/okian/plantcard/pkg/logger"
	"github.com/okian/plantcard/pkg/metrics"
)

// imagePrefix is where the frontend serves user-uploaded card images from.
const imagePrefix = "/local/"

// StateProvider looks up the live state of an entity.
type StateProvider interface {
	State(entity string) (model.State, bool)
}

// StateMap is a StateProvider over a plain map.
type StateMap map[string]model.State

// State implements StateProvider.
func (m StateMap) State(entity string) (model.State, bool) {
	st, ok := m[entity]
	return st, ok
}

// Evaluator turns card configuration plus live states into presentations.
// It holds no mutable state and is safe for concurrent use.
type Evaluator struct {
	strategy  icon.Strategy
	formatter *relative.Formatter
	logger    logger.Logger
}

// NewEvaluator builds an evaluator. A nil formatter uses relative defaults.
func NewEvaluator(strategy icon.Strategy, formatter *relative.Formatter, log logger.Logger) *Evaluator {
	if formatter == nil {
		formatter = relative.New()
	}
	if log == nil {
		log = logger.Get().Named("evaluator")
	}
	return &Evaluator{strategy: strategy, formatter: formatter, logger: log}
}

// EvaluateCard computes the presentation of every item of card at now. Evaluating the
// same inputs twice yields identical output.
func (e *Evaluator) EvaluateCard(ctx context.Context, card model.CardConfig, states StateProvider, now time.Time) model.CardPresentation {
	start := time.Now()

	out := model.CardPresentation{
		ID:    card.ID,
		Title: card.Title,
		Items: make([]model.Presentation, 0, len(card.Entities)),
		Size:  card.Size(),
	}
	if card.Image != "" {
		out.Image = imagePrefix + card.Image
	}

	for _, item := range card.Entities {
		st, _ := states.State(item.Entity)
		p, dry := e.evaluateItem(ctx, card, item, st, now)
		out.Items = append(out.Items, p)
		out.Dry = out.Dry || dry
	}
	if out.Dry {
		out.DryIcon = icon.Resolve(icon.TypeDry, card.CustomIcons)
	}

	metrics.RecordCardEvaluated(card.ID, float64(time.Since(start).Microseconds())/1000)
	return out
}

func (e *Evaluator) evaluateItem(ctx context.Context, card model.CardConfig, item model.ItemConfig, st model.State, now time.Time) (model.Presentation, bool) {
	r := reading.Parse(st.Value)

	itemMin, itemMax := item.Bounds()
	scopeMin, scopeMax := card.Bounds()
	rng := thresholds.ResolveRange(itemMin, itemMax, scopeMin, scopeMax)
	palette := thresholds.ResolvePalette(item.Colors(), card.Colors())
	cls := thresholds.Classify(r, rng)

	name := displayName(item)
	display := displayState(r, st.Value, st.Unit)
	compact := item.Compact || card.Compact

	p := model.Presentation{
		Entity:         item.Entity,
		Type:           item.Type,
		Name:           name,
		Classification: cls,
		Range:          model.NewRangeView(rng),
		Icon:           e.icon(ctx, item, card.CustomIcons, r),
		Title:          name + ": " + display,
		Compact:        compact,
	}
	if isPercentage(item.Type, st.Unit) {
		spec := gradient.Build(r, rng, palette)
		p.Gradient = &spec
	}
	if !compact {
		p.Display = display
		if card.ShowLastChanged && st.LastChanged != "" {
			p.LastUpdated = "Updated " + e.lastChanged(ctx, item, now, st.LastChanged)
		}
	}

	metrics.RecordItemEvaluated(item.Type, string(cls))
	if !r.Available() {
		metrics.RecordUnavailableReading(item.Type)
	}

	return p, item.Type == icon.TypeMoisture && cls == thresholds.Below
}

func (e *Evaluator) icon(ctx context.Context, item model.ItemConfig, custom map[string]string, r reading.Reading) icon.Tier {
	base := icon.Resolve(item.Type, custom)
	tier := icon.SelectFor(item.Type, base, r, icon.WithStrategy(e.strategy))
	if tier != "" {
		return tier
	}
	metrics.RecordIconFallback(item.Type)
	e.logger.Warn(ctx, "missing icon for sensor type, using fallback",
		logger.String("type", item.Type),
		logger.String("entity", item.Entity),
	)
	return icon.Fallback
}

func (e *Evaluator) lastChanged(ctx context.Context, item model.ItemConfig, now time.Time, raw string) string {
	t, ok := e.formatter.Parse(raw)
	if !ok {
		metrics.RecordUnparsableTimestamp()
		e.logger.Debug(ctx, "unparsable last_changed", logger.String("entity", item.Entity), logger.String("raw", raw))
		return raw
	}
	return e.formatter.FormatTime(now, t)
}

// displayName is the configured name, else the capitalised type.
func displayName(item model.ItemConfig) string {
	if item.Name != "" {
		return item.Name
	}
	if item.Type == "" {
		return "Unknown"
	}
	r, size := utf8.DecodeRuneInString(item.Type)
	return string(unicode.ToUpper(r)) + item.Type[size:]
}

// displayState renders a value with its unit. Percentages get a separating space.
func displayState(r reading.Reading, raw, unit string) string {
	if !r.Available() {
		if raw != "" {
			return raw
		}
		return string(thresholds.Unavailable)
	}
	switch unit {
	case "":
		return r.String()
	case "%":
		return r.String() + " %"
	default:
		return r.String() + unit
	}
}

// isPercentage reports whether values of this item live on the 0..100 scale the bar draws.
func isPercentage(sensorType, unit string) bool {
	if strings.TrimSpace(unit) == "%" {
		return true
	}
	switch sensorType {
	case icon.TypeMoisture, icon.TypeBattery, icon.TypeHumidity:
		return true
	default:
		return false
	}
}
