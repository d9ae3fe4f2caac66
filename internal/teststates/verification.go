package teststates

import (
	"context"
	"fmt"
	"log"
	"net/http"
)

// cardView is the part of a card presentation the verifier reads.
type cardView struct {
	ID    string `json:"id"`
	Dry   bool   `json:"dry"`
	Items []struct {
		Name    string `json:"name"`
		Display string `json:"display"`
	} `json:"items"`
}

// verifyStates checks that every entity with an accepted update holds one of
// the acknowledged update ids.
func verifyStates(ctx context.Context, config *Config, accepted *acceptedUpdates, stats *Stats) error {
	entities := accepted.entities()
	log.Printf("🔍 Verifying %d entities...", len(entities))

	client := newHTTPClient(config.Timeout)
	var mismatched int
	for _, entity := range entities {
		var entry Entry
		code, err := client.getJSON(ctx, stateURL(config.BaseURL, entity), &entry)
		if err != nil {
			return fmt.Errorf("get state %s: %w", entity, err)
		}
		if code == http.StatusNotFound {
			stats.EntitiesMissing++
			continue
		}
		if code != http.StatusOK {
			return fmt.Errorf("get state %s: status %d", entity, code)
		}
		if !accepted.has(entity, entry.UpdateID) {
			mismatched++
			log.Printf("⚠️  %s holds unknown update %q", entity, entry.UpdateID)
			continue
		}
		stats.EntitiesVerified++
	}

	if stats.EntitiesMissing > 0 || mismatched > 0 {
		return fmt.Errorf("%d entities missing, %d with unknown updates", stats.EntitiesMissing, mismatched)
	}
	log.Println("✅ State verification completed")
	return nil
}

// checkCards evaluates every configured card and counts the dry ones.
func checkCards(ctx context.Context, config *Config, stats *Stats) error {
	client := newHTTPClient(config.Timeout)

	var list struct {
		Cards []CardSummary `json:"cards"`
	}
	code, err := client.getJSON(ctx, config.BaseURL+"/cards", &list)
	if err != nil {
		return fmt.Errorf("list cards: %w", err)
	}
	if code != http.StatusOK {
		return fmt.Errorf("list cards: status %d", code)
	}

	for _, summary := range list.Cards {
		var card cardView
		code, err := client.getJSON(ctx, cardURL(config.BaseURL, summary.ID), &card)
		if err != nil {
			return fmt.Errorf("get card %s: %w", summary.ID, err)
		}
		if code != http.StatusOK {
			return fmt.Errorf("get card %s: status %d", summary.ID, code)
		}
		stats.CardsEvaluated++
		if card.Dry {
			stats.CardsDry++
			log.Printf("🌵 %s is dry", card.ID)
		}
		if config.Verbose {
			for _, item := range card.Items {
				log.Printf("   %s: %s", item.Name, item.Display)
			}
		}
	}
	return nil
}
