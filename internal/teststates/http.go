package teststates

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"
)

// HTTPClient wraps http.Client with timeout.
type HTTPClient struct {
	client *http.Client
}

// newHTTPClient creates a new HTTP client with timeout.
func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{client: &http.Client{Timeout: timeout}}
}

// Get performs a GET request.
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// Post performs a POST request with JSON body.
func (c *HTTPClient) Post(ctx context.Context, url string, body any) (*http.Response, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.client.Do(req)
}

// getJSON fetches url and decodes a 200 response into v.
func (c *HTTPClient) getJSON(ctx context.Context, url string, v any) (int, error) {
	resp, err := c.Get(ctx, url)
	if err != nil {
		return 0, err
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return resp.StatusCode, err
	}
	if resp.StatusCode != http.StatusOK {
		return resp.StatusCode, nil
	}
	return resp.StatusCode, json.Unmarshal(body, v)
}

// readResponseBody reads and closes the response body.
func readResponseBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// acceptedUpdates records which update ids the service acknowledged per entity.
type acceptedUpdates struct {
	mu  sync.Mutex
	ids map[string]map[string]struct{}
}

func newAcceptedUpdates() *acceptedUpdates {
	return &acceptedUpdates{ids: make(map[string]map[string]struct{})}
}

func (a *acceptedUpdates) add(entity, id string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	set, ok := a.ids[entity]
	if !ok {
		set = make(map[string]struct{})
		a.ids[entity] = set
	}
	set[id] = struct{}{}
}

func (a *acceptedUpdates) has(entity, id string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.ids[entity][id]
	return ok
}

func (a *acceptedUpdates) entities() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, 0, len(a.ids))
	for e := range a.ids {
		out = append(out, e)
	}
	return out
}

type submitResult int

const (
	resultAccepted submitResult = iota
	resultThrottled
	resultFailed
)

// submitStates posts states concurrently using a worker pool.
func submitStates(ctx context.Context, config *Config, states []State, stats *Stats) (*acceptedUpdates, error) {
	log.Printf("📤 Submitting %d states with %d workers...", len(states), config.Workers)

	client := newHTTPClient(config.Timeout)
	endpoint := config.BaseURL + "/states"
	accepted := newAcceptedUpdates()

	var (
		ok        atomic.Int64
		throttled atomic.Int64
		failed    atomic.Int64
		submitted atomic.Int64
	)

	stateChan := make(chan State, config.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for st := range stateChan {
				if ctx.Err() != nil {
					return
				}
				result, id := submitSingleState(ctx, client, endpoint, st)
				submitted.Add(1)
				switch result {
				case resultAccepted:
					ok.Add(1)
					accepted.add(st.Entity, id)
				case resultThrottled:
					throttled.Add(1)
				default:
					failed.Add(1)
				}
				if config.Verbose {
					log.Printf("%s -> %s (%d)", st.Entity, st.State, result)
				}
			}
		}()
	}

	go func() {
		defer close(stateChan)
		for _, st := range states {
			select {
			case <-ctx.Done():
				return
			case stateChan <- st:
			}
		}
	}()

	wg.Wait()

	stats.StatesSubmitted = int(submitted.Load())
	stats.StatesAccepted = int(ok.Load())
	stats.StatesThrottled = int(throttled.Load())
	stats.StatesFailed = int(failed.Load())

	log.Printf(`✅ State submission completed:
   Accepted: %d
   Throttled: %d
   Failed: %d
`, stats.StatesAccepted, stats.StatesThrottled, stats.StatesFailed)

	if err := ctx.Err(); err != nil {
		return accepted, err
	}
	return accepted, nil
}

// submitSingleState posts one state and returns how the service answered.
func submitSingleState(ctx context.Context, client *HTTPClient, endpoint string, st State) (submitResult, string) {
	resp, err := client.Post(ctx, endpoint, st)
	if err != nil {
		return resultFailed, ""
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return resultFailed, ""
	}

	switch resp.StatusCode {
	case http.StatusAccepted:
		var ack AckResponse
		if err := json.Unmarshal(body, &ack); err != nil || ack.Status != "accepted" {
			return resultFailed, ""
		}
		return resultAccepted, ack.UpdateID
	case http.StatusTooManyRequests:
		return resultThrottled, ""
	default:
		return resultFailed, ""
	}
}

func stateURL(base, entity string) string {
	return base + "/states/" + url.PathEscape(entity)
}

func cardURL(base, id string) string {
	return base + "/cards/" + url.PathEscape(id)
}
