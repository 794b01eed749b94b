package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dpup/prefab/logging"
	"github.com/google/uuid"

	"github.com/maxsviluppo/Aitraffic/internal/config"
	"github.com/maxsviluppo/Aitraffic/internal/lib/display"
	"github.com/maxsviluppo/Aitraffic/internal/lib/prompt"
	"github.com/maxsviluppo/Aitraffic/internal/lib/search"
	"github.com/maxsviluppo/Aitraffic/internal/lib/telemetry"
	"github.com/maxsviluppo/Aitraffic/internal/store"
)

var (
	ErrEmptyQuery     = errors.New("query is empty and no location was given")
	ErrInvalidType    = errors.New("unknown transport type")
	ErrResultNotFound = errors.New("result not found")
	ErrNoStore        = errors.New("saved searches are not configured")
)

// TimestampLayout is the wall clock format stamped on results.
const TimestampLayout = "15:04:05"

// SavedSearchStore persists saved searches.
type SavedSearchStore interface {
	Toggle(ctx context.Context, query string, t telemetry.TransportType) (store.SavedSearch, bool, error)
	List(ctx context.Context) ([]store.SavedSearch, error)
	Get(ctx context.Context, id string) (store.SavedSearch, error)
	Find(ctx context.Context, query string, t telemetry.TransportType) (store.SavedSearch, error)
	Delete(ctx context.Context, id string) error
	SetLastKnownDelay(ctx context.Context, id string, delayed bool) error
}

// Request is one user search.
type Request struct {
	Query    string                  `json:"query"`
	Type     telemetry.TransportType `json:"type"`
	Location *telemetry.Location     `json:"location,omitempty"`
}

// Result is a completed search as shown on the dashboard.
type Result struct {
	ID          string                  `json:"id"`
	Query       string                  `json:"query"`
	Type        telemetry.TransportType `json:"type"`
	Location    *telemetry.Location     `json:"location,omitempty"`
	Text        string                  `json:"text"`
	CleanedText string                  `json:"cleaned_text"`
	Points      []telemetry.MapPoint    `json:"points"`
	Sources     []search.Source         `json:"sources"`
	Nodes       []display.Node          `json:"nodes"`
	Alert       bool                    `json:"alert"`
	Timestamp   string                  `json:"timestamp"`
	CreatedAt   time.Time               `json:"created_at"`
}

// TransitService runs searches and keeps the most recent results.
type TransitService struct {
	provider search.Provider
	saved    SavedSearchStore
	config   *config.Config
	now      func() time.Time

	mu      sync.RWMutex
	history []*Result
}

// NewTransitService creates a new TransitService. saved may be nil, in which
// case the saved search operations return ErrNoStore.
func NewTransitService(provider search.Provider, saved SavedSearchStore, cfg *config.Config) *TransitService {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &TransitService{
		provider: provider,
		saved:    saved,
		config:   cfg,
		now:      time.Now,
	}
}

// Search runs a query and records it as the newest result. A failed search
// leaves the history untouched.
func (s *TransitService) Search(ctx context.Context, req Request) (*Result, error) {
	result, err := s.run(ctx, req)
	if err != nil {
		return nil, err
	}

	s.record(result)
	s.updateLastKnownDelay(ctx, result)
	return result, nil
}

// run resolves the request, calls the provider and builds the result without
// touching the history.
func (s *TransitService) run(ctx context.Context, req Request) (*Result, error) {
	req, err := s.normalize(req)
	if err != nil {
		return nil, err
	}

	p := prompt.Build(req.Query, req.Type, req.Location)

	start := s.now()
	answer, err := s.provider.Generate(ctx, p)
	if err != nil {
		logging.Errorw(ctx, "Search failed", "query", req.Query, "type", req.Type, "error", err)
		return nil, fmt.Errorf("search %q: %w", req.Query, err)
	}

	parsed := telemetry.Parse(answer.Text)
	if parsed.DirectiveErr != nil {
		logging.Warnw(ctx, "Ignoring malformed GEO_DATA directive", "query", req.Query, "error", parsed.DirectiveErr)
	}

	sources := answer.Sources
	if sources == nil {
		sources = []search.Source{}
	}

	now := s.now()
	result := &Result{
		ID:          uuid.NewString(),
		Query:       req.Query,
		Type:        req.Type,
		Location:    req.Location,
		Text:        answer.Text,
		CleanedText: parsed.CleanedText,
		Points:      parsed.Points,
		Sources:     sources,
		Nodes:       display.Render(parsed.CleanedText),
		Alert:       display.HasAlert(parsed.CleanedText),
		Timestamp:   now.Format(TimestampLayout),
		CreatedAt:   now,
	}

	logging.Infow(ctx, "Search completed",
		"query", req.Query, "type", req.Type, "points", len(result.Points),
		"sources", len(result.Sources), "alert", result.Alert, "duration", now.Sub(start))
	return result, nil
}

func (s *TransitService) normalize(req Request) (Request, error) {
	t, ok := telemetry.ParseTransportType(string(req.Type))
	if !ok {
		return req, fmt.Errorf("%w: %q", ErrInvalidType, req.Type)
	}
	req.Type = t

	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		if req.Location == nil {
			return req, ErrEmptyQuery
		}
		req.Query = s.defaultQuery()
	}
	return req, nil
}

func (s *TransitService) defaultQuery() string {
	if q := strings.TrimSpace(s.config.Search.DefaultQuery); q != "" {
		return q
	}
	return prompt.NearbyQuery
}

func (s *TransitService) record(result *Result) {
	size := s.config.History.Size
	if size <= 0 {
		size = config.DefaultConfig().History.Size
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	history := make([]*Result, 0, size)
	history = append(history, result)
	for _, r := range s.history {
		if len(history) == size {
			break
		}
		history = append(history, r)
	}
	s.history = history
}

func (s *TransitService) updateLastKnownDelay(ctx context.Context, result *Result) {
	if s.saved == nil {
		return
	}
	saved, err := s.saved.Find(ctx, result.Query, result.Type)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			logging.Warnw(ctx, "Failed to look up saved search", "query", result.Query, "error", err)
		}
		return
	}
	if err := s.saved.SetLastKnownDelay(ctx, saved.ID, result.Alert); err != nil {
		logging.Warnw(ctx, "Failed to update saved search", "id", saved.ID, "error", err)
	}
}

// Recent returns the recorded results, newest first.
func (s *TransitService) Recent() []*Result {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Result, len(s.history))
	copy(out, s.history)
	return out
}

// Result returns the i-th most recent result, 0 being the newest.
func (s *TransitService) Result(i int) (*Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i < 0 || i >= len(s.history) {
		return nil, ErrResultNotFound
	}
	return s.history[i], nil
}

// Clear drops every recorded result.
func (s *TransitService) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = nil
}

// ToggleSaved saves (query, type) or removes it when already saved. It
// reports whether the search is saved after the call.
func (s *TransitService) ToggleSaved(ctx context.Context, query string, t telemetry.TransportType) (store.SavedSearch, bool, error) {
	if s.saved == nil {
		return store.SavedSearch{}, false, ErrNoStore
	}
	parsed, ok := telemetry.ParseTransportType(string(t))
	if !ok {
		return store.SavedSearch{}, false, fmt.Errorf("%w: %q", ErrInvalidType, t)
	}
	return s.saved.Toggle(ctx, query, parsed)
}

// ListSaved returns every saved search, newest first.
func (s *TransitService) ListSaved(ctx context.Context) ([]store.SavedSearch, error) {
	if s.saved == nil {
		return nil, ErrNoStore
	}
	return s.saved.List(ctx)
}

// DeleteSaved removes a saved search.
func (s *TransitService) DeleteSaved(ctx context.Context, id string) error {
	if s.saved == nil {
		return ErrNoStore
	}
	return s.saved.Delete(ctx, id)
}

// RunSaved searches again for a saved query, optionally from loc.
func (s *TransitService) RunSaved(ctx context.Context, id string, loc *telemetry.Location) (*Result, error) {
	if s.saved == nil {
		return nil, ErrNoStore
	}
	saved, err := s.saved.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.Search(ctx, Request{Query: saved.Query, Type: saved.Type, Location: loc})
}

// CheckSaved re-runs a saved search in the background: its delay flag is
// updated but the result is not added to the history.
func (s *TransitService) CheckSaved(ctx context.Context, saved store.SavedSearch) (bool, error) {
	if s.saved == nil {
		return false, ErrNoStore
	}
	result, err := s.run(ctx, Request{Query: saved.Query, Type: saved.Type})
	if err != nil {
		return false, err
	}
	if err := s.saved.SetLastKnownDelay(ctx, saved.ID, result.Alert); err != nil {
		return result.Alert, err
	}
	return result.Alert, nil
}

// HealthStatus reports the state of the service dependencies.
type HealthStatus struct {
	Healthy  bool   `json:"healthy"`
	Provider string `json:"provider"`
	Store    string `json:"store"`
	Results  int    `json:"results"`
}

// Health checks the provider and the saved search store.
func (s *TransitService) Health(ctx context.Context) HealthStatus {
	status := HealthStatus{Healthy: true, Provider: "ok", Store: "ok"}

	if err := s.provider.HealthCheck(ctx); err != nil {
		status.Healthy = false
		status.Provider = search.UserMessage(err)
	}

	if s.saved == nil {
		status.Store = "disabled"
	} else if _, err := s.saved.List(ctx); err != nil {
		status.Healthy = false
		status.Store = err.Error()
	}

	status.Results = len(s.Recent())
	return status
}
