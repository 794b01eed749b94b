package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/maxsviluppo/Aitraffic/internal/config"
	"github.com/maxsviluppo/Aitraffic/internal/lib/search"
	"github.com/maxsviluppo/Aitraffic/internal/lib/telemetry"
	"github.com/maxsviluppo/Aitraffic/internal/services"
	"github.com/maxsviluppo/Aitraffic/internal/store"
)

const answer = "### Milano\n" +
	"| Mezzo | Partenza | Arrivo | Stato | Costo/Traffico | Note |\n" +
	"|---|---|---|---|---|---|\n" +
	"| 🚆 R 2012 | 08:15 | 09:02 | [RITARDO] | 5,60 € | <b>Binario 3</b> |\n" +
	`[GEO_DATA: [{"lat": 45.4862, "lng": 9.2044, "label": "Milano Centrale", "type": "TRAIN", "status": "RITARDO"},` +
	` {"lat": 45.0625, "lng": 7.6783, "label": "Torino Porta Nuova", "type": "TRAIN"}]]`

// MockProvider is a mock implementation of search.Provider
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) Generate(ctx context.Context, prompt string) (*search.Answer, error) {
	args := m.Called(ctx, prompt)
	a, _ := args.Get(0).(*search.Answer)
	return a, args.Error(1)
}

func (m *MockProvider) HealthCheck(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func newTestRouter(t *testing.T, provider search.Provider) http.Handler {
	t.Helper()
	st, err := store.Open(context.Background(), store.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	svc := services.NewTransitService(provider, st, config.DefaultConfig())
	return NewHandler(svc).Router()
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func searchOK(t *testing.T) (http.Handler, *MockProvider) {
	provider := &MockProvider{}
	provider.On("Generate", mock.Anything, mock.Anything).Return(&search.Answer{Text: answer}, nil)
	h := newTestRouter(t, provider)

	lat, lng := 45.4642, 9.19
	rec := do(t, h, http.MethodPost, "/api/v1/search", SearchRequest{Query: "Milano - Torino", Type: "TRAIN", Lat: &lat, Lng: &lng})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return h, provider
}

func TestSearch(t *testing.T) {
	h, provider := searchOK(t)

	rec := do(t, h, http.MethodGet, "/api/v1/results/0", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	result := decode[services.Result](t, rec)
	assert.Equal(t, "Milano - Torino", result.Query)
	assert.Equal(t, telemetry.TRAIN, result.Type)
	assert.True(t, result.Alert)
	assert.Len(t, result.Points, 2)
	require.NotNil(t, result.Location)
	assert.InDelta(t, 45.4642, result.Location.Lat, 1e-9)
	provider.AssertExpectations(t)
}

func TestSearch_Validation(t *testing.T) {
	h := newTestRouter(t, &MockProvider{})

	tests := []struct {
		name string
		body any
	}{
		{"empty query", SearchRequest{Type: "ALL"}},
		{"unknown type", SearchRequest{Query: "Roma", Type: "BUS"}},
		{"bad json", "not an object"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/api/v1/search", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.NotEmpty(t, decode[ErrorResponse](t, rec).Error)
		})
	}
}

func TestSearch_UpstreamErrors(t *testing.T) {
	tests := []struct {
		status  int
		code    int
		message string
	}{
		{401, http.StatusUnauthorized, search.MessageAuth},
		{429, http.StatusTooManyRequests, search.MessageQuota},
		{500, http.StatusBadGateway, search.MessageLink},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			provider := &MockProvider{}
			provider.On("Generate", mock.Anything, mock.Anything).Return(nil, search.NewStatusError(tt.status, "boom"))
			h := newTestRouter(t, provider)

			rec := do(t, h, http.MethodPost, "/api/v1/search", SearchRequest{Query: "Roma", Type: "ALL"})
			assert.Equal(t, tt.code, rec.Code)
			assert.Equal(t, tt.message, decode[ErrorResponse](t, rec).Message)

			results := decode[[]*services.Result](t, do(t, h, http.MethodGet, "/api/v1/results", nil))
			assert.Empty(t, results)
		})
	}
}

func TestResults_ListAndClear(t *testing.T) {
	h, _ := searchOK(t)

	results := decode[[]*services.Result](t, do(t, h, http.MethodGet, "/api/v1/results", nil))
	assert.Len(t, results, 1)

	rec := do(t, h, http.MethodDelete, "/api/v1/results", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	results = decode[[]*services.Result](t, do(t, h, http.MethodGet, "/api/v1/results", nil))
	assert.Empty(t, results)

	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/api/v1/results/0", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/api/v1/results/x", nil).Code)
}

func TestResultHTML(t *testing.T) {
	h, _ := searchOK(t)

	rec := do(t, h, http.MethodGet, "/api/v1/results/0/html", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")

	body := rec.Body.String()
	assert.Contains(t, body, "telemetry-alert")
	assert.Contains(t, body, "<table")
	assert.Contains(t, body, "&lt;b&gt;Binario 3&lt;/b&gt;")
	assert.NotContains(t, body, "GEO_DATA")
}

func TestResultMap(t *testing.T) {
	h, _ := searchOK(t)

	rec := do(t, h, http.MethodGet, "/api/v1/results/0/map", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var view map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Len(t, view["markers"], 2)
	assert.NotNil(t, view["user"])
}

func TestResultPoints_Near(t *testing.T) {
	h, _ := searchOK(t)

	all := decode[[]telemetry.MapPoint](t, do(t, h, http.MethodGet, "/api/v1/results/0/points", nil))
	assert.Len(t, all, 2)

	near := decode[[]telemetry.MapPoint](t, do(t, h, http.MethodGet, "/api/v1/results/0/points?near=10000", nil))
	require.Len(t, near, 1)
	assert.Equal(t, "Milano Centrale", near[0].Label)

	turin := decode[[]telemetry.MapPoint](t, do(t, h, http.MethodGet, "/api/v1/results/0/points?near=5000&lat=45.07&lng=7.68", nil))
	require.Len(t, turin, 1)
	assert.Equal(t, "Torino Porta Nuova", turin[0].Label)

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/api/v1/results/0/points?near=far", nil).Code)
}

func TestResultKML(t *testing.T) {
	h, _ := searchOK(t)

	rec := do(t, h, http.MethodGet, "/api/v1/results/0/points.kml", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/vnd.google-earth.kml+xml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "<kml")
	assert.Contains(t, rec.Body.String(), "Torino Porta Nuova")
}

func TestSavedSearches(t *testing.T) {
	provider := &MockProvider{}
	provider.On("Generate", mock.Anything, mock.Anything).Return(&search.Answer{Text: answer}, nil)
	h := newTestRouter(t, provider)

	rec := do(t, h, http.MethodPost, "/api/v1/saved", ToggleRequest{Query: "Milano - Torino", Type: "TRAIN"})
	require.Equal(t, http.StatusOK, rec.Code)
	toggled := decode[ToggleResponse](t, rec)
	assert.True(t, toggled.Added)
	id := toggled.Saved.ID
	require.NotEmpty(t, id)

	saved := decode[[]store.SavedSearch](t, do(t, h, http.MethodGet, "/api/v1/saved", nil))
	require.Len(t, saved, 1)
	assert.False(t, saved[0].LastKnownDelay)

	rec = do(t, h, http.MethodPost, "/api/v1/saved/"+id+"/run", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Milano - Torino", decode[services.Result](t, rec).Query)

	saved = decode[[]store.SavedSearch](t, do(t, h, http.MethodGet, "/api/v1/saved", nil))
	require.Len(t, saved, 1)
	assert.True(t, saved[0].LastKnownDelay)

	assert.Equal(t, http.StatusNoContent, do(t, h, http.MethodDelete, "/api/v1/saved/"+id, nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodDelete, "/api/v1/saved/"+id, nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodPost, "/api/v1/saved/"+id+"/run", nil).Code)

	rec = do(t, h, http.MethodPost, "/api/v1/saved", ToggleRequest{Query: "   ", Type: "ALL"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealth(t *testing.T) {
	provider := &MockProvider{}
	provider.On("HealthCheck", mock.Anything).Return(nil).Once()
	provider.On("HealthCheck", mock.Anything).Return(search.ErrUpstream).Once()
	h := newTestRouter(t, provider)

	rec := do(t, h, http.MethodGet, "/api/v1/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[services.HealthStatus](t, rec).Healthy)

	rec = do(t, h, http.MethodGet, "/api/v1/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `"healthy":false`))
}

func TestRunSaved_OptionalBody(t *testing.T) {
	provider := &MockProvider{}
	provider.On("Generate", mock.Anything, mock.Anything).Return(&search.Answer{Text: answer}, nil)
	h := newTestRouter(t, provider)

	rec := do(t, h, http.MethodPost, "/api/v1/saved", ToggleRequest{Query: "Milano - Torino", Type: "TRAIN"})
	require.Equal(t, http.StatusOK, rec.Code)
	id := decode[ToggleResponse](t, rec).Saved.ID

	// Chunked request with an empty body: ContentLength is unknown.
	req := httptest.NewRequest(http.MethodPost, "/api/v1/saved/"+id+"/run", strings.NewReader(""))
	req.ContentLength = -1
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Nil(t, decode[services.Result](t, rec).Location)

	lat, lng := 45.4642, 9.19
	rec = do(t, h, http.MethodPost, "/api/v1/saved/"+id+"/run", SearchRequest{Lat: &lat, Lng: &lng})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, decode[services.Result](t, rec).Location)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/saved/"+id+"/run", strings.NewReader("{"))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
