package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"trailcraft-api/models"
	"trailcraft-api/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func doJSON(t *testing.T, r http.Handler, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func signedToken(t *testing.T) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "user-1"}).SignedString([]byte("secret"))
	require.NoError(t, err)
	return s
}

func alt(v float64) *float64 { return &v }

func trailPoints() []models.TrailPoint {
	return []models.TrailPoint{
		{ID: "p1", Timestamp: "2024-05-01T10:00:00Z", Latitude: 38.0676, Longitude: -120.5385, Altitude: alt(300)},
		{ID: "p2", Timestamp: "2024-05-01T10:05:00Z", Latitude: 38.0700, Longitude: -120.5300, Altitude: alt(350)},
		{ID: "p3", Timestamp: "2024-05-01T10:10:00Z", Latitude: 38.0750, Longitude: -120.5250, Altitude: alt(320)},
	}
}

type fakeSubmitter struct {
	mu     sync.Mutex
	tokens []string
	ack    *models.TrailAcknowledgement
	err    error
}

func (f *fakeSubmitter) Submit(_ context.Context, _ models.MutationPayload, token string) (*models.TrailAcknowledgement, error) {
	if token == "" {
		return nil, &services.AuthenticationError{Reason: "JWT token is required"}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens = append(f.tokens, token)
	return f.ack, f.err
}

type countingObserver struct {
	created   int
	outcomes  []string
	legs      int
	fallbacks int
}

func (o *countingObserver) TrailCreated() { o.created++ }

func (o *countingObserver) SubmissionObserved(outcome string, _ time.Duration) {
	o.outcomes = append(o.outcomes, outcome)
}

func (o *countingObserver) RoutingObserved(legs, fallbacks int) {
	o.legs += legs
	o.fallbacks += fallbacks
}
