// File: /services/routing_service.go
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/twpayne/go-polyline"
	"golang.org/x/time/rate"

	"trailcraft-api/models"
	"trailcraft-api/utils"
)

// Routing profiles understood by the directions provider.
const (
	ProfileFootWalking    = "foot-walking"
	ProfileCyclingRegular = "cycling-regular"
	ProfileDrivingCar     = "driving-car"
)

// IsValidProfile reports whether profile is one of the supported routing profiles.
func IsValidProfile(profile string) bool {
	switch profile {
	case ProfileFootWalking, ProfileCyclingRegular, ProfileDrivingCar:
		return true
	}
	return false
}

var errNoRoute = errors.New("no routes found in response")

// RoutingService snaps consecutive trail points to paths using OpenRouteService.
// A leg that cannot be routed becomes a straight segment.
type RoutingService struct {
	apiKey     string
	baseURL    string
	httpClient HTTPDoer
	limiter    *rate.Limiter
}

// NewRoutingService creates a directions client allowing requestsPerMinute calls.
func NewRoutingService(apiKey, baseURL string, requestsPerMinute int, doer HTTPDoer) *RoutingService {
	if doer == nil {
		doer = &http.Client{Timeout: 15 * time.Second}
	}
	if requestsPerMinute <= 0 {
		requestsPerMinute = 40
	}
	return &RoutingService{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: doer,
		limiter:    rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), requestsPerMinute),
	}
}

type orsDirectionsRequest struct {
	Coordinates      [][2]float64 `json:"coordinates"`
	Instructions     bool         `json:"instructions"`
	GeometrySimplify bool         `json:"geometry_simplify"`
}

type orsDirectionsResponse struct {
	Routes []struct {
		Summary struct {
			Distance float64 `json:"distance"`
			Duration float64 `json:"duration"`
		} `json:"summary"`
		Geometry string `json:"geometry"`
	} `json:"routes"`
}

// RouteTrail returns one segment per consecutive pair of points.
func (s *RoutingService) RouteTrail(ctx context.Context, points []models.TrailPoint, profile string) []models.RouteSegment {
	if len(points) < 2 {
		return []models.RouteSegment{}
	}
	if !IsValidProfile(profile) {
		profile = ProfileFootWalking
	}

	segments := make([]models.RouteSegment, 0, len(points)-1)
	for i := 0; i < len(points)-1; i++ {
		start, end := points[i], points[i+1]
		segment, err := s.routeLeg(ctx, start, end, profile)
		if err != nil {
			log.Printf("Routing failed for leg %d, falling back to straight line: %v", i, err)
			segment = StraightSegment(start, end)
		}
		segments = append(segments, segment)
	}
	return segments
}

func (s *RoutingService) routeLeg(ctx context.Context, start, end models.TrailPoint, profile string) (models.RouteSegment, error) {
	if s.apiKey == "" {
		return models.RouteSegment{}, errors.New("routing API key is not configured")
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return models.RouteSegment{}, fmt.Errorf("rate limiter: %w", err)
	}

	body, err := json.Marshal(orsDirectionsRequest{
		Coordinates: [][2]float64{
			{start.Longitude, start.Latitude},
			{end.Longitude, end.Latitude},
		},
	})
	if err != nil {
		return models.RouteSegment{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/directions/"+profile, bytes.NewReader(body))
	if err != nil {
		return models.RouteSegment{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return models.RouteSegment{}, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return models.RouteSegment{}, errors.New("routing rate limit exceeded")
	}
	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return models.RouteSegment{}, fmt.Errorf("routing API error %d: %s", resp.StatusCode, string(b))
	}

	var decoded orsDirectionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return models.RouteSegment{}, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(decoded.Routes) == 0 {
		return models.RouteSegment{}, errNoRoute
	}

	route := decoded.Routes[0]
	coords, _, err := polyline.DecodeCoords([]byte(route.Geometry))
	if err != nil {
		return models.RouteSegment{}, fmt.Errorf("failed to decode geometry: %w", err)
	}
	if len(coords) < 2 {
		return models.RouteSegment{}, errNoRoute
	}

	segment := models.RouteSegment{
		Coordinates:     make([][2]float64, len(coords)),
		DistanceMeters:  route.Summary.Distance,
		DurationSeconds: route.Summary.Duration,
	}
	for i, c := range coords {
		// polyline yields [lat, lon]
		segment.Coordinates[i] = [2]float64{c[1], c[0]}
	}
	return segment, nil
}

// StraightSegment connects two points directly with the great-circle distance and no duration.
func StraightSegment(start, end models.TrailPoint) models.RouteSegment {
	return models.RouteSegment{
		Coordinates: [][2]float64{
			{start.Longitude, start.Latitude},
			{end.Longitude, end.Latitude},
		},
		DistanceMeters: utils.DistanceMeters(start, end),
		Fallback:       true,
	}
}

// TotalRouteDistance sums segment distances in meters.
func TotalRouteDistance(segments []models.RouteSegment) float64 {
	var total float64
	for _, s := range segments {
		total += s.DistanceMeters
	}
	return total
}

// TotalRouteDuration sums segment durations in seconds.
func TotalRouteDuration(segments []models.RouteSegment) float64 {
	var total float64
	for _, s := range segments {
		total += s.DurationSeconds
	}
	return total
}

// CountFallbacks returns how many segments were not routed.
func CountFallbacks(segments []models.RouteSegment) int {
	n := 0
	for _, s := range segments {
		if s.Fallback {
			n++
		}
	}
	return n
}
