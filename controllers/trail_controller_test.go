package controllers

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trailcraft-api/middleware"
	"trailcraft-api/models"
	"trailcraft-api/repositories"
	"trailcraft-api/services"
	"trailcraft-api/utils"
)

func setupTrailRouter(submitter services.TrailSubmitter, observer Observer) (*gin.Engine, *repositories.MemoryTrailRepository) {
	repo := repositories.NewMemoryTrailRepository()
	tc := NewTrailController(TrailControllerOptions{Repo: repo, Submitter: submitter, Observer: observer})

	r := gin.New()
	trails := r.Group("/api/trails")
	trails.GET("", middleware.PaginationDefaults(), tc.GetTrails)
	trails.POST("", tc.CreateTrail)
	trails.POST("/metrics", tc.ComputeMetrics)
	trails.GET("/:id", tc.GetTrail)
	trails.PUT("/:id", tc.UpdateTrail)
	trails.DELETE("/:id", tc.DeleteTrail)
	trails.GET("/:id/mutation", tc.GetMutation)
	trails.GET("/:id/export.kml", tc.ExportKML)
	trails.POST("/:id/submit", middleware.RequireBearerToken(), tc.SubmitTrail)
	return r, repo
}

func createBody() gin.H {
	return gin.H{
		"name":    "Angels Camp Loop",
		"country": "USA",
		"city":    "Angels Camp",
		"points":  trailPoints(),
	}
}

func TestCreateTrail(t *testing.T) {
	obs := &countingObserver{}
	r, repo := setupTrailRouter(&fakeSubmitter{}, obs)

	rec := doJSON(t, r, http.MethodPost, "/api/trails", createBody(), nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Data models.Trail `json:"data"`
	}
	decode(t, rec, &resp)
	assert.Equal(t, uint(1), resp.Data.ID)
	assert.True(t, resp.Data.IsActive)
	assert.Equal(t, 38.0676, resp.Data.Latitude)
	assert.Greater(t, resp.Data.DistanceMeters, 0.0)
	assert.Equal(t, services.EstimateDurationMillis(resp.Data.DistanceMeters), resp.Data.ApproximateTimeMillis)
	assert.Equal(t, 1, obs.created)

	stored, err := repo.Get(1)
	require.NoError(t, err)
	assert.Len(t, stored.Points, 3)
}

func TestCreateTrail_AssignsMissingPointIDs(t *testing.T) {
	r, repo := setupTrailRouter(&fakeSubmitter{}, nil)
	body := createBody()
	points := trailPoints()
	points[1].ID = ""
	body["points"] = points

	rec := doJSON(t, r, http.MethodPost, "/api/trails", body, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	stored, err := repo.Get(1)
	require.NoError(t, err)
	assert.NotEmpty(t, stored.Points[1].ID)
}

func TestCreateTrail_ValidationErrors(t *testing.T) {
	r, _ := setupTrailRouter(&fakeSubmitter{}, nil)

	rec := doJSON(t, r, http.MethodPost, "/api/trails", gin.H{"points": trailPoints()}, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp utils.ValidationErrorResponse
	decode(t, rec, &resp)
	fields := map[string]bool{}
	for _, e := range resp.Errors {
		fields[e.Field] = true
	}
	assert.True(t, fields["name"])
	assert.True(t, fields["country"])
	assert.True(t, fields["city"])

	body := createBody()
	body["points"] = trailPoints()[:1]
	rec = doJSON(t, r, http.MethodPost, "/api/trails", body, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Insufficient points")
}

func TestCreateTrail_RejectsNegativeOverrides(t *testing.T) {
	r, _ := setupTrailRouter(&fakeSubmitter{}, nil)

	for field, value := range map[string]interface{}{"distance": -500, "approximate_time": -1} {
		body := createBody()
		body[field] = value

		rec := doJSON(t, r, http.MethodPost, "/api/trails", body, nil)
		require.Equal(t, http.StatusBadRequest, rec.Code, field)

		var resp utils.ValidationErrorResponse
		decode(t, rec, &resp)
		require.Len(t, resp.Errors, 1, field)
		assert.Equal(t, field, resp.Errors[0].Field)
	}
}

func TestCreateTrail_KeepsInactiveFlag(t *testing.T) {
	r, repo := setupTrailRouter(&fakeSubmitter{}, nil)
	body := createBody()
	body["is_active"] = false

	require.Equal(t, http.StatusCreated, doJSON(t, r, http.MethodPost, "/api/trails", body, nil).Code)

	stored, err := repo.Get(1)
	require.NoError(t, err)
	assert.False(t, stored.IsActive)
}

func TestGetTrail(t *testing.T) {
	r, _ := setupTrailRouter(&fakeSubmitter{}, nil)
	require.Equal(t, http.StatusCreated, doJSON(t, r, http.MethodPost, "/api/trails", createBody(), nil).Code)

	rec := doJSON(t, r, http.MethodGet, "/api/trails/1", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"elevation_gain_meters":50`)

	assert.Equal(t, http.StatusNotFound, doJSON(t, r, http.MethodGet, "/api/trails/99", nil, nil).Code)

	rec = doJSON(t, r, http.MethodGet, "/api/trails/abc", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid trail ID")
}

func TestGetTrails_Paginates(t *testing.T) {
	r, _ := setupTrailRouter(&fakeSubmitter{}, nil)
	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusCreated, doJSON(t, r, http.MethodPost, "/api/trails", createBody(), nil).Code)
	}

	rec := doJSON(t, r, http.MethodGet, "/api/trails?page=2&limit=2", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data       []models.Trail `json:"data"`
		Total      int64          `json:"total"`
		TotalPages int            `json:"total_pages"`
	}
	decode(t, rec, &resp)
	assert.Equal(t, int64(3), resp.Total)
	assert.Equal(t, 2, resp.TotalPages)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, uint(3), resp.Data[0].ID)
}

func TestUpdateAndDeleteTrail(t *testing.T) {
	r, repo := setupTrailRouter(&fakeSubmitter{}, nil)
	require.Equal(t, http.StatusCreated, doJSON(t, r, http.MethodPost, "/api/trails", createBody(), nil).Code)

	rec := doJSON(t, r, http.MethodPut, "/api/trails/1", gin.H{"name": "Renamed", "points": trailPoints()[1:]}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	stored, err := repo.Get(1)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", stored.Name)
	assert.Equal(t, "USA", stored.Country)
	assert.Equal(t, 38.0700, stored.Latitude)

	rec = doJSON(t, r, http.MethodPut, "/api/trails/1", gin.H{"city": ""}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Equal(t, http.StatusOK, doJSON(t, r, http.MethodDelete, "/api/trails/1", nil, nil).Code)
	assert.Equal(t, http.StatusNotFound, doJSON(t, r, http.MethodDelete, "/api/trails/1", nil, nil).Code)
}

func TestGetMutation(t *testing.T) {
	r, _ := setupTrailRouter(&fakeSubmitter{}, nil)
	body := createBody()
	body["name"] = `Say "hi"`
	require.Equal(t, http.StatusCreated, doJSON(t, r, http.MethodPost, "/api/trails", body, nil).Code)

	rec := doJSON(t, r, http.MethodGet, "/api/trails/1/mutation", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Mutation string                 `json:"mutation"`
		Payload  models.MutationPayload `json:"payload"`
	}
	decode(t, rec, &resp)
	assert.True(t, strings.HasPrefix(resp.Mutation, "mutation CreateTrail"))
	assert.Contains(t, resp.Mutation, `name: "Say \"hi\""`)
	assert.Equal(t, `Say "hi"`, resp.Payload.Name)
	assert.Empty(t, resp.Payload.ImagesIDs)
}

func TestSubmitTrail(t *testing.T) {
	obs := &countingObserver{}
	submitter := &fakeSubmitter{ack: &models.TrailAcknowledgement{ID: "ext-1"}}
	r, _ := setupTrailRouter(submitter, obs)
	require.Equal(t, http.StatusCreated, doJSON(t, r, http.MethodPost, "/api/trails", createBody(), nil).Code)

	rec := doJSON(t, r, http.MethodPost, "/api/trails/1/submit", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, submitter.tokens)

	token := signedToken(t)
	rec = doJSON(t, r, http.MethodPost, "/api/trails/1/submit", nil, map[string]string{"Authorization": "Bearer " + token})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"id":"ext-1"`)
	assert.Equal(t, []string{token}, submitter.tokens)
	assert.Equal(t, []string{"success"}, obs.outcomes)
}

func TestSubmitTrail_ErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"auth", &services.AuthenticationError{Reason: "Invalid JWT token format"}, http.StatusUnauthorized},
		{"network", &services.NetworkError{StatusCode: 500, Err: errors.New("boom")}, http.StatusBadGateway},
		{"encoding", &services.EncodingError{Err: errors.New("NaN")}, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r, _ := setupTrailRouter(&fakeSubmitter{err: tc.err}, nil)
			require.Equal(t, http.StatusCreated, doJSON(t, r, http.MethodPost, "/api/trails", createBody(), nil).Code)

			rec := doJSON(t, r, http.MethodPost, "/api/trails/1/submit", nil, map[string]string{"Authorization": "Bearer abc"})
			assert.Equal(t, tc.status, rec.Code)
		})
	}
}

func TestComputeMetricsEndpoint(t *testing.T) {
	r, _ := setupTrailRouter(&fakeSubmitter{}, nil)

	rec := doJSON(t, r, http.MethodPost, "/api/trails/metrics", gin.H{"points": trailPoints()}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Metrics models.TrailMetrics        `json:"metrics"`
		Display models.TrailMetricsDisplay `json:"display"`
	}
	decode(t, rec, &resp)
	assert.Equal(t, 3, resp.Metrics.PointCount)
	assert.InDelta(t, 50.0, resp.Metrics.ElevationGainMeters, 1e-9)
	assert.Equal(t, services.EstimateDurationMillis(resp.Metrics.DistanceMeters), resp.Metrics.EstimatedDurationMillis)

	bad := trailPoints()
	bad[0].Longitude = 200
	rec = doJSON(t, r, http.MethodPost, "/api/trails/metrics", gin.H{"points": bad}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExportKML(t *testing.T) {
	r, _ := setupTrailRouter(&fakeSubmitter{}, nil)
	require.Equal(t, http.StatusCreated, doJSON(t, r, http.MethodPost, "/api/trails", createBody(), nil).Code)

	rec := doJSON(t, r, http.MethodGet, "/api/trails/1/export.kml", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/vnd.google-earth.kml+xml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "trail-1.kml")
	assert.Contains(t, rec.Body.String(), "<LineString>")
}
