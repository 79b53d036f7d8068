// File: /controllers/trail_controller.go
package controllers

import (
	"bytes"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"trailcraft-api/middleware"
	"trailcraft-api/models"
	"trailcraft-api/repositories"
	"trailcraft-api/services"
	"trailcraft-api/utils"
)

// Observer receives the business events worth counting.
type Observer interface {
	TrailCreated()
	SubmissionObserved(outcome string, d time.Duration)
	RoutingObserved(legs, fallbacks int)
}

type nopObserver struct{}

func (nopObserver) TrailCreated()                            {}
func (nopObserver) SubmissionObserved(string, time.Duration) {}
func (nopObserver) RoutingObserved(int, int)                 {}

type TrailController struct {
	repo      repositories.TrailRepository
	submitter services.TrailSubmitter
	notifier  services.Notifier
	events    services.EventPublisher
	observer  Observer
}

// TrailControllerOptions wires the controller. Nil Notifier, Events and Observer become no-ops.
type TrailControllerOptions struct {
	Repo      repositories.TrailRepository
	Submitter services.TrailSubmitter
	Notifier  services.Notifier
	Events    services.EventPublisher
	Observer  Observer
}

func NewTrailController(opts TrailControllerOptions) *TrailController {
	tc := &TrailController{
		repo:      opts.Repo,
		submitter: opts.Submitter,
		notifier:  opts.Notifier,
		events:    opts.Events,
		observer:  opts.Observer,
	}
	if tc.notifier == nil {
		tc.notifier = services.NopNotifier{}
	}
	if tc.events == nil {
		tc.events = services.NopEventPublisher{}
	}
	if tc.observer == nil {
		tc.observer = nopObserver{}
	}
	return tc
}

// CreateTrailRequest is the body of POST /api/trails. Zero distance and time are derived from the points.
type CreateTrailRequest struct {
	Name                  string              `json:"name"`
	Description           string              `json:"description"`
	Country               string              `json:"country"`
	City                  string              `json:"city"`
	DistanceMeters        float64             `json:"distance"`
	ApproximateTimeMillis int64               `json:"approximate_time"`
	IsActive              *bool               `json:"is_active"`
	Points                []models.TrailPoint `json:"points" binding:"required"`
}

type PointsRequest struct {
	Points []models.TrailPoint `json:"points" binding:"required"`
}

// GetTrails lists trails in id order, paginated by page and limit.
func (tc *TrailController) GetTrails(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = middleware.DefaultLimit
	}
	offset := (page - 1) * limit

	trails, total, err := tc.repo.List(offset, limit)
	if err != nil {
		log.Printf("Failed to list trails: %v", err)
		utils.SendError(c, http.StatusInternalServerError, "Failed to fetch trails")
		return
	}

	utils.SendPaginated(c, trails, page, limit, total)
}

func (tc *TrailController) GetTrail(c *gin.Context) {
	id, ok := parseTrailID(c)
	if !ok {
		return
	}

	trail, err := tc.repo.Get(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"trail":   trail,
		"metrics": trailMetricsView(trail.Points),
	})
}

// CreateTrail validates and stores a trail, then publishes trails.created.
func (tc *TrailController) CreateTrail(c *gin.Context) {
	var req CreateTrailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, err.Error())
		return
	}

	points := assignPointIDs(req.Points)
	meta := models.TrailMetadata{
		Name:                  strings.TrimSpace(req.Name),
		Description:           req.Description,
		Country:               strings.TrimSpace(req.Country),
		City:                  strings.TrimSpace(req.City),
		DistanceMeters:        req.DistanceMeters,
		ApproximateTimeMillis: req.ApproximateTimeMillis,
		IsActive:              true,
	}
	if req.IsActive != nil {
		meta.IsActive = *req.IsActive
	}
	meta = services.ApplyDerivedDefaults(meta, services.ComputeMetrics(points))

	if err := services.ValidateSubmission(meta, points); err != nil {
		respondError(c, err)
		return
	}

	trail := &models.Trail{
		Name:                  meta.Name,
		Description:           meta.Description,
		Country:               meta.Country,
		City:                  meta.City,
		Latitude:              points[0].Latitude,
		Longitude:             points[0].Longitude,
		DistanceMeters:        meta.DistanceMeters,
		ApproximateTimeMillis: meta.ApproximateTimeMillis,
		IsActive:              meta.IsActive,
		Points:                points,
	}
	if err := tc.repo.Create(trail); err != nil {
		log.Printf("Failed to create trail: %v", err)
		utils.SendError(c, http.StatusInternalServerError, "Failed to create trail")
		return
	}

	tc.observer.TrailCreated()
	if err := tc.events.PublishTrailCreated(models.SubmissionEvent{
		TrailID:    trail.ID,
		Name:       trail.Name,
		Distance:   trail.DistanceMeters,
		PointCount: len(trail.Points),
		Timestamp:  time.Now().UTC(),
	}); err != nil {
		log.Printf("Failed to publish %s: %v", services.SubjectTrailCreated, err)
	}

	utils.SendCreated(c, "Trail created successfully", trail)
}

// UpdateTrail applies a partial update and revalidates the whole record.
func (tc *TrailController) UpdateTrail(c *gin.Context) {
	id, ok := parseTrailID(c)
	if !ok {
		return
	}

	var req models.TrailUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, err.Error())
		return
	}

	trail, err := tc.repo.Get(id)
	if err != nil {
		respondError(c, err)
		return
	}

	if req.Points != nil {
		assigned := models.TrailPointList(assignPointIDs(*req.Points))
		req.Points = &assigned
	}
	req.Apply(trail)

	if err := services.ValidateSubmission(trail.Metadata(), trail.Points); err != nil {
		respondError(c, err)
		return
	}

	if err := tc.repo.Update(trail); err != nil {
		respondError(c, err)
		return
	}

	utils.SendSuccess(c, "Trail updated successfully", trail)
}

func (tc *TrailController) DeleteTrail(c *gin.Context) {
	id, ok := parseTrailID(c)
	if !ok {
		return
	}

	if err := tc.repo.Delete(id); err != nil {
		respondError(c, err)
		return
	}

	utils.SendSuccess(c, "Trail deleted successfully", nil)
}

// GetMutation renders the createTrail document for a stored trail without sending it.
func (tc *TrailController) GetMutation(c *gin.Context) {
	id, ok := parseTrailID(c)
	if !ok {
		return
	}

	trail, err := tc.repo.Get(id)
	if err != nil {
		respondError(c, err)
		return
	}

	payload, err := services.BuildPayloadFromTrail(*trail)
	if err != nil {
		respondError(c, err)
		return
	}
	mutation, err := services.RenderMutation(payload)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"mutation": mutation,
		"payload":  payload,
	})
}

// SubmitTrail sends a stored trail to the external service with the caller's bearer token.
func (tc *TrailController) SubmitTrail(c *gin.Context) {
	id, ok := parseTrailID(c)
	if !ok {
		return
	}

	trail, err := tc.repo.Get(id)
	if err != nil {
		respondError(c, err)
		return
	}

	started := time.Now()
	result := tc.submit(c, *trail)
	tc.observer.SubmissionObserved(services.SubmissionOutcome(result.Err), time.Since(started))
	if result.Err != nil {
		respondError(c, result.Err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":         "Trail submitted successfully",
		"acknowledgement": result.Acknowledgement,
		"mutation":        result.Mutation,
	})
}

func (tc *TrailController) submit(c *gin.Context, trail models.Trail) services.SubmissionResult {
	if err := services.ValidateSubmission(trail.Metadata(), trail.Points); err != nil {
		return services.SubmissionResult{Err: err}
	}
	payload, err := services.BuildPayloadFromTrail(trail)
	if err != nil {
		return services.SubmissionResult{Err: err}
	}
	mutation, err := services.RenderMutation(payload)
	if err != nil {
		return services.SubmissionResult{Err: err}
	}

	ack, err := tc.submitter.Submit(c.Request.Context(), payload, c.GetString(middleware.BearerTokenKey))
	if err != nil {
		return services.SubmissionResult{Mutation: mutation, Err: err}
	}

	if err := tc.notifier.NotifySubmitted(payload, ack); err != nil {
		log.Printf("Submission notification failed: %v", err)
	}
	if err := tc.events.PublishTrailSubmitted(models.SubmissionEvent{
		TrailID:    trail.ID,
		ExternalID: ack.ID,
		Name:       payload.Name,
		Distance:   payload.DistanceMeters,
		PointCount: len(payload.Track.Points),
		Timestamp:  time.Now().UTC(),
	}); err != nil {
		log.Printf("Failed to publish %s: %v", services.SubjectTrailSubmitted, err)
	}

	return services.SubmissionResult{Acknowledgement: ack, Mutation: mutation}
}

// ComputeMetrics returns distance, elevation gain and duration for an ad-hoc point list.
func (tc *TrailController) ComputeMetrics(c *gin.Context) {
	var req PointsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, err.Error())
		return
	}
	if errs := services.ValidatePoints(req.Points); len(errs) > 0 {
		respondError(c, errs)
		return
	}

	c.JSON(http.StatusOK, trailMetricsView(req.Points))
}

// ExportKML downloads the trail as a KML document.
func (tc *TrailController) ExportKML(c *gin.Context) {
	id, ok := parseTrailID(c)
	if !ok {
		return
	}

	trail, err := tc.repo.Get(id)
	if err != nil {
		respondError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := services.WriteTrailKML(&buf, *trail); err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=\"trail-"+strconv.FormatUint(uint64(trail.ID), 10)+".kml\"")
	c.Data(http.StatusOK, "application/vnd.google-earth.kml+xml", buf.Bytes())
}

func trailMetricsView(points []models.TrailPoint) gin.H {
	m := services.ComputeMetrics(points)
	return gin.H{
		"metrics": m,
		"display": services.Display(m),
	}
}

// assignPointIDs gives every point without an id a fresh one.
func assignPointIDs(points []models.TrailPoint) []models.TrailPoint {
	out := models.TrailPointList(points).Clone()
	for i := range out {
		if out[i].ID == "" {
			out[i].ID = uuid.NewString()
		}
	}
	return out
}
