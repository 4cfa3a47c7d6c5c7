// Restroom HTTP handlers.
//
// This file exposes REST endpoints for restroom resources:
//   - POST /restrooms/ingest   (ingest a batch of upstream directory records)
//   - GET  /restrooms          (list, paginated, ETag support)
//   - GET  /restrooms/nearby   (proximity search around a coordinate)
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses (including conditional responses).
package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/crapp/go-restroom-backend/internal/domain"
	"github.com/crapp/go-restroom-backend/internal/geo"
	"github.com/crapp/go-restroom-backend/internal/refuge"
	"github.com/crapp/go-restroom-backend/internal/repo"
	"github.com/crapp/go-restroom-backend/internal/services"
	"github.com/crapp/go-restroom-backend/internal/utils"
)

//
// Service contracts (context-aware)
//

// IngestService defines the batch ingestion operation consumed by HTTP
// handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type IngestService interface {
	// Ingest normalizes and persists a batch of upstream directory records.
	Ingest(ctx context.Context, records []refuge.Record) (services.IngestionReport, error)
}

// VisitService defines check-in and rating operations.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type VisitService interface {
	// CheckIn records a visit of userID to a restroom.
	CheckIn(ctx context.Context, userID, restroomID string) (*domain.CheckIn, error)
	// Rate attaches a score (and optional review) to an unrated visit.
	Rate(ctx context.Context, userID, checkinID string, score int, reviewText string) (*domain.Rating, error)
	// History returns the user's visits, most recent first.
	History(ctx context.Context, userID string) ([]domain.CheckIn, error)
	// RatingOf returns the rating attached to one of the user's visits.
	RatingOf(ctx context.Context, userID, checkinID string) (*domain.Rating, error)
	// RatingsFor returns all ratings for a restroom, most recent first.
	RatingsFor(ctx context.Context, restroomID string) ([]domain.Rating, error)
}

// ListService defines named-collection operations.
type ListService interface {
	// Create starts a new list owned by ownerID.
	Create(ctx context.Context, ownerID, name string) (*domain.List, error)
	// AddItem records a restroom on a list for userID.
	AddItem(ctx context.Context, userID, listID, restroomID string) (*domain.ListItem, error)
	// Lists returns the lists visible to a user.
	Lists(ctx context.Context, userID string) ([]domain.List, error)
	// ItemsFor returns the user's membership join.
	ItemsFor(ctx context.Context, userID string) ([]services.ListEntry, error)
}

// UserService defines account registration and credential verification.
type UserService interface {
	// Register creates a new account.
	Register(ctx context.Context, fullName, email, password string) (*domain.User, error)
	// FindByCredentials resolves (email, password) to a user.
	FindByCredentials(ctx context.Context, email, password string) (*domain.User, bool, error)
}

//
// Handler wiring
//

// Handlers groups HTTP endpoints for restrooms, visits, lists, and users.
// It depends on abstract service interfaces to keep transport concerns
// separate from business logic.
type Handlers struct {
	ingestSvc IngestService
	visitSvc  VisitService
	listSvc   ListService
	userSvc   UserService

	// NearbyMaxResults caps the number of results a proximity query may
	// return. Zero falls back to the index default.
	NearbyMaxResults int
	// NearbyRadiusKm drops results beyond this distance. Zero disables
	// the filter.
	NearbyRadiusKm float64
}

// New constructs and returns a Handlers instance bound to the given services.
func New(ingestSvc IngestService, visitSvc VisitService, listSvc ListService, userSvc UserService) *Handlers {
	return &Handlers{ingestSvc: ingestSvc, visitSvc: visitSvc, listSvc: listSvc, userSvc: userSvc}
}

// userID extracts the authenticated user id from Gin context (set by upstream
// middleware). If absent, it falls back to the "X-User-ID" header. An empty
// result means the request carries no identity; services reject it where one
// is required. It never touches c.Request if it's nil.
func userID(c *gin.Context) string {
	if v, ok := c.Get("userID"); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	if c != nil && c.Request != nil {
		if h := strings.TrimSpace(c.GetHeader("X-User-ID")); h != "" {
			return h
		}
	}
	return ""
}

// dbHandle inspects the concrete services for the shared database handle.
// Used for best-effort ETag stats and the restroom listing, which has no
// service of its own. May return nil in tests that stub every service.
func (h *Handlers) dbHandle() *gorm.DB {
	if svc, ok := h.visitSvc.(*services.VisitService); ok && svc != nil {
		return svc.DB
	}
	if svc, ok := h.ingestSvc.(*services.IngestionService); ok && svc != nil {
		return svc.DB
	}
	return nil
}

//
// DTOs
//

// IngestRestroomsRequest is the JSON payload for batch ingestion. Records
// carry the upstream directory's raw field names.
type IngestRestroomsRequest struct {
	Records []refuge.Record `json:"records" binding:"required"`
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// ListRestroomsResponse wraps a page of restrooms and pagination information.
type ListRestroomsResponse struct {
	Restrooms  []domain.Restroom `json:"restrooms"`
	Pagination Pagination        `json:"pagination"`
}

// NearbyResult is one proximity search hit.
type NearbyResult struct {
	Restroom   domain.Restroom `json:"restroom"`
	DistanceKm float64         `json:"distance_km"`
}

// NearbyRestroomsResponse wraps proximity search results, nearest first.
type NearbyRestroomsResponse struct {
	Results []NearbyResult `json:"results"`
}

//
// Helpers
//

// clampPagination parses and bounds page and page_size query params to sane
// defaults and limits, returning (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}

//
// Handlers
//

// IngestRestrooms godoc
// @ID          ingestRestrooms
// @Summary     Ingest upstream restroom records
// @Description Normalizes and persists a batch of raw directory records, skipping
// @Description malformed records and coordinate duplicates. Returns a per-batch report.
// @Tags        Restrooms
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.IngestRestroomsRequest  true  "Raw records batch"
//
// @Success     200  {object}  services.IngestionReport
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /restrooms/ingest [post]
func (h *Handlers) IngestRestrooms(c *gin.Context) {
	var req IngestRestroomsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "records array required")
		return
	}

	rep, err := h.ingestSvc.Ingest(c.Request.Context(), req.Records)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeIngestFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, rep)
}

// ListRestrooms godoc
// @ID          listRestrooms
// @Summary     List restrooms (paginated)
// @Description Returns a page of the restroom directory. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Restrooms
// @Produce     json
//
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"  example(W/\"abc123\")
// @Param       page           query   int     false "Page number"                  minimum(1) default(1)
// @Param       page_size      query   int     false "Items per page"               minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.ListRestroomsResponse
// @Header      200  {string} ETag "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /restrooms [get]
func (h *Handlers) ListRestrooms(c *gin.Context) {
	ctx := c.Request.Context()
	page, pageSize := clampPagination(c)

	db := h.dbHandle()
	if db == nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "storage unavailable")
		return
	}

	// ETag pre-check (best effort). Restrooms are immutable once stored, so
	// (count, newest created_at) identifies the directory state.
	count, maxTS, err := repo.RestroomsStats(ctx, db)
	if err == nil {
		var ts int64
		if maxTS != nil {
			ts = maxTS.Unix()
		}
		etag := fmt.Sprintf(`W/"restrooms:%d:%d"`, count, ts)
		c.Header("ETag", etag)
		if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
			c.Status(http.StatusNotModified)
			return
		}
	}

	items, err := repo.ListRestroomsPage(ctx, db, (page-1)*pageSize, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	total, err := repo.CountRestrooms(ctx, db)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	ok(c, http.StatusOK, ListRestroomsResponse{
		Restrooms: items,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	})
}

// NearbyRestrooms godoc
// @ID          nearbyRestrooms
// @Summary     Find restrooms near a coordinate
// @Description Returns up to k restrooms ordered by great-circle distance from (lat, lng).
// @Tags        Restrooms
// @Produce     json
//
// @Param       lat  query  number  true  "Latitude in decimal degrees"   minimum(-90)  maximum(90)
// @Param       lng  query  number  true  "Longitude in decimal degrees"  minimum(-180) maximum(180)
// @Param       k    query  int     false "Maximum results"               minimum(1) default(10)
//
// @Success     200  {object} handlers.NearbyRestroomsResponse
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /restrooms/nearby [get]
func (h *Handlers) NearbyRestrooms(c *gin.Context) {
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil || lat < -90 || lat > 90 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "lat must be a number in [-90,90]")
		return
	}
	lng, err := strconv.ParseFloat(c.Query("lng"), 64)
	if err != nil || lng < -180 || lng > 180 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "lng must be a number in [-180,180]")
		return
	}
	k := utils.AtoiDefault(c.Query("k"), 10)
	if k < 1 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "k must be >= 1")
		return
	}

	db := h.dbHandle()
	if db == nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "storage unavailable")
		return
	}
	restrooms, err := repo.ListRestrooms(c.Request.Context(), db)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}

	var opts []geo.Option
	if h.NearbyMaxResults > 0 {
		opts = append(opts, geo.WithMaxResults(h.NearbyMaxResults))
	}
	if h.NearbyRadiusKm > 0 {
		opts = append(opts, geo.WithMaxRadiusKm(h.NearbyRadiusKm))
	}
	idx := geo.NewIndex(restrooms, opts...)

	hits := idx.Nearest(lat, lng, k)
	results := make([]NearbyResult, 0, len(hits))
	for _, r := range hits {
		results = append(results, NearbyResult{Restroom: r.Restroom, DistanceKm: r.DistanceKm})
	}
	ok(c, http.StatusOK, NearbyRestroomsResponse{Results: results})
}
