// Visit HTTP handlers.
//
// This file exposes REST endpoints for visits (check-ins) and their ratings:
//   - POST /restrooms/{id}/checkins  (record a visit)
//   - POST /checkins/{id}/rating     (rate a completed visit)
//   - GET  /checkins                 (list the user's visit history, ETag support)
//
// Handlers are transport-thin:
//   - validate & normalize inputs
//   - delegate to application services (VisitService)
//   - implement conditional responses (ETag) and idempotency semantics
//
// Idempotency:
// If the client supplies an Idempotency-Key header and a previous successful
// check-in exists for (user, restroom, key), the handler returns that recorded
// visit and sets `Idempotency-Replayed: true`.
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/crapp/go-restroom-backend/internal/domain"
	"github.com/crapp/go-restroom-backend/internal/repo"
	"github.com/crapp/go-restroom-backend/internal/services"
)

//
// DTOs
//

// CreateCheckInResponse is the JSON envelope for a newly recorded visit.
type CreateCheckInResponse struct {
	// CheckIn is the visit that was recorded (or replayed).
	CheckIn *domain.CheckIn `json:"checkin"`
}

// RateCheckInRequest is the JSON payload for rating a visit.
type RateCheckInRequest struct {
	// Score is the rating value; the accepted range is configured
	// server-side (1..5 by default).
	Score int `json:"score" binding:"required" example:"4"`
	// Review optionally adds free-form text (at most 200 characters).
	Review string `json:"review,omitempty" example:"Clean and easy to find"`
}

// RateCheckInResponse is the JSON envelope for a created rating.
type RateCheckInResponse struct {
	Rating *domain.Rating `json:"rating"`
}

// ListCheckInsResponse contains the user's visit history, most recent first.
type ListCheckInsResponse struct {
	CheckIns []domain.CheckIn `json:"checkins"`
}

// ListRatingsResponse contains a restroom's ratings, most recent first.
type ListRatingsResponse struct {
	Ratings []domain.Rating `json:"ratings"`
}

// requestIdempotencyKey extracts an idempotency key if an upstream middleware
// has already validated/stashed it. The fallback behavior reads the
// "Idempotency-Key" header directly when no dedicated middleware exists.
func requestIdempotencyKey(c *gin.Context) (string, bool) {
	if v := strings.TrimSpace(c.GetHeader("Idempotency-Key")); v != "" {
		return v, true
	}
	return "", false
}

//
// Handlers
//

// CreateCheckIn godoc
// @ID          createCheckIn
// @Summary     Record a visit to a restroom
// @Description Records a check-in of the current user at the given restroom. Repeat
// @Description visits create independent records. Supports idempotency via the
// @Description Idempotency-Key header (same key → same visit).
// @Tags        Visits
// @Produce     json
//
// @Param       X-User-ID        header  string  true  "User ID"  example(user123)
// @Param       Idempotency-Key  header  string  false "Idempotency key for safe retries (UUID recommended)"  example(7a8d9f4c-1b2a-4c3d-8e9f-0123456789ab)
// @Param       id               path    string  true  "Restroom ID (UUID)"  format(uuid)
//
// @Success     201  {object}  handlers.CreateCheckInResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Missing identity"
// @Failure     404  {object}  handlers.ErrorResponse  "Restroom not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /restrooms/{id}/checkins [post]
func (h *Handlers) CreateCheckIn(c *gin.Context) {
	ctx := c.Request.Context()
	restroomID := c.Param("id")

	if _, err := uuid.Parse(restroomID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "restroom id must be a UUID")
		return
	}

	currentUser := userID(c)

	// Idempotency (replay path) – read validated key if present.
	idemKey, _ := requestIdempotencyKey(c)
	if idemKey != "" && currentUser != "" {
		if db := h.dbHandle(); db != nil {
			if rec, err := repo.GetIdempotency(ctx, db, currentUser, restroomID, idemKey, time.Now().UTC()); err == nil && rec != nil {
				if prev, err2 := repo.GetCheckIn(ctx, db, rec.CheckinID); err2 == nil {
					c.Header("Idempotency-Replayed", "true")
					ok(c, http.StatusCreated, CreateCheckInResponse{CheckIn: prev})
					return
				}
			}
		}
	}

	visit, err := h.visitSvc.CheckIn(ctx, currentUser, restroomID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAuthenticationRequired):
			fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "identity required")
		case errors.Is(err, services.ErrRestroomNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "restroom not found")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
		}
		return
	}

	// Idempotency (store path) – best effort.
	if idemKey != "" {
		if db := h.dbHandle(); db != nil {
			ttl := 24 * time.Hour
			_, _ = repo.CreateIdempotency(ctx, db, currentUser, restroomID, idemKey, visit.ID, http.StatusCreated, ttl)
		}
	}

	ok(c, http.StatusCreated, CreateCheckInResponse{CheckIn: visit})
}

// RateCheckIn godoc
// @ID          rateCheckIn
// @Summary     Rate a completed visit
// @Description Attaches a score (and optional review) to one of the current user's
// @Description unrated visits. A visit can be rated at most once.
// @Tags        Visits
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  true  "User ID"  example(user123)
// @Param       id         path    string  true  "Check-in ID (UUID)"  format(uuid)
// @Param       body       body    handlers.RateCheckInRequest  true  "Rating payload"
//
// @Success     201  {object}  handlers.RateCheckInResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid payload or score"
// @Failure     401  {object}  handlers.ErrorResponse  "Missing identity"
// @Failure     403  {object}  handlers.ErrorResponse  "Visit belongs to another user"
// @Failure     404  {object}  handlers.ErrorResponse  "Visit not found"
// @Failure     409  {object}  handlers.ErrorResponse  "Visit already rated"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /checkins/{id}/rating [post]
func (h *Handlers) RateCheckIn(c *gin.Context) {
	checkinID := c.Param("id")
	if _, err := uuid.Parse(checkinID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "check-in id must be a UUID")
		return
	}

	var req RateCheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "score required")
		return
	}

	rating, err := h.visitSvc.Rate(c.Request.Context(), userID(c), checkinID, req.Score, req.Review)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAuthenticationRequired):
			fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "identity required")
		case errors.Is(err, services.ErrVisitNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "check-in not found")
		case errors.Is(err, services.ErrNotVisitOwner):
			fail(c, http.StatusForbidden, ErrCodeForbidden, "cannot rate another user's visit")
		case errors.Is(err, services.ErrAlreadyRated):
			fail(c, http.StatusConflict, ErrCodeConflict, "visit already rated")
		case errors.Is(err, services.ErrScoreOutOfRange):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "score outside the accepted range")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}

	ok(c, http.StatusCreated, RateCheckInResponse{Rating: rating})
}

// GetCheckInRating godoc
// @ID          getCheckInRating
// @Summary     Get the rating of one of the user's visits
// @Description Returns the rating attached to the given check-in. The visit must
// @Description belong to the current user; unrated visits return 404.
// @Tags        Visits
// @Produce     json
//
// @Param       X-User-ID  header  string  true  "User ID"  example(user123)
// @Param       id         path    string  true  "Check-in ID (UUID)"  format(uuid)
//
// @Success     200  {object} handlers.RateCheckInResponse
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     401  {object} handlers.ErrorResponse "Missing identity"
// @Failure     403  {object} handlers.ErrorResponse "Visit belongs to another user"
// @Failure     404  {object} handlers.ErrorResponse "Visit not found or not rated"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /checkins/{id}/rating [get]
func (h *Handlers) GetCheckInRating(c *gin.Context) {
	checkinID := c.Param("id")
	if _, err := uuid.Parse(checkinID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "check-in id must be a UUID")
		return
	}

	rating, err := h.visitSvc.RatingOf(c.Request.Context(), userID(c), checkinID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAuthenticationRequired):
			fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "identity required")
		case errors.Is(err, services.ErrVisitNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "check-in not found")
		case errors.Is(err, services.ErrNotVisitOwner):
			fail(c, http.StatusForbidden, ErrCodeForbidden, "cannot read another user's rating")
		case errors.Is(err, services.ErrNotRated):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "check-in not yet rated")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}

	ok(c, http.StatusOK, RateCheckInResponse{Rating: rating})
}

// ListRestroomRatings godoc
// @ID          listRestroomRatings
// @Summary     List the ratings of a restroom
// @Description Returns all ratings submitted for a restroom, most recent first.
// @Description Ratings are public; no identity is required.
// @Tags        Visits
// @Produce     json
//
// @Param       id  path  string  true  "Restroom ID (UUID)"  format(uuid)
//
// @Success     200  {object} handlers.ListRatingsResponse
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Restroom not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /restrooms/{id}/ratings [get]
func (h *Handlers) ListRestroomRatings(c *gin.Context) {
	restroomID := c.Param("id")
	if _, err := uuid.Parse(restroomID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "restroom id must be a UUID")
		return
	}

	ratings, err := h.visitSvc.RatingsFor(c.Request.Context(), restroomID)
	if err != nil {
		if errors.Is(err, services.ErrRestroomNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "restroom not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	if ratings == nil {
		ratings = []domain.Rating{}
	}
	ok(c, http.StatusOK, ListRatingsResponse{Ratings: ratings})
}

// ListCheckIns godoc
// @ID          listCheckIns
// @Summary     List the user's visit history
// @Description Returns the current user's visits, most recent first. Supports weak
// @Description ETag via If-None-Match and may return 304.
// @Tags        Visits
// @Produce     json
//
// @Param       X-User-ID      header  string  true  "User ID"  example(user123)
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"
//
// @Success     200  {object} handlers.ListCheckInsResponse
// @Header      200  {string} ETag "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     401  {object} handlers.ErrorResponse "Missing identity"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /checkins [get]
func (h *Handlers) ListCheckIns(c *gin.Context) {
	ctx := c.Request.Context()
	uid := userID(c)

	// ETag pre-check (best effort). Rating a visit bumps its updated_at, so
	// (count, newest updated_at) identifies the history state.
	if db := h.dbHandle(); db != nil && uid != "" {
		count, maxTS, err := repo.CheckInsStats(ctx, db, uid)
		if err == nil {
			var ts int64
			if maxTS != nil {
				ts = maxTS.Unix()
			}
			etag := fmt.Sprintf(`W/"checkins:%s:%d:%d"`, uid, count, ts)
			c.Header("ETag", etag)
			if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	visits, err := h.visitSvc.History(ctx, uid)
	if err != nil {
		if errors.Is(err, services.ErrAuthenticationRequired) {
			fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "identity required")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	if visits == nil {
		visits = []domain.CheckIn{}
	}
	ok(c, http.StatusOK, ListCheckInsResponse{CheckIns: visits})
}
