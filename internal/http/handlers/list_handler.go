// List HTTP handlers.
//
// This file exposes REST endpoints for named restroom collections:
//   - POST /lists             (create a list)
//   - GET  /lists             (lists visible to the user)
//   - POST /lists/{id}/items  (add a restroom to a list)
//   - GET  /lists/items       (the user's membership join)
//
// Handlers in this file are transport-thin: they validate input, delegate to
// application services, and translate domain/service errors into HTTP results.
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/crapp/go-restroom-backend/internal/domain"
	"github.com/crapp/go-restroom-backend/internal/services"
)

//
// DTOs
//

// CreateListRequest is the JSON payload for creating a list.
type CreateListRequest struct {
	// Name is normalized (trimmed, title-cased, clipped) before storage;
	// a default is used when empty.
	Name string `json:"name" example:"Road Trip Stops"`
}

// AddListItemRequest is the JSON payload for adding a restroom to a list.
type AddListItemRequest struct {
	// RestroomID identifies the restroom to add.
	RestroomID string `json:"restroom_id" binding:"required" example:"141add05-4415-4938-b5a1-17e0d3171aff"`
}

// AddListItemResponse is the JSON envelope for a created membership.
type AddListItemResponse struct {
	Item *domain.ListItem `json:"item"`
}

// ListListsResponse wraps the lists visible to the current user.
type ListListsResponse struct {
	Lists []domain.List `json:"lists"`
}

// ListItemsResponse wraps the user's membership join: each item paired with
// its list and restroom, ordered by add time.
type ListItemsResponse struct {
	Items []services.ListEntry `json:"items"`
}

//
// Handlers
//

// CreateList godoc
// @ID          createList
// @Summary     Create a list
// @Description Creates a named restroom collection owned by the current user.
// @Tags        Lists
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  true  "User ID"  example(user123)
// @Param       body       body    handlers.CreateListRequest  true  "Create list payload"
//
// @Success     201  {object}  domain.List
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Missing identity"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /lists [post]
func (h *Handlers) CreateList(c *gin.Context) {
	uid := userID(c)
	if uid == "" {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "identity required")
		return
	}

	var req CreateListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	l, err := h.listSvc.Create(c.Request.Context(), uid, strings.TrimSpace(req.Name))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
		return
	}
	ok(c, http.StatusCreated, l)
}

// ListLists godoc
// @ID          listLists
// @Summary     List the user's lists
// @Description Returns the lists visible to the current user: their own plus the shared defaults.
// @Tags        Lists
// @Produce     json
//
// @Param       X-User-ID  header  string  true  "User ID"  example(user123)
//
// @Success     200  {object} handlers.ListListsResponse
// @Failure     401  {object} handlers.ErrorResponse "Missing identity"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /lists [get]
func (h *Handlers) ListLists(c *gin.Context) {
	lists, err := h.listSvc.Lists(c.Request.Context(), userID(c))
	if err != nil {
		if errors.Is(err, services.ErrAuthenticationRequired) {
			fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "identity required")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	if lists == nil {
		lists = []domain.List{}
	}
	ok(c, http.StatusOK, ListListsResponse{Lists: lists})
}

// AddListItem godoc
// @ID          addListItem
// @Summary     Add a restroom to a list
// @Description Records the restroom on the list for the current user. Whether the same
// @Description restroom may be added twice is a server-side policy (allowed by default).
// @Tags        Lists
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  true  "User ID"  example(user123)
// @Param       id         path    string  true  "List ID (UUID)"  format(uuid)
// @Param       body       body    handlers.AddListItemRequest  true  "Membership payload"
//
// @Success     201  {object}  handlers.AddListItemResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Missing identity"
// @Failure     404  {object}  handlers.ErrorResponse  "List or restroom not found"
// @Failure     409  {object}  handlers.ErrorResponse  "Restroom already on the list"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /lists/{id}/items [post]
func (h *Handlers) AddListItem(c *gin.Context) {
	listID := c.Param("id")
	if _, err := uuid.Parse(listID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "list id must be a UUID")
		return
	}

	var req AddListItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "restroom_id required")
		return
	}

	item, err := h.listSvc.AddItem(c.Request.Context(), userID(c), listID, req.RestroomID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAuthenticationRequired):
			fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "identity required")
		case errors.Is(err, services.ErrListNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "list not found")
		case errors.Is(err, services.ErrRestroomNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "restroom not found")
		case errors.Is(err, services.ErrDuplicateListItem):
			fail(c, http.StatusConflict, ErrCodeConflict, "restroom already on the list")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}

	ok(c, http.StatusCreated, AddListItemResponse{Item: item})
}

// ListItems godoc
// @ID          listItems
// @Summary     List the user's memberships
// @Description Returns every (list, restroom) pair the current user has recorded,
// @Description ordered by add time.
// @Tags        Lists
// @Produce     json
//
// @Param       X-User-ID  header  string  true  "User ID"  example(user123)
//
// @Success     200  {object} handlers.ListItemsResponse
// @Failure     401  {object} handlers.ErrorResponse "Missing identity"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /lists/items [get]
func (h *Handlers) ListItems(c *gin.Context) {
	items, err := h.listSvc.ItemsFor(c.Request.Context(), userID(c))
	if err != nil {
		if errors.Is(err, services.ErrAuthenticationRequired) {
			fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "identity required")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, ListItemsResponse{Items: items})
}
