package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"golang.org/x/text/language"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/crapp/go-restroom-backend/internal/domain"
	"github.com/crapp/go-restroom-backend/internal/repo"
	"github.com/crapp/go-restroom-backend/internal/services"
)

// newTestEnv builds an isolated in-memory database plus a Handlers instance
// wired to real services, the way the router does it.
func newTestEnv(t *testing.T) (*gorm.DB, *Handlers) {
	t.Helper()
	dsn := fmt.Sprintf("file:hnd_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.Exec("PRAGMA foreign_keys=ON;")
	if err := db.AutoMigrate(
		&domain.User{}, &domain.Restroom{}, &domain.List{},
		&domain.ListItem{}, &domain.CheckIn{}, &domain.Rating{},
		&domain.Idempotency{},
	); err != nil {
		t.Fatalf("automigrate: %v", err)
	}

	ingestSvc := &services.IngestionService{DB: db}
	visitSvc := &services.VisitService{DB: db}
	listSvc := &services.ListService{
		DB:                  db,
		AllowDuplicateItems: true,
		NameMaxLen:          32,
		NameLocale:          language.English,
	}
	userSvc := &services.UserService{DB: db}
	return db, New(ingestSvc, visitSvc, listSvc, userSvc)
}

// newTestRouter registers every handler route on a bare engine, without the
// full middleware stack.
func newTestRouter(h *Handlers) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/users", h.RegisterUser)
	r.POST("/sessions", h.CreateSession)
	r.POST("/restrooms/ingest", h.IngestRestrooms)
	r.GET("/restrooms", h.ListRestrooms)
	r.GET("/restrooms/nearby", h.NearbyRestrooms)
	r.GET("/restrooms/:id/ratings", h.ListRestroomRatings)
	r.POST("/restrooms/:id/checkins", h.CreateCheckIn)
	r.POST("/checkins/:id/rating", h.RateCheckIn)
	r.GET("/checkins/:id/rating", h.GetCheckInRating)
	r.GET("/checkins", h.ListCheckIns)
	r.POST("/lists", h.CreateList)
	r.GET("/lists", h.ListLists)
	r.POST("/lists/:id/items", h.AddListItem)
	r.GET("/lists/items", h.ListItems)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string, hdr map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("invalid json %q: %v", w.Body.String(), err)
	}
}

func TestIngestRestrooms_ReportAndValidation(t *testing.T) {
	_, h := newTestEnv(t)
	r := newTestRouter(h)

	w := doJSON(t, r, http.MethodPost, "/restrooms/ingest", `{"records":[
		{"latitude": 37.787, "longitude": -122.410, "name": "Quizno's"},
		{"latitude": 37.787, "longitude": -122.410, "name": "dup"},
		{"name": "no coords"}
	]}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
	var rep services.IngestionReport
	decodeBody(t, w, &rep)
	if rep.Inserted != 1 || rep.SkippedDuplicate != 1 || rep.SkippedInvalid != 1 {
		t.Fatalf("unexpected report: %+v", rep)
	}

	// Missing records array is a 400.
	w = doJSON(t, r, http.MethodPost, "/restrooms/ingest", `{"nope": true}`, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestListRestrooms_PaginationAndETag(t *testing.T) {
	db, h := newTestEnv(t)
	r := newTestRouter(h)

	for i := 0; i < 3; i++ {
		if _, err := repo.CreateRestroom(context.Background(), db, &domain.Restroom{
			Latitude: 37.0 + float64(i), Longitude: -122.0,
		}); err != nil {
			t.Fatalf("seed restroom %d: %v", i, err)
		}
	}

	w := doJSON(t, r, http.MethodGet, "/restrooms?page=1&page_size=2", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp ListRestroomsResponse
	decodeBody(t, w, &resp)
	if len(resp.Restrooms) != 2 || resp.Pagination.Total != 3 || !resp.Pagination.HasNext {
		t.Fatalf("unexpected page: %+v", resp.Pagination)
	}

	etag := w.Header().Get("ETag")
	if etag == "" {
		t.Fatal("ETag header missing")
	}
	w = doJSON(t, r, http.MethodGet, "/restrooms", "", map[string]string{"If-None-Match": etag})
	if w.Code != http.StatusNotModified {
		t.Fatalf("expected 304 on matching ETag, got %d", w.Code)
	}
}

func TestNearbyRestrooms(t *testing.T) {
	db, h := newTestEnv(t)
	r := newTestRouter(h)

	union := "Union Square"
	oak := "Oakland"
	if _, err := repo.CreateRestroom(context.Background(), db, &domain.Restroom{Latitude: 37.7880, Longitude: -122.4075, Name: &union}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := repo.CreateRestroom(context.Background(), db, &domain.Restroom{Latitude: 37.8044, Longitude: -122.2712, Name: &oak}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	w := doJSON(t, r, http.MethodGet, "/restrooms/nearby?lat=37.7879&lng=-122.4074&k=2", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
	var resp NearbyRestroomsResponse
	decodeBody(t, w, &resp)
	if len(resp.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(resp.Results))
	}
	if resp.Results[0].Restroom.Name == nil || *resp.Results[0].Restroom.Name != "Union Square" {
		t.Fatalf("expected Union Square first, got %+v", resp.Results[0])
	}
	if resp.Results[0].DistanceKm > resp.Results[1].DistanceKm {
		t.Fatal("results must be ordered nearest first")
	}

	// Radius filter drops the far hit.
	h.NearbyRadiusKm = 1
	w = doJSON(t, r, http.MethodGet, "/restrooms/nearby?lat=37.7879&lng=-122.4074&k=2", "", nil)
	decodeBody(t, w, &resp)
	if len(resp.Results) != 1 {
		t.Fatalf("expected radius filter to keep 1 result, got %d", len(resp.Results))
	}

	// Validation failures.
	for _, q := range []string{
		"lat=91&lng=0",
		"lat=0&lng=181",
		"lat=abc&lng=0",
		"lng=0",
		"lat=0&lng=0&k=0",
	} {
		w = doJSON(t, r, http.MethodGet, "/restrooms/nearby?"+q, "", nil)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("query %q: expected 400, got %d", q, w.Code)
		}
	}
}
