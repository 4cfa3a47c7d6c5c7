package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/crapp/go-restroom-backend/internal/config"
	"github.com/crapp/go-restroom-backend/internal/domain"
)

func testConfig() config.Config {
	return config.Config{
		Port:              "0",
		ReadTimeout:       time.Second,
		ReadHeaderTimeout: time.Second,
		WriteTimeout:      time.Second,
		IdleTimeout:       time.Second,
		MaxHeaderBytes:    1 << 20,
		GinMode:           "test",
		APIBasePath:       "/api/v1",
		ScoreMin:          1,
		ScoreMax:          5,

		ListAllowDuplicateItems: true,
		ListNameMaxLen:          32,
		NearbyMaxResults:        50,

		// Generous limits so tests never trip the limiter.
		RateRPS:        1000,
		RateBurst:      1000,
		IdempotencyTTL: time.Hour,
	}
}

func newEngine(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:router_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&domain.User{}, &domain.Restroom{}, &domain.List{},
		&domain.ListItem{}, &domain.CheckIn{}, &domain.Rating{},
		&domain.Idempotency{},
	); err != nil {
		t.Fatalf("automigrate: %v", err)
	}

	r := gin.New()
	RegisterRoutes(r, db, testConfig())
	return r, db
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	r, _ := newEngine(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"status":"ok"`) {
		t.Fatalf("health: %d %s", w.Code, w.Body.String())
	}
	// Default CORS posture is allow-all.
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("expected ACAO *, got %q", w.Header().Get("Access-Control-Allow-Origin"))
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatal("expected X-Request-ID header")
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "http_requests_total") {
		t.Fatalf("metrics: %d", w.Code)
	}
}

func TestRouter_FallbackEnvelopes(t *testing.T) {
	r, _ := newEngine(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/definitely-not-here", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if body["code"] != "not_found" {
		t.Fatalf("unexpected 404 body: %v", body)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/health", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", w.Code)
	}
}

func TestRouter_EndToEndVisitFlow(t *testing.T) {
	r, _ := newEngine(t)

	post := func(path, body string, hdr map[string]string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		for k, v := range hdr {
			req.Header.Set(k, v)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	// Register an account.
	w := post("/api/v1/users", `{"full_name": "Ada", "email": "ada@example.com", "password": "s3cret-pass"}`, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("register: %d %s", w.Code, w.Body.String())
	}
	var user domain.User
	if err := json.Unmarshal(w.Body.Bytes(), &user); err != nil {
		t.Fatalf("user json: %v", err)
	}

	// Ingest a restroom.
	w = post("/api/v1/restrooms/ingest", `{"records":[{"latitude": 37.787, "longitude": -122.410, "name": "Quizno's"}]}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("ingest: %d %s", w.Code, w.Body.String())
	}

	// Find it nearby.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/restrooms/nearby?lat=37.787&lng=-122.410&k=1", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("nearby: %d %s", w.Code, w.Body.String())
	}
	var nearby struct {
		Results []struct {
			Restroom domain.Restroom `json:"restroom"`
		} `json:"results"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &nearby); err != nil || len(nearby.Results) != 1 {
		t.Fatalf("nearby json: %v %s", err, w.Body.String())
	}
	restroomID := nearby.Results[0].Restroom.ID

	// Check in, then rate the visit.
	w = post("/api/v1/restrooms/"+restroomID+"/checkins", "", map[string]string{"X-User-ID": user.ID})
	if w.Code != http.StatusCreated {
		t.Fatalf("checkin: %d %s", w.Code, w.Body.String())
	}
	var created struct {
		CheckIn domain.CheckIn `json:"checkin"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("checkin json: %v", err)
	}

	w = post("/api/v1/checkins/"+created.CheckIn.ID+"/rating", `{"score": 5, "review": "spotless"}`, map[string]string{"X-User-ID": user.ID})
	if w.Code != http.StatusCreated {
		t.Fatalf("rating: %d %s", w.Code, w.Body.String())
	}

	// Rating twice conflicts.
	w = post("/api/v1/checkins/"+created.CheckIn.ID+"/rating", `{"score": 1}`, map[string]string{"X-User-ID": user.ID})
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}
}
