package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	types "github.com/daniel-davidyan/pachu-app-sub003/internal/domain"
	"github.com/daniel-davidyan/pachu-app-sub003/internal/domain/venue"
	"github.com/daniel-davidyan/pachu-app-sub003/internal/http/middleware"
	errs "github.com/daniel-davidyan/pachu-app-sub003/internal/pkg/errors"
	"github.com/daniel-davidyan/pachu-app-sub003/internal/services"
)

type stubScores struct {
	gotUser uuid.UUID
	gotIDs  []string
}

func (s *stubScores) Score(_ context.Context, userID uuid.UUID, ids []string) ([]services.RestaurantScore, error) {
	s.gotUser, s.gotIDs = userID, ids
	out := make([]services.RestaurantScore, len(ids))
	for i, id := range ids {
		out[i] = services.RestaurantScore{ID: id, Score: 75, Basis: "default"}
	}
	return out, nil
}

type stubVenues struct {
	res venue.Resolution
	err error
}

func (s *stubVenues) Resolve(_ context.Context, _ venue.Query) (venue.Resolution, error) {
	return s.res, s.err
}

type stubSignals struct{}

func (stubSignals) Record(_ context.Context, userID uuid.UUID, in services.SignalInput) (*types.TasteSignal, error) {
	if in.Kind == "" {
		return nil, fmt.Errorf("%w: kind required", errs.ErrInvalidArgument)
	}
	return &types.TasteSignal{ID: uuid.New(), UserID: userID, Kind: types.SignalKind(in.Kind), Strength: in.Strength}, nil
}

func performJSON(r http.Handler, method, path string, body any, userID uuid.UUID) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != uuid.Nil {
		req.Header.Set(middleware.HeaderUserID, userID.String())
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestScoreHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	stub := &stubScores{}
	r := gin.New()
	r.Use(middleware.AttachRequestContext())
	r.POST("/api/scores", NewScoreHandler(stub).Score)

	userID := uuid.New()
	rec := performJSON(r, http.MethodPost, "/api/scores", gin.H{"restaurant_ids": []string{"a", "b"}}, userID)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	var body struct {
		Scores []services.RestaurantScore `json:"scores"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Scores) != 2 || body.Scores[1].ID != "b" || body.Scores[1].Score != 75 {
		t.Fatalf("scores=%+v", body.Scores)
	}
	if stub.gotUser != userID {
		t.Fatalf("user=%s, want %s", stub.gotUser, userID)
	}

	rec = performJSON(r, http.MethodPost, "/api/scores", gin.H{"restaurant_ids": []string{}}, userID)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("empty ids status=%d, want 400", rec.Code)
	}
}

func TestVenueHandlerStatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		name     string
		stub     *stubVenues
		wantCode int
		wantErr  string
	}{
		{name: "resolved", stub: &stubVenues{res: venue.Resolution{Status: venue.StatusResolved, DeepLink: "https://x/page/y"}}, wantCode: http.StatusOK},
		{name: "no_results", stub: &stubVenues{res: venue.Resolution{Status: venue.StatusNoResults}}, wantCode: http.StatusNotFound, wantErr: "no_results"},
		{name: "no_match", stub: &stubVenues{res: venue.Resolution{Status: venue.StatusNoMatch}}, wantCode: http.StatusNotFound, wantErr: "no_match"},
		{name: "unavailable", stub: &stubVenues{res: venue.Resolution{Status: venue.StatusUnavailable}}, wantCode: http.StatusServiceUnavailable, wantErr: "upstream_unavailable"},
		{name: "invalid", stub: &stubVenues{err: fmt.Errorf("%w: name is required", errs.ErrInvalidArgument)}, wantCode: http.StatusBadRequest, wantErr: "invalid_request"},
	}
	for _, tc := range cases {
		r := gin.New()
		r.POST("/api/venues/resolve", NewVenueHandler(tc.stub).Resolve)
		rec := performJSON(r, http.MethodPost, "/api/venues/resolve", gin.H{"name": "Cafe Noir"}, uuid.Nil)
		if rec.Code != tc.wantCode {
			t.Fatalf("%s: status=%d, want %d", tc.name, rec.Code, tc.wantCode)
		}
		if tc.wantErr == "" {
			continue
		}
		var body struct {
			Error struct {
				Code string `json:"code"`
			} `json:"error"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("%s: decode: %v", tc.name, err)
		}
		if body.Error.Code != tc.wantErr {
			t.Fatalf("%s: code=%q, want %q", tc.name, body.Error.Code, tc.wantErr)
		}
	}
}

func TestSignalHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.AttachRequestContext())
	api := r.Group("/api", middleware.RequireCaller())
	api.POST("/signals", NewSignalHandler(stubSignals{}).Record)

	userID := uuid.New()
	rec := performJSON(r, http.MethodPost, "/api/signals", gin.H{"kind": "review", "strength": 4, "is_positive": true}, userID)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}

	rec = performJSON(r, http.MethodPost, "/api/signals", gin.H{"strength": 4}, userID)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing kind status=%d, want 400", rec.Code)
	}

	rec = performJSON(r, http.MethodPost, "/api/signals", gin.H{"kind": "review", "strength": 4}, uuid.Nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous status=%d, want 401", rec.Code)
	}
}

func TestHealthCheckReportsDependencies(t *testing.T) {
	gin.SetMode(gin.TestMode)
	up := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	cases := []struct {
		name   string
		checks []DependencyCheck
		code   int
		status string
	}{
		{name: "no checks", code: http.StatusOK, status: "ok"},
		{name: "all up", checks: []DependencyCheck{{Name: "postgres", Required: true, Ping: up}, {Name: "redis", Ping: up}}, code: http.StatusOK, status: "ok"},
		{name: "optional down", checks: []DependencyCheck{{Name: "postgres", Required: true, Ping: up}, {Name: "neo4j", Ping: down}}, code: http.StatusOK, status: "degraded"},
		{name: "required down", checks: []DependencyCheck{{Name: "postgres", Required: true, Ping: down}, {Name: "redis", Ping: up}}, code: http.StatusServiceUnavailable, status: "down"},
	}
	for _, tc := range cases {
		r := gin.New()
		r.GET("/healthcheck", NewHealthHandler(tc.checks...).HealthCheck)
		req := httptest.NewRequest(http.MethodGet, "/healthcheck", nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Code != tc.code {
			t.Fatalf("%s: status=%d, want %d", tc.name, rec.Code, tc.code)
		}
		var body struct {
			Status       string            `json:"status"`
			Dependencies map[string]string `json:"dependencies"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("%s: decode: %v", tc.name, err)
		}
		if body.Status != tc.status {
			t.Fatalf("%s: body status=%q, want %q", tc.name, body.Status, tc.status)
		}
		if len(body.Dependencies) != len(tc.checks) {
			t.Fatalf("%s: dependencies=%v", tc.name, body.Dependencies)
		}
	}
}
