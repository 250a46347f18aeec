package httpapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/jupiterclapton/papilles/internal/core/domain"
)

type stubRecommender struct {
	lastViewer string
	lastLimit  int
	lastOffset int

	personalized []domain.Recommendation
	guestPosts   []*domain.Post
	guestErr     error
	guestCalls   int
}

func (s *stubRecommender) GetRecommendations(_ context.Context, viewerID string, limit, offset int) []domain.Recommendation {
	s.lastViewer = viewerID
	s.lastLimit = limit
	s.lastOffset = offset
	return s.personalized
}

func (s *stubRecommender) GetGuestRecommendations(_ context.Context, limit int) ([]*domain.Post, error) {
	s.guestCalls++
	s.lastLimit = limit
	return s.guestPosts, s.guestErr
}

type stubVerifier struct {
	tokens map[string]string
}

func (s *stubVerifier) Verify(token string) (string, error) {
	if id, ok := s.tokens[token]; ok {
		return id, nil
	}
	return "", errors.New("invalid token")
}

func newTestServer(rec *stubRecommender) *Server {
	verifier := &stubVerifier{tokens: map[string]string{"good-token": "u-42"}}
	// rate limit large pour ne pas interférer avec les tests
	return NewServer(rec, verifier, 1000, 1000)
}

func doRequest(t *testing.T, srv *Server, target, authHeader string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func samplePost(id string) *domain.Post {
	return &domain.Post{
		ID:         id,
		Title:      "Ramen maison",
		LikesCount: 12,
		AvgRating:  4.2,
		CreatedAt:  time.Date(2025, 5, 20, 10, 0, 0, 0, time.UTC),
		Author:     &domain.Author{ID: "chef-1", Name: "Chef"},
	}
}

func TestDispatchesToPersonalizedWhenViewerResolved(t *testing.T) {
	stub := &stubRecommender{
		personalized: []domain.Recommendation{
			{Post: samplePost("p1"), Score: 4, Source: domain.SourcePersonalized},
			{Post: samplePost("p2"), Source: domain.SourceTrending},
		},
	}
	rec := doRequest(t, newTestServer(stub), "/recommendations", "Bearer good-token")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if stub.lastViewer != "u-42" {
		t.Fatalf("expected viewer u-42, got %q", stub.lastViewer)
	}
	if stub.guestCalls != 0 {
		t.Fatal("guest path must not run for an authenticated viewer")
	}

	var body []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(body) != 2 {
		t.Fatalf("expected 2 items, got %d", len(body))
	}
	if body[0]["__recommendationScore"] != float64(4) {
		t.Fatalf("expected score marker on personalized item, got %v", body[0]["__recommendationScore"])
	}
	if body[1]["__isTrending"] != true {
		t.Fatalf("expected trending marker on backfill item, got %v", body[1]["__isTrending"])
	}
	if _, present := body[1]["__recommendationScore"]; present {
		t.Fatal("trending item must not carry a score marker")
	}
	author, _ := body[0]["author"].(map[string]any)
	if author["id"] != "chef-1" {
		t.Fatalf("expected embedded author summary, got %v", body[0]["author"])
	}
}

func TestDispatchesToGuestWithoutToken(t *testing.T) {
	stub := &stubRecommender{guestPosts: []*domain.Post{samplePost("p1")}}
	rec := doRequest(t, newTestServer(stub), "/recommendations", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if stub.guestCalls != 1 {
		t.Fatalf("expected guest path, calls=%d", stub.guestCalls)
	}

	var body []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if _, present := body[0]["__recommendationScore"]; present {
		t.Fatal("guest items must not carry diagnostic score fields")
	}
	if _, present := body[0]["__isTrending"]; present {
		t.Fatal("guest items must not carry trending markers")
	}
}

func TestUnresolvableTokenFallsBackToGuest(t *testing.T) {
	stub := &stubRecommender{guestPosts: []*domain.Post{samplePost("p1")}}

	for _, header := range []string{"Bearer expired-token", "Basic abc123"} {
		rec := doRequest(t, newTestServer(stub), "/recommendations", header)
		if rec.Code != http.StatusOK {
			t.Fatalf("header %q: expected 200, got %d", header, rec.Code)
		}
	}
	if stub.guestCalls != 2 {
		t.Fatalf("expected 2 guest dispatches, got %d", stub.guestCalls)
	}
}

func TestPaginationNormalization(t *testing.T) {
	cases := []struct {
		target     string
		wantLimit  int
		wantOffset int
	}{
		{"/recommendations", 20, 0},
		{"/recommendations?limit=5&offset=10", 5, 10},
		{"/recommendations?limit=-3&offset=-1", 20, 0},
		{"/recommendations?limit=abc&offset=xyz", 20, 0},
		{"/recommendations?limit=500", 100, 0},
		{"/recommendations?limit=0", 20, 0},
	}

	for _, tc := range cases {
		stub := &stubRecommender{}
		doRequest(t, newTestServer(stub), tc.target, "Bearer good-token")
		if stub.lastLimit != tc.wantLimit || stub.lastOffset != tc.wantOffset {
			t.Errorf("%s: got limit=%d offset=%d, want %d/%d",
				tc.target, stub.lastLimit, stub.lastOffset, tc.wantLimit, tc.wantOffset)
		}
	}
}

func TestGuestStoreFailureSurfacesAsBadGateway(t *testing.T) {
	stub := &stubRecommender{guestErr: errors.New("bolt connection refused")}
	rec := doRequest(t, newTestServer(stub), "/recommendations", "")

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON error envelope: %v", err)
	}
	if body["error"] != "store_unavailable" {
		t.Fatalf("expected store_unavailable, got %v", body["error"])
	}
}

func TestHealthz(t *testing.T) {
	rec := doRequest(t, newTestServer(&stubRecommender{}), "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRequestIDHeader(t *testing.T) {
	rec := doRequest(t, newTestServer(&stubRecommender{}), "/healthz", "")
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatal("expected a generated X-Request-ID header")
	}

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "given-id")
	rr := httptest.NewRecorder()
	newTestServer(&stubRecommender{}).Router().ServeHTTP(rr, req)
	if rr.Header().Get("X-Request-ID") != "given-id" {
		t.Fatal("expected the incoming request id to be propagated")
	}
}

func TestRateLimitRejectsBursts(t *testing.T) {
	srv := NewServer(&stubRecommender{}, nil, 1, 1)

	first := doRequest(t, srv, "/recommendations", "")
	if first.Code != http.StatusOK {
		t.Fatalf("first request: expected 200, got %d", first.Code)
	}
	second := doRequest(t, srv, "/recommendations", "")
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: expected 429, got %d", second.Code)
	}
}
