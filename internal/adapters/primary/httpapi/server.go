package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jupiterclapton/papilles/internal/core/domain"
	"github.com/jupiterclapton/papilles/internal/core/ports"
	"github.com/jupiterclapton/papilles/internal/core/services"
	"github.com/jupiterclapton/papilles/internal/metrics"
)

// MaxLimit borne la taille de page demandable par un client.
const MaxLimit = 100

type Server struct {
	recommender ports.Recommender
	verifier    ports.TokenVerifier
	rateRPS     float64
	rateBurst   int
}

func NewServer(recommender ports.Recommender, verifier ports.TokenVerifier, rateRPS float64, rateBurst int) *Server {
	return &Server{
		recommender: recommender,
		verifier:    verifier,
		rateRPS:     rateRPS,
		rateBurst:   rateBurst,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(RequestID)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(RateLimit(s.rateRPS, s.rateBurst))
		r.Use(OptionalAuth(s.verifier))
		r.Get("/recommendations", s.handleRecommendations)
	})

	return r
}

// handleRecommendations porte la règle de dispatch : identité présente et
// résolue → chemin personnalisé, sinon → chemin invité. Décision de routage
// pure, aucun état.
func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer metrics.ObserveDuration(start)

	// Normalisation pagination : le moteur reçoit des entiers sains,
	// c'est la responsabilité de cette couche.
	limit := parseBounded(r.URL.Query().Get("limit"), services.DefaultLimit, 1, MaxLimit)
	offset := parseBounded(r.URL.Query().Get("offset"), 0, 0, 1<<30)

	if viewerID := ViewerID(r.Context()); viewerID != "" {
		metrics.RecoRequests.WithLabelValues("personalized").Inc()
		recs := s.recommender.GetRecommendations(r.Context(), viewerID, limit, offset)
		writeJSON(w, http.StatusOK, encodeRecommendations(recs))
		return
	}

	metrics.RecoRequests.WithLabelValues("guest").Inc()
	posts, err := s.recommender.GetGuestRecommendations(r.Context(), limit)
	if err != nil {
		// Pas d'étage de repli sous le chemin invité : on laisse le client
		// décider (retry, page d'erreur, contenu statique).
		writeJSON(w, http.StatusBadGateway, errorDTO{
			Error:   "store_unavailable",
			Message: "recommendations are temporarily unavailable",
		})
		return
	}
	writeJSON(w, http.StatusOK, encodePosts(posts))
}

// --- DTOs ---
// Les champs __recommendationScore / __isTrending sont des marqueurs de
// diagnostic, pas un contrat stable : absents du chemin invité.

type authorDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type postDTO struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Content    string     `json:"content"`
	Recipe     string     `json:"recipe,omitempty"`
	Photos     []string   `json:"photos"`
	LikesCount int64      `json:"likes_count"`
	AvgRating  float64    `json:"avg_rating"`
	CreatedAt  time.Time  `json:"created_at"`
	Author     *authorDTO `json:"author"`

	Score    *float64 `json:"__recommendationScore,omitempty"`
	Trending bool     `json:"__isTrending,omitempty"`
}

type errorDTO struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func toPostDTO(p *domain.Post) postDTO {
	dto := postDTO{
		ID:         p.ID,
		Title:      p.Title,
		Content:    p.Content,
		Recipe:     p.Recipe,
		Photos:     p.Photos,
		LikesCount: p.LikesCount,
		AvgRating:  p.AvgRating,
		CreatedAt:  p.CreatedAt,
	}
	if p.Author != nil {
		dto.Author = &authorDTO{ID: p.Author.ID, Name: p.Author.Name}
	}
	return dto
}

func encodeRecommendations(recs []domain.Recommendation) []postDTO {
	out := make([]postDTO, 0, len(recs))
	for _, rec := range recs {
		dto := toPostDTO(rec.Post)
		switch rec.Source {
		case domain.SourceTrending:
			dto.Trending = true
		default:
			score := rec.Score
			dto.Score = &score
		}
		out = append(out, dto)
	}
	return out
}

func encodePosts(posts []*domain.Post) []postDTO {
	out := make([]postDTO, 0, len(posts))
	for _, p := range posts {
		if p == nil {
			continue
		}
		out = append(out, toPostDTO(p))
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// parseBounded normalise un paramètre de pagination : défaut si absent ou
// invalide, borné dans [min, max].
func parseBounded(raw string, fallback, min, max int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < min {
		return fallback
	}
	if n > max {
		return max
	}
	return n
}
