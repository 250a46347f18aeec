package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/jupiterclapton/papilles/internal/core/domain"
	"github.com/jupiterclapton/papilles/internal/core/ports"
	"github.com/jupiterclapton/papilles/internal/metrics"
)

// Pondération des signaux. Constantes de réglage, pas des valeurs dérivées :
// on privilégie la preuve sociale (les gens qui aiment comme vous) sur la
// similarité de sujet.
const (
	CollaborativeWeight = 2.0
	ContentWeight       = 1.0
)

// TrendingWindow borne le remplissage tendance aux posts récents.
const TrendingWindow = 30 * 24 * time.Hour

const DefaultLimit = 20

type RecommendationService struct {
	repo ports.RecommendationRepository
}

func NewRecommendationService(repo ports.RecommendationRepository) *RecommendationService {
	return &RecommendationService{repo: repo}
}

// GetRecommendations combine trois étages : collaboratif → contenu → tendance.
// Le filtrage collaboratif pur rate le cold-start, le contenu pur rate les
// utilisateurs sans historique, la tendance pure ignore la personnalisation.
// La cascade garantit une page pleine dès qu'il existe assez de contenu.
func (s *RecommendationService) GetRecommendations(ctx context.Context, viewerID string, limit, offset int) []domain.Recommendation {
	recs, err := s.personalized(ctx, viewerID, limit, offset)
	if err != nil {
		// Feed cassé ≠ app cassée : on dégrade vers une liste vide.
		slog.Error("💥 Recommendation pipeline failed, degrading to empty feed",
			"viewer_id", viewerID, "error", err)
		metrics.RecoDegraded.Inc()
		return []domain.Recommendation{}
	}
	return recs
}

func (s *RecommendationService) personalized(ctx context.Context, viewerID string, limit, offset int) ([]domain.Recommendation, error) {
	// Les deux requêtes de signal sont séquentielles : la taille du repli
	// tendance dépend du résultat combiné.
	collab, err := s.repo.SimilarTasteCandidates(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("collaborative signal: %w", err)
	}

	content, err := s.repo.SharedTagCandidates(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("content signal: %w", err)
	}

	// Accumulateur : post id -> score cumulé. La somme inter-sources est une
	// étape explicite, pas un effet de bord du moteur de requêtes.
	type scored struct {
		post  *domain.Post
		score float64
	}
	byID := make(map[string]*scored)
	order := make([]string, 0, len(collab)+len(content))

	add := func(p *domain.Post, weight float64) {
		if p == nil || p.ID == "" {
			// Candidat orphelin (post supprimé en cours de route)
			return
		}
		entry, ok := byID[p.ID]
		if !ok {
			entry = &scored{post: p}
			byID[p.ID] = entry
			order = append(order, p.ID)
		}
		entry.score += weight
	}

	for _, c := range collab {
		add(c.Post, float64(c.Strength)*CollaborativeWeight)
	}
	for _, p := range content {
		// Une ligne par chemin de tag : un post atteignable par plusieurs
		// chemins gagne un point par chemin.
		add(p, ContentWeight)
	}

	// Tri stable sur l'ordre de première apparition : le score prime,
	// l'ordre à score égal n'est pas contractuel.
	ranked := make([]*scored, 0, len(order))
	for _, id := range order {
		ranked = append(ranked, byID[id])
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	// Fenêtre skip/take sur l'ensemble classé
	if offset >= len(ranked) {
		ranked = nil
	} else {
		ranked = ranked[offset:]
	}
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	out := make([]domain.Recommendation, 0, limit)
	seen := make(map[string]bool, limit)
	for _, e := range ranked {
		out = append(out, domain.Recommendation{
			Post:   e.post,
			Score:  e.score,
			Source: domain.SourcePersonalized,
		})
		seen[e.post.ID] = true
	}

	// Remplissage tendance, UNIQUEMENT si la page n'est pas pleine.
	if len(out) < limit {
		missing := limit - len(out)
		trending, err := s.repo.TrendingPosts(ctx, viewerID, TrendingWindow, missing)
		if err != nil {
			return nil, fmt.Errorf("trending backfill: %w", err)
		}

		backfilled := 0
		for _, p := range trending {
			if p == nil || p.ID == "" || seen[p.ID] {
				// Dédup inter-segments : un post ne sort jamais deux fois
				continue
			}
			seen[p.ID] = true
			out = append(out, domain.Recommendation{
				Post:   p,
				Source: domain.SourceTrending,
			})
			backfilled++
		}
		if backfilled > 0 {
			metrics.RecoBackfill.Add(float64(backfilled))
		}
	}

	return out, nil
}

// GetGuestRecommendations : pas d'identité, pas de personnalisation possible.
func (s *RecommendationService) GetGuestRecommendations(ctx context.Context, limit int) ([]*domain.Post, error) {
	posts, err := s.repo.PopularPosts(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("guest trending: %w", err)
	}
	return posts, nil
}
