package ports

import (
	"context"

	"github.com/jupiterclapton/papilles/internal/core/domain"
)

// --- DRIVING (Ce que le service expose) ---

type Recommender interface {
	// GetRecommendations produit le feed personnalisé du viewer.
	// Contrat : ne remonte JAMAIS d'erreur. La reco est une feature "soft",
	// en cas de panne du store on dégrade vers une liste vide plutôt que
	// de casser la session de l'utilisateur.
	GetRecommendations(ctx context.Context, viewerID string, limit, offset int) []domain.Recommendation

	// GetGuestRecommendations est le chemin anonyme : les posts les plus
	// populaires, sans exclusion (rien contre quoi exclure).
	// Ici l'erreur remonte : il n'y a aucun étage de repli en dessous,
	// c'est à la couche HTTP de décider quoi en faire.
	GetGuestRecommendations(ctx context.Context, limit int) ([]*domain.Post, error)
}
