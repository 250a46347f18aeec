package ports

import (
	"context"
	"time"

	"github.com/jupiterclapton/papilles/internal/core/domain"
)

// --- DRIVEN (Ce dont le service a besoin) ---

// RecommendationRepository est le port vers le graphe social (Neo4j).
// La traversée ET l'agrégation (comptage, groupement) restent côté store :
// on ne ramène jamais le graphe entier en mémoire pour le parcourir.
type RecommendationRepository interface {
	// SimilarTasteCandidates : posts aimés par des utilisateurs ayant au moins
	// un like en commun avec le viewer, avec le nombre d'utilisateurs
	// similaires distincts par post (strength). Exclut les posts déjà
	// aimés ou créés par le viewer.
	SimilarTasteCandidates(ctx context.Context, viewerID string) ([]domain.Candidate, error)

	// SharedTagCandidates : posts partageant un tag avec un post aimé par le
	// viewer, mêmes exclusions. Une ligne PAR CHEMIN de traversée : les
	// doublons ne sont pas dédupliqués ici, c'est l'accumulateur de score
	// qui les somme.
	SharedTagCandidates(ctx context.Context, viewerID string) ([]*domain.Post, error)

	// TrendingPosts : posts créés dans la fenêtre donnée, exclusions du
	// viewer appliquées, triés par (likes_count + avg_rating) décroissant.
	TrendingPosts(ctx context.Context, viewerID string, window time.Duration, limit int) ([]*domain.Post, error)

	// PopularPosts : chemin invité, tous les posts triés par
	// (likes_count desc, created_at desc).
	PopularPosts(ctx context.Context, limit int) ([]*domain.Post, error)
}

// TokenVerifier résout l'identité du viewer depuis un access token.
// L'émission des tokens reste chez le service d'identité.
type TokenVerifier interface {
	Verify(token string) (viewerID string, err error)
}
