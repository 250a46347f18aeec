package repository

import (
	"context"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/jupiterclapton/papilles/internal/core/domain"
)

// Neo4jRepo délègue la traversée multi-sauts (viewer→likes→post→likes→user→
// likes→post) au moteur de requêtes du graphe. On ne reconstruit jamais
// d'adjacence en mémoire côté Go.
type Neo4jRepo struct {
	driver neo4j.DriverWithContext
}

func NewNeo4jRepo(driver neo4j.DriverWithContext) *Neo4jRepo {
	return &Neo4jRepo{driver: driver}
}

// EnsureSchema crée les contraintes et index (idempotent).
// L'index sur created_at porte la requête tendance (fenêtre 30 jours).
func (r *Neo4jRepo) EnsureSchema(ctx context.Context) error {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	statements := []string{
		`CREATE CONSTRAINT user_id_unique IF NOT EXISTS FOR (u:User) REQUIRE u.id IS UNIQUE`,
		`CREATE CONSTRAINT post_id_unique IF NOT EXISTS FOR (p:Post) REQUIRE p.id IS UNIQUE`,
		`CREATE INDEX post_created_at IF NOT EXISTS FOR (p:Post) ON (p.created_at)`,
	}

	for _, stmt := range statements {
		query := stmt
		_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
			_, err := tx.Run(ctx, query, nil)
			return nil, err
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// SimilarTasteCandidates : le comptage des utilisateurs similaires distincts
// (strength) est fait par Cypher, pas en Go.
func (r *Neo4jRepo) SimilarTasteCandidates(ctx context.Context, viewerID string) ([]domain.Candidate, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			MATCH (u:User {id: $viewerId})-[:LIKES]->(:Post)<-[:LIKES]-(other:User)
			WHERE other.id <> $viewerId
			MATCH (other)-[:LIKES]->(rec:Post)
			WHERE NOT (u)-[:LIKES]->(rec) AND NOT (u)-[:CREATED]->(rec)
			OPTIONAL MATCH (author:User)-[:CREATED]->(rec)
			RETURN rec, author, count(DISTINCT other) AS strength
		`
		res, err := tx.Run(ctx, query, map[string]any{"viewerId": viewerID})
		if err != nil {
			return nil, err
		}

		var candidates []domain.Candidate
		for res.Next(ctx) {
			record := res.Record()
			strength, _ := record.Get("strength")
			candidates = append(candidates, domain.Candidate{
				Post:     postFromRecord(record, "rec", "author"),
				Strength: asInt(strength),
			})
		}
		return candidates, res.Err()
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Candidate), nil
}

// SharedTagCandidates : volontairement SANS DISTINCT. Une ligne par chemin
// (post aimé → tag → post candidat) ; la somme des chemins est le rôle de
// l'accumulateur côté service.
func (r *Neo4jRepo) SharedTagCandidates(ctx context.Context, viewerID string) ([]*domain.Post, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			MATCH (u:User {id: $viewerId})-[:LIKES]->(:Post)-[:HAS_TAG]->(:Tag)<-[:HAS_TAG]-(rec:Post)
			WHERE NOT (u)-[:LIKES]->(rec) AND NOT (u)-[:CREATED]->(rec)
			OPTIONAL MATCH (author:User)-[:CREATED]->(rec)
			RETURN rec, author
		`
		res, err := tx.Run(ctx, query, map[string]any{"viewerId": viewerID})
		if err != nil {
			return nil, err
		}

		var posts []*domain.Post
		for res.Next(ctx) {
			posts = append(posts, postFromRecord(res.Record(), "rec", "author"))
		}
		return posts, res.Err()
	})
	if err != nil {
		return nil, err
	}
	return result.([]*domain.Post), nil
}

// TrendingPosts : fenêtre glissante, tri popularité+note.
// limit passe en int : le driver le transmet comme entier Cypher, jamais
// comme flottant (LIMIT refuse les floats).
func (r *Neo4jRepo) TrendingPosts(ctx context.Context, viewerID string, window time.Duration, limit int) ([]*domain.Post, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			MATCH (u:User {id: $viewerId})
			MATCH (p:Post)
			WHERE p.created_at >= datetime() - duration({days: $days})
			  AND NOT (u)-[:LIKES]->(p)
			  AND NOT (u)-[:CREATED]->(p)
			OPTIONAL MATCH (author:User)-[:CREATED]->(p)
			RETURN p, author
			ORDER BY p.likes_count + p.avg_rating DESC
			LIMIT $limit
		`
		res, err := tx.Run(ctx, query, map[string]any{
			"viewerId": viewerID,
			"days":     int64(window.Hours() / 24),
			"limit":    int64(limit),
		})
		if err != nil {
			return nil, err
		}

		var posts []*domain.Post
		for res.Next(ctx) {
			posts = append(posts, postFromRecord(res.Record(), "p", "author"))
		}
		return posts, res.Err()
	})
	if err != nil {
		return nil, err
	}
	return result.([]*domain.Post), nil
}

// PopularPosts : chemin invité, aucune exclusion.
func (r *Neo4jRepo) PopularPosts(ctx context.Context, limit int) ([]*domain.Post, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			MATCH (p:Post)
			OPTIONAL MATCH (author:User)-[:CREATED]->(p)
			RETURN p, author
			ORDER BY p.likes_count DESC, p.created_at DESC
			LIMIT $limit
		`
		res, err := tx.Run(ctx, query, map[string]any{"limit": int64(limit)})
		if err != nil {
			return nil, err
		}

		var posts []*domain.Post
		for res.Next(ctx) {
			posts = append(posts, postFromRecord(res.Record(), "p", "author"))
		}
		return posts, res.Err()
	})
	if err != nil {
		return nil, err
	}
	return result.([]*domain.Post), nil
}
