package repository

import (
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/jupiterclapton/papilles/internal/core/domain"
)

// postFromRecord mappe un noeud Post (+ auteur optionnel) vers le domaine.
// Renvoie nil si la colonne n'est pas un noeud : le service filtre les
// candidats orphelins, on ne fait pas crasher la requête pour une ligne.
func postFromRecord(record *neo4j.Record, postKey, authorKey string) *domain.Post {
	raw, found := record.Get(postKey)
	if !found {
		return nil
	}
	node, ok := raw.(neo4j.Node)
	if !ok {
		return nil
	}

	post := &domain.Post{
		ID:         asString(node.Props["id"]),
		Title:      asString(node.Props["title"]),
		Content:    asString(node.Props["content"]),
		Recipe:     asString(node.Props["recipe"]),
		Photos:     asStringSlice(node.Props["photos"]),
		LikesCount: asInt(node.Props["likes_count"]),
		AvgRating:  asFloat(node.Props["avg_rating"]),
		CreatedAt:  asTime(node.Props["created_at"]),
	}

	if rawAuthor, found := record.Get(authorKey); found {
		// OPTIONAL MATCH : nil si le créateur a été supprimé
		if authorNode, ok := rawAuthor.(neo4j.Node); ok {
			post.Author = &domain.Author{
				ID:   asString(authorNode.Props["id"]),
				Name: asString(authorNode.Props["name"]),
			}
		}
	}

	return post
}

// Le store renvoie les agrégats dans des types boxés (int64, parfois float64
// selon l'expression Cypher). La normalisation numérique vit ICI, à la
// frontière de l'adapter, pas éparpillée dans la logique de scoring.

func asInt(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return 0
	}
}

func asFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	case int:
		return float64(n)
	default:
		return 0
	}
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asTime(v any) time.Time {
	t, _ := v.(time.Time)
	return t
}

func asStringSlice(v any) []string {
	raw, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
