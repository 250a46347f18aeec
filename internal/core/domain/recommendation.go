package domain

// Source distingue les items scorés (personnalisés) du remplissage tendance.
// Jamais persisté : c'est un marqueur de réponse, pas une donnée du graphe.
type Source string

const (
	SourcePersonalized Source = "personalized"
	SourceTrending     Source = "trending"
)

// Candidate est une ligne brute du signal collaboratif :
// un post aimé par des utilisateurs "similaires" au viewer.
// Strength = nombre d'utilisateurs similaires distincts qui l'ont aimé.
type Candidate struct {
	Post     *Post
	Strength int64
}

// Recommendation est un élément du résultat final, éphémère par construction.
type Recommendation struct {
	Post   *Post
	Score  float64 // 0 pour les items tendance
	Source Source
}
