package domain

import "time"

// Author est le résumé dénormalisé du créateur, attaché au moment de la lecture.
// Nil si le compte a été supprimé entre-temps.
type Author struct {
	ID   string
	Name string
}

// Post est une publication culinaire (lecture seule côté reco :
// la mutation appartient aux services CRUD).
type Post struct {
	ID         string
	Title      string
	Content    string
	Recipe     string
	Photos     []string
	LikesCount int64
	AvgRating  float64 // 0 quand aucune review
	CreatedAt  time.Time
	Author     *Author
}
