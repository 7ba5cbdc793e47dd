package services

import (
	"math"
	"sort"

	"github.com/HemnathKopula/melody/internal/config"
	"github.com/HemnathKopula/melody/internal/models"
)

// ContentBasedService ranks catalog songs by how close their genre profile
// sits to the user's aggregate genre preferences. Unlike the collaborative
// filter, both playlist and history songs feed the preference set.
type ContentBasedService interface {
	RecommendCBF(snap *models.InteractionSnapshot, k int) ([]string, error)
}

type contentBasedService struct {
	config *config.Config
}

func NewContentBasedService() ContentBasedService {
	return &contentBasedService{
		config: config.GlobalConfig,
	}
}

func (s *contentBasedService) RecommendCBF(snap *models.InteractionSnapshot, k int) ([]string, error) {
	if k <= 0 {
		return []string{}, nil
	}

	userSongs := make(map[string]bool)
	for _, row := range snap.PlaylistRows {
		if row.UserID == snap.UserID {
			userSongs[row.SongID] = true
		}
	}
	for _, songID := range snap.HistorySongIDs {
		userSongs[songID] = true
	}

	// De-duplicated song -> genre sets; repeated ingestion may have left
	// duplicate tag rows and they must not weight the vectors.
	songGenres := make(map[string]map[string]bool)
	vocabulary := make(map[string]bool)
	for _, tag := range snap.GenreTags {
		if songGenres[tag.SongID] == nil {
			songGenres[tag.SongID] = make(map[string]bool)
		}
		songGenres[tag.SongID][tag.Genre] = true
		vocabulary[tag.Genre] = true
	}

	userGenres := make(map[string]bool)
	for songID := range userSongs {
		for genre := range songGenres[songID] {
			userGenres[genre] = true
		}
	}
	if len(userGenres) == 0 {
		// No genre signal, no content-based recommendation.
		return []string{}, nil
	}

	genres := make([]string, 0, len(vocabulary))
	for genre := range vocabulary {
		genres = append(genres, genre)
	}
	sort.Strings(genres)

	userVector := incidenceVector(genres, userGenres)

	// Only songs carrying at least one tag are candidates; a zero vector has
	// no defined angle to anything. Songs the user already interacted with
	// are filtered out so the result is discovery, not an echo.
	candidates := make([]string, 0, len(songGenres))
	for songID := range songGenres {
		if !userSongs[songID] {
			candidates = append(candidates, songID)
		}
	}
	sort.Strings(candidates)

	type scored struct {
		id    string
		score float64
	}
	scores := make([]scored, 0, len(candidates))
	for _, songID := range candidates {
		vector := incidenceVector(genres, songGenres[songID])
		score := cosineSimilarity(userVector, vector)
		if score > 0 {
			scores = append(scores, scored{id: songID, score: score})
		}
	}

	sort.Slice(scores, func(i, j int) bool {
		if scores[i].score != scores[j].score {
			return scores[i].score > scores[j].score
		}
		return scores[i].id < scores[j].id
	})

	if len(scores) > k {
		scores = scores[:k]
	}
	result := make([]string, 0, len(scores))
	for _, sc := range scores {
		result = append(result, sc.id)
	}
	return result, nil
}

// incidenceVector builds the binary genre vector over the global vocabulary.
func incidenceVector(vocabulary []string, genres map[string]bool) []float64 {
	v := make([]float64, len(vocabulary))
	for i, genre := range vocabulary {
		if genres[genre] {
			v[i] = 1
		}
	}
	return v
}

func cosineSimilarity(a, b []float64) float64 {
	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
