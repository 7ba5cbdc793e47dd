package services

import (
	"log"
	"sort"

	"github.com/HemnathKopula/melody/internal/config"
	"github.com/HemnathKopula/melody/internal/models"
)

// HybridService blends the collaborative and content-based rankings. Each
// strategy contributes its top 2k candidates; the merge combines weighted
// rank scores so the output order is reproducible, unlike a set union.
type HybridService interface {
	RecommendHybrid(snap *models.InteractionSnapshot, k int) ([]string, error)
}

type hybridService struct {
	contentService       ContentBasedService
	collaborativeService CollaborativeService
	config               *config.Config
}

func NewHybridService(content ContentBasedService, collaborative CollaborativeService) HybridService {
	return &hybridService{
		contentService:       content,
		collaborativeService: collaborative,
		config:               config.GlobalConfig,
	}
}

func (s *hybridService) RecommendHybrid(snap *models.InteractionSnapshot, k int) ([]string, error) {
	if k <= 0 {
		return []string{}, nil
	}

	// A failing scorer contributes zero candidates; it must not take the
	// other scorer's valid results down with it. Only a failure of both
	// surfaces to the caller.
	cfSongs, cfErr := s.collaborativeService.RecommendCF(snap, k*2)
	if cfErr != nil {
		log.Printf("hybrid: collaborative scorer failed for user %s: %v", snap.UserID, cfErr)
	}
	cbfSongs, cbfErr := s.contentService.RecommendCBF(snap, k*2)
	if cbfErr != nil {
		log.Printf("hybrid: content scorer failed for user %s: %v", snap.UserID, cbfErr)
	}
	if cfErr != nil && cbfErr != nil {
		return nil, cfErr
	}

	combined := make(map[string]float64)
	addRanked(combined, cfSongs, s.config.CollaborativeWeight)
	addRanked(combined, cbfSongs, s.config.ContentWeight)

	type scored struct {
		id    string
		score float64
	}
	merged := make([]scored, 0, len(combined))
	for id, score := range combined {
		merged = append(merged, scored{id: id, score: score})
	}
	sort.Slice(merged, func(i, j int) bool {
		if merged[i].score != merged[j].score {
			return merged[i].score > merged[j].score
		}
		return merged[i].id < merged[j].id
	})

	if len(merged) > k {
		merged = merged[:k]
	}
	result := make([]string, 0, len(merged))
	for _, m := range merged {
		result = append(result, m.id)
	}
	return result, nil
}

// addRanked folds one strategy's ordered candidates into the combined score
// map. Position matters: rank r of n contributes weight * (1 - r/(n+1)), so
// a song ranked high by both strategies beats a song ranked high by one.
func addRanked(combined map[string]float64, songIDs []string, weight float64) {
	n := float64(len(songIDs))
	for i, id := range songIDs {
		combined[id] += weight * (1 - float64(i+1)/(n+1))
	}
}
