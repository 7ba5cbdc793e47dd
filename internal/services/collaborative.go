package services

import (
	"hash/fnv"
	"math"
	"math/rand"
	"sort"
	"sync"

	"github.com/HemnathKopula/melody/internal/config"
	"github.com/HemnathKopula/melody/internal/models"
)

// CollaborativeService scores unseen songs for a user with a latent-factor
// model factorized from the playlist relation. History rows are deliberately
// left out of training; only playlist membership counts as a positive rating.
type CollaborativeService interface {
	RecommendCF(snap *models.InteractionSnapshot, k int) ([]string, error)
}

type collaborativeService struct {
	config *config.Config

	// Trained model cache, keyed by a content hash of the training triples.
	// Any ingestion that changes the playlist relation changes the key, so a
	// stale model can never serve a new snapshot.
	mu        sync.Mutex
	cachedKey uint64
	cached    *svdModel
}

func NewCollaborativeService() CollaborativeService {
	return &collaborativeService{
		config: config.GlobalConfig,
	}
}

func (s *collaborativeService) RecommendCF(snap *models.InteractionSnapshot, k int) ([]string, error) {
	if k <= 0 {
		return []string{}, nil
	}

	triples := dedupeTriples(snap.PlaylistRows)
	if len(triples) == 0 {
		// Nothing to factorize; an empty matrix is not an error.
		return []string{}, nil
	}

	userHasSignal := false
	for _, t := range triples {
		if t.user == snap.UserID {
			userHasSignal = true
			break
		}
	}
	if !userHasSignal {
		// A user absent from training would only ever get the global-mean
		// prediction. No signal means no collaborative recommendation.
		return []string{}, nil
	}

	model := s.fit(triples)

	type scored struct {
		id    string
		score float64
	}
	predictions := make([]scored, 0, len(snap.CandidateSongIDs))
	for _, songID := range snap.CandidateSongIDs {
		predictions = append(predictions, scored{
			id:    songID,
			score: model.predict(snap.UserID, songID),
		})
	}

	sort.Slice(predictions, func(i, j int) bool {
		if predictions[i].score != predictions[j].score {
			return predictions[i].score > predictions[j].score
		}
		return predictions[i].id < predictions[j].id
	})

	if len(predictions) > k {
		predictions = predictions[:k]
	}
	result := make([]string, 0, len(predictions))
	for _, p := range predictions {
		result = append(result, p.id)
	}
	return result, nil
}

type ratingTriple struct {
	user   string
	song   string
	rating float64
}

// dedupeTriples collapses repeated (user, song) pairs to a single implicit
// rating of 1 so re-ingested rows cannot bias the factorization, and returns
// the triples in a fixed order for reproducible training and hashing.
func dedupeTriples(rows []models.PlaylistEntry) []ratingTriple {
	seen := make(map[[2]string]struct{}, len(rows))
	triples := make([]ratingTriple, 0, len(rows))
	for _, row := range rows {
		key := [2]string{row.UserID, row.SongID}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		triples = append(triples, ratingTriple{user: row.UserID, song: row.SongID, rating: 1.0})
	}
	sort.Slice(triples, func(i, j int) bool {
		if triples[i].user != triples[j].user {
			return triples[i].user < triples[j].user
		}
		return triples[i].song < triples[j].song
	})
	return triples
}

func hashTriples(triples []ratingTriple) uint64 {
	h := fnv.New64a()
	for _, t := range triples {
		h.Write([]byte(t.user))
		h.Write([]byte{0})
		h.Write([]byte(t.song))
		h.Write([]byte{'\n'})
	}
	return h.Sum64()
}

func (s *collaborativeService) fit(triples []ratingTriple) *svdModel {
	key := hashTriples(triples)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cached != nil && s.cachedKey == key {
		return s.cached
	}

	model := trainSVD(triples, s.config.CFFactors, s.config.CFEpochs,
		s.config.CFLearningRate, s.config.CFRegularization)

	s.cachedKey = key
	s.cached = model
	return model
}

// svdModel is a biased matrix-factorization model: predicted affinity is the
// global mean plus user and item biases plus the dot product of the latent
// vectors, clamped to the implicit rating scale [0, 1].
type svdModel struct {
	mean        float64
	userIndex   map[string]int
	songIndex   map[string]int
	userBias    []float64
	songBias    []float64
	userFactors [][]float64
	songFactors [][]float64
}

func trainSVD(triples []ratingTriple, factors, epochs int, learningRate, regularization float64) *svdModel {
	userIndex := make(map[string]int)
	songIndex := make(map[string]int)
	var sum float64
	for _, t := range triples {
		if _, ok := userIndex[t.user]; !ok {
			userIndex[t.user] = len(userIndex)
		}
		if _, ok := songIndex[t.song]; !ok {
			songIndex[t.song] = len(songIndex)
		}
		sum += t.rating
	}

	m := &svdModel{
		mean:        sum / float64(len(triples)),
		userIndex:   userIndex,
		songIndex:   songIndex,
		userBias:    make([]float64, len(userIndex)),
		songBias:    make([]float64, len(songIndex)),
		userFactors: make([][]float64, len(userIndex)),
		songFactors: make([][]float64, len(songIndex)),
	}

	// Fixed seed: training is part of the request path and repeated calls on
	// the same snapshot must rank candidates identically.
	rng := rand.New(rand.NewSource(1))
	for i := range m.userFactors {
		m.userFactors[i] = randomVector(rng, factors)
	}
	for i := range m.songFactors {
		m.songFactors[i] = randomVector(rng, factors)
	}

	for epoch := 0; epoch < epochs; epoch++ {
		for _, t := range triples {
			u := m.userIndex[t.user]
			i := m.songIndex[t.song]

			var dot float64
			for f := 0; f < factors; f++ {
				dot += m.userFactors[u][f] * m.songFactors[i][f]
			}
			err := t.rating - (m.mean + m.userBias[u] + m.songBias[i] + dot)

			m.userBias[u] += learningRate * (err - regularization*m.userBias[u])
			m.songBias[i] += learningRate * (err - regularization*m.songBias[i])
			for f := 0; f < factors; f++ {
				uf := m.userFactors[u][f]
				sf := m.songFactors[i][f]
				m.userFactors[u][f] += learningRate * (err*sf - regularization*uf)
				m.songFactors[i][f] += learningRate * (err*uf - regularization*sf)
			}
		}
	}

	return m
}

func randomVector(rng *rand.Rand, n int) []float64 {
	v := make([]float64, n)
	for i := range v {
		v[i] = rng.NormFloat64() * 0.1
	}
	return v
}

func (m *svdModel) predict(user, song string) float64 {
	score := m.mean
	u, knownUser := m.userIndex[user]
	i, knownSong := m.songIndex[song]
	if knownUser {
		score += m.userBias[u]
	}
	if knownSong {
		score += m.songBias[i]
	}
	if knownUser && knownSong {
		for f := range m.userFactors[u] {
			score += m.userFactors[u][f] * m.songFactors[i][f]
		}
	}
	return math.Max(0, math.Min(1, score))
}
