package services

import (
	"fmt"

	"github.com/HemnathKopula/melody/internal/repository"
)

// Strategy selects which scorer answers a recommendation request.
type Strategy string

const (
	StrategyCollaborative Strategy = "cf"
	StrategyContent       Strategy = "cbf"
	StrategyHybrid        Strategy = "hybrid"
)

var ErrUnknownStrategy = fmt.Errorf("unknown recommendation strategy")

func ParseStrategy(raw string) (Strategy, error) {
	switch Strategy(raw) {
	case StrategyCollaborative, StrategyContent, StrategyHybrid:
		return Strategy(raw), nil
	case "":
		return StrategyHybrid, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, raw)
	}
}

// RecommenderService is the engine's single entry point: it snapshots the
// interaction store once per request and dispatches to the selected scorer,
// so every ranking in one response is computed from the same store state.
type RecommenderService interface {
	Recommend(userID string, strategy Strategy, k int) ([]string, error)
}

type recommenderService struct {
	interactions  repository.InteractionRepository
	collaborative CollaborativeService
	content       ContentBasedService
	hybrid        HybridService
}

func NewRecommenderService(
	interactions repository.InteractionRepository,
	collaborative CollaborativeService,
	content ContentBasedService,
	hybrid HybridService,
) RecommenderService {
	return &recommenderService{
		interactions:  interactions,
		collaborative: collaborative,
		content:       content,
		hybrid:        hybrid,
	}
}

func (s *recommenderService) Recommend(userID string, strategy Strategy, k int) ([]string, error) {
	if k <= 0 {
		return []string{}, nil
	}

	snap, err := s.interactions.SnapshotForUser(userID)
	if err != nil {
		return nil, fmt.Errorf("snapshot interaction store: %w", err)
	}

	switch strategy {
	case StrategyCollaborative:
		return s.collaborative.RecommendCF(snap, k)
	case StrategyContent:
		return s.content.RecommendCBF(snap, k)
	case StrategyHybrid:
		return s.hybrid.RecommendHybrid(snap, k)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, strategy)
	}
}
