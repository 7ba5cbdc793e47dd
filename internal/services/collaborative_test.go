package services

import (
	"os"
	"reflect"
	"testing"

	"github.com/HemnathKopula/melody/internal/config"
	"github.com/HemnathKopula/melody/internal/models"
)

func TestMain(m *testing.M) {
	config.GlobalConfig = &config.Config{
		ContentWeight:       0.5,
		CollaborativeWeight: 0.5,
		CFFactors:           8,
		CFEpochs:            10,
		CFLearningRate:      0.005,
		CFRegularization:    0.02,
	}
	os.Exit(m.Run())
}

func playlistRows(pairs ...[2]string) []models.PlaylistEntry {
	rows := make([]models.PlaylistEntry, 0, len(pairs))
	for _, p := range pairs {
		rows = append(rows, models.PlaylistEntry{UserID: p[0], SongID: p[1]})
	}
	return rows
}

func TestRecommendCFEmptyStore(t *testing.T) {
	svc := NewCollaborativeService()
	snap := &models.InteractionSnapshot{
		UserID:           "U1",
		CandidateSongIDs: []string{"S1", "S2"},
	}

	got, err := svc.RecommendCF(snap, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty result for empty playlist relation, got %v", got)
	}
}

func TestRecommendCFUserWithoutPlaylists(t *testing.T) {
	svc := NewCollaborativeService()
	snap := &models.InteractionSnapshot{
		UserID:           "U9",
		PlaylistRows:     playlistRows([2]string{"U1", "S1"}, [2]string{"U2", "S2"}),
		CandidateSongIDs: []string{"S1", "S2", "S3"},
	}

	got, err := svc.RecommendCF(snap, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty result for user without playlist rows, got %v", got)
	}
}

func TestRecommendCFSingleInteraction(t *testing.T) {
	// One playlist row and one other catalog song must not crash the
	// trainer and must yield at most that one candidate.
	svc := NewCollaborativeService()
	snap := &models.InteractionSnapshot{
		UserID:           "U1",
		PlaylistRows:     playlistRows([2]string{"U1", "S1"}),
		CandidateSongIDs: []string{"S2"},
	}

	got, err := svc.RecommendCF(snap, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) > 1 {
		t.Fatalf("expected at most one candidate, got %v", got)
	}
	if len(got) == 1 && got[0] != "S2" {
		t.Errorf("expected S2, got %v", got)
	}
}

func cfTestSnapshot() *models.InteractionSnapshot {
	return &models.InteractionSnapshot{
		UserID: "U1",
		PlaylistRows: playlistRows(
			[2]string{"U1", "S1"}, [2]string{"U1", "S2"},
			[2]string{"U2", "S2"}, [2]string{"U2", "S3"},
			[2]string{"U3", "S3"}, [2]string{"U3", "S4"}, [2]string{"U3", "S5"},
		),
		CandidateSongIDs: []string{"S3", "S4", "S5", "S6"},
	}
}

func TestRecommendCFDeterministic(t *testing.T) {
	svc := NewCollaborativeService()

	first, err := svc.RecommendCF(cfTestSnapshot(), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.RecommendCF(cfTestSnapshot(), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated calls disagree: %v vs %v", first, second)
	}

	// A fresh service retrains from scratch and must still agree.
	third, err := NewCollaborativeService().RecommendCF(cfTestSnapshot(), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(first, third) {
		t.Errorf("fresh service disagrees: %v vs %v", first, third)
	}
}

func TestRecommendCFLimitAndUniqueness(t *testing.T) {
	svc := NewCollaborativeService()

	got, err := svc.RecommendCF(cfTestSnapshot(), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) > 2 {
		t.Errorf("expected at most 2 results, got %d", len(got))
	}
	seen := make(map[string]bool)
	for _, id := range got {
		if seen[id] {
			t.Errorf("duplicate song id %s in result", id)
		}
		seen[id] = true
	}
}

func TestRecommendCFDuplicateRowsDoNotChangeRanking(t *testing.T) {
	svc := NewCollaborativeService()

	base, err := svc.RecommendCF(cfTestSnapshot(), 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	duplicated := cfTestSnapshot()
	duplicated.PlaylistRows = append(duplicated.PlaylistRows, duplicated.PlaylistRows...)
	got, err := NewCollaborativeService().RecommendCF(duplicated, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(base, got) {
		t.Errorf("duplicate rows changed the ranking: %v vs %v", base, got)
	}
}

func TestDedupeTriples(t *testing.T) {
	rows := playlistRows(
		[2]string{"U2", "S1"},
		[2]string{"U1", "S2"},
		[2]string{"U1", "S2"},
		[2]string{"U1", "S1"},
	)

	triples := dedupeTriples(rows)
	if len(triples) != 3 {
		t.Fatalf("expected 3 unique triples, got %d", len(triples))
	}
	// Sorted by user then song for reproducible training order.
	want := []ratingTriple{
		{user: "U1", song: "S1", rating: 1},
		{user: "U1", song: "S2", rating: 1},
		{user: "U2", song: "S1", rating: 1},
	}
	if !reflect.DeepEqual(triples, want) {
		t.Errorf("unexpected triple order: %v", triples)
	}
}

func TestModelCacheReuse(t *testing.T) {
	svc := NewCollaborativeService().(*collaborativeService)

	if _, err := svc.RecommendCF(cfTestSnapshot(), 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	first := svc.cached
	if first == nil {
		t.Fatal("expected a cached model after first call")
	}

	if _, err := svc.RecommendCF(cfTestSnapshot(), 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if svc.cached != first {
		t.Error("expected the cached model to be reused for an unchanged snapshot")
	}

	// New playlist data must invalidate the cache.
	changed := cfTestSnapshot()
	changed.PlaylistRows = append(changed.PlaylistRows, models.PlaylistEntry{UserID: "U4", SongID: "S6"})
	if _, err := svc.RecommendCF(changed, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if svc.cached == first {
		t.Error("expected a retrained model after the playlist relation changed")
	}
}

func TestSVDPredictStaysInRatingScale(t *testing.T) {
	triples := dedupeTriples(cfTestSnapshot().PlaylistRows)
	model := trainSVD(triples, 8, 10, 0.005, 0.02)

	for _, user := range []string{"U1", "U2", "unknown"} {
		for _, song := range []string{"S1", "S6", "unknown"} {
			p := model.predict(user, song)
			if p < 0 || p > 1 {
				t.Errorf("predict(%s, %s) = %f outside [0, 1]", user, song, p)
			}
		}
	}
}
