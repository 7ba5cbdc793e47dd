package services

import (
	"reflect"
	"testing"

	"github.com/HemnathKopula/melody/internal/models"
)

func genreTags(pairs ...[2]string) []models.GenreTag {
	tags := make([]models.GenreTag, 0, len(pairs))
	for _, p := range pairs {
		tags = append(tags, models.GenreTag{SongID: p[0], Genre: p[1]})
	}
	return tags
}

func TestRecommendCBFGenreScenario(t *testing.T) {
	// U1 likes rock via S1 and S2; S4 is the only novel rock song. S3 is
	// pop (no overlap), S5 is untagged (zero vector) -- neither may appear.
	snap := &models.InteractionSnapshot{
		UserID:       "U1",
		PlaylistRows: playlistRows([2]string{"U1", "S1"}, [2]string{"U1", "S2"}),
		GenreTags: genreTags(
			[2]string{"S1", "rock"},
			[2]string{"S2", "rock"},
			[2]string{"S3", "pop"},
			[2]string{"S4", "rock"},
		),
	}

	got, err := NewContentBasedService().RecommendCBF(snap, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"S4"}) {
		t.Errorf("expected [S4], got %v", got)
	}
}

func TestRecommendCBFNoGenreSignal(t *testing.T) {
	snap := &models.InteractionSnapshot{
		UserID:       "U1",
		PlaylistRows: playlistRows([2]string{"U1", "S1"}),
		GenreTags:    genreTags([2]string{"S2", "pop"}), // S1 untagged
	}

	got, err := NewContentBasedService().RecommendCBF(snap, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty result without a genre profile, got %v", got)
	}
}

func TestRecommendCBFHistoryFeedsProfile(t *testing.T) {
	// Unlike CF training, history songs count toward the genre profile.
	snap := &models.InteractionSnapshot{
		UserID:         "U1",
		HistorySongIDs: []string{"S1"},
		GenreTags: genreTags(
			[2]string{"S1", "jazz"},
			[2]string{"S2", "jazz"},
			[2]string{"S3", "metal"},
		),
	}

	got, err := NewContentBasedService().RecommendCBF(snap, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"S2"}) {
		t.Errorf("expected [S2], got %v", got)
	}
}

func TestRecommendCBFDuplicateTagsDoNotBias(t *testing.T) {
	base := &models.InteractionSnapshot{
		UserID:       "U1",
		PlaylistRows: playlistRows([2]string{"U1", "S1"}),
		GenreTags: genreTags(
			[2]string{"S1", "rock"},
			[2]string{"S2", "rock"},
			[2]string{"S2", "pop"},
			[2]string{"S3", "rock"},
		),
	}
	clean, err := NewContentBasedService().RecommendCBF(base, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	duplicated := &models.InteractionSnapshot{
		UserID:       base.UserID,
		PlaylistRows: base.PlaylistRows,
		GenreTags:    append(append([]models.GenreTag{}, base.GenreTags...), base.GenreTags...),
	}
	got, err := NewContentBasedService().RecommendCBF(duplicated, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(clean, got) {
		t.Errorf("duplicate tag rows changed the ranking: %v vs %v", clean, got)
	}
}

func TestRecommendCBFRanksOverlapAboveNone(t *testing.T) {
	snap := &models.InteractionSnapshot{
		UserID:       "U1",
		PlaylistRows: playlistRows([2]string{"U1", "S1"}),
		GenreTags: genreTags(
			[2]string{"S1", "rock"},
			[2]string{"S2", "rock"},
			[2]string{"S2", "pop"},
			[2]string{"S3", "rock"},
		),
	}

	got, err := NewContentBasedService().RecommendCBF(snap, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// S3 is pure rock (cosine 1), S2 splits rock/pop (cosine ~0.707).
	if !reflect.DeepEqual(got, []string{"S3", "S2"}) {
		t.Errorf("expected [S3 S2], got %v", got)
	}
}

func TestRecommendCBFLimitAndDeterminism(t *testing.T) {
	snap := func() *models.InteractionSnapshot {
		return &models.InteractionSnapshot{
			UserID:       "U1",
			PlaylistRows: playlistRows([2]string{"U1", "S1"}),
			GenreTags: genreTags(
				[2]string{"S1", "rock"},
				[2]string{"S2", "rock"},
				[2]string{"S3", "rock"},
				[2]string{"S4", "rock"},
			),
		}
	}

	first, err := NewContentBasedService().RecommendCBF(snap(), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(first) != 2 {
		t.Fatalf("expected 2 results, got %v", first)
	}
	// Equal scores fall back to ascending song id.
	if !reflect.DeepEqual(first, []string{"S2", "S3"}) {
		t.Errorf("expected [S2 S3], got %v", first)
	}

	second, err := NewContentBasedService().RecommendCBF(snap(), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated calls disagree: %v vs %v", first, second)
	}
}
