package services

import (
	"fmt"
	"log"
	"sort"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/HemnathKopula/melody/internal/models"
	"github.com/HemnathKopula/melody/internal/repository"
)

// IngestService pulls a user's playlists, top tracks and recently played
// tracks from the catalog API and turns them into interaction rows. The
// recommendation engine only ever reads what this writes.
type IngestService interface {
	IngestUserData(userID, accessToken string) (*models.IngestSummary, error)
}

type ingestService struct {
	spotify      SpotifyService
	songRepo     repository.SongRepository
	interactions repository.InteractionRepository
}

func NewIngestService(
	spotify SpotifyService,
	songRepo repository.SongRepository,
	interactions repository.InteractionRepository,
) IngestService {
	return &ingestService{
		spotify:      spotify,
		songRepo:     songRepo,
		interactions: interactions,
	}
}

func (s *ingestService) IngestUserData(userID, accessToken string) (*models.IngestSummary, error) {
	runID := uuid.NewString()
	log.Printf("[ingest %s] starting for user %s", runID, userID)

	// The three catalog fetches are independent; only the writes below need
	// ordering. Network time dominates, so fan out.
	var (
		playlistSongs []models.Song
		topSongs      []models.Song
		recentSongs   []models.Song
	)

	var g errgroup.Group
	g.Go(func() error {
		playlistIDs, err := s.spotify.GetUserPlaylists(accessToken)
		if err != nil {
			return fmt.Errorf("fetch playlists: %w", err)
		}
		for _, playlistID := range playlistIDs {
			tracks, err := s.spotify.GetPlaylistTracks(accessToken, playlistID)
			if err != nil {
				return fmt.Errorf("fetch playlist %s tracks: %w", playlistID, err)
			}
			playlistSongs = append(playlistSongs, tracks...)
		}
		return nil
	})
	g.Go(func() error {
		songs, err := s.spotify.GetTopTracks(accessToken, 20)
		if err != nil {
			return fmt.Errorf("fetch top tracks: %w", err)
		}
		topSongs = songs
		return nil
	})
	g.Go(func() error {
		songs, err := s.spotify.GetRecentlyPlayed(accessToken)
		if err != nil {
			return fmt.Errorf("fetch recently played: %w", err)
		}
		recentSongs = songs
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	historySongs := append(append([]models.Song{}, topSongs...), recentSongs...)
	allSongs := dedupeSongs(append(append([]models.Song{}, playlistSongs...), historySongs...))

	if err := s.songRepo.CreateSongs(allSongs); err != nil {
		return nil, err
	}

	playlistRows, err := s.interactions.AddPlaylistInteractions(userID, songIDs(playlistSongs))
	if err != nil {
		return nil, err
	}
	historyRows, err := s.interactions.AddHistoryInteractions(userID, songIDs(historySongs))
	if err != nil {
		return nil, err
	}

	tagCount, err := s.ingestGenres(allSongs)
	if err != nil {
		// Genre tags are an enrichment; a failed artist lookup should not
		// throw away the interaction rows already written.
		log.Printf("[ingest %s] genre tagging failed: %v", runID, err)
	}

	summary := &models.IngestSummary{
		RunID:        runID,
		UserID:       userID,
		Songs:        len(allSongs),
		PlaylistRows: playlistRows,
		HistoryRows:  historyRows,
		GenreTags:    tagCount,
	}
	log.Printf("[ingest %s] done: %d songs, %d playlist rows, %d history rows, %d genre tags",
		runID, summary.Songs, summary.PlaylistRows, summary.HistoryRows, summary.GenreTags)
	return summary, nil
}

// ingestGenres tags every ingested song with the union of its artists'
// genres, the only genre source the catalog exposes per track.
func (s *ingestService) ingestGenres(songs []models.Song) (int, error) {
	artistSongs := make(map[string][]string)
	for _, song := range songs {
		if song.ArtistID != "" {
			artistSongs[song.ArtistID] = append(artistSongs[song.ArtistID], song.ID)
		}
	}
	if len(artistSongs) == 0 {
		return 0, nil
	}

	artistIDs := make([]string, 0, len(artistSongs))
	for id := range artistSongs {
		artistIDs = append(artistIDs, id)
	}
	sort.Strings(artistIDs)

	artists, err := s.spotify.GetArtists(artistIDs)
	if err != nil {
		return 0, err
	}

	var tags []models.GenreTag
	for _, artist := range artists {
		for _, songID := range artistSongs[artist.ID] {
			for _, genre := range artist.Genres {
				tags = append(tags, models.GenreTag{SongID: songID, Genre: genre})
			}
		}
	}
	return s.interactions.AddGenreTags(tags)
}

func dedupeSongs(songs []models.Song) []models.Song {
	seen := make(map[string]bool, len(songs))
	out := make([]models.Song, 0, len(songs))
	for _, song := range songs {
		if song.ID == "" || seen[song.ID] {
			continue
		}
		seen[song.ID] = true
		out = append(out, song)
	}
	return out
}

func songIDs(songs []models.Song) []string {
	seen := make(map[string]bool, len(songs))
	ids := make([]string, 0, len(songs))
	for _, song := range songs {
		if song.ID == "" || seen[song.ID] {
			continue
		}
		seen[song.ID] = true
		ids = append(ids, song.ID)
	}
	return ids
}
