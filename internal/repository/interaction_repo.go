package repository

import (
	"database/sql"
	"errors"
	"sort"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/HemnathKopula/melody/internal/models"
)

// InteractionRepository is the query surface the recommendation engine reads
// and the ingestion collaborator writes. The engine itself never mutates
// rows; all Add* methods exist for ingestion only.
type InteractionRepository interface {
	ListPlaylistInteractions() ([]models.PlaylistEntry, error)
	ListHistoryInteractions(userID string) ([]string, error)
	ListGenreTags() ([]models.GenreTag, error)
	ListGenreTagsForSongs(songIDs []string) ([]models.GenreTag, error)
	ListAllSongIDs() ([]string, error)
	ListSongIDsExcludingUserPlaylists(userID string) ([]string, error)

	AddPlaylistInteractions(userID string, songIDs []string) (int, error)
	AddHistoryInteractions(userID string, songIDs []string) (int, error)
	AddGenreTags(tags []models.GenreTag) (int, error)

	SnapshotForUser(userID string) (*models.InteractionSnapshot, error)
}

type interactionRepo struct {
	db *gorm.DB
}

func NewInteractionRepository(db *gorm.DB) InteractionRepository {
	return &interactionRepo{db: db}
}

func (r *interactionRepo) ListPlaylistInteractions() ([]models.PlaylistEntry, error) {
	var rows []models.PlaylistEntry
	if err := r.db.Order("user_id, song_id").Find(&rows).Error; err != nil {
		return nil, storeErr(err)
	}
	return rows, nil
}

func (r *interactionRepo) ListHistoryInteractions(userID string) ([]string, error) {
	var songIDs []string
	err := r.db.Model(&models.HistoryEntry{}).
		Where("user_id = ?", userID).
		Order("song_id").
		Distinct().
		Pluck("song_id", &songIDs).Error
	if err != nil {
		return nil, storeErr(err)
	}
	return songIDs, nil
}

func (r *interactionRepo) ListGenreTags() ([]models.GenreTag, error) {
	var tags []models.GenreTag
	if err := r.db.Order("song_id, genre").Find(&tags).Error; err != nil {
		return nil, storeErr(err)
	}
	return tags, nil
}

func (r *interactionRepo) ListGenreTagsForSongs(songIDs []string) ([]models.GenreTag, error) {
	if len(songIDs) == 0 {
		return []models.GenreTag{}, nil
	}
	var tags []models.GenreTag
	err := r.db.Where("song_id IN ?", songIDs).
		Order("song_id, genre").
		Find(&tags).Error
	if err != nil {
		return nil, storeErr(err)
	}
	return tags, nil
}

func (r *interactionRepo) ListAllSongIDs() ([]string, error) {
	var ids []string
	err := r.db.Model(&models.Song{}).Order("id").Pluck("id", &ids).Error
	if err != nil {
		return nil, storeErr(err)
	}
	return ids, nil
}

// ListSongIDsExcludingUserPlaylists returns the candidate pool for the
// collaborative filter: every catalog song without a playlist row for this
// user. Songs only present in the user's history stay eligible.
func (r *interactionRepo) ListSongIDsExcludingUserPlaylists(userID string) ([]string, error) {
	var ids []string
	err := r.db.Model(&models.Song{}).
		Where("id NOT IN (?)", r.db.Model(&models.PlaylistEntry{}).
			Select("song_id").
			Where("user_id = ?", userID)).
		Order("id").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, storeErr(err)
	}
	return ids, nil
}

func (r *interactionRepo) AddPlaylistInteractions(userID string, songIDs []string) (int, error) {
	rows := make([]models.PlaylistEntry, 0, len(songIDs))
	for _, id := range songIDs {
		rows = append(rows, models.PlaylistEntry{UserID: userID, SongID: id})
	}
	return r.insertIgnoringDuplicates(&rows, len(rows))
}

func (r *interactionRepo) AddHistoryInteractions(userID string, songIDs []string) (int, error) {
	rows := make([]models.HistoryEntry, 0, len(songIDs))
	for _, id := range songIDs {
		rows = append(rows, models.HistoryEntry{UserID: userID, SongID: id})
	}
	return r.insertIgnoringDuplicates(&rows, len(rows))
}

func (r *interactionRepo) AddGenreTags(tags []models.GenreTag) (int, error) {
	return r.insertIgnoringDuplicates(&tags, len(tags))
}

// insertIgnoringDuplicates appends interaction rows with ON CONFLICT DO
// NOTHING so a re-run of ingestion cannot duplicate pairs and skew training.
func (r *interactionRepo) insertIgnoringDuplicates(rows interface{}, n int) (int, error) {
	if n == 0 {
		return 0, nil
	}
	res := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(rows)
	if res.Error != nil {
		return 0, storeErr(res.Error)
	}
	return int(res.RowsAffected), nil
}

// SnapshotForUser loads everything one recommendation request needs inside a
// single read-only transaction, so the collaborative and content-based
// scorers observe the same state even while ingestion is writing. Postgres
// gets repeatable-read isolation; SQLite transactions are serializable
// already.
func (r *interactionRepo) SnapshotForUser(userID string) (*models.InteractionSnapshot, error) {
	var snap *models.InteractionSnapshot

	load := func(tx *gorm.DB) error {
		repo := &interactionRepo{db: tx}

		playlistRows, err := repo.ListPlaylistInteractions()
		if err != nil {
			return err
		}
		historyIDs, err := repo.ListHistoryInteractions(userID)
		if err != nil {
			return err
		}
		tags, err := repo.ListGenreTags()
		if err != nil {
			return err
		}
		candidates, err := repo.ListSongIDsExcludingUserPlaylists(userID)
		if err != nil {
			return err
		}
		sort.Strings(candidates)

		snap = &models.InteractionSnapshot{
			UserID:           userID,
			PlaylistRows:     playlistRows,
			HistorySongIDs:   historyIDs,
			GenreTags:        tags,
			CandidateSongIDs: candidates,
		}
		return nil
	}

	var err error
	if r.db.Dialector.Name() == "postgres" {
		err = r.db.Transaction(load, &sql.TxOptions{
			Isolation: sql.LevelRepeatableRead,
			ReadOnly:  true,
		})
	} else {
		err = r.db.Transaction(load)
	}
	if err != nil {
		// Begin can fail before load ever runs, so the sentinel the inner
		// queries attach must be applied here too.
		if errors.Is(err, ErrStoreUnavailable) {
			return nil, err
		}
		return nil, storeErr(err)
	}
	return snap, nil
}
