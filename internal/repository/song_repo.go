package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/HemnathKopula/melody/internal/models"
)

var ErrSongNotFound = errors.New("song not found")

// ErrStoreUnavailable marks infrastructure failures reading or writing the
// store. Callers use errors.Is to tell a dead store apart from an empty
// recommendation result, which is never an error.
var ErrStoreUnavailable = errors.New("interaction store unavailable")

type SongRepository interface {
	CreateSongs(songs []models.Song) error
	GetSongByID(id string) (*models.Song, error)
	GetSongsByIDs(ids []string) ([]models.Song, error)
	GetAllSongs(limit int) ([]models.Song, error)
}

type songRepo struct {
	db *gorm.DB
}

func NewSongRepository(db *gorm.DB) SongRepository {
	return &songRepo{db: db}
}

// CreateSongs inserts catalog rows, silently skipping ids already present.
// Songs are created on first observation and never updated, so a conflict is
// not a problem to report.
func (r *songRepo) CreateSongs(songs []models.Song) error {
	if len(songs) == 0 {
		return nil
	}
	err := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&songs).Error
	if err != nil {
		return storeErr(err)
	}
	return nil
}

func (r *songRepo) GetSongByID(id string) (*models.Song, error) {
	var song models.Song
	err := r.db.First(&song, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSongNotFound
		}
		return nil, storeErr(err)
	}
	return &song, nil
}

func (r *songRepo) GetSongsByIDs(ids []string) ([]models.Song, error) {
	if len(ids) == 0 {
		return []models.Song{}, nil
	}
	var songs []models.Song
	err := r.db.Where("id IN ?", ids).Find(&songs).Error
	if err != nil {
		return nil, storeErr(err)
	}
	return songs, nil
}

func (r *songRepo) GetAllSongs(limit int) ([]models.Song, error) {
	var songs []models.Song
	q := r.db.Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&songs).Error; err != nil {
		return nil, storeErr(err)
	}
	if songs == nil {
		songs = []models.Song{}
	}
	return songs, nil
}

func storeErr(err error) error {
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}
