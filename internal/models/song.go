package models

import (
	"time"
)

// Song is the catalog row for a track. The ID is the catalog's canonical
// identifier and the join key for every interaction relation; rows are
// created on first observation and never mutated afterwards.
type Song struct {
	ID        string    `gorm:"type:varchar(64);primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Artist    string    `gorm:"type:varchar(255)" json:"artist"`
	ArtistID  string    `gorm:"type:varchar(64);index" json:"artist_id"`
	CreatedAt time.Time `json:"created_at"`
}

// GenreTag links a song to one genre inherited from its artists. A song may
// carry zero, one, or many tags; the composite unique index keeps re-ingestion
// from duplicating rows.
type GenreTag struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	SongID    string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_genre_song_genre" json:"song_id"`
	Genre     string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_genre_song_genre" json:"genre"`
	CreatedAt time.Time `json:"created_at"`
}

// RecommendedSong is the wire shape of one entry in a recommendation
// response, after song ids were resolved against the catalog.
type RecommendedSong struct {
	Rank int  `json:"rank"`
	Song Song `json:"song"`
}
