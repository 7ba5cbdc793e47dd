package models

import (
	"time"
)

// PlaylistEntry records that a song appears in a playlist owned or followed
// by a user. This is the only positive signal the collaborative filter
// trains on.
type PlaylistEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"type:varchar(64);not null;index;uniqueIndex:idx_playlist_user_song" json:"user_id"`
	SongID    string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_playlist_user_song" json:"song_id"`
	CreatedAt time.Time `json:"created_at"`
}

// HistoryEntry records that a user recently played a song or ranked it as a
// top track. History feeds the genre profile but not the factorization.
type HistoryEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"type:varchar(64);not null;index;uniqueIndex:idx_history_user_song" json:"user_id"`
	SongID    string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_history_user_song" json:"song_id"`
	CreatedAt time.Time `json:"created_at"`
}

// InteractionSnapshot is one consistent read of everything the scorers need
// for a single user's request. All fields are loaded inside one read
// transaction so the collaborative and content-based passes observe the same
// store state.
type InteractionSnapshot struct {
	UserID string

	// PlaylistRows holds the full playlist relation across all users.
	PlaylistRows []PlaylistEntry

	// HistorySongIDs are the requesting user's history songs.
	HistorySongIDs []string

	// GenreTags holds the full song-to-genre relation.
	GenreTags []GenreTag

	// CandidateSongIDs is the catalog minus the songs already in the
	// requesting user's playlists, in ascending id order.
	CandidateSongIDs []string
}

// IngestSummary reports what one ingestion run wrote.
type IngestSummary struct {
	RunID        string `json:"run_id"`
	UserID       string `json:"user_id"`
	Songs        int    `json:"songs"`
	PlaylistRows int    `json:"playlist_rows"`
	HistoryRows  int    `json:"history_rows"`
	GenreTags    int    `json:"genre_tags"`
}
