package services

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/HemnathKopula/melody/internal/config"
	"github.com/HemnathKopula/melody/internal/models"
)

const spotifyAPI = "https://api.spotify.com/v1"

// SpotifyService is the catalog collaborator: it resolves song ids to display
// metadata and fetches the listening data ingestion turns into interaction
// rows. Batch lookups run under an app token; user-scoped calls take the
// user's access token.
type SpotifyService interface {
	GetSongDetails(ids []string) ([]models.Song, error)
	GetArtists(ids []string) ([]SpotifyArtist, error)
	GetUserPlaylists(accessToken string) ([]string, error)
	GetPlaylistTracks(accessToken, playlistID string) ([]models.Song, error)
	GetTopTracks(accessToken string, limit int) ([]models.Song, error)
	GetRecentlyPlayed(accessToken string) ([]models.Song, error)
}

type SpotifyArtist struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Genres []string `json:"genres"`
}

type spotifyService struct {
	clientID     string
	clientSecret string
	tokenURL     string
	httpClient   *http.Client

	tokenMu     sync.Mutex // guards accessToken and tokenExpiry
	accessToken string
	tokenExpiry time.Time
}

func NewSpotifyService() SpotifyService {
	cfg := config.GlobalConfig
	return &spotifyService{
		clientID:     cfg.SpotifyClientID,
		clientSecret: cfg.SpotifyClientSecret,
		tokenURL:     "https://accounts.spotify.com/api/token",
		httpClient:   &http.Client{Timeout: 10 * time.Second},
	}
}

type spotifyTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

func (s *spotifyService) getAccessToken() (string, error) {
	s.tokenMu.Lock()
	defer s.tokenMu.Unlock()

	if time.Now().Before(s.tokenExpiry) && s.accessToken != "" {
		return s.accessToken, nil
	}

	auth := base64.StdEncoding.EncodeToString([]byte(s.clientID + ":" + s.clientSecret))

	data := url.Values{}
	data.Set("grant_type", "client_credentials")

	req, err := http.NewRequest("POST", s.tokenURL,
		strings.NewReader(data.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Basic "+auth)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	body, err := s.doWithRetry(req)
	if err != nil {
		return "", fmt.Errorf("failed to get token: %w", err)
	}

	var tokenResp spotifyTokenResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return "", err
	}

	s.accessToken = tokenResp.AccessToken
	s.tokenExpiry = time.Now().Add(time.Duration(tokenResp.ExpiresIn-60) * time.Second)

	return s.accessToken, nil
}

// doWithRetry executes the request, backing off exponentially on 429s the way
// Spotify's rate limiter expects. Other non-200 statuses fail immediately.
func (s *spotifyService) doWithRetry(req *http.Request) ([]byte, error) {
	var body []byte

	operation := func() error {
		if req.GetBody != nil {
			rewound, err := req.GetBody()
			if err != nil {
				return backoff.Permanent(err)
			}
			req.Body = rewound
		}
		resp, err := s.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return err
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			return fmt.Errorf("rate limited")
		}
		if resp.StatusCode != http.StatusOK {
			return backoff.Permanent(fmt.Errorf("spotify request failed (%d): %s", resp.StatusCode, string(body)))
		}
		return nil
	}

	policy := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}
	return body, nil
}

func (s *spotifyService) getJSON(token, rawURL string, out interface{}) error {
	req, err := http.NewRequest("GET", rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	body, err := s.doWithRetry(req)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, out)
}

type spotifyTrack struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Artists []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"artists"`
}

func (t spotifyTrack) toSong() models.Song {
	song := models.Song{ID: t.ID, Name: t.Name}
	if len(t.Artists) > 0 {
		song.Artist = t.Artists[0].Name
		song.ArtistID = t.Artists[0].ID
	}
	return song
}

// GetSongDetails resolves song ids to {name, artist} metadata, chunked to the
// API's 50-id batch limit.
func (s *spotifyService) GetSongDetails(ids []string) ([]models.Song, error) {
	token, err := s.getAccessToken()
	if err != nil {
		return nil, err
	}

	songs := make([]models.Song, 0, len(ids))
	for _, chunk := range chunkIDs(ids, 50) {
		var result struct {
			Tracks []spotifyTrack `json:"tracks"`
		}
		reqURL := fmt.Sprintf("%s/tracks?ids=%s", spotifyAPI, strings.Join(chunk, ","))
		if err := s.getJSON(token, reqURL, &result); err != nil {
			return nil, err
		}
		for _, track := range result.Tracks {
			songs = append(songs, track.toSong())
		}
	}
	return songs, nil
}

func (s *spotifyService) GetArtists(ids []string) ([]SpotifyArtist, error) {
	token, err := s.getAccessToken()
	if err != nil {
		return nil, err
	}

	artists := make([]SpotifyArtist, 0, len(ids))
	for _, chunk := range chunkIDs(ids, 50) {
		var result struct {
			Artists []SpotifyArtist `json:"artists"`
		}
		reqURL := fmt.Sprintf("%s/artists?ids=%s", spotifyAPI, strings.Join(chunk, ","))
		if err := s.getJSON(token, reqURL, &result); err != nil {
			return nil, err
		}
		artists = append(artists, result.Artists...)
	}
	return artists, nil
}

func (s *spotifyService) GetUserPlaylists(accessToken string) ([]string, error) {
	var result struct {
		Items []struct {
			ID string `json:"id"`
		} `json:"items"`
	}
	if err := s.getJSON(accessToken, spotifyAPI+"/me/playlists?limit=50", &result); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(result.Items))
	for _, item := range result.Items {
		ids = append(ids, item.ID)
	}
	return ids, nil
}

func (s *spotifyService) GetPlaylistTracks(accessToken, playlistID string) ([]models.Song, error) {
	var result struct {
		Items []struct {
			Track spotifyTrack `json:"track"`
		} `json:"items"`
	}
	reqURL := fmt.Sprintf("%s/playlists/%s/tracks?limit=100", spotifyAPI, playlistID)
	if err := s.getJSON(accessToken, reqURL, &result); err != nil {
		return nil, err
	}

	songs := make([]models.Song, 0, len(result.Items))
	for _, item := range result.Items {
		if item.Track.ID == "" {
			continue // local files have no catalog id
		}
		songs = append(songs, item.Track.toSong())
	}
	return songs, nil
}

func (s *spotifyService) GetTopTracks(accessToken string, limit int) ([]models.Song, error) {
	var result struct {
		Items []spotifyTrack `json:"items"`
	}
	reqURL := fmt.Sprintf("%s/me/top/tracks?time_range=long_term&limit=%d", spotifyAPI, limit)
	if err := s.getJSON(accessToken, reqURL, &result); err != nil {
		return nil, err
	}

	songs := make([]models.Song, 0, len(result.Items))
	for _, track := range result.Items {
		songs = append(songs, track.toSong())
	}
	return songs, nil
}

func (s *spotifyService) GetRecentlyPlayed(accessToken string) ([]models.Song, error) {
	var result struct {
		Items []struct {
			Track spotifyTrack `json:"track"`
		} `json:"items"`
	}
	if err := s.getJSON(accessToken, spotifyAPI+"/me/player/recently-played?limit=50", &result); err != nil {
		return nil, err
	}

	songs := make([]models.Song, 0, len(result.Items))
	for _, item := range result.Items {
		songs = append(songs, item.Track.toSong())
	}
	return songs, nil
}

func chunkIDs(ids []string, size int) [][]string {
	var chunks [][]string
	for len(ids) > size {
		chunks = append(chunks, ids[:size])
		ids = ids[size:]
	}
	if len(ids) > 0 {
		chunks = append(chunks, ids)
	}
	return chunks
}
