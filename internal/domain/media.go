package domain

import (
	"strings"
	"time"
)

type MediaType string

const (
	MediaMovie MediaType = "movie"
	MediaTV    MediaType = "tv"
)

func ParseMediaType(s string) (MediaType, error) {
	switch MediaType(strings.ToLower(strings.TrimSpace(s))) {
	case MediaMovie:
		return MediaMovie, nil
	case MediaTV:
		return MediaTV, nil
	}
	return "", Validation("unknown media type %q", s)
}

// MediaRef 远端条目的快照，按值拷贝，之后不再刷新
type MediaRef struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	PosterPath  string    `json:"poster_path,omitempty"`
	MediaType   MediaType `json:"media_type"`
	ReleaseDate string    `json:"release_date,omitempty"`
	VoteAverage float64   `json:"vote_average,omitempty"`
}

// SameItem 列表条目按 (id, mediaType) 判重
func (m MediaRef) SameItem(id int64, t MediaType) bool {
	return m.ID == id && (t == "" || m.MediaType == t)
}

type Rating struct {
	ID         int64      `json:"id"`
	MediaID    int64      `json:"mediaId"`
	MediaType  MediaType  `json:"mediaType"`
	MediaTitle string     `json:"mediaTitle"`
	Value      int        `json:"rating"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  *time.Time `json:"updatedAt,omitempty"`
}

const (
	MinRating = 1
	MaxRating = 10
)

type RatingSummary struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

type Comment struct {
	ID        int64      `json:"id"`
	UserID    int64      `json:"userId"`
	MediaID   int64      `json:"mediaId"`
	MediaType MediaType  `json:"mediaType"`
	Text      string     `json:"text"`
	Username  string     `json:"username"`
	CreatedAt time.Time  `json:"createdAt"`
	EditedAt  *time.Time `json:"editedAt,omitempty"`
}
