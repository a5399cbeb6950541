package tmdb

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"cinedeck/internal/domain"
)

type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type CastMember struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Character   string `json:"character"`
	ProfilePath string `json:"profile_path"`
}

type Video struct {
	Key  string `json:"key"`
	Site string `json:"site"`
	Type string `json:"type"`
	Name string `json:"name"`
}

type rawDetails struct {
	item
	Overview         string  `json:"overview"`
	BackdropPath     string  `json:"backdrop_path"`
	Genres           []Genre `json:"genres"`
	Runtime          int     `json:"runtime"`
	EpisodeRunTime   []int   `json:"episode_run_time"`
	NumberOfSeasons  int     `json:"number_of_seasons"`
	NumberOfEpisodes int     `json:"number_of_episodes"`
	Tagline          string  `json:"tagline"`
	Credits          struct {
		Cast []CastMember `json:"cast"`
	} `json:"credits"`
	Videos struct {
		Results []Video `json:"results"`
	} `json:"videos"`
}

// Details 条目详情，附带演员与视频
type Details struct {
	domain.MediaRef
	Overview         string       `json:"overview"`
	BackdropPath     string       `json:"backdropPath,omitempty"`
	Tagline          string       `json:"tagline,omitempty"`
	Genres           []Genre      `json:"genres"`
	Runtime          int          `json:"runtime,omitempty"`
	NumberOfSeasons  int          `json:"numberOfSeasons,omitempty"`
	NumberOfEpisodes int          `json:"numberOfEpisodes,omitempty"`
	Cast             []CastMember `json:"cast"`
	Videos           []Video      `json:"videos"`
}

const maxCast = 20

func (c *Client) Details(ctx context.Context, t domain.MediaType, id int64) (Details, error) {
	if _, err := domain.ParseMediaType(string(t)); err != nil {
		return Details{}, err
	}
	q := url.Values{}
	q.Set("append_to_response", "credits,videos")
	raw, err := fetch[rawDetails](ctx, c, fmt.Sprintf("/%s/%d", t, id), q)
	if err != nil {
		return Details{}, err
	}
	ref, _ := raw.item.ref(t)
	ref.MediaType = t
	d := Details{
		MediaRef:         ref,
		Overview:         raw.Overview,
		BackdropPath:     raw.BackdropPath,
		Tagline:          raw.Tagline,
		Genres:           raw.Genres,
		Runtime:          raw.Runtime,
		NumberOfSeasons:  raw.NumberOfSeasons,
		NumberOfEpisodes: raw.NumberOfEpisodes,
		Cast:             raw.Credits.Cast,
		Videos:           raw.Videos.Results,
	}
	if d.Runtime == 0 && len(raw.EpisodeRunTime) > 0 {
		d.Runtime = raw.EpisodeRunTime[0]
	}
	if len(d.Cast) > maxCast {
		d.Cast = d.Cast[:maxCast]
	}
	if d.Genres == nil {
		d.Genres = []Genre{}
	}
	if d.Cast == nil {
		d.Cast = []CastMember{}
	}
	if d.Videos == nil {
		d.Videos = []Video{}
	}
	return d, nil
}

type Episode struct {
	EpisodeNumber int     `json:"episode_number"`
	Name          string  `json:"name"`
	Overview      string  `json:"overview"`
	AirDate       string  `json:"air_date"`
	StillPath     string  `json:"still_path"`
	VoteAverage   float64 `json:"vote_average"`
}

type Season struct {
	SeasonNumber int       `json:"season_number"`
	Name         string    `json:"name"`
	Overview     string    `json:"overview"`
	Episodes     []Episode `json:"episodes"`
}

func (c *Client) Season(ctx context.Context, tvID int64, number int) (Season, error) {
	s, err := fetch[Season](ctx, c, "/tv/"+strconv.FormatInt(tvID, 10)+"/season/"+strconv.Itoa(number), nil)
	if err != nil {
		return Season{}, err
	}
	return *s, nil
}

// Filter 对应 discover 接口的筛选条件
type Filter struct {
	Year     int    `form:"year"`
	Before   string `form:"before"` // YYYY-MM-DD
	GenreIDs []int  `form:"genre"`
	Region   string `form:"region"`
	Page     int    `form:"page"`
}

// Discover browses the catalog by popularity with optional year, genre and region filters.
func (c *Client) Discover(ctx context.Context, t domain.MediaType, f Filter) (Page, error) {
	if _, err := domain.ParseMediaType(string(t)); err != nil {
		return Page{}, err
	}
	q := pageQuery(f.Page)
	q.Set("sort_by", "popularity.desc")
	// 电影与剧集的日期字段名不同
	yearKey, beforeKey := "primary_release_year", "primary_release_date.lte"
	if t == domain.MediaTV {
		yearKey, beforeKey = "first_air_date_year", "first_air_date.lte"
	}
	if f.Year > 0 {
		q.Set(yearKey, strconv.Itoa(f.Year))
	} else if f.Before != "" {
		q.Set(beforeKey, f.Before)
	}
	if len(f.GenreIDs) > 0 {
		ids := make([]string, 0, len(f.GenreIDs))
		for _, g := range f.GenreIDs {
			ids = append(ids, strconv.Itoa(g))
		}
		q.Set("with_genres", strings.Join(ids, ","))
	}
	if f.Region != "" {
		q.Set("region", f.Region)
	}
	raw, err := fetch[rawPage](ctx, c, "/discover/"+string(t), q)
	if err != nil {
		return Page{}, err
	}
	return raw.convert(t), nil
}
