// Package tmdb is a read-only client for the TMDB v3 catalog.
package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"cinedeck/internal/core/cache"
	"cinedeck/internal/domain"
)

var (
	// ErrNetwork 请求没有拿到响应（连接失败、超时、被取消）
	ErrNetwork = errors.New("tmdb: network error")
	// ErrStatus 远端返回了非 2xx
	ErrStatus = errors.New("tmdb: unexpected status")
)

type Options struct {
	BaseURL  string
	APIKey   string
	Language string
	Timeout  time.Duration
	CacheTTL time.Duration
	Cache    *cache.Cache // 可为 nil
	HTTP     *http.Client
	Log      *zap.Logger
}

type Client struct {
	base     string
	apiKey   string
	language string
	ttl      time.Duration
	cache    *cache.Cache
	http     *http.Client
	log      *zap.Logger
}

func New(o Options) *Client {
	if o.HTTP == nil {
		o.HTTP = &http.Client{Timeout: o.Timeout}
	}
	if o.Log == nil {
		o.Log = zap.NewNop()
	}
	if o.CacheTTL <= 0 {
		o.CacheTTL = 10 * time.Minute
	}
	return &Client{
		base:     strings.TrimRight(o.BaseURL, "/"),
		apiKey:   o.APIKey,
		language: o.Language,
		ttl:      o.CacheTTL,
		cache:    o.Cache,
		http:     o.HTTP,
		log:      o.Log,
	}
}

// item 是 TMDB 列表接口的原始条目；电影用 title，剧集用 name
type item struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	Name         string  `json:"name"`
	PosterPath   string  `json:"poster_path"`
	MediaType    string  `json:"media_type"`
	ReleaseDate  string  `json:"release_date"`
	FirstAirDate string  `json:"first_air_date"`
	VoteAverage  float64 `json:"vote_average"`
}

func (it item) ref(fallback domain.MediaType) (domain.MediaRef, bool) {
	t := fallback
	if it.MediaType != "" {
		mt, err := domain.ParseMediaType(it.MediaType)
		if err != nil {
			return domain.MediaRef{}, false
		}
		t = mt
	}
	title, date := it.Title, it.ReleaseDate
	if t == domain.MediaTV {
		title, date = it.Name, it.FirstAirDate
	}
	if title == "" {
		title = it.Title + it.Name
	}
	return domain.MediaRef{
		ID:          it.ID,
		Title:       title,
		PosterPath:  it.PosterPath,
		MediaType:   t,
		ReleaseDate: date,
		VoteAverage: it.VoteAverage,
	}, true
}

type rawPage struct {
	Page         int    `json:"page"`
	Results      []item `json:"results"`
	TotalPages   int    `json:"total_pages"`
	TotalResults int    `json:"total_results"`
}

type Page struct {
	Page         int               `json:"page"`
	Results      []domain.MediaRef `json:"results"`
	TotalPages   int               `json:"totalPages"`
	TotalResults int               `json:"totalResults"`
}

func (p *rawPage) convert(fallback domain.MediaType) Page {
	out := Page{Page: p.Page, TotalPages: p.TotalPages, TotalResults: p.TotalResults, Results: make([]domain.MediaRef, 0, len(p.Results))}
	for _, it := range p.Results {
		if ref, ok := it.ref(fallback); ok {
			out.Results = append(out.Results, ref)
		}
	}
	return out
}

// fetch 发起 GET 并解码；key 不含 api_key，可安全用作缓存键
func fetch[T any](ctx context.Context, c *Client, path string, q url.Values) (*T, error) {
	if q == nil {
		q = url.Values{}
	}
	if c.language != "" && q.Get("language") == "" {
		q.Set("language", c.language)
	}
	key := path + "?" + q.Encode()
	return cache.GetOrLoadJSON(c.cache, ctx, key, c.ttl, func(ctx context.Context) (*T, error) {
		withKey := url.Values{}
		for k, v := range q {
			withKey[k] = v
		}
		withKey.Set("api_key", c.apiKey)
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path+"?"+withKey.Encode(), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		start := time.Now()
		resp, err := c.http.Do(req)
		if err != nil {
			c.log.Warn("tmdb: request failed", zap.String("path", path), zap.Error(err))
			return nil, fmt.Errorf("%w: %w", ErrNetwork, err)
		}
		defer resp.Body.Close()
		c.log.Debug("tmdb: fetched", zap.String("path", path), zap.Int("status", resp.StatusCode), zap.Duration("latency", time.Since(start)))
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return nil, fmt.Errorf("%w: %d %s", ErrStatus, resp.StatusCode, strings.TrimSpace(string(body)))
		}
		var out T
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return nil, fmt.Errorf("%w: decode %s: %v", ErrNetwork, path, err)
		}
		return &out, nil
	})
}

func pageQuery(page int) url.Values {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	return q
}

// SearchKind 对应 search/{movie|tv|multi}
type SearchKind string

const (
	SearchMovie SearchKind = "movie"
	SearchTV    SearchKind = "tv"
	SearchMulti SearchKind = "multi"
)

// Search looks titles up by name. Multi searches drop people and keep movies and shows.
func (c *Client) Search(ctx context.Context, kind SearchKind, query string, page int) (Page, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Page{Results: []domain.MediaRef{}}, nil
	}
	var fallback domain.MediaType
	switch kind {
	case SearchMovie:
		fallback = domain.MediaMovie
	case SearchTV:
		fallback = domain.MediaTV
	case SearchMulti, "":
		kind = SearchMulti
	default:
		return Page{}, domain.Validation("unknown search kind %q", kind)
	}
	q := pageQuery(page)
	q.Set("query", query)
	raw, err := fetch[rawPage](ctx, c, "/search/"+string(kind), q)
	if err != nil {
		return Page{}, err
	}
	return raw.convert(fallback), nil
}

var feeds = map[domain.MediaType][]string{
	domain.MediaMovie: {"popular", "top_rated", "upcoming", "now_playing"},
	domain.MediaTV:    {"popular", "top_rated", "on_the_air", "airing_today"},
}

// Feed returns one of the curated catalog feeds for t.
func (c *Client) Feed(ctx context.Context, t domain.MediaType, feed string, page int) (Page, error) {
	valid := false
	for _, f := range feeds[t] {
		valid = valid || f == feed
	}
	if !valid {
		return Page{}, domain.Validation("unknown %s feed %q", t, feed)
	}
	raw, err := fetch[rawPage](ctx, c, "/"+string(t)+"/"+feed, pageQuery(page))
	if err != nil {
		return Page{}, err
	}
	return raw.convert(t), nil
}

func (c *Client) Recommendations(ctx context.Context, t domain.MediaType, id int64, page int) (Page, error) {
	if _, err := domain.ParseMediaType(string(t)); err != nil {
		return Page{}, err
	}
	raw, err := fetch[rawPage](ctx, c, fmt.Sprintf("/%s/%d/recommendations", t, id), pageQuery(page))
	if err != nil {
		return Page{}, err
	}
	return raw.convert(t), nil
}
