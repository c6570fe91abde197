// Package tmdb is a read-only client for The Movie Database v3 API. Every GET
// is cached in Redis by path and query; failures surface as *Error.
package tmdb

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/marquee/marquee-go/internal/cache"
	"github.com/marquee/marquee-go/internal/config"
	"github.com/marquee/marquee-go/internal/model"
)

// MaxPages is the highest page TMDB serves for list endpoints.
const MaxPages = 500

// ErrUpstream matches every error returned by the client.
var ErrUpstream = errors.New("tmdb request failed")

// Error describes a failed call. Status is zero for transport and decode failures.
type Error struct {
	Op     string
	Status int
	Err    error
}

func (e *Error) Error() string {
	return "failed to load " + e.Op
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	return target == ErrUpstream
}

// NotFound reports whether TMDB answered 404.
func NotFound(err error) bool {
	var te *Error
	return errors.As(err, &te) && te.Status == http.StatusNotFound
}

// Client calls the TMDB API.
type Client struct {
	baseURL string
	token   string
	client  *http.Client
	cache   *cache.Cache
}

// New creates a Client. c may be nil to disable response caching.
func New(cfg config.TMDBConfig, c *cache.Cache) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.APIToken,
		client:  &http.Client{Timeout: cfg.Timeout},
		cache:   c,
	}
}

// request describes one cached GET.
type request struct {
	op    string
	path  string
	query url.Values
	ttl   cache.TTLClass
	tags  []string
}

func (c *Client) get(ctx context.Context, r request, dest any) error {
	u, err := url.Parse(c.baseURL + r.path)
	if err != nil {
		return &Error{Op: r.op, Err: err}
	}
	if r.query != nil {
		u.RawQuery = r.query.Encode()
	}

	key := cacheKey(r.path, u.RawQuery)
	if c.cache != nil {
		found, err := c.cache.Get(ctx, key, dest)
		if err != nil {
			slog.Warn("tmdb cache read failed", "op", r.op, "error", err)
		}
		if found {
			return nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return &Error{Op: r.op, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return &Error{Op: r.op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{Op: r.op, Status: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return &Error{Op: r.op, Err: err}
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, key, dest, r.ttl, r.tags...); err != nil {
			slog.Warn("tmdb cache write failed", "op", r.op, "error", err)
		}
	}
	return nil
}

func cacheKey(path, rawQuery string) string {
	sum := sha1.Sum([]byte(path + "?" + rawQuery))
	return cache.Key("tmdb", hex.EncodeToString(sum[:]))
}

// ClampPage limits page to [1, MaxPages].
func ClampPage(page int) int {
	if page < 1 {
		return 1
	}
	if page > MaxPages {
		return MaxPages
	}
	return page
}

func pageQuery(page int) url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(ClampPage(page)))
	return q
}

// capPages clamps the reported page count so callers never link past MaxPages.
func capPages[T any](p *model.Paged[T]) {
	if p.TotalPages > MaxPages {
		p.TotalPages = MaxPages
	}
	if p.Results == nil {
		p.Results = []T{}
	}
}

// getPaged fetches a paged list endpoint and applies the page cap.
func getPaged[T any](ctx context.Context, c *Client, r request) (*model.Paged[T], error) {
	var page model.Paged[T]
	if err := c.get(ctx, r, &page); err != nil {
		return nil, err
	}
	capPages(&page)
	return &page, nil
}

// TimeWindow is a trending window.
type TimeWindow string

const (
	Day  TimeWindow = "day"
	Week TimeWindow = "week"
)

func (w TimeWindow) orDefault() TimeWindow {
	if w == Day {
		return Day
	}
	return Week
}

func idPath(prefix string, id int, suffix string) string {
	return prefix + "/" + strconv.Itoa(id) + suffix
}
