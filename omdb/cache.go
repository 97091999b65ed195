package omdb

import (
	"context"
	"crypto/sha1"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mowitajm/movie"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "omdb"

// CachedProvider memoizes lookups of another provider in Redis. Misses and
// Redis failures fall through to the wrapped provider; not-found answers are
// never cached.
type CachedProvider struct {
	next   movie.Provider
	rdb    redis.Cmdable
	ttl    time.Duration
	logger *slog.Logger
}

func NewCachedProvider(next movie.Provider, rdb redis.Cmdable, ttl time.Duration, logger *slog.Logger) *CachedProvider {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedProvider{
		next:   next,
		rdb:    rdb,
		ttl:    ttl,
		logger: logger,
	}
}

func (p *CachedProvider) GetMovieByID(ctx context.Context, imdbID string) (movie.Movie, error) {
	key := movieKey(imdbID)

	var m movie.Movie
	if p.load(ctx, key, &m) {
		return m, nil
	}

	m, err := p.next.GetMovieByID(ctx, imdbID)
	if err != nil {
		return movie.Movie{}, err
	}
	p.store(ctx, key, m)
	return m, nil
}

func (p *CachedProvider) SearchMovies(ctx context.Context, query string, page int) (movie.SearchResult, error) {
	key := searchKey(query, page)

	var result movie.SearchResult
	if p.load(ctx, key, &result) {
		return result, nil
	}

	result, err := p.next.SearchMovies(ctx, query, page)
	if err != nil {
		return movie.SearchResult{}, err
	}
	p.store(ctx, key, result)
	return result, nil
}

func (p *CachedProvider) load(ctx context.Context, key string, out interface{}) bool {
	b, err := p.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			p.logger.WarnContext(ctx, "omdb cache read failed", "key", key, "error", err)
		}
		return false
	}
	if err := json.Unmarshal(b, out); err != nil {
		p.logger.WarnContext(ctx, "omdb cache entry corrupt", "key", key, "error", err)
		return false
	}
	return true
}

func (p *CachedProvider) store(ctx context.Context, key string, v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := p.rdb.Set(ctx, key, b, p.ttl).Err(); err != nil {
		p.logger.WarnContext(ctx, "omdb cache write failed", "key", key, "error", err)
	}
}

func movieKey(imdbID string) string {
	return fmt.Sprintf("%s:movie:%s", keyPrefix, imdbID)
}

func searchKey(query string, page int) string {
	sum := sha1.Sum([]byte(fmt.Sprintf("%s|%d", query, page)))
	return fmt.Sprintf("%s:search:%x", keyPrefix, sum[:])
}
