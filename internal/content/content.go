// Package content serves practice texts from the backend with caching
// and a bundled fallback.
package content

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/verte-zerg/typeline/internal/model"
)

// Cache windows for editorial and yesterday content.
const (
	FreshFor = 12 * time.Hour
	StaleFor = 24 * time.Hour
)

var errEmpty = errors.New("empty response")

const (
	defaultCacheSize      = 128
	defaultRefreshTimeout = 15 * time.Second
)

// Source is the upstream content API.
type Source interface {
	Articles(ctx context.Context, category string) ([]model.Article, error)
	Editorial(ctx context.Context, category string) ([]model.Article, error)
	Yesterday(ctx context.Context, category string) (model.Digest, error)
}

type entry struct {
	value     any
	fetchedAt time.Time
}

// Service fetches content and never fails: upstream errors and empty
// responses fall back to the bundled payload.
type Service struct {
	src      Source
	log      *zap.Logger
	cache    *expirable.LRU[string, entry]
	group    singleflight.Group
	fallback fallbackData

	now            func() time.Time
	refreshTimeout time.Duration

	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger used for fallback warnings.
func WithLogger(log *zap.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithCacheSize bounds the number of cached category responses.
func WithCacheSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.cache = expirable.NewLRU[string, entry](n, nil, FreshFor+StaleFor)
		}
	}
}

// WithClock replaces the clock used to judge freshness.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithRefreshTimeout bounds background refreshes.
func WithRefreshTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.refreshTimeout = d
		}
	}
}

// NewService returns a content service. src may be nil, in which case
// only the bundled content is served.
func NewService(src Source, opts ...Option) (*Service, error) {
	fb, err := loadFallback()
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Service{
		src:            src,
		log:            zap.NewNop(),
		cache:          expirable.NewLRU[string, entry](defaultCacheSize, nil, FreshFor+StaleFor),
		fallback:       fb,
		now:            time.Now,
		refreshTimeout: defaultRefreshTimeout,
		baseCtx:        ctx,
		cancel:         cancel,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close cancels background refreshes and waits for them to exit.
func (s *Service) Close() {
	s.cancel()
	s.wg.Wait()
}

// Wait blocks until in-flight background refreshes finish.
func (s *Service) Wait() {
	s.wg.Wait()
}

// Articles returns news for category. News is not cached.
func (s *Service) Articles(ctx context.Context, category string) []model.Article {
	if s.src != nil {
		articles, err := s.src.Articles(ctx, category)
		if err == nil && len(articles) > 0 {
			return articles
		}
		s.warnFallback(model.KindNews, category, err)
	} else {
		s.warnFallback(model.KindNews, category, nil)
	}
	return filterArticles(s.fallback.articles, category)
}

// Editorial returns editorial pieces for category.
func (s *Service) Editorial(ctx context.Context, category string) []model.Article {
	var fetch func(context.Context) ([]model.Article, error)
	if s.src != nil {
		fetch = func(ctx context.Context) ([]model.Article, error) {
			return s.src.Editorial(ctx, category)
		}
	}
	return cached(ctx, s, model.KindEditorial, category, fetch,
		func(v []model.Article) bool { return len(v) == 0 },
		func() []model.Article { return filterArticles(s.fallback.editorial, category) },
	)
}

// Yesterday returns the digest of the previous day for category.
func (s *Service) Yesterday(ctx context.Context, category string) model.Digest {
	var fetch func(context.Context) (model.Digest, error)
	if s.src != nil {
		fetch = func(ctx context.Context) (model.Digest, error) {
			return s.src.Yesterday(ctx, category)
		}
	}
	return cached(ctx, s, model.KindYesterday, category, fetch,
		func(v model.Digest) bool { return len(v.Articles) == 0 },
		func() model.Digest {
			return model.Digest{
				Date:     s.now().AddDate(0, 0, -1).Format("2006-01-02"),
				Articles: filterArticles(s.fallback.yesterday.Articles, category),
			}
		},
	)
}

// Categories lists the categories present in the bundled content.
func (s *Service) Categories() []string {
	return categoriesOf(s.fallback.articles, s.fallback.editorial, s.fallback.yesterday.Articles)
}

// cached serves fresh entries directly, serves stale entries while one
// background refresh runs, and fetches synchronously on a miss.
// Fallback values are never stored.
func cached[T any](
	ctx context.Context,
	s *Service,
	kind, category string,
	fetch func(context.Context) (T, error),
	empty func(T) bool,
	fallback func() T,
) T {
	if fetch == nil {
		s.warnFallback(kind, category, nil)
		return fallback()
	}
	key := cacheKey(kind, category)
	if e, ok := s.cache.Get(key); ok {
		age := s.now().Sub(e.fetchedAt)
		if v, ok := e.value.(T); ok && age < FreshFor+StaleFor {
			if age >= FreshFor {
				s.refresh(key, kind, category, func(ctx context.Context) (any, error) {
					return fetchValue(ctx, fetch, empty)
				})
			}
			return v
		}
		s.cache.Remove(key)
	}

	// Waiters share this fetch, so it must outlive the first caller.
	v, err, _ := s.group.Do(key, func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.refreshTimeout)
		defer cancel()
		val, err := fetchValue(fetchCtx, fetch, empty)
		if err != nil {
			return nil, err
		}
		s.cache.Add(key, entry{value: val, fetchedAt: s.now()})
		return val, nil
	})
	if err != nil {
		s.warnFallback(kind, category, err)
		return fallback()
	}
	return v.(T)
}

func fetchValue[T any](ctx context.Context, fetch func(context.Context) (T, error), empty func(T) bool) (T, error) {
	v, err := fetch(ctx)
	if err != nil {
		return v, err
	}
	if empty(v) {
		return v, errEmpty
	}
	return v, nil
}

func (s *Service) refresh(key, kind, category string, fetch func(context.Context) (any, error)) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ch := s.group.DoChan(key, func() (any, error) {
			ctx, cancel := context.WithTimeout(s.baseCtx, s.refreshTimeout)
			defer cancel()
			val, err := fetch(ctx)
			if err != nil {
				return nil, err
			}
			s.cache.Add(key, entry{value: val, fetchedAt: s.now()})
			return val, nil
		})
		res := <-ch
		if res.Err != nil {
			s.log.Warn("background refresh failed, keeping stale content",
				zap.String("kind", kind), zap.String("category", category), zap.Error(res.Err))
		}
	}()
}

func (s *Service) warnFallback(kind, category string, err error) {
	fields := []zap.Field{zap.String("kind", kind), zap.String("category", category)}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	s.log.Warn("serving bundled content", fields...)
}

func cacheKey(kind, category string) string {
	c := strings.ToLower(strings.TrimSpace(category))
	if c == "" {
		c = "all"
	}
	return kind + ":" + c
}
