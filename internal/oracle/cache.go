package oracle

import (
	"context"
	"maps"
	"slices"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/sourabhsahu334/newsUserBackend/internal/experience"
	"github.com/sourabhsahu334/newsUserBackend/internal/shared/metrics"
	"github.com/sourabhsahu334/newsUserBackend/internal/shared/util"
)

// CachedExtractor memoizes successful extractions by document content and job description.
// Every hit is a private copy with experience months recomputed at read time.
type CachedExtractor struct {
	inner Extractor
	cache *expirable.LRU[string, *Candidate]
	Now   func() time.Time
}

// NewCachedExtractor wraps inner. A size <= 0 disables caching and returns inner unchanged.
func NewCachedExtractor(inner Extractor, size int, ttl time.Duration) Extractor {
	if size <= 0 {
		return inner
	}
	return &CachedExtractor{
		inner: inner,
		cache: expirable.NewLRU[string, *Candidate](size, nil, ttl),
	}
}

func (c *CachedExtractor) Extract(ctx context.Context, in Input, jobDescription string) Result {
	key := util.ContentKey(in.Data, jobDescription)
	if cand, ok := c.cache.Get(key); ok {
		metrics.IncOracleCache(true)
		return Result{Candidate: copyCandidate(cand, c.now())}
	}
	metrics.IncOracleCache(false)
	res := c.inner.Extract(ctx, in, jobDescription)
	if res.Succeeded() {
		c.cache.Add(key, copyCandidate(res.Candidate, c.now()))
	}
	return res
}

func (c *CachedExtractor) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

func copyCandidate(src *Candidate, now time.Time) *Candidate {
	dst := *src
	dst.Skillsets = slices.Clone(src.Skillsets)
	dst.Experience = experience.Refresh(src.Experience, now)
	if src.Fit != nil {
		fit := *src.Fit
		dst.Fit = &fit
	}
	dst.Extensions = maps.Clone(src.Extensions)
	return &dst
}

// Len reports the number of cached candidates.
func (c *CachedExtractor) Len() int {
	return c.cache.Len()
}
