package commentary

import (
	"context"
	"time"

	"github.com/courtlab/capmatch/internal/report"
	"github.com/courtlab/capmatch/internal/score/composite"
)

// Generator produces deterministic commentary for a trade result and
// memoizes it through a Cache. Determinism is what makes the cache safe:
// the same key always regenerates the same text.
type Generator struct {
	cache Cache
	now   func() time.Time
}

func NewGenerator(cache Cache) *Generator {
	return &Generator{cache: cache, now: time.Now}
}

// Commentary returns the cached entry when present, otherwise generates,
// stores and returns a fresh one. The bool reports a cache hit so callers
// can feed their instruments.
func (g *Generator) Commentary(ctx context.Context, key Key, res composite.TradeResult) (Entry, bool, error) {
	if entry, ok, err := g.cache.Get(ctx, key); err != nil {
		return Entry{}, false, err
	} else if ok {
		return entry, true, nil
	}

	entry := Entry{
		Verdict:     res.Verdict,
		Bullets:     report.BuildExplainBullets(res),
		GeneratedAt: g.now().UTC(),
	}
	if err := g.cache.Set(ctx, key, entry); err != nil {
		return Entry{}, false, err
	}
	return entry, false, nil
}
