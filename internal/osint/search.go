package osint

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/datachat-io/datachat/internal/model"
	"github.com/datachat-io/datachat/internal/resilience"
	"github.com/datachat-io/datachat/pkg/websearch"
)

// hitsPerQuery is how many results each sub-query keeps.
const hitsPerQuery = 5

// searchQuery is one keyed sub-query of the deep search fan-out.
type searchQuery struct {
	Key   string
	Query string
}

// buildSearchQueries assembles the keyed sub-queries for a subject. The
// four name queries always run; email, phone and city add theirs.
func buildSearchQueries(s Subject) []searchQuery {
	queries := []searchQuery{
		{"exact_name", fmt.Sprintf("%q", s.Name)},
		{"social_media", fmt.Sprintf("%q site:facebook.com OR site:linkedin.com OR site:instagram.com OR site:twitter.com", s.Name)},
		{"documents", fmt.Sprintf("%q filetype:pdf OR filetype:doc OR filetype:xls", s.Name)},
		{"forums", fmt.Sprintf("%q site:forum OR site:reddit.com OR avis OR commentaire", s.Name)},
	}
	if s.Email != "" {
		queries = append(queries,
			searchQuery{"email_mentions", fmt.Sprintf("%q", s.Email)},
			searchQuery{"email_leaks", fmt.Sprintf("%q paste OR leak OR breach OR dump", s.Email)},
		)
	}
	if s.Phone != "" {
		clean := phoneSeparatorRe.ReplaceAllString(s.Phone, "")
		queries = append(queries, searchQuery{"phone_mentions", fmt.Sprintf("%q OR %q", clean, s.Phone)})
	}
	if s.City != "" {
		queries = append(queries, searchQuery{"name_city", fmt.Sprintf("%q %q", s.Name, s.City)})
	}
	return queries
}

// runSearchBranch fans the sub-queries out over the search client and
// collects hits per key. A failed sub-query contributes an empty slice;
// the branch status reflects how many made it.
func (e *Engine) runSearchBranch(ctx context.Context, s Subject) (map[string][]model.SearchHit, model.BranchStatus) {
	queries := buildSearchQueries(s)
	results := make(map[string][]model.SearchHit, len(queries))

	var (
		mu     sync.Mutex
		failed int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.MaxSearchWorkers)

	for _, q := range queries {
		g.Go(func() error {
			hits, err := e.searchHits(gctx, q.Query, hitsPerQuery)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				zap.L().Debug("osint: search sub-query failed",
					zap.String("key", q.Key),
					zap.Error(err),
				)
				failed++
				results[q.Key] = nil
				return nil
			}
			results[q.Key] = toSearchHits(hits)
			return nil
		})
	}
	_ = g.Wait()

	return results, branchStatus(ctx, failed, len(queries))
}

// searchHits routes every web search through the shared circuit
// breaker.
func (e *Engine) searchHits(ctx context.Context, query string, limit int) ([]websearch.Result, error) {
	return resilience.ExecuteVal(ctx, e.searchBreaker, func(ctx context.Context) ([]websearch.Result, error) {
		return e.search.Search(ctx, query, limit)
	})
}

func toSearchHits(in []websearch.Result) []model.SearchHit {
	out := make([]model.SearchHit, len(in))
	for i, r := range in {
		out[i] = model.SearchHit{Title: r.Title, URL: r.URL, Snippet: r.Snippet}
	}
	return out
}

// branchStatus folds sub-task failures and the branch deadline into one
// status value.
func branchStatus(ctx context.Context, failed, total int) model.BranchStatus {
	if ctx.Err() == context.DeadlineExceeded {
		return model.BranchTimeout
	}
	switch {
	case failed == 0:
		return model.BranchOK
	case failed < total:
		return model.BranchPartial
	default:
		return model.BranchError
	}
}
