package osint

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/datachat-io/datachat/internal/model"
	"github.com/datachat-io/datachat/internal/resilience"
	"github.com/datachat-io/datachat/pkg/xposedornot"
)

const (
	// maxIndexedBreaches caps how many breach-index records are kept.
	maxIndexedBreaches = 10
	// maxMentionBreaches caps the web-mention supplement.
	maxMentionBreaches = 5
)

// runBreachBranch combines the breach index with a web search for leak
// mentions. Either half can fail independently.
func (e *Engine) runBreachBranch(ctx context.Context, email string) ([]model.Breach, model.BranchStatus) {
	var (
		breaches []model.Breach
		failed   int
	)

	indexed, err := resilience.DoVal(ctx, probeRetry("xposedornot", "check-email", breachRetryable),
		func(ctx context.Context) ([]xposedornot.Breach, error) {
			return e.breach.CheckEmail(ctx, email)
		})
	if err != nil {
		zap.L().Debug("osint: breach index lookup failed", zap.Error(err))
		failed++
	} else {
		if len(indexed) > maxIndexedBreaches {
			indexed = indexed[:maxIndexedBreaches]
		}
		for _, b := range indexed {
			breaches = append(breaches, model.Breach{
				Name:      orDefault(b.Name, "Unknown"),
				Domain:    b.Domain,
				Date:      b.BreachDate,
				DataTypes: b.ExposedData,
			})
		}
	}

	hits, err := e.searchHits(ctx, fmt.Sprintf("%q breach OR leak OR dump OR pastebin", email), maxMentionBreaches)
	if err != nil {
		zap.L().Debug("osint: breach mention search failed", zap.Error(err))
		failed++
	} else {
		for _, h := range hits {
			breaches = append(breaches, model.Breach{
				Name:      "Web mention: " + truncateRunes(h.Title, 50),
				Domain:    h.URL,
				DataTypes: truncateRunes(h.Snippet, 100),
			})
		}
	}

	return breaches, branchStatus(ctx, failed, 2)
}

func breachRetryable(err error) bool {
	var apiErr *xposedornot.APIError
	if errors.As(err, &apiErr) {
		return resilience.IsTransientHTTPStatus(apiErr.StatusCode)
	}
	return resilience.IsTransient(err)
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
