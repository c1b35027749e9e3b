package osint

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/datachat-io/datachat/internal/model"
	"github.com/datachat-io/datachat/internal/resilience"
	"github.com/datachat-io/datachat/pkg/pagesblanches"
)

// runDirectoryBranch looks the subject up in the public white pages.
// Transient failures get one retry within the branch deadline.
func (e *Engine) runDirectoryBranch(ctx context.Context, s Subject) ([]model.DirectoryEntry, model.BranchStatus) {
	entries, err := resilience.DoVal(ctx, probeRetry("pagesblanches", "search", directoryRetryable),
		func(ctx context.Context) ([]pagesblanches.Entry, error) {
			return e.directory.Search(ctx, s.Name, s.City)
		})
	if err != nil {
		zap.L().Debug("osint: directory lookup failed", zap.Error(err))
		return nil, branchStatus(ctx, 1, 1)
	}
	return toDirectoryEntries(entries), model.BranchOK
}

func directoryRetryable(err error) bool {
	var apiErr *pagesblanches.APIError
	if errors.As(err, &apiErr) {
		return resilience.IsTransientHTTPStatus(apiErr.StatusCode)
	}
	return resilience.IsTransient(err)
}

func toDirectoryEntries(in []pagesblanches.Entry) []model.DirectoryEntry {
	out := make([]model.DirectoryEntry, len(in))
	for i, e := range in {
		out[i] = model.DirectoryEntry{Name: e.Name, Address: e.Address, Phone: e.Phone}
	}
	return out
}
