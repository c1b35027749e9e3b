package osint

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/datachat-io/datachat/internal/model"
	"github.com/datachat-io/datachat/pkg/profilecheck"
)

// probe is one pending social profile check.
type probe struct {
	Platform string
	URL      string
}

// buildProbes lists the profile URLs to check: the primary username on
// the three main platforms, plus up to two name-derived variants on
// GitHub and Instagram.
func buildProbes(s Subject, username string) []probe {
	probes := []probe{
		{profilecheck.PlatformGitHub, profilecheck.ProfileURL(profilecheck.PlatformGitHub, username)},
		{profilecheck.PlatformInstagram, profilecheck.ProfileURL(profilecheck.PlatformInstagram, username)},
		{profilecheck.PlatformTwitter, profilecheck.ProfileURL(profilecheck.PlatformTwitter, username)},
	}
	for _, variant := range s.UsernameVariants(username) {
		probes = append(probes,
			probe{profilecheck.PlatformGitHub, profilecheck.ProfileURL(profilecheck.PlatformGitHub, variant)},
			probe{profilecheck.PlatformInstagram, profilecheck.ProfileURL(profilecheck.PlatformInstagram, variant)},
		)
	}
	return probes
}

// runSocialBranch probes all candidate profiles concurrently. Probe
// order is preserved in the output so reports stay stable.
func (e *Engine) runSocialBranch(ctx context.Context, s Subject, username string) ([]model.SocialProfile, model.BranchStatus) {
	probes := buildProbes(s, username)
	profiles := make([]model.SocialProfile, len(probes))

	var (
		mu     sync.Mutex
		failed int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.MaxSocialWorkers)

	for i, p := range probes {
		g.Go(func() error {
			exists, err := e.social.Check(gctx, p.Platform, p.URL)
			result := model.SocialProfile{
				Platform: p.Platform,
				URL:      p.URL,
				Username: usernameFromURL(p.URL),
			}
			switch {
			case err != nil && gctx.Err() != nil:
				result.Status = model.ProbeStatusError
			case err != nil:
				// The page could not be classified; not proof of absence.
				result.Status = model.ProbeStatusUnknown
			case exists:
				result.Exists = &exists
				result.Status = model.ProbeStatusFound
			default:
				result.Exists = &exists
				result.Status = model.ProbeStatusNotFound
			}

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed++
			}
			profiles[i] = result
			return nil
		})
	}
	_ = g.Wait()

	return profiles, branchStatus(ctx, failed, len(probes))
}

// usernameFromURL extracts the trailing path segment of a profile URL.
func usernameFromURL(u string) string {
	trimmed := strings.TrimRight(u, "/")
	if i := strings.LastIndex(trimmed, "/"); i >= 0 {
		return trimmed[i+1:]
	}
	return trimmed
}
