package osint

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/datachat-io/datachat/internal/config"
	"github.com/datachat-io/datachat/internal/model"
	"github.com/datachat-io/datachat/internal/resilience"
	"github.com/datachat-io/datachat/pkg/pagesblanches"
	"github.com/datachat-io/datachat/pkg/profilecheck"
	"github.com/datachat-io/datachat/pkg/websearch"
	"github.com/datachat-io/datachat/pkg/xposedornot"
)

// Branch names used as keys in OsintProfile.Branches.
const (
	BranchSearch    = "search"
	BranchSocial    = "social"
	BranchDirectory = "directory"
	BranchBreach    = "breach"
)

// Engine runs the enrichment fan-out. Each branch gets its own deadline
// derived from the parent context; one slow branch never starves the
// others.
type Engine struct {
	search    websearch.Client
	social    profilecheck.Client
	directory pagesblanches.Client
	breach    xposedornot.Client
	cfg       config.EnrichConfig

	// searchBreaker guards every web search. Once the endpoint starts
	// blocking, remaining sub-queries fail fast until the reset timeout.
	searchBreaker *resilience.CircuitBreaker
}

// NewEngine wires the enrichment engine from its provider clients.
func NewEngine(
	search websearch.Client,
	social profilecheck.Client,
	directory pagesblanches.Client,
	breach xposedornot.Client,
	cfg config.EnrichConfig,
) *Engine {
	if cfg.MaxSearchWorkers <= 0 {
		cfg.MaxSearchWorkers = 4
	}
	if cfg.MaxSocialWorkers <= 0 {
		cfg.MaxSocialWorkers = 6
	}
	return &Engine{
		search:    search,
		social:    social,
		directory: directory,
		breach:    breach,
		cfg:       cfg,
		searchBreaker: resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
			FailureThreshold: 3,
			ResetTimeout:     60 * time.Second,
			OnStateChange: func(from, to resilience.CircuitState) {
				zap.L().Warn("osint: search circuit state changed",
					zap.String("from", from.String()),
					zap.String("to", to.String()),
				)
			},
		}),
	}
}

// probeRetry builds the retry policy for single-shot probe calls.
func probeRetry(service, operation string, shouldRetry func(error) bool) resilience.RetryConfig {
	cfg := resilience.DefaultRetryConfig()
	cfg.ShouldRetry = shouldRetry
	cfg.OnRetry = resilience.RetryLogger(service, operation)
	return cfg
}

// Enrich builds the full profile for one database row. Returns nil when
// the row carries no usable name; enrichment without an anchor identity
// only produces noise.
func (e *Engine) Enrich(ctx context.Context, row model.Row, totalDBResults int) *model.OsintProfile {
	start := time.Now()

	subject := SubjectFromRow(row)
	if subject.Name == "" {
		return nil
	}

	emailInfo := AnalyzeEmail(subject.Email)
	phoneInfo := AnalyzePhone(subject.Phone)
	username := subject.Username()

	profile := &model.OsintProfile{
		Name:       subject.Name,
		Email:      subject.Email,
		Phone:      subject.Phone,
		City:       subject.City,
		Address:    subject.Address,
		PostalCode: subject.PostalCode,
		EmailInfo:  emailInfo,
		PhoneInfo:  phoneInfo,
		Username:   username,

		Google:         map[string][]model.SearchHit{},
		SocialProfiles: []model.SocialProfile{},
		PagesBlanches:  []model.DirectoryEntry{},
		Breaches:       []model.Breach{},
		Branches:       map[string]model.BranchStatus{},

		TotalDBResults: totalDBResults,
	}

	// Each branch writes only its own locals; results are merged after
	// the group settles. Failures become statuses, never errors.
	var (
		google          map[string][]model.SearchHit
		googleStatus    model.BranchStatus
		social          []model.SocialProfile
		socialStatus    model.BranchStatus
		listings        []model.DirectoryEntry
		directoryStatus model.BranchStatus
		breaches        []model.Breach
		breachStatus    model.BranchStatus

		g errgroup.Group
	)

	g.Go(func() error {
		bctx, cancel := e.branchContext(ctx, e.cfg.SearchTimeoutSecs)
		defer cancel()
		google, googleStatus = e.runSearchBranch(bctx, subject)
		return nil
	})

	g.Go(func() error {
		bctx, cancel := e.branchContext(ctx, e.cfg.SocialTimeoutSecs)
		defer cancel()
		social, socialStatus = e.runSocialBranch(bctx, subject, username)
		return nil
	})

	g.Go(func() error {
		bctx, cancel := e.branchContext(ctx, e.cfg.DirectoryTimeoutSecs)
		defer cancel()
		listings, directoryStatus = e.runDirectoryBranch(bctx, subject)
		return nil
	})

	if subject.Email != "" {
		g.Go(func() error {
			bctx, cancel := e.branchContext(ctx, e.cfg.BreachTimeoutSecs)
			defer cancel()
			breaches, breachStatus = e.runBreachBranch(bctx, subject.Email)
			return nil
		})
	}

	_ = g.Wait()

	if google != nil {
		profile.Google = google
	}
	if social != nil {
		profile.SocialProfiles = social
	}
	if listings != nil {
		profile.PagesBlanches = listings
	}
	if breaches != nil {
		profile.Breaches = breaches
	}
	profile.Branches[BranchSearch] = googleStatus
	profile.Branches[BranchSocial] = socialStatus
	profile.Branches[BranchDirectory] = directoryStatus
	if subject.Email != "" {
		profile.Branches[BranchBreach] = breachStatus
	}

	profile.ScanTime = math.Round(time.Since(start).Seconds()*10) / 10
	profile.Stats = computeStats(profile)

	zap.L().Info("osint: enrichment complete",
		zap.String("name", subject.Name),
		zap.Float64("scan_time", profile.ScanTime),
		zap.Int("google_hits", profile.Stats.GoogleHits),
		zap.Int("social_found", profile.Stats.SocialFound),
		zap.Int("breaches", profile.Stats.Breaches),
	)
	return profile
}

func (e *Engine) branchContext(ctx context.Context, secs int) (context.Context, context.CancelFunc) {
	if secs <= 0 {
		secs = 10
	}
	return context.WithTimeout(ctx, time.Duration(secs)*time.Second)
}

// computeStats derives the aggregate counts from the collections, so
// counts and collections can never disagree.
func computeStats(p *model.OsintProfile) model.ProfileStats {
	hits := 0
	for _, v := range p.Google {
		hits += len(v)
	}
	found := 0
	for _, sp := range p.SocialProfiles {
		if sp.Found() {
			found++
		}
	}
	return model.ProfileStats{
		GoogleHits:    hits,
		SocialFound:   found,
		SocialChecked: len(p.SocialProfiles),
		Breaches:      len(p.Breaches),
		PagesBlanches: len(p.PagesBlanches),
	}
}
