package osint

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datachat-io/datachat/internal/config"
	"github.com/datachat-io/datachat/internal/model"
	"github.com/datachat-io/datachat/pkg/pagesblanches"
	"github.com/datachat-io/datachat/pkg/websearch"
	"github.com/datachat-io/datachat/pkg/xposedornot"
)

type stubSearch struct {
	mu      sync.Mutex
	hits    []websearch.Result
	err     error
	queries []string
}

func (s *stubSearch) Search(_ context.Context, query string, _ int) ([]websearch.Result, error) {
	s.mu.Lock()
	s.queries = append(s.queries, query)
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return s.hits, nil
}

type stubSocial struct {
	exists bool
	err    error
}

func (s *stubSocial) Check(_ context.Context, _, _ string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	return s.exists, nil
}

type stubDirectory struct {
	entries []pagesblanches.Entry
	err     error
	block   bool
}

func (s *stubDirectory) Search(ctx context.Context, _, _ string) ([]pagesblanches.Entry, error) {
	if s.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.entries, nil
}

type stubBreach struct {
	breaches []xposedornot.Breach
	err      error
}

func (s *stubBreach) CheckEmail(_ context.Context, _ string) ([]xposedornot.Breach, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.breaches, nil
}

func testEnrichConfig() config.EnrichConfig {
	return config.EnrichConfig{
		SearchTimeoutSecs:    20,
		SocialTimeoutSecs:    12,
		DirectoryTimeoutSecs: 10,
		BreachTimeoutSecs:    10,
		MaxSearchWorkers:     4,
		MaxSocialWorkers:     6,
	}
}

func fullSubjectRow() model.Row {
	return model.Row{
		"nom":         "Jean Dupont",
		"email":       "jean.dupont@gmail.com",
		"telephone":   "06 12 34 56 78",
		"ville":       "Lyon",
		"adresse":     "12 rue de la République",
		"code_postal": "69001",
	}
}

func TestBuildSearchQueries(t *testing.T) {
	s := Subject{Name: "Jean Dupont", Email: "jd@gmail.com", Phone: "06 12 34 56 78", City: "Lyon"}
	queries := buildSearchQueries(s)

	keys := make([]string, len(queries))
	for i, q := range queries {
		keys[i] = q.Key
	}
	assert.Equal(t, []string{
		"exact_name", "social_media", "documents", "forums",
		"email_mentions", "email_leaks", "phone_mentions", "name_city",
	}, keys)

	assert.Equal(t, `"Jean Dupont"`, queries[0].Query)
	assert.Equal(t, `"0612345678" OR "06 12 34 56 78"`, queries[6].Query)
	assert.Equal(t, `"Jean Dupont" "Lyon"`, queries[7].Query)
}

func TestBuildSearchQueries_NameOnly(t *testing.T) {
	queries := buildSearchQueries(Subject{Name: "Jean Dupont"})
	require.Len(t, queries, 4)
	assert.Equal(t, "forums", queries[3].Key)
}

func TestEnrich_FullProfile(t *testing.T) {
	search := &stubSearch{hits: []websearch.Result{
		{Title: "Hit 1", URL: "https://example.com/1", Snippet: "s1"},
		{Title: "Hit 2", URL: "https://example.com/2", Snippet: "s2"},
	}}
	e := NewEngine(
		search,
		&stubSocial{exists: true},
		&stubDirectory{entries: []pagesblanches.Entry{{Name: "Dupont Jean", Phone: "04 78 00 00 00"}}},
		&stubBreach{breaches: []xposedornot.Breach{
			{Name: "LinkedIn", Domain: "linkedin.com", BreachDate: "2012-05-05", ExposedData: "Email;Password"},
			{Name: "", Domain: "x.org"},
		}},
		testEnrichConfig(),
	)

	profile := e.Enrich(context.Background(), fullSubjectRow(), 3)
	require.NotNil(t, profile)

	assert.Equal(t, "Jean Dupont", profile.Name)
	assert.Equal(t, "jean.dupont", profile.Username)
	assert.Equal(t, "Google", profile.EmailInfo.Provider)
	assert.Equal(t, "Mobile", profile.PhoneInfo.Type)
	assert.Equal(t, 3, profile.TotalDBResults)

	// Eight sub-queries, two hits each.
	assert.Len(t, profile.Google, 8)
	assert.Equal(t, 16, profile.Stats.GoogleHits)

	// Primary on three platforms plus two variants on two platforms.
	assert.Equal(t, 7, profile.Stats.SocialChecked)
	assert.Equal(t, 7, profile.Stats.SocialFound)

	// Two indexed breaches plus two web mentions.
	require.Equal(t, 4, profile.Stats.Breaches)
	assert.Equal(t, "LinkedIn", profile.Breaches[0].Name)
	assert.Equal(t, "Unknown", profile.Breaches[1].Name)
	assert.Equal(t, "Web mention: Hit 1", profile.Breaches[2].Name)

	assert.Equal(t, 1, profile.Stats.PagesBlanches)

	for _, branch := range []string{BranchSearch, BranchSocial, BranchDirectory, BranchBreach} {
		assert.Equal(t, model.BranchOK, profile.Branches[branch], branch)
	}
}

func TestEnrich_StatsMatchCollections(t *testing.T) {
	search := &stubSearch{hits: []websearch.Result{{Title: "t", URL: "https://e.com"}}}
	e := NewEngine(search, &stubSocial{exists: false}, &stubDirectory{}, &stubBreach{}, testEnrichConfig())

	profile := e.Enrich(context.Background(), fullSubjectRow(), 1)
	require.NotNil(t, profile)

	hits := 0
	for _, v := range profile.Google {
		hits += len(v)
	}
	assert.Equal(t, hits, profile.Stats.GoogleHits)
	assert.Equal(t, len(profile.SocialProfiles), profile.Stats.SocialChecked)
	assert.Equal(t, len(profile.Breaches), profile.Stats.Breaches)
	assert.Equal(t, len(profile.PagesBlanches), profile.Stats.PagesBlanches)
	assert.Equal(t, 0, profile.Stats.SocialFound)
}

func TestEnrich_NoName(t *testing.T) {
	e := NewEngine(&stubSearch{}, &stubSocial{}, &stubDirectory{}, &stubBreach{}, testEnrichConfig())
	assert.Nil(t, e.Enrich(context.Background(), model.Row{"ville": "Lyon"}, 0))
}

func TestEnrich_NoEmailSkipsBreachBranch(t *testing.T) {
	search := &stubSearch{}
	e := NewEngine(search, &stubSocial{}, &stubDirectory{}, &stubBreach{}, testEnrichConfig())

	profile := e.Enrich(context.Background(), model.Row{"nom": "Jean Dupont"}, 0)
	require.NotNil(t, profile)

	assert.Empty(t, profile.Breaches)
	_, hasBreach := profile.Branches[BranchBreach]
	assert.False(t, hasBreach)

	// No breach-mention query was issued either.
	for _, q := range search.queries {
		assert.NotContains(t, q, "pastebin")
	}
}

func TestEnrich_SearchFailureDegrades(t *testing.T) {
	e := NewEngine(
		&stubSearch{err: assert.AnError},
		&stubSocial{exists: true},
		&stubDirectory{entries: []pagesblanches.Entry{{Name: "Dupont Jean"}}},
		&stubBreach{breaches: []xposedornot.Breach{{Name: "B"}}},
		testEnrichConfig(),
	)

	profile := e.Enrich(context.Background(), fullSubjectRow(), 1)
	require.NotNil(t, profile)

	// Every search sub-query failed, but the other branches delivered.
	assert.Equal(t, model.BranchError, profile.Branches[BranchSearch])
	assert.Equal(t, 0, profile.Stats.GoogleHits)
	assert.Equal(t, 7, profile.Stats.SocialFound)
	assert.Equal(t, 1, profile.Stats.PagesBlanches)

	// Breach branch lost only its mention half.
	assert.Equal(t, model.BranchPartial, profile.Branches[BranchBreach])
	assert.Equal(t, 1, profile.Stats.Breaches)
}

func TestEnrich_DirectoryTimeout(t *testing.T) {
	cfg := testEnrichConfig()
	cfg.DirectoryTimeoutSecs = 1

	e := NewEngine(&stubSearch{}, &stubSocial{}, &stubDirectory{block: true}, &stubBreach{}, cfg)
	profile := e.Enrich(context.Background(), model.Row{"nom": "Jean Dupont"}, 0)
	require.NotNil(t, profile)

	assert.Equal(t, model.BranchTimeout, profile.Branches[BranchDirectory])
	assert.Empty(t, profile.PagesBlanches)
	assert.Equal(t, model.BranchOK, profile.Branches[BranchSearch])
}

func TestEnrich_ProbeErrorIsUnknown(t *testing.T) {
	e := NewEngine(&stubSearch{}, &stubSocial{err: assert.AnError}, &stubDirectory{}, &stubBreach{}, testEnrichConfig())

	profile := e.Enrich(context.Background(), model.Row{"nom": "Jean Dupont"}, 0)
	require.NotNil(t, profile)

	require.NotEmpty(t, profile.SocialProfiles)
	for _, sp := range profile.SocialProfiles {
		assert.Nil(t, sp.Exists)
		assert.Equal(t, model.ProbeStatusUnknown, sp.Status)
	}
	assert.Equal(t, 0, profile.Stats.SocialFound)
	assert.Equal(t, model.BranchError, profile.Branches[BranchSocial])
}

func TestEnrich_SocialProfileOrderStable(t *testing.T) {
	e := NewEngine(&stubSearch{}, &stubSocial{exists: true}, &stubDirectory{}, &stubBreach{}, testEnrichConfig())

	profile := e.Enrich(context.Background(), fullSubjectRow(), 1)
	require.NotNil(t, profile)
	require.Len(t, profile.SocialProfiles, 7)

	assert.Equal(t, "GitHub", profile.SocialProfiles[0].Platform)
	assert.Equal(t, "Instagram", profile.SocialProfiles[1].Platform)
	assert.Equal(t, "Twitter/X", profile.SocialProfiles[2].Platform)
	assert.Equal(t, "jean.dupont", profile.SocialProfiles[0].Username)
	assert.True(t, strings.HasSuffix(profile.SocialProfiles[0].URL, "github.com/jean.dupont"))
}
