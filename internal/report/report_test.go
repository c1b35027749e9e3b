package report

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datachat-io/datachat/internal/model"
)

type stubGenerator struct {
	out    string
	err    error
	prompt string
}

func (g *stubGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.prompt = prompt
	return g.out, g.err
}

func sampleProfile() *model.OsintProfile {
	found := true
	return &model.OsintProfile{
		Name:       "Jean Dupont",
		Email:      "jean.dupont@gmail.com",
		Phone:      "06 12 34 56 78",
		City:       "Lyon",
		Address:    "12 rue de la République",
		PostalCode: "69001",
		EmailInfo:  model.EmailInfo{Provider: "Google", IsPersonal: true},
		PhoneInfo:  model.PhoneInfo{Type: "Mobile"},
		Username:   "jean.dupont",
		SocialProfiles: []model.SocialProfile{
			{Platform: "GitHub", URL: "https://github.com/jean.dupont", Exists: &found, Status: model.ProbeStatusFound},
			{Platform: "Instagram", URL: "https://www.instagram.com/jean.dupont/", Status: model.ProbeStatusNotFound},
		},
		ScanTime: 8.5,
		Stats: model.ProfileStats{
			GoogleHits:    12,
			SocialFound:   1,
			SocialChecked: 2,
			Breaches:      3,
			PagesBlanches: 1,
		},
	}
}

func TestBuildPrompt(t *testing.T) {
	person := model.Row{"nom": "Jean Dupont", "ville": "Lyon"}
	prompt := BuildPrompt(person, sampleProfile())

	assert.Contains(t, prompt, "Analyse OSINT complète")
	assert.Contains(t, prompt, `"nom": "Jean Dupont"`)
	assert.Contains(t, prompt, "(8.5s)")
	assert.Contains(t, prompt, "12 résultats Google")
	assert.Contains(t, prompt, "GitHub (https://github.com/jean.dupont)")
	assert.NotContains(t, prompt, "Instagram (")
	assert.Contains(t, prompt, "3 breach(es) trouvée(s)")
	assert.Contains(t, prompt, "Email provider: Google")
	assert.Contains(t, prompt, "Username dérivé: jean.dupont")
}

func TestBuildPrompt_NoFindings(t *testing.T) {
	profile := sampleProfile()
	profile.SocialProfiles = nil
	profile.Stats.Breaches = 0

	prompt := BuildPrompt(model.Row{}, profile)
	assert.Contains(t, prompt, "Aucun profil confirmé")
	assert.Contains(t, prompt, "Aucune breach connue")
}

func TestBuildPrompt_TruncatesPersonJSON(t *testing.T) {
	person := model.Row{"notes": strings.Repeat("x", 3000)}
	prompt := BuildPrompt(person, sampleProfile())
	assert.Less(t, len(prompt), 2500)
}

func TestFallback(t *testing.T) {
	out := Fallback(sampleProfile(), 4)

	assert.Contains(t, out, "## Rapport OSINT - Jean Dupont")
	assert.Contains(t, out, "- **Téléphone**: 06 12 34 56 78 (Mobile)")
	assert.Contains(t, out, "- **Code Postal**: 69001")
	assert.Contains(t, out, "- **Type email**: Personnel")
	assert.Contains(t, out, "- **Google**: 12 résultats trouvés")
	assert.Contains(t, out, "- **Réseaux sociaux**: 1 profil(s) confirmé(s)")
	assert.Contains(t, out, "- **3** breach(es) connue(s)")
	assert.Contains(t, out, "- **Temps**: 8.5s")
	assert.Contains(t, out, "- **4** entrée(s) en base de données")
}

func TestFallback_MissingFields(t *testing.T) {
	profile := &model.OsintProfile{Name: "Jean Dupont"}
	out := Fallback(profile, 0)

	assert.Contains(t, out, "- **Email**: N/A")
	assert.Contains(t, out, "- **Téléphone**: N/A (?)")
	assert.Contains(t, out, "- **Type email**: Professionnel")
}

func TestSummarize_UsesGenerator(t *testing.T) {
	gen := &stubGenerator{out: "## Rapport généré"}
	s := NewSynthesizer(gen)

	out := s.Summarize(context.Background(), model.Row{"nom": "Jean Dupont"}, sampleProfile(), 1)
	assert.Equal(t, "## Rapport généré", out)
	assert.Contains(t, gen.prompt, "Analyse OSINT complète")
}

func TestSummarize_FallsBackOnError(t *testing.T) {
	s := NewSynthesizer(&stubGenerator{err: assert.AnError})
	out := s.Summarize(context.Background(), model.Row{}, sampleProfile(), 1)
	assert.Contains(t, out, "## Rapport OSINT - Jean Dupont")
}

func TestSummarize_FallsBackOnEmptyOutput(t *testing.T) {
	s := NewSynthesizer(&stubGenerator{out: ""})
	out := s.Summarize(context.Background(), model.Row{}, sampleProfile(), 1)
	assert.Contains(t, out, "## Rapport OSINT - Jean Dupont")
}

func TestSummarize_NilGenerator(t *testing.T) {
	s := NewSynthesizer(nil)
	out := s.Summarize(context.Background(), model.Row{}, sampleProfile(), 2)
	require.Contains(t, out, "## Rapport OSINT - Jean Dupont")
	assert.Contains(t, out, "- **2** entrée(s) en base de données")
}
