package report

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/datachat-io/datachat/internal/model"
)

// maxPersonJSON caps how much of the raw record goes into the prompt.
const maxPersonJSON = 1000

// BuildPrompt assembles the generation prompt from the raw record and
// the enrichment results.
func BuildPrompt(person model.Row, profile *model.OsintProfile) string {
	personJSON := truncateRunes(marshalPerson(person), maxPersonJSON)

	var found []string
	for _, sp := range profile.SocialProfiles {
		if sp.Found() {
			found = append(found, fmt.Sprintf("%s (%s)", sp.Platform, sp.URL))
		}
	}
	socialStr := "Aucun profil confirmé"
	if len(found) > 0 {
		socialStr = strings.Join(found, ", ")
	}

	breachStr := "Aucune breach connue"
	if profile.Stats.Breaches > 0 {
		breachStr = fmt.Sprintf("%d breach(es) trouvée(s)", profile.Stats.Breaches)
	}

	return fmt.Sprintf(`Analyse OSINT complète pour cette personne.

Données DB:
%s

Résultats du scan OSINT (%gs):
- Google: %d résultats Google
- Réseaux sociaux confirmés: %s
- Data breaches: %s
- Pages blanches: %d résultat(s)
- Email provider: %s
- Username dérivé: %s
- Téléphone: %s

Génère un rapport OSINT professionnel en markdown:
1. **Identité** - Résumé
2. **Contact** - Email, téléphone, analyse
3. **Localisation** - Adresse complète
4. **Empreinte numérique** - Présence en ligne réelle trouvée
5. **Fuites de données** - Breaches connues
6. **Évaluation** - Niveau d'exposition numérique (faible/moyen/élevé)

Sois factuel et concis.`,
		personJSON,
		profile.ScanTime,
		profile.Stats.GoogleHits,
		socialStr,
		breachStr,
		profile.Stats.PagesBlanches,
		orNA(profile.EmailInfo.Provider),
		orNA(profile.Username),
		orNA(profile.PhoneInfo.Type),
	)
}

// Fallback renders the deterministic template used when no generation
// backend answered.
func Fallback(profile *model.OsintProfile, dbCount int) string {
	emailKind := "Professionnel"
	if profile.EmailInfo.IsPersonal {
		emailKind = "Personnel"
	}

	phoneType := profile.PhoneInfo.Type
	if phoneType == "" {
		phoneType = "?"
	}

	return fmt.Sprintf(`## Rapport OSINT - %s

### Identité
- **Nom**: %s
- **Email**: %s
- **Téléphone**: %s (%s)

### Localisation
- **Adresse**: %s
- **Code Postal**: %s
- **Ville**: %s

### Empreinte Numérique
- **Provider email**: %s
- **Username dérivé**: %s
- **Type email**: %s
- **Google**: %d résultats trouvés
- **Réseaux sociaux**: %d profil(s) confirmé(s)

### Fuites de données
- **%d** breach(es) connue(s)

### Scan
- **Temps**: %gs
- **%d** entrée(s) en base de données`,
		profile.Name,
		profile.Name,
		orNA(profile.Email),
		orNA(profile.Phone), phoneType,
		orNA(profile.Address),
		orNA(profile.PostalCode),
		orNA(profile.City),
		orNA(profile.EmailInfo.Provider),
		orNA(profile.Username),
		emailKind,
		profile.Stats.GoogleHits,
		profile.Stats.SocialFound,
		profile.Stats.Breaches,
		profile.ScanTime,
		dbCount,
	)
}

func marshalPerson(person model.Row) string {
	data, err := json.MarshalIndent(person, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
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
