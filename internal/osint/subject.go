// Package osint enriches a database record with public-web signals:
// search engine hits, social profile probes, directory listings and
// breach-index matches, fanned out concurrently with per-branch budgets.
package osint

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/datachat-io/datachat/internal/model"
)

// Field alias lists, checked in order. Schemas vary per imported file;
// the allocataire_* forms come from welfare exports.
var (
	nameKeys    = []string{"nom", "nom_complet", "name"}
	emailKeys   = []string{"email", "courriel", "allocataire_courriel"}
	phoneKeys   = []string{"telephone", "tel", "allocataire_telephone"}
	cityKeys    = []string{"ville", "commune", "adresse_commune"}
	addressKeys = []string{"adresse", "adresse_voie"}
	postalKeys  = []string{"code_postal", "adresse_code_postal"}
)

// Subject is the identity extracted from one database row.
type Subject struct {
	Name       string
	Email      string
	Phone      string
	City       string
	Address    string
	PostalCode string
}

// SubjectFromRow pulls the subject fields out of a row using the alias
// lists. The first present key wins even when its value is empty.
func SubjectFromRow(row model.Row) Subject {
	return Subject{
		Name:       firstPresent(row, nameKeys),
		Email:      firstPresent(row, emailKeys),
		Phone:      firstPresent(row, phoneKeys),
		City:       firstPresent(row, cityKeys),
		Address:    firstPresent(row, addressKeys),
		PostalCode: firstPresent(row, postalKeys),
	}
}

func firstPresent(row model.Row, keys []string) string {
	for _, k := range keys {
		if v, ok := row[k]; ok {
			if v == nil {
				return ""
			}
			if s, ok := v.(string); ok {
				return s
			}
		}
	}
	return ""
}

// Username derives the probe username: the email's local part when an
// address is known, otherwise the name lowercased with dots for spaces.
func (s Subject) Username() string {
	if s.Email != "" && strings.Contains(s.Email, "@") {
		return strings.ToLower(strings.SplitN(s.Email, "@", 2)[0])
	}
	return strings.ReplaceAll(foldMarks(strings.ToLower(s.Name)), " ", ".")
}

// UsernameVariants returns up to two alternative usernames built from
// the name: joined, dotted and underscored forms, minus the primary.
func (s Subject) UsernameVariants(primary string) []string {
	base := foldMarks(strings.ToLower(s.Name))
	candidates := []string{
		replaceSeparators(base, ""),
		replaceSeparators(base, "."),
		replaceSeparators(base, "_"),
	}

	seen := map[string]struct{}{primary: {}}
	var variants []string
	for _, cand := range candidates {
		if cand == "" {
			continue
		}
		if _, dup := seen[cand]; dup {
			continue
		}
		seen[cand] = struct{}{}
		variants = append(variants, cand)
		if len(variants) == 2 {
			break
		}
	}
	return variants
}

func replaceSeparators(s, sep string) string {
	s = strings.ReplaceAll(s, " ", sep)
	return strings.ReplaceAll(s, "-", sep)
}

var marksRemover = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// foldMarks strips combining marks so accented names produce the ASCII
// usernames people actually register.
func foldMarks(s string) string {
	out, _, err := transform.String(marksRemover, s)
	if err != nil {
		return s
	}
	return out
}
