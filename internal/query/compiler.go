// Package query turns free text into a single bounded, read-only SQL
// statement and executes it against a dataset's backing database.
package query

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/datachat-io/datachat/internal/model"
	"github.com/datachat-io/datachat/internal/registry"
)

var (
	countKeywords = []string{"combien", "nombre", "count", "total", "nb ", "how many", "how much"}

	deptRe  = regexp.MustCompile(`\b(\d{2})\b`)
	cpRe    = regexp.MustCompile(`\b(\d{5})\b`)
	emailRe = regexp.MustCompile(`[\w.\-]+@[\w.\-]+\.\w+`)
	phoneRe = regexp.MustCompile(`(\+33|0[67])\s*\d[\d\s]{7,}`)
	spaceRe = regexp.MustCompile(`\s`)

	// Preposition-led capitalized phrase, the city-name heuristic. Runs
	// against the lowercased message; the capture keeps accents, spaces
	// and hyphens. Known limitation: multi-word names with embedded
	// function words depend on which preposition alternative fires.
	cityRe = regexp.MustCompile(`(?:à|a|de|dans|sur|in|from|at)\s+([A-ZÀ-Üa-zà-ü\s\-]+)`)

	// Whole-capture function words rejected as city candidates.
	cityStoplist = map[string]struct{}{
		"LE": {}, "LA": {}, "LES": {}, "UN": {}, "UNE": {}, "DES": {}, "THE": {}, "A": {},
	}
)

// Compiler maps free text plus a dataset's column list to one
// CompiledQuery. It never fails; total non-match produces the capped
// fallback selection.
type Compiler struct {
	classes registry.ColumnClasses
}

// NewCompiler creates a compiler using the given column-class table.
func NewCompiler(classes registry.ColumnClasses) *Compiler {
	return &Compiler{classes: classes}
}

// Compile builds the query for one message against one dataset. Intent
// rules are evaluated in fixed precedence order; the first match wins.
func (c *Compiler) Compile(message, dataset string, columns []string) model.CompiledQuery {
	q := strings.ToLower(message)

	if containsAny(q, countKeywords) {
		return c.compileCount(message, q, dataset, columns)
	}

	if email := emailRe.FindString(message); email != "" {
		if col, ok := c.classes.First(registry.ClassEmail, columns); ok {
			return model.CompiledQuery{
				SQL:     fmt.Sprintf(`SELECT * FROM "%s" WHERE UPPER("%s") = UPPER('%s') LIMIT 50`, dataset, col, sqlEscape(email)),
				Dataset: dataset,
				Intent:  model.QueryIntent{Kind: model.IntentExactLookup, ColumnClass: string(registry.ClassEmail), Value: email},
			}
		}
	}

	if phone := phoneRe.FindString(message); phone != "" {
		if col, ok := c.classes.First(registry.ClassPhone, columns); ok {
			clean := spaceRe.ReplaceAllString(phone, "")
			return model.CompiledQuery{
				SQL:     fmt.Sprintf(`SELECT * FROM "%s" WHERE "%s" LIKE '%%%s%%' LIMIT 50`, dataset, col, sqlEscape(clean)),
				Dataset: dataset,
				Intent:  model.QueryIntent{Kind: model.IntentExactLookup, ColumnClass: string(registry.ClassPhone), Value: clean},
			}
		}
	}

	if m := cpRe.FindStringSubmatch(message); m != nil && !containsAny(q, []string{"combien", "nombre"}) {
		if col, ok := c.classes.First(registry.ClassPostal, columns); ok {
			return model.CompiledQuery{
				SQL:     fmt.Sprintf(`SELECT * FROM "%s" WHERE "%s" = '%s' LIMIT 50`, dataset, col, m[1]),
				Dataset: dataset,
				Intent:  model.QueryIntent{Kind: model.IntentExactLookup, ColumnClass: string(registry.ClassPostal), Value: m[1]},
			}
		}
	}

	if cq, ok := c.compileFuzzy(message, dataset, columns); ok {
		return cq
	}

	return model.CompiledQuery{
		SQL:     fmt.Sprintf(`SELECT * FROM "%s" LIMIT 20`, dataset),
		Dataset: dataset,
		Intent:  model.QueryIntent{Kind: model.IntentFallback},
	}
}

// compileCount refines a counting intent: postal equality, department
// prefix, city substring, then an unfiltered count.
func (c *Compiler) compileCount(message, q, dataset string, columns []string) model.CompiledQuery {
	if m := cpRe.FindStringSubmatch(message); m != nil {
		if col, ok := c.classes.First(registry.ClassPostal, columns); ok {
			return model.CompiledQuery{
				SQL:     fmt.Sprintf(`SELECT COUNT(*) as total FROM "%s" WHERE "%s" = '%s'`, dataset, col, m[1]),
				Dataset: dataset,
				Intent:  model.QueryIntent{Kind: model.IntentCount, CountFilter: model.CountFilterPostalEquals, Value: m[1]},
			}
		}
	}

	if m := deptRe.FindStringSubmatch(message); m != nil {
		if col, ok := c.classes.First(registry.ClassPostal, columns); ok {
			return model.CompiledQuery{
				SQL:     fmt.Sprintf(`SELECT COUNT(*) as total FROM "%s" WHERE "%s" LIKE '%s%%'`, dataset, col, m[1]),
				Dataset: dataset,
				Intent:  model.QueryIntent{Kind: model.IntentCount, CountFilter: model.CountFilterDeptPrefix, Value: m[1]},
			}
		}
	}

	if m := cityRe.FindStringSubmatch(q); m != nil {
		city := strings.ToUpper(strings.TrimSpace(m[1]))
		if _, stopped := cityStoplist[city]; city != "" && !stopped {
			if col, ok := c.classes.First(registry.ClassCity, columns); ok {
				return model.CompiledQuery{
					SQL:     fmt.Sprintf(`SELECT COUNT(*) as total FROM "%s" WHERE UPPER("%s") LIKE '%%%s%%'`, dataset, col, sqlEscape(city)),
					Dataset: dataset,
					Intent:  model.QueryIntent{Kind: model.IntentCount, CountFilter: model.CountFilterCityLike, Value: city},
				}
			}
		}
	}

	return model.CompiledQuery{
		SQL:     fmt.Sprintf(`SELECT COUNT(*) as total FROM "%s"`, dataset),
		Dataset: dataset,
		Intent:  model.QueryIntent{Kind: model.IntentCount, CountFilter: model.CountFilterNone},
	}
}

// compileFuzzy builds the name-search conjunction/disjunction from the
// message's candidate terms. All-uppercase tokens are treated as likely
// proper nouns and take priority over the stopword-filtered fallback.
func (c *Compiler) compileFuzzy(message, dataset string, columns []string) (model.CompiledQuery, bool) {
	var terms []string
	for _, w := range strings.Fields(message) {
		if isUpperToken(w) && runeLen(w) > 1 && !isDigitToken(w) {
			terms = append(terms, w)
		}
	}
	if len(terms) == 0 {
		for _, w := range strings.Fields(message) {
			if !isStopword(strings.ToLower(w)) && runeLen(w) > 1 && !isDigitToken(w) {
				terms = append(terms, w)
			}
		}
	}
	if len(terms) == 0 {
		return model.CompiledQuery{}, false
	}

	nameCols := c.classes.All(registry.ClassName, columns)
	intent := model.QueryIntent{Kind: model.IntentFuzzySearch, ColumnClass: string(registry.ClassName), Terms: terms}

	switch {
	case len(nameCols) > 0 && len(terms) >= 2:
		var termConds []string
		for _, term := range terms {
			termConds = append(termConds, "("+likeDisjunction(nameCols, term)+")")
		}
		return model.CompiledQuery{
			SQL:     fmt.Sprintf(`SELECT * FROM "%s" WHERE %s LIMIT 50`, dataset, strings.Join(termConds, " AND ")),
			Dataset: dataset,
			Intent:  intent,
		}, true

	case len(nameCols) > 0:
		return model.CompiledQuery{
			SQL:     fmt.Sprintf(`SELECT * FROM "%s" WHERE %s LIMIT 50`, dataset, likeDisjunction(nameCols, terms[0])),
			Dataset: dataset,
			Intent:  intent,
		}, true

	default:
		cols := columns
		if len(cols) > 5 {
			cols = cols[:5]
		}
		if len(cols) == 0 {
			return model.CompiledQuery{}, false
		}
		intent.ColumnClass = ""
		intent.Terms = terms[:1]
		return model.CompiledQuery{
			SQL:     fmt.Sprintf(`SELECT * FROM "%s" WHERE %s LIMIT 50`, dataset, likeDisjunction(cols, terms[0])),
			Dataset: dataset,
			Intent:  intent,
		}, true
	}
}

func likeDisjunction(columns []string, term string) string {
	conds := make([]string, len(columns))
	for i, col := range columns {
		conds[i] = fmt.Sprintf(`UPPER("%s") LIKE UPPER('%%%s%%')`, col, sqlEscape(term))
	}
	return strings.Join(conds, " OR ")
}

// sqlEscape doubles single quotes so interpolated free-text fragments
// cannot terminate the string literal. Identifiers are schema-trusted;
// this is what keeps the output a single SELECT statement.
func sqlEscape(v string) string {
	return strings.ReplaceAll(v, "'", "''")
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

// isUpperToken reports whether the token has at least one cased rune and
// none of them lowercase.
func isUpperToken(w string) bool {
	hasCased := false
	for _, r := range w {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			hasCased = true
		}
	}
	return hasCased
}

func isDigitToken(w string) bool {
	if w == "" {
		return false
	}
	for _, r := range w {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func runeLen(w string) int {
	return len([]rune(w))
}
