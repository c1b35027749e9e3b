package query

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/datachat-io/datachat/internal/model"
)

var titleCaser = cases.Title(language.French)

// Render turns an executed result set into the user-visible markdown
// answer for the non-enrichment path.
func Render(results *model.ResultSet, datasetName string, elapsed float64) string {
	if results.Count == 0 {
		return fmt.Sprintf("Aucun résultat trouvé dans **%s**. Essayez avec d'autres termes.", datasetName)
	}

	// A single row holding a "total" column is a count result.
	if len(results.Rows) == 1 {
		if total, ok := results.Rows[0]["total"]; ok {
			return fmt.Sprintf("**%s** enregistrements trouvés dans **%s** (%ss)",
				humanize.Comma(toInt64(total)), datasetName, formatElapsed(elapsed))
		}
	}

	plural := ""
	if results.Count > 1 {
		plural = "s"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "**%d résultat%s** dans **%s** (%ss)\n\n", results.Count, plural, datasetName, formatElapsed(elapsed))

	shown := results.Rows
	if len(shown) > 5 {
		shown = shown[:5]
	}
	for i, row := range shown {
		fmt.Fprintf(&b, "### Résultat %d\n", i+1)
		for _, col := range results.Columns {
			val := row[col]
			if val == nil {
				continue
			}
			s := strings.TrimSpace(fmt.Sprint(val))
			if s == "" || s == "None" {
				continue
			}
			display := titleCaser.String(strings.ReplaceAll(col, "_", " "))
			fmt.Fprintf(&b, "- **%s**: %v\n", display, val)
		}
		b.WriteString("\n")
	}

	if results.Count > 5 {
		fmt.Fprintf(&b, "\n*...et %d autres résultats dans le tableau.*", results.Count-5)
	}
	return b.String()
}

func formatElapsed(elapsed float64) string {
	return strconv.FormatFloat(elapsed, 'f', -1, 64)
}

func toInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	case string:
		parsed, err := strconv.ParseInt(n, 10, 64)
		if err != nil {
			return 0
		}
		return parsed
	default:
		return 0
	}
}
