package registry

import "strings"

// schemaFamily associates trigger keywords with a signature column: when
// a message mentions the family, prefer datasets carrying that column.
type schemaFamily struct {
	triggers  []string
	signature string
}

// Benefits-agency exports identify themselves by a matricule column.
var schemaFamilies = []schemaFamily{
	{triggers: []string{"caf", "allocataire", "aah", "organisme"}, signature: "matricule"},
}

// Resolve maps free text to one registered dataset name. Resolution
// order: exact name mention, schema-family trigger keywords, first ready
// dataset. Returns false when nothing is imported and queryable.
func (s *Snapshot) Resolve(text string) (string, bool) {
	q := strings.ToLower(text)

	for _, ds := range s.datasets {
		if strings.Contains(q, strings.ToLower(ds.Name)) {
			return ds.Name, true
		}
	}

	for _, fam := range schemaFamilies {
		if !containsAny(q, fam.triggers) {
			continue
		}
		for _, ds := range s.datasets {
			for _, col := range ds.Columns {
				if strings.Contains(col, fam.signature) {
					return ds.Name, true
				}
			}
		}
	}

	for _, ds := range s.datasets {
		if ds.Ready() {
			return ds.Name, true
		}
	}
	return "", false
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
