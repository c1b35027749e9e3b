package registry

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// ColumnClass is a logical attribute role a physical column can play.
type ColumnClass string

const (
	ClassPostal ColumnClass = "postal"
	ClassCity   ColumnClass = "city"
	ClassName   ColumnClass = "name"
	ClassEmail  ColumnClass = "email"
	ClassPhone  ColumnClass = "phone"
)

// ColumnClasses maps each logical class to the substrings that identify
// it in a physical column name. Matching is case-sensitive against the
// column name as imported.
type ColumnClasses map[ColumnClass][]string

// DefaultColumnClasses returns the built-in keyword table. The sets are
// behaviorally significant; changing them changes which queries compile.
func DefaultColumnClasses() ColumnClasses {
	return ColumnClasses{
		ClassPostal: {"code_postal", "cp", "postal", "adresse_code_postal"},
		ClassCity:   {"ville", "commune", "city"},
		ClassName:   {"nom", "name", "prenom", "nom_complet"},
		ClassEmail:  {"email", "mail", "courriel"},
		ClassPhone:  {"tel", "phone", "telephone"},
	}
}

// LoadColumnClasses reads a YAML override file mapping class names to
// keyword lists. Classes absent from the file keep their defaults.
func LoadColumnClasses(path string) (ColumnClasses, error) {
	classes := DefaultColumnClasses()
	if path == "" {
		return classes, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "registry: read classes file %s", path)
	}

	var override map[string][]string
	if err := yaml.Unmarshal(data, &override); err != nil {
		return nil, eris.Wrapf(err, "registry: parse classes file %s", path)
	}
	for class, keywords := range override {
		classes[ColumnClass(class)] = keywords
	}
	return classes, nil
}

// Matches reports whether the column name belongs to the class.
func (cc ColumnClasses) Matches(class ColumnClass, column string) bool {
	for _, kw := range cc[class] {
		if strings.Contains(column, kw) {
			return true
		}
	}
	return false
}

// First returns the first column of the given class, in column order.
func (cc ColumnClasses) First(class ColumnClass, columns []string) (string, bool) {
	for _, c := range columns {
		if cc.Matches(class, c) {
			return c, true
		}
	}
	return "", false
}

// All returns every column of the given class, preserving column order.
func (cc ColumnClasses) All(class ColumnClass, columns []string) []string {
	var out []string
	for _, c := range columns {
		if cc.Matches(class, c) {
			out = append(out, c)
		}
	}
	return out
}
