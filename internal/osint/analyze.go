package osint

import (
	"regexp"
	"strings"

	"github.com/datachat-io/datachat/internal/model"
)

// providerMap maps consumer mail domains to their operator. A domain
// found here marks the address as personal rather than professional.
var providerMap = map[string]string{
	"gmail.com":       "Google",
	"hotmail.com":     "Microsoft",
	"hotmail.fr":      "Microsoft",
	"outlook.com":     "Microsoft",
	"outlook.fr":      "Microsoft",
	"yahoo.com":       "Yahoo",
	"yahoo.fr":        "Yahoo",
	"orange.fr":       "Orange",
	"wanadoo.fr":      "Orange (Wanadoo)",
	"free.fr":         "Free",
	"sfr.fr":          "SFR",
	"laposte.net":     "La Poste",
	"icloud.com":      "Apple",
	"live.fr":         "Microsoft",
	"live.com":        "Microsoft",
	"bbox.fr":         "Bouygues",
	"numericable.fr":  "SFR (Numericable)",
	"protonmail.com":  "ProtonMail (privacy)",
	"pm.me":           "ProtonMail",
	"gmx.fr":          "GMX",
	"gmx.com":         "GMX",
	"aol.com":         "AOL",
}

var phoneSeparatorRe = regexp.MustCompile(`[\s\-.]`)

// AnalyzeEmail derives provider and ownership hints from an address.
func AnalyzeEmail(email string) model.EmailInfo {
	if email == "" {
		return model.EmailInfo{}
	}

	domain := ""
	username := email
	if at := strings.LastIndex(email, "@"); at >= 0 {
		domain = strings.ToLower(email[at+1:])
		username = email[:strings.Index(email, "@")]
	}

	provider, personal := providerMap[domain]
	if !personal {
		provider = domain
	}
	return model.EmailInfo{
		Email:          strings.ToLower(email),
		Provider:       provider,
		Domain:         domain,
		Username:       strings.ToLower(username),
		IsPersonal:     personal,
		IsProfessional: !personal && strings.Contains(domain, "."),
	}
}

// AnalyzePhone classifies a French phone number by its prefix.
func AnalyzePhone(phone string) model.PhoneInfo {
	if phone == "" {
		return model.PhoneInfo{}
	}
	clean := phoneSeparatorRe.ReplaceAllString(phone, "")

	kind := "Unknown"
	switch {
	case hasAnyPrefix(clean, "+336", "+337", "06", "07"):
		kind = "Mobile"
	case hasAnyPrefix(clean, "+331", "+332", "+333", "+334", "+335", "01", "02", "03", "04", "05"):
		kind = "Fixe"
	}

	country := "Unknown"
	if strings.Contains(clean, "+33") || (strings.HasPrefix(clean, "0") && len(clean) >= 10) {
		country = "France"
	}

	formatted := clean
	if strings.HasPrefix(clean, "+33") && len(clean) >= 12 {
		formatted = "+33 " + clean[3:4] + " " + clean[4:6] + " " + clean[6:8] + " " + clean[8:10] + " " + clean[10:12]
	}

	return model.PhoneInfo{
		Number:    phone,
		Clean:     clean,
		Type:      kind,
		Country:   country,
		Formatted: formatted,
	}
}

func hasAnyPrefix(s string, prefixes ...string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
