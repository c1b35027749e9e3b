package osint

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/datachat-io/datachat/internal/model"
)

func TestAnalyzeEmail(t *testing.T) {
	tests := []struct {
		name  string
		email string
		want  model.EmailInfo
	}{
		{
			name:  "personal gmail",
			email: "Jean.Dupont@Gmail.com",
			want: model.EmailInfo{
				Email:      "jean.dupont@gmail.com",
				Provider:   "Google",
				Domain:     "gmail.com",
				Username:   "jean.dupont",
				IsPersonal: true,
			},
		},
		{
			name:  "legacy wanadoo",
			email: "jdupont@wanadoo.fr",
			want: model.EmailInfo{
				Email:      "jdupont@wanadoo.fr",
				Provider:   "Orange (Wanadoo)",
				Domain:     "wanadoo.fr",
				Username:   "jdupont",
				IsPersonal: true,
			},
		},
		{
			name:  "privacy provider",
			email: "jd@protonmail.com",
			want: model.EmailInfo{
				Email:      "jd@protonmail.com",
				Provider:   "ProtonMail (privacy)",
				Domain:     "protonmail.com",
				Username:   "jd",
				IsPersonal: true,
			},
		},
		{
			name:  "professional domain",
			email: "j.dupont@acme-corp.fr",
			want: model.EmailInfo{
				Email:          "j.dupont@acme-corp.fr",
				Provider:       "acme-corp.fr",
				Domain:         "acme-corp.fr",
				Username:       "j.dupont",
				IsProfessional: true,
			},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, AnalyzeEmail(tc.email))
		})
	}
}

func TestAnalyzeEmail_Empty(t *testing.T) {
	assert.Equal(t, model.EmailInfo{}, AnalyzeEmail(""))
}

func TestAnalyzePhone(t *testing.T) {
	tests := []struct {
		name  string
		phone string
		want  model.PhoneInfo
	}{
		{
			name:  "mobile with spaces",
			phone: "06 12 34 56 78",
			want: model.PhoneInfo{
				Number:    "06 12 34 56 78",
				Clean:     "0612345678",
				Type:      "Mobile",
				Country:   "France",
				Formatted: "0612345678",
			},
		},
		{
			name:  "international mobile",
			phone: "+33 6 12 34 56 78",
			want: model.PhoneInfo{
				Number:    "+33 6 12 34 56 78",
				Clean:     "+33612345678",
				Type:      "Mobile",
				Country:   "France",
				Formatted: "+33 6 12 34 56 78",
			},
		},
		{
			name:  "landline with dots",
			phone: "04.78.00.00.00",
			want: model.PhoneInfo{
				Number:    "04.78.00.00.00",
				Clean:     "0478000000",
				Type:      "Fixe",
				Country:   "France",
				Formatted: "0478000000",
			},
		},
		{
			name:  "short unknown",
			phone: "3615",
			want: model.PhoneInfo{
				Number:    "3615",
				Clean:     "3615",
				Type:      "Unknown",
				Country:   "Unknown",
				Formatted: "3615",
			},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, AnalyzePhone(tc.phone))
		})
	}
}

func TestAnalyzePhone_Empty(t *testing.T) {
	assert.Equal(t, model.PhoneInfo{}, AnalyzePhone(""))
}
