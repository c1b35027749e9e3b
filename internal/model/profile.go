package model

// EmailInfo is derived metadata about an email address.
type EmailInfo struct {
	Email          string `json:"email,omitempty"`
	Provider       string `json:"provider,omitempty"`
	Domain         string `json:"domain,omitempty"`
	Username       string `json:"username,omitempty"`
	IsPersonal     bool   `json:"is_personal,omitempty"`
	IsProfessional bool   `json:"is_professional,omitempty"`
}

// PhoneInfo is derived metadata about a phone number.
type PhoneInfo struct {
	Number    string `json:"number,omitempty"`
	Clean     string `json:"clean,omitempty"`
	Type      string `json:"type,omitempty"`
	Country   string `json:"country,omitempty"`
	Formatted string `json:"formatted,omitempty"`
}

// SearchHit is a single external web-search result.
type SearchHit struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// ProbeStatus classifies the outcome of one social profile probe.
type ProbeStatus string

const (
	ProbeStatusFound    ProbeStatus = "found"
	ProbeStatusNotFound ProbeStatus = "not_found"
	ProbeStatusUnknown  ProbeStatus = "unknown"
	ProbeStatusError    ProbeStatus = "error"
)

// SocialProfile is the result of one profile-existence probe.
// Exists is nil when the probe could not classify the page.
type SocialProfile struct {
	Platform string      `json:"platform"`
	URL      string      `json:"url"`
	Username string      `json:"username"`
	Exists   *bool       `json:"exists"`
	Status   ProbeStatus `json:"status"`
}

// Found reports whether the probe confirmed the profile.
func (p SocialProfile) Found() bool {
	return p.Exists != nil && *p.Exists
}

// DirectoryEntry is one public-directory listing.
type DirectoryEntry struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

// Breach is one breach-index entry for an email address.
type Breach struct {
	Name      string `json:"name"`
	Domain    string `json:"domain"`
	Date      string `json:"date"`
	DataTypes string `json:"data_types"`
}

// BranchStatus records how an enrichment branch terminated.
type BranchStatus string

const (
	BranchOK      BranchStatus = "ok"
	BranchPartial BranchStatus = "partial"
	BranchTimeout BranchStatus = "timeout"
	BranchError   BranchStatus = "error"
)

// ProfileStats aggregates counts per enrichment category. Each count
// always equals the length of the corresponding result collection.
type ProfileStats struct {
	GoogleHits    int `json:"google_hits"`
	SocialFound   int `json:"social_found"`
	SocialChecked int `json:"social_checked"`
	Breaches      int `json:"breaches"`
	PagesBlanches int `json:"pages_blanches"`
}

// OsintProfile is the merged result of all enrichment branches for one
// subject. Built once per enrichment call; never mutated after assembly.
type OsintProfile struct {
	Name       string `json:"name"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
	City       string `json:"city,omitempty"`
	Address    string `json:"address,omitempty"`
	PostalCode string `json:"code_postal,omitempty"`

	EmailInfo EmailInfo `json:"email_info"`
	PhoneInfo PhoneInfo `json:"phone_info"`
	Username  string    `json:"username"`

	Google         map[string][]SearchHit `json:"google_results"`
	SocialProfiles []SocialProfile        `json:"social_profiles"`
	PagesBlanches  []DirectoryEntry       `json:"pages_blanches"`
	Breaches       []Breach               `json:"breaches"`

	Branches map[string]BranchStatus `json:"branches,omitempty"`

	TotalDBResults int          `json:"total_db_results"`
	ScanTime       float64      `json:"scan_time"`
	Stats          ProfileStats `json:"stats"`
	Summary        string       `json:"summary,omitempty"`
}
