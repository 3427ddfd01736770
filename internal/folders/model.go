package folders

import "time"

// DefaultName is the folder every account owns from onboarding.
const DefaultName = "default"

// Folder groups history records and optionally carries a job description.
type Folder struct {
	AccountID      string    `json:"-"`
	Name           string    `json:"name"`
	JobDescription string    `json:"jobDescription"`
	VisibleColumns []string  `json:"visibleColumns"`
	CreatedAt      time.Time `json:"createdAt"`
}

// DefaultColumns is the column layout a new folder starts with.
var DefaultColumns = []string{
	"fit_status",
	"current_company",
	"mobile",
	"summary",
	"collegename",
	"skillsets",
	"total_skills",
	"total_experience",
	"total_experience_months",
	"number_of_companies",
	"latest_company",
	"latest_start_date",
	"latest_end_date",
	"latest_duration_months",
	"experience_history",
}

// extraColumns may be chosen in addition to the defaults.
var extraColumns = []string{"name", "email", "github_link", "linkedin_link"}

// KnownColumn reports whether key is a column the export understands.
func KnownColumn(key string) bool {
	for _, k := range DefaultColumns {
		if k == key {
			return true
		}
	}
	for _, k := range extraColumns {
		if k == key {
			return true
		}
	}
	return false
}

func defaultColumns() []string {
	out := make([]string, len(DefaultColumns))
	copy(out, DefaultColumns)
	return out
}
