package oracle

import (
	"github.com/sourabhsahu334/newsUserBackend/internal/experience"
)

// Fit statuses the oracle may assign when a job description is supplied.
const (
	FitHighlyRecommended = "Highly Recommended"
	FitGood              = "Good Fit"
	FitAverage           = "Average"
	FitNotAMatch         = "Not a Match"
)

var fitStatuses = []string{FitHighlyRecommended, FitGood, FitAverage, FitNotAMatch}

// FitAnalysis is present only when the extraction ran against a job description.
type FitAnalysis struct {
	Summary   string `json:"summary"`
	FitStatus string `json:"fit_status"`
}

// Candidate is the structured profile extracted from one resume.
type Candidate struct {
	Name           string             `json:"name"`
	Email          string             `json:"email"`
	Mobile         string             `json:"mobile"`
	GithubLink     string             `json:"github_link"`
	LinkedinLink   string             `json:"linkedin_link"`
	CurrentCompany string             `json:"current_company"`
	Skillsets      []string           `json:"skillsets"`
	CollegeName    string             `json:"collegename"`
	Experience     []experience.Entry `json:"experience"`
	Fit            *FitAnalysis       `json:"fit,omitempty"`
	Extensions     map[string]any     `json:"extensions,omitempty"`
}

var coreKeys = map[string]struct{}{
	"name":            {},
	"email":           {},
	"mobile":          {},
	"github_link":     {},
	"linkedin_link":   {},
	"current_company": {},
	"skillsets":       {},
	"collegename":     {},
	"experience":      {},
	"summary":         {},
	"fit_status":      {},
}
