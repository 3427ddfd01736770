package oracle

import (
	_ "embed"
	"strings"
)

var (
	//go:embed prompts/extract_v1.txt
	extractPromptV1 string
	//go:embed prompts/fit_v1.txt
	fitPromptV1 string
)

// PromptVersion is recorded with each oracle call.
const PromptVersion = "extract_v1"

// BuildPrompt renders the extraction instructions. The fit section is included
// only when a job description is supplied.
func BuildPrompt(jobDescription string) string {
	fit := ""
	if jd := strings.TrimSpace(jobDescription); jd != "" {
		fit = strings.ReplaceAll(fitPromptV1, "{{JOB_DESCRIPTION}}", jd)
	}
	return strings.ReplaceAll(extractPromptV1, "{{FIT_SECTION}}", fit)
}
