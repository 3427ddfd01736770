package history

import (
	"strings"

	"github.com/sourabhsahu334/newsUserBackend/internal/oracle"
)

// searchText builds the lowercased haystack matched by Search.
func searchText(c *oracle.Candidate) string {
	if c == nil {
		return ""
	}
	parts := []string{c.Name, c.Email, c.Mobile, c.CurrentCompany, c.CollegeName}
	parts = append(parts, c.Skillsets...)
	for _, e := range c.Experience {
		if e.Company != nil {
			parts = append(parts, *e.Company)
		}
	}
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, strings.ToLower(p))
		}
	}
	return strings.Join(out, "\n")
}

func normalizeQuery(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}

func hasFolder(names []string, folder string) bool {
	for _, n := range names {
		if n == folder {
			return true
		}
	}
	return false
}

func withoutFolder(names []string, folder string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n != folder {
			out = append(out, n)
		}
	}
	return out
}

// folderSet trims, drops blanks and removes duplicates, keeping first-seen order.
func folderSet(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" || hasFolder(out, n) {
			continue
		}
		out = append(out, n)
	}
	return out
}
