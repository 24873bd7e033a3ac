package utils

import "strings"

// StripFences removes a surrounding markdown code fence, which models often
// wrap around JSON despite being told not to.
func StripFences(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	trimmed = strings.TrimPrefix(trimmed, "```")
	// drop the info string, e.g. ```json
	if idx := strings.IndexByte(trimmed, '\n'); idx >= 0 {
		trimmed = trimmed[idx+1:]
	} else {
		trimmed = ""
	}
	trimmed = strings.TrimSpace(trimmed)
	trimmed = strings.TrimSuffix(trimmed, "```")
	return strings.TrimSpace(trimmed)
}

func NormalizeSearch(search string) string {
	return strings.ToLower(strings.TrimSpace(search))
}

// NormalizeStatus maps "In Progress" and "in_progress" to "in-progress".
func NormalizeStatus(status string) string {
	status = strings.ToLower(strings.TrimSpace(status))
	return strings.NewReplacer(" ", "-", "_", "-").Replace(status)
}
