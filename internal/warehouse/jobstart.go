package warehouse

import (
	"fmt"
	"strings"
	"time"

	dps "github.com/markusmobius/go-dateparser"
)

// JobStartLayout is the CHAR(26) rendering of a job start timestamp
const JobStartLayout = "2006-01-02 15:04:05.000000"

// NormalizeJobStart turns user input into the CHAR(26) form used for partition
// lookup. Input already in that form passes through unchanged.
func NormalizeJobStart(input string) (string, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return "", fmt.Errorf("job start is required")
	}
	if len(trimmed) == len(JobStartLayout) {
		if _, err := time.Parse(JobStartLayout, trimmed); err == nil {
			return trimmed, nil
		}
	}

	parser := dps.Parser{}
	cfg := &dps.Configuration{
		PreferredDateSource: dps.CurrentPeriod,
	}
	parsed, err := parser.Parse(cfg, trimmed)
	if err != nil {
		return "", fmt.Errorf("job start %q is not a recognizable date: %w", input, err)
	}
	if parsed.IsZero() {
		return "", fmt.Errorf("job start %q could not be parsed as a date", input)
	}
	return parsed.Time.Format(JobStartLayout), nil
}
