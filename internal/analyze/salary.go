package analyze

import (
	"regexp"
	"strconv"
	"strings"

	"jobshield-engine/internal/config"
)

var salaryNumRe = regexp.MustCompile(`[0-9,]+`)

// parseSalary extracts the first run of digits/commas from free-text
// salary and parses it with the commas stripped. ok is false when the
// text has no usable numeric token; the salary rules then skip silently,
// since salary is optional free text and must never abort an analysis.
func parseSalary(text string) (value int, ok bool) {
	tok := salaryNumRe.FindString(text)
	if tok == "" {
		return 0, false
	}
	v, err := strconv.Atoi(strings.ReplaceAll(tok, ",", ""))
	if err != nil {
		// a bare run of commas matches the pattern but is not a number
		return 0, false
	}
	return v, true
}

// jobLevelBand classifies a job title into a salary band by keyword.
func jobLevelBand(title string) string {
	t := strings.ToLower(title)
	switch {
	case containsAny(t, "intern", "apprentice", "fresher"):
		return config.BandInternship
	case containsAny(t, "junior", "entry", "associate"):
		return config.BandEntryLevel
	default:
		return config.BandMidLevel
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// groupDigits renders a non-negative amount with thousands separators.
func groupDigits(n int) string {
	s := strconv.Itoa(n)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	head := len(s) % 3
	if head > 0 {
		b.WriteString(s[:head])
	}
	for i := head; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
