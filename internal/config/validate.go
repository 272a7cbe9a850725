package config

import (
	"errors"
	"fmt"
	"strings"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// Err renders the validation outcome as a single error, nil when OK.
func (v Validation) Err() error {
	if v.OK() {
		return nil
	}
	return errors.New("config validation failed:\n- " + strings.Join(v.Errors, "\n- "))
}

// NormalizeAndValidate returns a normalized copy of cfg plus the
// validation outcome. Keyword matching is done against lower-cased text,
// so every table entry is lower-cased here; empty tables fall back to
// the built-in defaults.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	out := cfg
	var res Validation

	trimList := func(xs []string) []string {
		seen := map[string]bool{}
		var ys []string
		for _, x := range xs {
			x = strings.ToLower(strings.TrimSpace(x))
			if x == "" || seen[x] {
				continue
			}
			seen[x] = true
			ys = append(ys, x)
		}
		return ys
	}

	def := DefaultRules()

	out.Rules.FreeEmailDomains = trimList(out.Rules.FreeEmailDomains)
	if len(out.Rules.FreeEmailDomains) == 0 {
		out.Rules.FreeEmailDomains = def.FreeEmailDomains
	}

	if out.Rules.Keywords == nil {
		out.Rules.Keywords = map[string][]string{}
	}
	for cat, phrases := range out.Rules.Keywords {
		out.Rules.Keywords[cat] = trimList(phrases)
	}
	for _, cat := range KeywordCategories {
		if len(out.Rules.Keywords[cat]) == 0 {
			out.Rules.Keywords[cat] = def.Keywords[cat]
		}
	}
	for cat := range out.Rules.Keywords {
		known := false
		for _, k := range KeywordCategories {
			if cat == k {
				known = true
				break
			}
		}
		if !known {
			res.addWarn("rules.keywords has unknown category %q; it will be ignored", cat)
		}
	}

	if out.Rules.SalaryBands == nil {
		out.Rules.SalaryBands = map[string]SalaryBand{}
	}
	for _, band := range []string{BandInternship, BandEntryLevel, BandMidLevel} {
		b, ok := out.Rules.SalaryBands[band]
		if !ok || (b.Min == 0 && b.Max == 0) {
			out.Rules.SalaryBands[band] = def.SalaryBands[band]
			continue
		}
		if b.Min < 0 {
			res.addErr("rules.salary_bands.%s.min must be >= 0", band)
		}
		if b.Max <= b.Min {
			res.addErr("rules.salary_bands.%s.max must be > min", band)
		}
	}

	out.Rules.Misspellings = trimList(out.Rules.Misspellings)
	if len(out.Rules.Misspellings) == 0 {
		out.Rules.Misspellings = def.Misspellings
	}
	out.Rules.LegitimacyWords = trimList(out.Rules.LegitimacyWords)
	if len(out.Rules.LegitimacyWords) == 0 {
		out.Rules.LegitimacyWords = def.LegitimacyWords
	}

	// app sanity
	if out.App.Port < 0 || out.App.Port > 65535 {
		res.addErr("app.port must be 0..65535")
	}

	// intake required fields if enabled (password lives in the keychain)
	if out.Intake.Enabled {
		if strings.TrimSpace(out.Intake.IMAPHost) == "" {
			res.addErr("intake.imap_host is required when intake.enabled=true")
		}
		if strings.TrimSpace(out.Intake.Username) == "" {
			res.addErr("intake.username is required when intake.enabled=true")
		}
		if out.Intake.PollSeconds > 0 && out.Intake.PollSeconds < 30 {
			res.addWarn("intake.poll_seconds is very low (%d) and may hit IMAP rate limits.", out.Intake.PollSeconds)
		}
	}

	return out, res
}
