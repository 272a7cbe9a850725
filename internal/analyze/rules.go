package analyze

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"jobshield-engine/internal/config"
	"jobshield-engine/internal/domain"
)

// Flag type identifiers, one per rule that can fire.
const (
	FlagFreeEmailDomain  = "Free Email Domain"
	FlagMissingWebsite   = "Missing Company Website"
	FlagPaymentRequest   = "Payment Request"
	FlagGuarantees       = "Unrealistic Guarantees"
	FlagWFHOffer         = "Unrealistic Work-from-Home Offer"
	FlagExcessiveUrgency = "Excessive Urgency"
	FlagCopyPaste        = "Generic/Copy-Paste Content"
	FlagBenefits         = "Unrealistic Benefits"
	FlagSalaryTooHigh    = "Unrealistic Salary (Too High)"
	FlagSalaryTooLow     = "Unrealistic Salary (Too Low)"
	FlagPoorDescription  = "Poor Job Description Quality"
	FlagPoorGrammar      = "Poor Grammar/Spelling"
	FlagCompanyName      = "Suspicious Company Name Pattern"
)

// rule is one catalog entry: a fixed flag type, severity and score
// impact plus the check deciding whether it fires. A check returns the
// flag description when it fires; a rule never emits more than one flag
// per call.
type rule struct {
	id       string
	flagType string
	severity domain.Severity
	impact   int
	check    func(e *Engine, s *snapshot) (fired bool, desc string)
}

// catalog is the full rule set in evaluation order. Rules are
// independent; order determines only where a flag appears in the
// result, never whether it fires.
var catalog = []rule{
	{id: "free_email_domain", flagType: FlagFreeEmailDomain, severity: domain.SeverityHigh, impact: 15, check: checkFreeEmailDomain},
	{id: "missing_website", flagType: FlagMissingWebsite, severity: domain.SeverityHigh, impact: 12, check: checkMissingWebsite},
	{id: "payment_request", flagType: FlagPaymentRequest, severity: domain.SeverityCritical, impact: 25, check: checkPaymentRequest},
	{id: "unrealistic_guarantees", flagType: FlagGuarantees, severity: domain.SeverityHigh, impact: 18, check: checkGuarantees},
	{id: "wfh_too_good", flagType: FlagWFHOffer, severity: domain.SeverityHigh, impact: 16, check: checkWFHOffer},
	{id: "excessive_urgency", flagType: FlagExcessiveUrgency, severity: domain.SeverityMedium, impact: 10, check: checkExcessiveUrgency},
	{id: "copy_paste_content", flagType: FlagCopyPaste, severity: domain.SeverityMedium, impact: 8, check: checkCopyPaste},
	{id: "unrealistic_benefits", flagType: FlagBenefits, severity: domain.SeverityHigh, impact: 14, check: checkBenefits},
	{id: "salary_too_high", flagType: FlagSalaryTooHigh, severity: domain.SeverityHigh, impact: 13, check: checkSalaryTooHigh},
	{id: "salary_too_low", flagType: FlagSalaryTooLow, severity: domain.SeverityMedium, impact: 7, check: checkSalaryTooLow},
	{id: "short_description", flagType: FlagPoorDescription, severity: domain.SeverityMedium, impact: 6, check: checkShortDescription},
	{id: "misspellings", flagType: FlagPoorGrammar, severity: domain.SeverityLow, impact: 4, check: checkMisspellings},
	{id: "company_name_pattern", flagType: FlagCompanyName, severity: domain.SeverityLow, impact: 3, check: checkCompanyName},
	// Inert by design: the email/company mismatch heuristic is computed
	// but never emitted, since a corporate-looking domain that merely
	// differs from the company name adds nothing beyond the free-email
	// rule. The entry stays in the catalog so the full rule set is
	// visible in one place.
	{id: "email_company_mismatch", flagType: "Email/Company Mismatch", severity: domain.SeverityLow, impact: 0, check: checkEmailCompanyMismatch},
}

func checkFreeEmailDomain(e *Engine, s *snapshot) (bool, string) {
	if !e.freeDomains[s.emailDomain] {
		return false, ""
	}
	return true, fmt.Sprintf("Contact email uses free email service (%s) instead of company domain. Legitimate companies typically use official email addresses.", s.emailDomain)
}

func checkMissingWebsite(_ *Engine, s *snapshot) (bool, string) {
	if strings.TrimSpace(s.posting.Website) != "" {
		return false, ""
	}
	return true, "No company website provided. Legitimate companies always have professional web presence."
}

func checkPaymentRequest(_ *Engine, s *snapshot) (bool, string) {
	m := s.matches[config.CatMoneyRequest]
	if len(m) == 0 {
		return false, ""
	}
	return true, fmt.Sprintf("Job posting mentions payment/fees: %s. Legitimate employers never ask for payments from candidates.", strings.Join(m, ", "))
}

func checkGuarantees(_ *Engine, s *snapshot) (bool, string) {
	m := s.matches[config.CatGuaranteed]
	if len(m) == 0 {
		return false, ""
	}
	return true, fmt.Sprintf("Posting guarantees employment: %s. No legitimate recruitment guarantees jobs.", strings.Join(m, ", "))
}

func checkWFHOffer(_ *Engine, s *snapshot) (bool, string) {
	m := s.matches[config.CatWFHTooGood]
	if len(m) == 0 {
		return false, ""
	}
	return true, fmt.Sprintf("Suspicious work-from-home claims: %s. Be cautious of \"earn money while sleeping\" type offers.", strings.Join(m, ", "))
}

func checkExcessiveUrgency(_ *Engine, s *snapshot) (bool, string) {
	n := len(s.matches[config.CatUrgency])
	if n < 2 {
		return false, ""
	}
	return true, fmt.Sprintf("Job posting uses urgent language excessively (%d instances). This is a common tactic in scams to bypass critical thinking.", n)
}

func checkCopyPaste(_ *Engine, s *snapshot) (bool, string) {
	if len(s.matches[config.CatCopyPaste]) == 0 {
		return false, ""
	}
	return true, "Job posting uses generic greetings (e.g., \"Dear Applicant\"). Legitimate companies customize communications."
}

// Boolean test over the unrealistic_benefits category. Runs alongside
// the categorized scan on purpose, so the same phrase can contribute to
// more than one flag.
func checkBenefits(_ *Engine, s *snapshot) (bool, string) {
	if len(s.matches[config.CatBenefits]) == 0 {
		return false, ""
	}
	return true, "Job posting promises unrealistic benefits (unlimited leaves, no work required). These are red flags for fraudulent offers."
}

func checkSalaryTooHigh(_ *Engine, s *snapshot) (bool, string) {
	if !s.salaryOK || s.salaryValue <= s.band.Max {
		return false, ""
	}
	return true, fmt.Sprintf("Salary of ₹%s is unusually high for a %s position. This is often used to attract and trap victims.", groupDigits(s.salaryValue), s.bandName)
}

func checkSalaryTooLow(_ *Engine, s *snapshot) (bool, string) {
	// value < Min implies value <= Max, so this can never co-fire with
	// the too-high rule
	if !s.salaryOK || s.salaryValue >= s.band.Min {
		return false, ""
	}
	return true, fmt.Sprintf("Salary of ₹%s is unusually low for a %s position. This may indicate a scam or highly exploitative offer.", groupDigits(s.salaryValue), s.bandName)
}

func checkShortDescription(_ *Engine, s *snapshot) (bool, string) {
	if utf8.RuneCountInString(strings.TrimSpace(s.posting.Description)) >= 100 {
		return false, ""
	}
	return true, "Job description is too brief and lacks essential details. Legitimate postings are comprehensive."
}

func checkMisspellings(e *Engine, s *snapshot) (bool, string) {
	n := 0
	for _, w := range e.tables.Misspellings {
		if strings.Contains(s.descLower, w) {
			n++
		}
	}
	if n < 2 {
		return false, ""
	}
	return true, fmt.Sprintf("Job description contains %d+ spelling/grammar errors. Professional companies maintain high writing standards.", n)
}

func checkCompanyName(e *Engine, s *snapshot) (bool, string) {
	padded := false
	for _, w := range e.tables.LegitimacyWords {
		if strings.Contains(s.companyLower, w) {
			padded = true
			break
		}
	}
	if !padded || strings.Count(s.companyLower, " ") <= 4 {
		return false, ""
	}
	return true, "Company name appears constructed with common legitimacy keywords. Verify company independently."
}

// checkEmailCompanyMismatch never fires. The comparison of the email
// domain against the company name's first word is documented at the
// catalog entry above; activating it needs its own severity and impact
// decision first.
func checkEmailCompanyMismatch(_ *Engine, _ *snapshot) (bool, string) {
	return false, ""
}
