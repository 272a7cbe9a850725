package config

// Keyword category names. The detection rules look these up by name, so
// a config file may extend the phrase lists but not rename a category.
const (
	CatUrgency      = "urgency"
	CatMoneyRequest = "money_request"
	CatBenefits     = "unrealistic_benefits"
	CatCopyPaste    = "copy_paste"
	CatGuaranteed   = "guaranteed"
	CatWFHTooGood   = "work_from_home_too_good"
)

// Job-level band names used by the salary realism rule.
const (
	BandInternship = "internship"
	BandEntryLevel = "entry_level"
	BandMidLevel   = "mid_level"
)

// KeywordCategories lists every category a config file must provide.
var KeywordCategories = []string{
	CatUrgency, CatMoneyRequest, CatBenefits,
	CatCopyPaste, CatGuaranteed, CatWFHTooGood,
}

// DefaultRules returns the built-in rule tables. They are used to fill
// any table a user config leaves empty, and the shipped config/config.yml
// mirrors them.
func DefaultRules() RuleTables {
	return RuleTables{
		FreeEmailDomains: []string{
			"gmail.com", "yahoo.com", "outlook.com", "hotmail.com",
			"mail.com", "protonmail.com", "yandex.com", "aol.com",
			"icloud.com", "mail.ru", "temp-mail.org",
		},
		Keywords: map[string][]string{
			CatUrgency:      {"urgent", "asap", "immediately", "within 24 hours", "apply now", "limited time"},
			CatMoneyRequest: {"payment", "fee", "registration", "processing", "verification fee", "advance payment"},
			CatBenefits:     {"unlimited leaves", "no work", "from home no work", "easy money", "passive income"},
			CatCopyPaste:    {"dear applicant", "dear candidate", "dear applicants"},
			CatGuaranteed:   {"guaranteed", "promise", "certainly", "assured", "definitely hired"},
			CatWFHTooGood:   {"work from anywhere", "no experience needed", "earn 5000/day", "earn while you sleep"},
		},
		SalaryBands: map[string]SalaryBand{
			BandInternship: {Min: 5000, Max: 500000},
			BandEntryLevel: {Min: 200000, Max: 3000000},
			BandMidLevel:   {Min: 500000, Max: 5000000},
		},
		Misspellings: []string{
			"recieve", "occured", "sucessful", "applicaton", "seperete",
		},
		LegitimacyWords: []string{
			"private", "limited", "corporation", "international",
		},
	}
}
