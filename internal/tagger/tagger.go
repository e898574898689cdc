package tagger

import (
	"regexp"
	"strings"
)

// Tags describe one ingested report. Empty strings and an empty topic list
// mean "unknown", never "none".
type Tags struct {
	Year    string   `json:"year"`
	Company string   `json:"company"`
	Topics  []string `json:"topics"`
}

const (
	maxYearLen    = 4
	maxCompanyLen = 60
	maxTopics     = 12
)

var yearPattern = regexp.MustCompile(`\b(19\d{2}|20\d{2})\b`)

// topicKeywords maps filename substrings to topic labels. Matched in order so
// merged topic lists stay stable.
var topicKeywords = []struct {
	needle string
	label  string
}{
	{"health", "Health"},
	{"wellness", "Health"},
	{"retail", "Retail"},
	{"consumer", "Consumer"},
	{"goods", "Consumer Goods"},
	{"luxury", "Luxury"},
	{"fashion", "Fashion"},
	{"beauty", "Beauty"},
	{"travel", "Travel"},
	{"hospital", "Hospitality"},
	{"finance", "Finance"},
	{"bank", "Banking"},
	{"ai", "AI"},
	{"genai", "AI"},
	{"technology", "Technology"},
	{"tech", "Technology"},
	{"sustain", "Sustainability"},
	{"climate", "Climate"},
	{"energy", "Energy"},
	{"media", "Media"},
	{"culture", "Culture"},
	{"education", "Education"},
	{"work", "Work"},
}

var companyToken = regexp.MustCompile(`^[A-Za-z]{2,20}$`)

// FromFilename derives baseline tags from filename patterns alone: the first
// 19xx/20xx year token, a leading all-alpha brand token before "_" or "-"
// uppercased as the company, and topic labels for every keyword substring.
func FromFilename(filename string) Tags {
	base := strings.TrimSuffix(filename, extension(filename))
	lower := strings.ToLower(base)

	var year string
	if m := yearPattern.FindString(base); m != "" {
		year = m
	}

	var company string
	first := strings.TrimSpace(splitFirst(base))
	if companyToken.MatchString(first) {
		company = strings.ToUpper(first)
	}

	var topics []string
	seen := map[string]bool{}
	for _, kw := range topicKeywords {
		if matchesKeyword(lower, kw.needle) && !seen[kw.label] {
			seen[kw.label] = true
			topics = append(topics, kw.label)
		}
	}

	return Tags{Year: year, Company: company, Topics: topics}
}

// matchesKeyword reports whether the keyword appears in the lowercased
// filename. Keywords of three letters or fewer must match a whole token,
// otherwise "retail" would tag every report with "AI".
func matchesKeyword(lower, needle string) bool {
	if len(needle) > 3 {
		return strings.Contains(lower, needle)
	}
	for _, tok := range strings.FieldsFunc(lower, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	}) {
		if tok == needle {
			return true
		}
	}
	return false
}

// Merge combines the three tag sources: manual wins, then refined, then the
// heuristic baseline. Topics are the ordered union of all three sources,
// deduplicated case-sensitively and capped.
func Merge(manual Tags, refined *Tags, base Tags) Tags {
	var r Tags
	if refined != nil {
		r = *refined
	}

	year := firstNonEmpty(manual.Year, r.Year, base.Year)
	if len(year) > maxYearLen {
		year = year[:maxYearLen]
	}

	company := firstNonEmpty(manual.Company, r.Company, base.Company)
	if len(company) > maxCompanyLen {
		company = company[:maxCompanyLen]
	}

	var topics []string
	seen := map[string]bool{}
	for _, src := range [][]string{manual.Topics, r.Topics, base.Topics} {
		for _, t := range src {
			t = strings.TrimSpace(t)
			if t == "" || seen[t] {
				continue
			}
			seen[t] = true
			topics = append(topics, t)
			if len(topics) == maxTopics {
				return Tags{Year: year, Company: company, Topics: topics}
			}
		}
	}

	return Tags{Year: year, Company: company, Topics: topics}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func splitFirst(s string) string {
	if i := strings.IndexAny(s, "_-"); i >= 0 {
		return s[:i]
	}
	return s
}

func extension(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[i:]
	}
	return ""
}
