package signals

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"nivesh-ai-backend/models"
)

// Red flag messages
const (
	FlagShortTenure      = "Average tenure < 1.2 years"
	FlagRecentLeadership = "Leadership joined < 6 months ago"
	FlagICOnly           = "Only Individual Contributor (IC) roles - no leadership experience"
	FlagKeyPerson        = "Key person dependency"
	FlagNoTechnical      = "No technical co-founder"
	FlagNoStartup        = "No prior startup experience"
	FlagEmploymentGap    = "Employment gap detected"
)

const (
	maxCompanies = 5
	maxRoles     = 10
	maxEducation = 3
	unknownName  = "Unknown"
)

// TopTechCompanies earn the "ex-top tech" score bonus
var TopTechCompanies = []string{
	"Google", "Microsoft", "Apple", "Amazon", "Facebook", "Meta", "Netflix",
	"Salesforce", "Oracle", "IBM", "Adobe", "Intel", "Nvidia", "Tesla",
	"Uber", "Airbnb", "Stripe", "Palantir", "Snowflake", "Databricks",
	"OpenAI", "Anthropic", "GitHub", "LinkedIn", "Twitter", "X",
	"Razorpay", "Flipkart", "PayFlow", "Infosys", "TCS", "Wipro",
	"Zomato", "Swiggy", "Ola", "Oyo", "Byju's", "PhonePe", "Cred", "Groww",
}

// topTechPatterns finds list companies named in free text; single letters are
// skipped
var topTechPatterns = func() []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(TopTechCompanies))
	for i, c := range TopTechCompanies {
		if len(c) > 1 {
			out[i] = regexp.MustCompile(`\b` + regexp.QuoteMeta(c) + `\b`)
		}
	}
	return out
}()

type domainKeywords struct {
	domain   string
	keywords []*regexp.Regexp
}

var domainTable = compileDomains([]struct {
	domain   string
	keywords []string
}{
	{"SaaS", []string{"saas", "software as a service", "cloud software", "subscription", "recurring revenue"}},
	{"AI/ML", []string{"artificial intelligence", "machine learning", "deep learning", "neural network", "ai", "ml", "llm", "gpt"}},
	{"Fintech", []string{"fintech", "financial technology", "payment", "banking", "crypto", "blockchain", "trading"}},
	{"Healthtech", []string{"healthtech", "health tech", "healthcare", "medical", "pharma", "biotech"}},
	{"Edtech", []string{"edtech", "education technology", "learning platform", "online learning"}},
	{"E-commerce", []string{"e-commerce", "ecommerce", "marketplace", "retail", "shopping"}},
	{"Climate", []string{"climate", "sustainability", "green tech", "renewable energy", "carbon"}},
})

var (
	capPattern = regexp.MustCompile(`(?i)(\d{1,2})\+?\s*years?\s+(?:of\s+)?(?:clinical|work|professional)?\s*experience`)

	monthPrefix   = `(?:(?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?\s+)?`
	periodPattern = regexp.MustCompile(`(?i)` + monthPrefix + `((?:19|20)\d{2})\s*(?:-|–|—|to)\s*` + monthPrefix + `((?:19|20)\d{2}|present|current|now)`)

	yearPattern = regexp.MustCompile(`\b(?:19|20)\d{2}\b`)

	titleWords      = regexp.MustCompile(`(?i)\b(?:Founder|CEO|CTO|Manager|Engineer|Director|Consultant|Advisor|Resident|Intern)\b`)
	atCompany       = regexp.MustCompile(`(?:\bat|@)\s+([A-Z][\w&'-]*(?:[ ]+[A-Z][\w&'-]*){0,3})`)
	roleLineCompany = regexp.MustCompile(`(?i:` + roleVocabulary + `)\s*[,|–—-]\s*([A-Z][\w&'.]*(?:[ ]+[A-Z][\w&'.]*){0,3})`)

	roleVocabulary = `\b(?:vice president|product manager|project manager|co-founder|founder|ceo|cto|coo|cfo|vp|president|director|manager|engineer|architect|analyst|consultant|specialist|developer|designer|head|lead)\b`
	rolePattern    = regexp.MustCompile(`(?i)\b(?:(senior|sr\.?|junior|principal|staff|associate|lead)\s+)?` +
		`(vice president|product manager|project manager|co-founder|founder|ceo|cto|coo|cfo|vp|president|director|manager|engineer|architect|analyst|consultant|specialist|developer|designer|head|lead)\b`)
	acronymRoles = map[string]string{"vp": "VP", "ceo": "CEO", "cto": "CTO", "cfo": "CFO", "coo": "COO", "sr.": "Sr.", "sr": "Sr"}

	educationStart = regexp.MustCompile(`(?i)EDUCATION|ACADEMIC|QUALIFICATIONS`)
	educationEnd   = regexp.MustCompile(`(?i)WORK|EXPERIENCE|SKILLS|PROJECTS`)
	degreePattern  = regexp.MustCompile(`\b(Bachelor(?:'s)?|Master(?:'s)?|PhD|Ph\.D\.?|Doctorate|MBA|MS|BS|BA|MA|B\.?Tech|M\.?Tech|B\.?E|M\.?E|B\.?Sc|M\.?Sc)\b([^\n]*)`)

	monthNames         = `(january|february|march|april|may|june|july|august|september|october|november|december)`
	joinedMonthPattern = regexp.MustCompile(`(?i)(?:joined|hired|started|since)\s+` + monthNames + `\s+((?:19|20)\d{2})`)
	joinedRecently     = regexp.MustCompile(`(?i)(?:joined|hired|started)\s+(?:recently|this\s+year|this\s+month|last\s+month)`)
	joinedAgo          = regexp.MustCompile(`(?i)(?:joined|hired|started)\s+(\d{1,2})\s+(months?|weeks?)\s+ago`)

	phraseFlags = []struct {
		pattern *regexp.Regexp
		message string
	}{
		{regexp.MustCompile(`(?i)key\s+person|single\s+point|sole\s+owner|only\s+person`), FlagKeyPerson},
		{regexp.MustCompile(`(?i)no\s+technical|lack\s+of\s+technical|non-technical\s+founder`), FlagNoTechnical},
		{regexp.MustCompile(`(?i)no\s+prior\s+startup|no\s+startup\s+experience|first\s+time\s+founder`), FlagNoStartup},
		{regexp.MustCompile(`(?i)gap\s+in\s+employment|employment\s+gap|unexplained\s+gap`), FlagEmploymentGap},
	}

	leadershipKeywords = []string{
		"manager", "director", "vp", "vice president", "ceo", "cto", "cfo", "coo",
		"head", "lead", "principal", "founder", "co-founder", "executive",
	}
	startupKeywords = []string{"founder", "co-founder", "startup", "entrepreneur"}

	nameLine    = regexp.MustCompile(`(?i)founder|ceo|co-founder|managing director|director`)
	namePattern = regexp.MustCompile(`([A-Z][a-z]+[ \t]+[A-Z][a-z]+)`)
	badName     = regexp.MustCompile(`(?i)resume|unknown`)
	founderRole = regexp.MustCompile(`(?i)founder|ceo|cmo|chief`)
)

// FounderOption configures founder extraction
type FounderOption func(*founderConfig)

type founderConfig struct {
	sectorHint   string
	fallbackText string
	now          func() time.Time
}

// WithSectorHint sets the domain used when no domain keyword fires. It must be
// one of the domain table names (SaaS, AI/ML, Fintech, ...).
func WithSectorHint(sector string) FounderOption {
	return func(c *founderConfig) {
		c.sectorHint = sector
	}
}

// WithFallbackText supplies pitch deck text whose team roster is used for the
// founder name when the resume does not name one
func WithFallbackText(text string) FounderOption {
	return func(c *founderConfig) {
		c.fallbackText = text
	}
}

// WithClock overrides the clock used for "present" ranges and recency checks
func WithClock(now func() time.Time) FounderOption {
	return func(c *founderConfig) {
		c.now = now
	}
}

// ExtractFounderSignals scores a founder from resume or pitch deck text
func ExtractFounderSignals(text, startupID, role string, opts ...FounderOption) models.FounderVerificationResult {
	cfg := founderConfig{now: time.Now}
	for _, opt := range opts {
		opt(&cfg)
	}
	if role == "" {
		role = "Founder"
	}

	if strings.TrimSpace(text) == "" {
		return models.FounderVerificationResult{
			StartupID:            startupID,
			Role:                 role,
			FounderStrengthScore: 0,
			Signals: models.FounderSignals{
				PastCompanies:   []string{},
				Roles:           []string{},
				Education:       []string{},
				DomainAlignment: []string{},
			},
			RedFlags: []string{models.FlagEmptyResume},
			Name:     unknownName,
		}
	}

	now := cfg.now()
	signals := models.FounderSignals{
		ExperienceYears: experienceYears(text, now),
		PastCompanies:   pastCompanies(text),
		Roles:           extractRoles(text),
		Education:       extractEducation(text),
		DomainAlignment: domainAlignment(text, cfg.sectorHint),
	}
	redFlags := detectRedFlags(text, signals, now)

	return models.FounderVerificationResult{
		StartupID:            startupID,
		Role:                 role,
		Name:                 founderName(text, cfg.fallbackText),
		FounderStrengthScore: FounderStrengthScore(signals, redFlags),
		Signals:              signals,
		RedFlags:             redFlags,
	}
}

// FounderStrengthScore applies the additive scoring model: base 5, bonuses,
// then one penalty per red flag, clamped to [0, 10] and rounded to 1 decimal.
func FounderStrengthScore(s models.FounderSignals, redFlags []string) float64 {
	score := 5.0
	if s.ExperienceYears > 8 {
		score += 1.5
	}
	if hasTopTechCompany(s.PastCompanies) {
		score += 1.0
	}
	if hasStartupRole(s.Roles) {
		score += 1.0
	}
	if len(s.DomainAlignment) > 0 {
		score += 1.0
	}

	for _, flag := range redFlags {
		lower := strings.ToLower(flag)
		switch {
		case strings.Contains(flag, FlagShortTenure):
			score -= 1.5
		case strings.Contains(flag, "Leadership joined < 6 months"):
			score -= 1.0
		case strings.Contains(flag, "Only Individual Contributor"):
			score -= 1.0
		case strings.Contains(lower, "dependency"), strings.Contains(lower, "no technical"):
			score -= 1.5
		default:
			score -= 0.5
		}
	}

	score = math.Max(0, math.Min(10, score))
	return math.Round(score*10) / 10
}

type yearSpan struct{ start, end int }

// experienceYears merges job periods and caps the total with an explicit
// "N years of experience" phrase. With no periods the phrase is used as is.
func experienceYears(text string, now time.Time) int {
	capYears := 0
	if m := capPattern.FindStringSubmatch(text); m != nil {
		capYears, _ = strconv.Atoi(m[1])
	}

	var spans []yearSpan
	for _, m := range periodPattern.FindAllStringSubmatch(text, -1) {
		start, _ := strconv.Atoi(m[1])
		end := now.Year()
		switch strings.ToLower(m[2]) {
		case "present", "current", "now":
		default:
			end, _ = strconv.Atoi(m[2])
		}
		if end < start {
			continue
		}
		spans = append(spans, yearSpan{start, end})
	}

	sort.SliceStable(spans, func(i, j int) bool { return spans[i].start < spans[j].start })
	var merged []yearSpan
	for _, s := range spans {
		if len(merged) == 0 || s.start > merged[len(merged)-1].end {
			merged = append(merged, s)
			continue
		}
		if s.end > merged[len(merged)-1].end {
			merged[len(merged)-1].end = s.end
		}
	}

	total := 0
	for _, s := range merged {
		total += s.end - s.start
	}
	if total == 0 {
		return capYears
	}
	if capYears > 0 && capYears < total {
		return capYears
	}
	return total
}

func pastCompanies(text string) []string {
	var found []string

	// role line followed by a short capitalised company line
	lines := strings.Split(text, "\n")
	for i := 0; i+1 < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if len(line) > 60 || !rolePattern.MatchString(line) {
			continue
		}
		next := strings.TrimSpace(lines[i+1])
		if isCompanyLine(next) {
			found = append(found, next)
		}
	}

	for _, m := range roleLineCompany.FindAllStringSubmatch(text, -1) {
		found = append(found, m[1])
	}
	for _, m := range atCompany.FindAllStringSubmatch(text, -1) {
		found = append(found, m[1])
	}
	for i, re := range topTechPatterns {
		if re != nil && re.MatchString(text) {
			found = append(found, TopTechCompanies[i])
		}
	}

	var out []string
	seen := make(map[string]bool)
	for _, c := range found {
		c = trimAtTitle(c)
		if len(c) < 2 || len(c) >= 50 || titleWords.MatchString(c) {
			continue
		}
		key := strings.ToLower(c)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c)
		if len(out) == maxCompanies {
			break
		}
	}
	if out == nil {
		out = []string{}
	}
	return out
}

func isCompanyLine(s string) bool {
	if len(s) < 2 || len(s) > 50 || s[0] < 'A' || s[0] > 'Z' {
		return false
	}
	if len(strings.Fields(s)) > 5 || periodPattern.MatchString(s) || yearPattern.MatchString(s) {
		return false
	}
	return !titleWords.MatchString(s)
}

// trimAtTitle cuts a captured company name at the first title word
func trimAtTitle(s string) string {
	if loc := titleWords.FindStringIndex(s); loc != nil {
		s = s[:loc[0]]
	}
	return strings.Trim(strings.TrimSpace(s), ",.-|")
}

func extractRoles(text string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, m := range rolePattern.FindAllStringSubmatch(text, -1) {
		role := normalizeRole(strings.TrimSpace(m[1] + " " + m[2]))
		key := strings.ToLower(role)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, role)
		if len(out) == maxRoles {
			break
		}
	}
	if out == nil {
		out = []string{}
	}
	return out
}

func normalizeRole(role string) string {
	words := strings.Fields(role)
	for i, w := range words {
		lower := strings.ToLower(w)
		if acr, ok := acronymRoles[lower]; ok {
			words[i] = acr
			continue
		}
		parts := strings.Split(lower, "-")
		for j, p := range parts {
			if p != "" {
				parts[j] = strings.ToUpper(p[:1]) + p[1:]
			}
		}
		words[i] = strings.Join(parts, "-")
	}
	return strings.Join(words, " ")
}

func extractEducation(text string) []string {
	section := text
	if loc := educationStart.FindStringIndex(text); loc != nil {
		section = text[loc[0]:]
		rest := section[loc[1]-loc[0]:]
		if end := educationEnd.FindStringIndex(rest); end != nil {
			section = section[:loc[1]-loc[0]+end[0]]
		}
	}

	var out []string
	seen := make(map[string]bool)
	for _, m := range degreePattern.FindAllStringSubmatch(section, -1) {
		rest := strings.Join(strings.Fields(m[2]), " ")
		rest = strings.TrimLeft(rest, ",:;- ")
		entry := strings.TrimSpace(m[1] + " " + rest)
		if len(entry) > 120 {
			entry = strings.TrimSpace(entry[:120])
		}
		if len(entry) <= 8 || seen[entry] {
			continue
		}
		seen[entry] = true
		out = append(out, entry)
		if len(out) == maxEducation {
			break
		}
	}
	if len(out) == 0 {
		return []string{models.EducationNotDisclosed}
	}
	return out
}

func compileDomains(table []struct {
	domain   string
	keywords []string
}) []domainKeywords {
	out := make([]domainKeywords, 0, len(table))
	for _, row := range table {
		d := domainKeywords{domain: row.domain}
		for _, k := range row.keywords {
			d.keywords = append(d.keywords, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(k)+`\b`))
		}
		out = append(out, d)
	}
	return out
}

// domainAlignment matches keywords on word boundaries so short keys such as
// "ai" do not fire inside other words
func domainAlignment(text, sectorHint string) []string {
	out := []string{}
	for _, d := range domainTable {
		for _, re := range d.keywords {
			if re.MatchString(text) {
				out = append(out, d.domain)
				break
			}
		}
	}
	if len(out) == 0 && sectorHint != "" {
		for _, d := range domainTable {
			if strings.EqualFold(d.domain, sectorHint) {
				out = append(out, d.domain)
				break
			}
		}
	}
	return out
}

func detectRedFlags(text string, s models.FounderSignals, now time.Time) []string {
	var flags []string
	add := func(msg string) {
		for _, f := range flags {
			if f == msg {
				return
			}
		}
		flags = append(flags, msg)
	}

	if avg, ok := averageTenure(text, s.PastCompanies, now); ok && avg < 1.2 {
		add(fmt.Sprintf("%s (%.1f years)", FlagShortTenure, avg))
	}
	if recentLeadershipHire(text, now) {
		add(FlagRecentLeadership)
	}
	if onlyICRoles(s.Roles) {
		add(FlagICOnly)
	}
	for _, pf := range phraseFlags {
		if pf.pattern.MatchString(text) {
			add(pf.message)
		}
	}
	if flags == nil {
		flags = []string{}
	}
	return flags
}

// averageTenure pairs consecutive years found in the text
func averageTenure(text string, companies []string, now time.Time) (float64, bool) {
	if len(companies) == 0 {
		return 0, false
	}
	var years []int
	for _, y := range yearPattern.FindAllString(text, -1) {
		year, _ := strconv.Atoi(y)
		if year >= 1970 && year <= now.Year() {
			years = append(years, year)
		}
	}
	if len(years) < 2 {
		return 0, false
	}

	var sum, n int
	for i := 0; i+1 < len(years); i += 2 {
		if t := years[i+1] - years[i]; t > 0 && t < 50 {
			sum += t
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return float64(sum) / float64(n), true
}

func recentLeadershipHire(text string, now time.Time) bool {
	for _, m := range joinedMonthPattern.FindAllStringSubmatch(text, -1) {
		month, err := time.Parse("January", strings.ToUpper(m[1][:1])+strings.ToLower(m[1][1:]))
		if err != nil {
			continue
		}
		year, _ := strconv.Atoi(m[2])
		monthsAgo := (now.Year()-year)*12 + int(now.Month()) - int(month.Month())
		if monthsAgo >= 0 && monthsAgo < 6 {
			return true
		}
	}
	if joinedRecently.MatchString(text) {
		return true
	}
	for _, m := range joinedAgo.FindAllStringSubmatch(text, -1) {
		n, _ := strconv.Atoi(m[1])
		unit := strings.ToLower(m[2])
		if strings.HasPrefix(unit, "month") && n < 6 {
			return true
		}
		if strings.HasPrefix(unit, "week") && n < 26 {
			return true
		}
	}
	return false
}

func onlyICRoles(roles []string) bool {
	if len(roles) == 0 {
		return false
	}
	for _, r := range roles {
		if containsAny(strings.ToLower(r), leadershipKeywords) {
			return false
		}
	}
	return true
}

func hasStartupRole(roles []string) bool {
	for _, r := range roles {
		if containsAny(strings.ToLower(r), startupKeywords) {
			return true
		}
	}
	return false
}

// hasTopTechCompany compares names as whole words in either direction
func hasTopTechCompany(companies []string) bool {
	for _, c := range companies {
		for _, top := range TopTechCompanies {
			if containsWord(c, top) || containsWord(top, c) {
				return true
			}
		}
	}
	return false
}

func containsWord(haystack, word string) bool {
	h := strings.ToLower(haystack)
	w := strings.ToLower(strings.TrimSpace(word))
	if w == "" {
		return false
	}
	for from := 0; from <= len(h)-len(w); {
		i := strings.Index(h[from:], w)
		if i < 0 {
			return false
		}
		start, end := from+i, from+i+len(w)
		if boundaryBefore(h, start) && boundaryAfter(h, end) {
			return true
		}
		from = start + 1
	}
	return false
}

func boundaryBefore(s string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

func boundaryAfter(s string, i int) bool {
	if i >= len(s) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

func containsAny(s string, keys []string) bool {
	for _, k := range keys {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

func founderName(text, fallbackText string) string {
	for _, line := range strings.Split(text, "\n") {
		if !nameLine.MatchString(line) {
			continue
		}
		if m := namePattern.FindStringSubmatch(line); m != nil && !badName.MatchString(m[1]) {
			return m[1]
		}
	}

	if strings.TrimSpace(fallbackText) != "" {
		team := ExtractTeamInfo(fallbackText)
		for _, member := range team.Members {
			if member.Name != "" && founderRole.MatchString(member.Role) {
				return member.Name
			}
		}
	}
	return models.NameNotDisclosed
}
