package signals

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"nivesh-ai-backend/models"
)

const (
	maxTeamMembers   = 10
	teamMemberRole   = "Team Member"
	fallbackName     = "Founding Team"
	fallbackSummary  = 500
	contextBefore    = 200
	contextAfter     = 300
	roleContextRunes = 100
)

const (
	personName = `([A-Z][a-z]+(?:[ \t]+[A-Z][a-z]+){1,3})`
	roleTitles = `(?:CEO|CTO|CFO|COO|CMO|CPO|VP|Vice[ \t]+President|Director|Manager|Co-Founder|Founder|Head|Lead|Chief|President)`
)

var (
	nameRolePatterns = []struct {
		re      *regexp.Regexp
		nameIdx int
		roleIdx int
	}{
		// Jane Doe - CEO, Jane Doe, Chief Technology Officer
		{re: regexp.MustCompile(personName + `[ \t]*[-–—,][ \t]*((?:[A-Z][A-Za-z&-]*[ \t]+)*?` + roleTitles + `[A-Za-z \t&-]*)`), nameIdx: 1, roleIdx: 2},
		// Jane Doe (CEO)
		{re: regexp.MustCompile(personName + `[ \t]*\(([^)\n]*` + roleTitles + `[^)\n]*)\)`), nameIdx: 1, roleIdx: 2},
		// CEO: Jane Doe, Chief Technology Officer - John Roe
		{re: regexp.MustCompile(`((?:Chief[ \t]+[A-Z][a-z]+(?:[ \t]+Officer)?)|` + roleTitles + `)[ \t]*[-–—:][ \t]*` + personName), nameIdx: 2, roleIdx: 1},
		// bullet lists: • Jane Doe - Head of Growth
		{re: regexp.MustCompile(`(?m)(?:^|•|\*)[ \t]*` + personName + `[ \t]*[-–—,][ \t]*([A-Z][A-Za-z \t&]+)`), nameIdx: 1, roleIdx: 2},
	}

	structuredTeam = regexp.MustCompile(`(Founders?|Co-Founders?|Executive[ \t]+Team|Leadership|Team):[ \t]*` +
		`([A-Z][a-z]+(?:[ \t]+[A-Z][a-z]+)+(?:[ \t]*(?:,|and|&)[ \t]*[A-Z][a-z]+(?:[ \t]+[A-Z][a-z]+)+)*)`)
	structuredSplit = regexp.MustCompile(`[ \t]*(?:,|\band\b|&)[ \t]*`)

	roleWord  = regexp.MustCompile(`(?i)\b(?:CEO|CTO|CFO|COO|CMO|CPO|VP|Director|Manager|Founder|Head|Lead|Chief|President|Engineer|Developer|Designer|Product|Marketing|Sales|Operations|Team)\b`)
	roleTail  = regexp.MustCompile(`[ \t]+(?:at|with|for)[ \t]+.*$`)
	validRole = regexp.MustCompile(`(?i)CEO|CTO|CFO|COO|CMO|CPO|VP|Director|Manager|Founder|Head|Lead|Chief|President|Engineer|Developer|Designer|Product|Marketing|Sales|Operations`)

	teamExperience = regexp.MustCompile(`(?i)(\d+)\+?\s*years?\s*(?:of\s*)?(?:experience|at|in)`)
	teamEducation  = regexp.MustCompile(`(?:MBA|MS|BS|BA|MA|PhD|Master|Bachelor|from)\s+([A-Z][A-Za-z\s&]*(?:University|College|Institute|School|MIT|Stanford|Harvard|Berkeley))`)
	teamBackground = regexp.MustCompile(`(?:(?:[Pp]reviously|[Ff]ormerly|[Ww]orked)\s+(?:at\s+)?|ex-|\bat\s+)([A-Z][A-Za-z0-9&-]*(?:[ \t]+[A-Z][A-Za-z0-9&-]*){0,3})`)
)

// ExtractTeamInfo finds the team roster in pitch deck text. Non-empty text
// always yields at least one member; empty text yields none.
func ExtractTeamInfo(text string) models.TeamInfo {
	if strings.TrimSpace(text) == "" {
		return models.TeamInfo{Members: []models.TeamMember{}}
	}

	var members []models.TeamMember
	seen := make(map[string]bool)
	addMember := func(m models.TeamMember) {
		key := strings.ToLower(m.Name)
		if seen[key] {
			return
		}
		seen[key] = true
		members = append(members, m)
	}

	for _, p := range nameRolePatterns {
		for _, loc := range p.re.FindAllStringSubmatchIndex(text, -1) {
			name := strings.TrimSpace(text[loc[2*p.nameIdx]:loc[2*p.nameIdx+1]])
			role := strings.TrimSpace(text[loc[2*p.roleIdx]:loc[2*p.roleIdx+1]])
			if len(strings.Fields(name)) < 2 || roleWord.MatchString(name) {
				continue
			}
			role = roleTail.ReplaceAllString(role, "")
			if !validRole.MatchString(role) {
				role = roleFromContext(text, loc[0], loc[1])
			}
			addMember(describeMember(text, name, role, loc[0], loc[1]))
		}
	}

	for _, loc := range structuredTeam.FindAllStringSubmatchIndex(text, -1) {
		title := text[loc[2]:loc[3]]
		role := teamMemberRole
		if strings.Contains(title, "Founder") {
			role = "Founder"
		}
		for _, name := range structuredSplit.Split(text[loc[4]:loc[5]], -1) {
			name = strings.TrimSpace(name)
			if len(strings.Fields(name)) < 2 || roleWord.MatchString(name) {
				continue
			}
			addMember(describeMember(text, name, role, loc[0], loc[1]))
		}
	}

	if len(members) > maxTeamMembers {
		members = members[:maxTeamMembers]
	}
	if len(members) == 0 {
		members = []models.TeamMember{fallbackMember(text)}
	}
	return models.TeamInfo{Members: members, TotalMembers: len(members)}
}

// describeMember scans the text around a match for experience, education and
// prior employer
func describeMember(text, name, role string, start, end int) models.TeamMember {
	window := runeWindow(text, start, end, contextBefore, contextAfter)

	member := models.TeamMember{
		Name:       name,
		Role:       strings.Join(strings.Fields(role), " "),
		Experience: models.Synthetic(),
		Education:  models.Synthetic(),
	}
	if m := teamExperience.FindStringSubmatch(window); m != nil {
		member.Experience = models.Disclosed(m[1] + " years")
	}
	if m := teamEducation.FindString(window); m != "" {
		member.Education = models.Disclosed(strings.Join(strings.Fields(m), " "))
	}
	if m := teamBackground.FindStringSubmatch(window); m != nil && !strings.Contains(name, m[1]) {
		member.Background = "Previously at " + strings.TrimSpace(m[1])
	}
	return member
}

func roleFromContext(text string, start, end int) string {
	window := runeWindow(text, start, end, roleContextRunes, roleContextRunes)
	if m := validRole.FindString(window); m != "" {
		return m
	}
	return teamMemberRole
}

func fallbackMember(text string) models.TeamMember {
	summary := strings.Join(strings.Fields(text), " ")
	if utf8.RuneCountInString(summary) > fallbackSummary {
		summary = string([]rune(summary)[:fallbackSummary])
	}
	return models.TeamMember{
		Name:       fallbackName,
		Role:       models.RoleNotListed,
		Background: summary,
		Experience: models.Synthetic(),
		Education:  models.Synthetic(),
	}
}

// runeWindow returns text[start-before : end+after] measured in runes and
// clipped to the text
func runeWindow(text string, start, end, before, after int) string {
	lo := start
	for n := 0; n < before && lo > 0; n++ {
		_, size := utf8.DecodeLastRuneInString(text[:lo])
		lo -= size
	}
	hi := end
	for n := 0; n < after && hi < len(text); n++ {
		_, size := utf8.DecodeRuneInString(text[hi:])
		hi += size
	}
	return text[lo:hi]
}
