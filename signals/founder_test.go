package signals

import (
	"testing"
	"time"

	"nivesh-ai-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() time.Time {
	return time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)
}

const strongFounder = `Priya Sharma, Founder of LedgerLoop
12 years of experience building fintech products. Previously at Google.`

func TestFounderScoreStrongProfile(t *testing.T) {
	res := ExtractFounderSignals(strongFounder, "ledgerloop", "Founder", WithClock(fixedClock))

	assert.Equal(t, "ledgerloop", res.StartupID)
	assert.Equal(t, "Founder", res.Role)
	assert.Equal(t, "Priya Sharma", res.Name)
	assert.Equal(t, 12, res.Signals.ExperienceYears)
	assert.Contains(t, res.Signals.PastCompanies, "Google")
	assert.Contains(t, res.Signals.Roles, "Founder")
	assert.Equal(t, []string{"Fintech"}, res.Signals.DomainAlignment)
	assert.Equal(t, []string{models.EducationNotDisclosed}, res.Signals.Education)
	assert.Empty(t, res.RedFlags)

	// 5.0 + 1.5 + 1.0 + 1.0 + 1.0
	assert.Equal(t, 9.5, res.FounderStrengthScore)
}

func TestFounderScoreMinorFlag(t *testing.T) {
	res := ExtractFounderSignals(strongFounder+"\nThere is an employment gap in 2016.", "ledgerloop", "Founder", WithClock(fixedClock))

	assert.Equal(t, []string{FlagEmploymentGap}, res.RedFlags)
	assert.Equal(t, 9.0, res.FounderStrengthScore)
}

func TestFounderEmptyInput(t *testing.T) {
	res := ExtractFounderSignals("   \n", "acme", "", WithClock(fixedClock))

	assert.Equal(t, 0.0, res.FounderStrengthScore)
	assert.Equal(t, []string{models.FlagEmptyResume}, res.RedFlags)
	assert.Equal(t, "Unknown", res.Name)
	assert.Equal(t, "Founder", res.Role)
	assert.Empty(t, res.Signals.PastCompanies)
}

func TestFounderShortTenureAndICRoles(t *testing.T) {
	text := `Senior Engineer
Acme Corp
2019 - 2020
Software Engineer
Beta Labs
2020 - 2021`
	res := ExtractFounderSignals(text, "s", "CTO", WithClock(fixedClock))

	assert.Equal(t, []string{"Acme Corp", "Beta Labs"}, res.Signals.PastCompanies)
	assert.Equal(t, []string{"Senior Engineer", "Engineer"}, res.Signals.Roles)
	assert.Equal(t, 2, res.Signals.ExperienceYears)
	assert.Equal(t, []string{
		"Average tenure < 1.2 years (1.0 years)",
		FlagICOnly,
	}, res.RedFlags)
	// 5.0 - 1.5 - 1.0
	assert.Equal(t, 2.5, res.FounderStrengthScore)
}

func TestFounderExperienceCap(t *testing.T) {
	text := "5+ years of professional experience\nJan 2010 - Present\nJan 2012 - Dec 2015"
	res := ExtractFounderSignals(text, "s", "Founder", WithClock(fixedClock))
	assert.Equal(t, 5, res.Signals.ExperienceYears)

	text = "20 years of experience\n2018 - 2020\n2021 - 2023"
	res = ExtractFounderSignals(text, "s", "Founder", WithClock(fixedClock))
	assert.Equal(t, 4, res.Signals.ExperienceYears)
}

func TestFounderRecentLeadership(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"Our CTO joined January 2025 from Stripe.", true},
		{"Our CTO joined January 2024 from Stripe.", false},
		{"The VP of Sales was hired in 2019.", false},
		{"The VP of Sales hired recently to scale.", true},
		{"Head of growth joined 3 months ago", true},
		{"Head of growth joined 9 months ago", false},
		{"Head of growth started 10 weeks ago", true},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			res := ExtractFounderSignals(tt.text, "s", "Founder", WithClock(fixedClock))
			if tt.want {
				assert.Contains(t, res.RedFlags, FlagRecentLeadership)
			} else {
				assert.NotContains(t, res.RedFlags, FlagRecentLeadership)
			}
		})
	}
}

func TestFounderPhraseFlags(t *testing.T) {
	text := "CEO and sole owner of the codebase. Non-technical founder. First time founder with no startup experience."
	res := ExtractFounderSignals(text, "s", "Founder", WithClock(fixedClock))

	assert.Equal(t, []string{FlagKeyPerson, FlagNoTechnical, FlagNoStartup}, res.RedFlags)
	// 5.0 + 1.0 (founder role) - 1.5 - 1.5 - 0.5
	assert.Equal(t, 2.5, res.FounderStrengthScore)
}

func TestFounderEducationSection(t *testing.T) {
	text := `EDUCATION
MBA, Stanford University, 2012
B.Tech in Computer Science from IIT Delhi
EXPERIENCE
Product Manager at Flipkart`
	res := ExtractFounderSignals(text, "s", "Founder", WithClock(fixedClock))

	assert.Equal(t, []string{
		"MBA Stanford University, 2012",
		"B.Tech in Computer Science from IIT Delhi",
	}, res.Signals.Education)
	assert.Contains(t, res.Signals.PastCompanies, "Flipkart")
	assert.Contains(t, res.Signals.Roles, "Product Manager")
}

func TestFounderDomainAlignment(t *testing.T) {
	res := ExtractFounderSignals("Built retail analytics with machine learning", "s", "Founder")
	assert.Equal(t, []string{"AI/ML", "E-commerce"}, res.Signals.DomainAlignment)

	// "ai" inside another word does not count
	res = ExtractFounderSignals("Spent years on maintenance of said trains", "s", "Founder", WithSectorHint("Climate"))
	assert.Equal(t, []string{"Climate"}, res.Signals.DomainAlignment)

	res = ExtractFounderSignals("Spent years on maintenance of said trains", "s", "Founder", WithSectorHint("Robotics"))
	assert.Empty(t, res.Signals.DomainAlignment)
}

func TestFounderNameFallsBackToPitchDeck(t *testing.T) {
	deck := "OUR TEAM\nAnita Rao - CEO & Co-Founder\nVikram Das - CTO"
	res := ExtractFounderSignals("Ten years in logistics operations.", "s", "Founder", WithFallbackText(deck))
	assert.Equal(t, "Anita Rao", res.Name)

	res = ExtractFounderSignals("Ten years in logistics operations.", "s", "Founder")
	assert.Equal(t, models.NameNotDisclosed, res.Name)
}

func TestFounderStrengthScoreBounds(t *testing.T) {
	many := []string{
		FlagKeyPerson, FlagNoTechnical, FlagShortTenure, FlagRecentLeadership,
		FlagICOnly, FlagNoStartup, FlagEmploymentGap,
	}
	assert.Equal(t, 0.0, FounderStrengthScore(models.FounderSignals{}, many))

	top := models.FounderSignals{
		ExperienceYears: 20,
		PastCompanies:   []string{"Google"},
		Roles:           []string{"Co-Founder"},
		DomainAlignment: []string{"SaaS"},
	}
	score := FounderStrengthScore(top, nil)
	assert.Equal(t, 9.5, score)
	require.GreaterOrEqual(t, score, 0.0)
	require.LessOrEqual(t, score, 10.0)
}

func TestHasTopTechCompanyWholeWords(t *testing.T) {
	assert.True(t, hasTopTechCompany([]string{"Google India"}))
	assert.True(t, hasTopTechCompany([]string{"stripe"}))
	assert.False(t, hasTopTechCompany([]string{"Exotel"}))
	assert.False(t, hasTopTechCompany([]string{"Credence Labs"}))
}
