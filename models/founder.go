package models

// EducationNotDisclosed is returned in place of education entries when none
// are found. Consumers must treat it as "no data".
const EducationNotDisclosed = "Not disclosed in pitch deck or resume"

// NameNotDisclosed is the founder name when neither the resume nor the pitch
// deck names one
const NameNotDisclosed = EducationNotDisclosed

// FlagEmptyResume is the only red flag raised for empty input
const FlagEmptyResume = "Empty or invalid resume"

// FounderSignals holds the deterministic facts extracted from a resume or deck
type FounderSignals struct {
	ExperienceYears int      `json:"experienceYears"`
	PastCompanies   []string `json:"pastCompanies"`
	Roles           []string `json:"roles"`
	Education       []string `json:"education"`
	DomainAlignment []string `json:"domainAlignment"`
}

// FounderVerificationResult represents a scored founder verification for a startup
type FounderVerificationResult struct {
	StartupID            string         `json:"startupId"`
	Role                 string         `json:"role"`
	Name                 string         `json:"name,omitempty"`
	FounderStrengthScore float64        `json:"founderStrengthScore"` // In [0, 10], one decimal
	Signals              FounderSignals `json:"signals"`
	RedFlags             []string       `json:"redFlags"`
}
