package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"nivesh-ai-backend/models"
	"nivesh-ai-backend/oracle"

	"golang.org/x/sync/errgroup"
)

const (
	RoleAnalysisUnavailable = "AI analysis unavailable: Groq API credentials not configured."
	RoleAnalysisFailed      = "AI analysis unavailable due to API error."

	defaultDomain      = "startup"
	roleMaxTokens      = 256
	roleConcurrency    = 4
	roleSystemPrompt   = "You are a venture capital analyst."
	roleAnalysisPrompt = "You are a venture capital analyst. Analyze the importance and impact of the following team member's role " +
		"in the context of a startup operating in the specified domain. Respond with a single, concise sentence (max 25 words). " +
		"Do not hallucinate.\n\nRole: %s\nDomain: %s\n\nReturn only the sentence."
)

// TeamService annotates team rosters with one-sentence role assessments
type TeamService struct {
	oracle      oracle.Oracle
	concurrency int
}

// NewTeamService creates a team service. A nil oracle gives the unavailable
// annotation for every member.
func NewTeamService(o oracle.Oracle) *TeamService {
	return &TeamService{oracle: o, concurrency: roleConcurrency}
}

// RoleImportance asks the oracle how much a role matters in a domain
func (s *TeamService) RoleImportance(ctx context.Context, role, domain string) string {
	if strings.TrimSpace(domain) == "" {
		domain = defaultDomain
	}
	if !oracle.Ready(s.oracle) {
		return RoleAnalysisUnavailable
	}

	text, err := s.oracle.Complete(ctx, oracle.Request{
		System:      roleSystemPrompt,
		Prompt:      fmt.Sprintf(roleAnalysisPrompt, role, domain),
		Temperature: analysisTemp,
		MaxTokens:   roleMaxTokens,
	})
	if err != nil {
		if errors.Is(err, oracle.ErrNotConfigured) {
			return RoleAnalysisUnavailable
		}
		log.Printf("Warning: [ORACLE] Role analysis failed for %q: %v", role, err)
		return RoleAnalysisFailed
	}
	return strings.TrimSpace(text)
}

// AnnotateRoles returns a copy of team with AIAnalysis set on every member.
// Members are annotated concurrently and keep their order.
func (s *TeamService) AnnotateRoles(ctx context.Context, team models.TeamInfo, domain string) models.TeamInfo {
	members := make([]models.TeamMember, len(team.Members))
	copy(members, team.Members)

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i := range members {
		i := i
		g.Go(func() error {
			members[i].AIAnalysis = s.RoleImportance(ctx, members[i].Role, domain)
			return nil
		})
	}
	_ = g.Wait()

	return models.TeamInfo{Members: members, TotalMembers: team.TotalMembers}
}
