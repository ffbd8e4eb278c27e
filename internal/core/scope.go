package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/valter-silva-au/adorep/pkg/models"
)

// AreaSeparator delimits the segments of an area path.
const AreaSeparator = `\`

// AreaMatches reports whether areaPath falls inside any of the rules. A rule
// matches its own path always and its sub-areas only when IncludeDescendants
// is set. "AGI\MEETING" is not a sub-area of "AGI\MEET".
func AreaMatches(areaPath string, rules []models.AreaRule) bool {
	if areaPath == "" {
		return false
	}
	for _, rule := range rules {
		if rule.BasePath == "" {
			continue
		}
		if areaPath == rule.BasePath {
			return true
		}
		if rule.IncludeDescendants && strings.HasPrefix(areaPath, rule.BasePath+AreaSeparator) {
			return true
		}
	}
	return false
}

// Scope decides whether a work item belongs to a report's scope.
type Scope interface {
	Contains(item models.WorkItem) bool
}

// ScopeFunc adapts a plain function to Scope.
type ScopeFunc func(item models.WorkItem) bool

// Contains calls f.
func (f ScopeFunc) Contains(item models.WorkItem) bool { return f(item) }

// AreaEqualsScope matches items whose area path is exactly Path.
type AreaEqualsScope struct {
	Path string
}

func (s AreaEqualsScope) Contains(item models.WorkItem) bool {
	return AreaMatches(item.AreaPath(), []models.AreaRule{{BasePath: s.Path}})
}

// AreaUnderScope matches Path and every sub-area, like WIQL's UNDER.
type AreaUnderScope struct {
	Path string
}

func (s AreaUnderScope) Contains(item models.WorkItem) bool {
	return AreaMatches(item.AreaPath(), []models.AreaRule{{BasePath: s.Path, IncludeDescendants: true}})
}

// TeamBoardScope matches items that appear on a team's board.
type TeamBoardScope struct {
	Team  string
	Rules []models.AreaRule
}

func (s TeamBoardScope) Contains(item models.WorkItem) bool {
	return AreaMatches(item.AreaPath(), s.Rules)
}

// TagScope matches items whose tag string contains Tag as a substring.
type TagScope struct {
	Tag string
}

func (s TagScope) Contains(item models.WorkItem) bool {
	return ContainsTag(item.Tags(), s.Tag)
}

// ProjectScope matches items of one team project.
type ProjectScope struct {
	Project string
}

func (s ProjectScope) Contains(item models.WorkItem) bool {
	return item.Project() == s.Project
}

// AllOf matches items contained in every given scope.
func AllOf(scopes ...Scope) Scope {
	return ScopeFunc(func(item models.WorkItem) bool {
		for _, s := range scopes {
			if !s.Contains(item) {
				return false
			}
		}
		return true
	})
}

// ScopeForQuery returns the scope equivalent of a query's area and tag filters.
func ScopeForQuery(q models.Query) Scope {
	var scopes []Scope
	if q.Project != "" {
		scopes = append(scopes, ProjectScope{Project: q.Project})
	}
	if q.AreaPath != "" {
		if q.AreaMatch == models.AreaUnder {
			scopes = append(scopes, AreaUnderScope{Path: q.AreaPath})
		} else {
			scopes = append(scopes, AreaEqualsScope{Path: q.AreaPath})
		}
	}
	if q.TagContains != "" {
		scopes = append(scopes, TagScope{Tag: q.TagContains})
	}
	return AllOf(scopes...)
}

// CoverageScope selects where a child must be for its parent to count as
// covered in the board coverage report.
type CoverageScope string

const (
	// CoverageBoard uses the child team's board area rules.
	CoverageBoard CoverageScope = "board"
	// CoverageAreaUnder uses the child area and its sub-areas.
	CoverageAreaUnder CoverageScope = "area_under"
	// CoverageAreaEquals uses the child area only.
	CoverageAreaEquals CoverageScope = "area_equals"
)

// ParseCoverageScope validates a coverage scope name. Empty means CoverageBoard.
func ParseCoverageScope(s string) (CoverageScope, error) {
	switch CoverageScope(s) {
	case "":
		return CoverageBoard, nil
	case CoverageBoard, CoverageAreaUnder, CoverageAreaEquals:
		return CoverageScope(s), nil
	default:
		return "", fmt.Errorf("unknown coverage scope %q, must be one of: board, area_under, area_equals", s)
	}
}

// TeamRuleSource fetches a team board's area rules.
type TeamRuleSource interface {
	GetTeamAreaRules(ctx context.Context, project, team string) ([]models.AreaRule, error)
}

// LoadTeamBoardScope fetches the board configuration of project/team.
func LoadTeamBoardScope(ctx context.Context, source TeamRuleSource, project, team string) (TeamBoardScope, error) {
	rules, err := source.GetTeamAreaRules(ctx, project, team)
	if err != nil {
		return TeamBoardScope{}, fmt.Errorf("loading board rules of %s/%s: %w", project, team, err)
	}
	return TeamBoardScope{Team: team, Rules: rules}, nil
}
