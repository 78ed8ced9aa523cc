package service

import (
	"cmp"
	"context"
	"slices"

	"gamesense/app/internal/domain"
	"gamesense/app/internal/repository"
)

const recentSessionsLimit = 10

// Count is one bar of a breakdown chart.
type Count struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// DayCount is one point of the sessions-over-time series. Day is YYYY-MM-DD (UTC).
type DayCount struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
}

// RecentSession is a row of the recent sessions table.
type RecentSession struct {
	ID                string           `json:"id"`
	CreatedAt         domain.Timestamp `json:"created_at"`
	VideoOriginalName string           `json:"video_original_name"`
	Role              string           `json:"role"`
	Skill             string           `json:"skill"`
	Rating            int              `json:"rating"`
}

// Dashboard is the chart data for one player.
type Dashboard struct {
	Total   int             `json:"total"`
	ByRole  []Count         `json:"by_role"`
	BySkill []Count         `json:"by_skill"`
	PerDay  []DayCount      `json:"per_day"`
	Recent  []RecentSession `json:"recent"`
}

// DashboardService aggregates a player's session history.
type DashboardService interface {
	Get(ctx context.Context, user string) (*Dashboard, error)
}

type dashboardService struct {
	sessionRepo repository.SessionRepository
}

// NewDashboardService creates a new instance of dashboardService.
func NewDashboardService(sessionRepo repository.SessionRepository) DashboardService {
	return &dashboardService{sessionRepo: sessionRepo}
}

// Get builds the dashboard for user from all of their sessions.
func (s *dashboardService) Get(ctx context.Context, user string) (*Dashboard, error) {
	sessions, err := s.sessionRepo.ListByUser(ctx, user)
	if err != nil {
		return nil, err
	}
	return buildDashboard(sessions), nil
}

func buildDashboard(sessions []domain.Session) *Dashboard {
	d := &Dashboard{
		Total:   len(sessions),
		ByRole:  []Count{},
		BySkill: []Count{},
		PerDay:  []DayCount{},
		Recent:  []RecentSession{},
	}
	if len(sessions) == 0 {
		return d
	}

	roles := map[string]int{}
	skills := map[string]int{}
	days := map[string]int{}
	for _, s := range sessions {
		roles[s.Role]++
		skills[s.Skill]++
		// sessions without a readable timestamp are left out of the series
		if !s.CreatedAt.IsZero() {
			days[s.CreatedAt.UTC().Format("2006-01-02")]++
		}
	}
	d.ByRole = sortedCounts(roles)
	d.BySkill = sortedCounts(skills)
	for day, n := range days {
		d.PerDay = append(d.PerDay, DayCount{Day: day, Count: n})
	}
	slices.SortFunc(d.PerDay, func(a, b DayCount) int { return cmp.Compare(a.Day, b.Day) })

	ordered := slices.Clone(sessions)
	sortNewestFirst(ordered)
	for _, s := range ordered[:min(recentSessionsLimit, len(ordered))] {
		d.Recent = append(d.Recent, RecentSession{
			ID:                s.ID,
			CreatedAt:         s.CreatedAt,
			VideoOriginalName: s.VideoOriginalName,
			Role:              s.Role,
			Skill:             s.Skill,
			Rating:            s.Rating,
		})
	}
	return d
}

// sortedCounts orders by count, most frequent first, then by name.
func sortedCounts(m map[string]int) []Count {
	out := make([]Count, 0, len(m))
	for name, n := range m {
		out = append(out, Count{Name: name, Count: n})
	}
	slices.SortFunc(out, func(a, b Count) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return out
}
