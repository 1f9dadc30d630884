package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/thynetwork/timeclock/internal/core/domain"
	"github.com/thynetwork/timeclock/internal/core/ports"
)

type dashboardService struct {
	users  ports.UserRepository
	events ports.ClockEventRepository
	log    zerolog.Logger
	rt     runtime
}

// NewDashboardService returns a DashboardService implementation.
func NewDashboardService(users ports.UserRepository, events ports.ClockEventRepository, log zerolog.Logger, opts ...Option) ports.DashboardService {
	return &dashboardService{users: users, events: events, log: log, rt: newRuntime(opts)}
}

// Stats counts employees by their latest event. ActiveUsers includes users on
// break but not users whose latest event is BREAK_END, even though those show
// as clocked in individually. ClockedInToday counts IN events, not users.
func (s *dashboardService) Stats(ctx context.Context) (*domain.DashboardStats, error) {
	employees, err := s.users.ListByRole(ctx, domain.RoleEmployee)
	if err != nil {
		return nil, fmt.Errorf("dashboard stats: employees: %w", err)
	}

	stats := &domain.DashboardStats{}

	if len(employees) > 0 {
		ids := make([]string, len(employees))
		for i, u := range employees {
			ids[i] = u.ID
		}
		latest, err := s.events.LatestPerUser(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("dashboard stats: latest events: %w", err)
		}
		for _, ev := range latest {
			switch ev.Type {
			case domain.KindIn:
				stats.ActiveUsers++
			case domain.KindBreakStart:
				stats.ActiveUsers++
				stats.OnBreak++
			}
		}
	}

	count, err := s.events.CountByKindSince(ctx, domain.KindIn, s.rt.today())
	if err != nil {
		return nil, fmt.Errorf("dashboard stats: clock-ins: %w", err)
	}
	stats.ClockedInToday = count

	s.log.Debug().
		Int("employees", len(employees)).
		Int("active", stats.ActiveUsers).
		Int("on_break", stats.OnBreak).
		Int64("clocked_in_today", count).
		Msg("dashboard stats computed")

	return stats, nil
}
