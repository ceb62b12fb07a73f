// Package statistics aggregates user and greeting counts.
package statistics

import (
	"context"
	"fmt"

	"webeng-hq/hello/pkg/storage"
)

// TopN is the number of most greeted users reported.
const TopN = 3

// NameCount is a username with the number of times it was greeted.
type NameCount struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// Statistics is a snapshot of application usage.
type Statistics struct {
	TotalUsers     int64       `json:"totalUsers"`
	TotalGreetings int64       `json:"totalGreetings"`
	TopNames       []NameCount `json:"top3Names"`
}

// Service computes statistics from a store.
type Service struct {
	store storage.Store
}

// NewService creates a Service.
func NewService(store storage.Store) *Service {
	return &Service{store: store}
}

// Get returns the totals and the TopN most greeted registered users.
func (s *Service) Get(ctx context.Context) (*Statistics, error) {
	users, err := s.store.CountUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	greetings, err := s.store.CountGreetings(ctx)
	if err != nil {
		return nil, fmt.Errorf("count greetings: %w", err)
	}
	top, err := s.store.TopGreeted(ctx, TopN)
	if err != nil {
		return nil, fmt.Errorf("top greeted: %w", err)
	}

	stats := &Statistics{
		TotalUsers:     users,
		TotalGreetings: greetings,
		TopNames:       make([]NameCount, 0, len(top)),
	}
	for _, uc := range top {
		stats.TopNames = append(stats.TopNames, NameCount{Name: uc.Username, Count: uc.Count})
	}
	return stats, nil
}
