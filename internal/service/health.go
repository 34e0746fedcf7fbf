package service

import (
	"context"
	"fmt"
)

// Pinger is anything whose reachability can be checked
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthService checks the store and, when configured, the archive database
type HealthService struct {
	store    Pinger
	database Pinger
}

// NewHealthService creates a health checker; database may be nil
func NewHealthService(store Pinger, database Pinger) *HealthService {
	return &HealthService{store: store, database: database}
}

// Check returns the first dependency failure
func (s *HealthService) Check(ctx context.Context) error {
	if err := s.store.Ping(ctx); err != nil {
		return fmt.Errorf("store health check failed: %w", err)
	}

	if s.database != nil {
		if err := s.database.Ping(ctx); err != nil {
			return fmt.Errorf("database health check failed: %w", err)
		}
	}

	return nil
}
