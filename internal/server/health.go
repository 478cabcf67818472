package server

import (
	"context"
)

// HealthService defines behaviour for readiness probes.
type HealthService interface {
	Probe(ctx context.Context) error
}

// Pinger is implemented by every graph store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// StoreHealthService verifies that the active graph store answers.
type StoreHealthService struct {
	Store Pinger
}

// Probe implements the HealthService interface.
func (s StoreHealthService) Probe(ctx context.Context) error {
	if s.Store == nil {
		return nil
	}
	return s.Store.Ping(ctx)
}
