package ports

//go:generate mockgen -source=health.go -destination=mocks/health.go -package=mocks

import "context"

// HealthChecker is one backend reported by GET /health.
type HealthChecker interface {
	Ping(ctx context.Context) error
	Name() string
}
