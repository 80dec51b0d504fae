package profile

import "context"

// Repository port for user preferences
type Repository interface {
	Get(ctx context.Context, userID string) (*Profile, error)
	Upsert(ctx context.Context, p *Profile) error
	// ListRetention returns every user the retention sweep applies to:
	// privacy mode enabled and a positive auto-delete window
	ListRetention(ctx context.Context) ([]*Profile, error)
}
