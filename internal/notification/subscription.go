package notification

import (
	"context"
	"time"
)

// Subscription is one browser push endpoint registered by a user. The
// endpoint URL identifies it.
type Subscription struct {
	UserID    string    `yaml:"user_id"`
	Email     string    `yaml:"email"`
	Endpoint  string    `yaml:"endpoint"`
	P256dhKey string    `yaml:"p256dh_key"`
	AuthKey   string    `yaml:"auth_key"`
	CreatedAt time.Time `yaml:"created_at"`
}

// Repository stores subscriptions by endpoint. Save replaces any previous
// registration of the same endpoint; Get and Delete report NotFound for an
// unknown endpoint.
type Repository interface {
	Save(ctx context.Context, s *Subscription) error
	Get(ctx context.Context, endpoint string) (*Subscription, error)
	List(ctx context.Context) ([]*Subscription, error)
	Delete(ctx context.Context, endpoint string) error
}
