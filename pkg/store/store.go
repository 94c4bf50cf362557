// Package store declares the persistence collaborator for OnboardHub
// entities and provides in-memory and Redis-backed implementations. The
// provisioning layer depends only on the five operations here plus
// simple equality filtering and ordering, never on a storage engine's
// wire protocol.
package store

import (
	"context"
	"time"
)

// EntityType names a stored entity collection.
type EntityType string

const (
	EntityOrganizations          EntityType = "organizations"
	EntityUsers                  EntityType = "users"
	EntityFreelancers            EntityType = "freelancers"
	EntityPlatformConfigs        EntityType = "platform_configs"
	EntityFreelancerPlatformLink EntityType = "freelancer_platform_links"
	EntityAuditLog               EntityType = "audit_log"
)

// Record is one stored entity row.
type Record struct {
	ID        string         `json:"id"`
	Type      EntityType     `json:"type"`
	Data      map[string]any `json:"data"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Filter narrows and orders a List call. A zero Filter returns the full
// collection in creation order.
type Filter struct {
	// Equals keeps records whose Data matches every key-value pair.
	Equals map[string]any

	// OrderBy names a Data field to sort on; empty sorts by creation time.
	OrderBy    string
	Descending bool

	// Limit caps the result size when positive.
	Limit int
}

// Store is the persistence collaborator contract.
type Store interface {
	// Create inserts a record and assigns its id.
	Create(ctx context.Context, entity EntityType, data map[string]any) (*Record, error)

	// Get fetches one record by id.
	Get(ctx context.Context, entity EntityType, id string) (*Record, error)

	// Update merges data into an existing record.
	Update(ctx context.Context, entity EntityType, id string, data map[string]any) (*Record, error)

	// Delete removes one record by id.
	Delete(ctx context.Context, entity EntityType, id string) error

	// List returns records matching the filter.
	List(ctx context.Context, entity EntityType, filter Filter) ([]*Record, error)

	// Close releases storage resources.
	Close() error
}

// matches reports whether a record satisfies the equality filter.
func matches(r *Record, filter Filter) bool {
	for key, want := range filter.Equals {
		if r.Data[key] != want {
			return false
		}
	}
	return true
}
