// Package roles persists Role Records: one small document per user, keyed by
// the identity platform uid, holding the user's role string.
//
// Every backend honours the same contract. Get reports common.ErrorNotFound
// for a missing record. Create is an idempotent create-if-absent: when a
// record already exists it is left untouched and created is false, so the
// lazy path (first session observation) and the eager path (signup) can race
// without either assuming it won.
package roles

import (
	"context"
	"strings"
	"time"
)

// DefaultRole is assigned to every new record and substituted for an empty one.
const DefaultRole = "member"

// AdminRole is the only other role the CLI knows by name.
const AdminRole = "admin"

// Record is the durable per-user role document.
type Record struct {
	ID        string    `json:"id" firestore:"id"`
	Email     string    `json:"email" firestore:"email"`
	Role      string    `json:"role" firestore:"role"`
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" firestore:"updatedAt"`
}

// NewRecord builds the record written for a user seen for the first time.
// Both creation paths must use it so they agree on shape and default role.
func NewRecord(id, email string) *Record {
	now := time.Now().UTC()
	return &Record{
		ID:        id,
		Email:     email,
		Role:      DefaultRole,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ResolveRole returns the record's role, or DefaultRole when the record is
// nil or its role is empty.
func ResolveRole(r *Record) string {
	if r == nil {
		return DefaultRole
	}
	role := strings.TrimSpace(r.Role)
	if role == "" {
		return DefaultRole
	}
	return role
}

type Repository interface {
	Get(ctx context.Context, id string) (*Record, error)
	Create(ctx context.Context, r *Record) (created bool, err error)
	Set(ctx context.Context, r *Record) error
	Close() error
}
