package shared

import (
	"github.com/google/uuid"
)

// BaseAggregateRoot adds an optimistic-lock version on top of BaseEntity.
// Repositories compare-and-swap on Version when saving an existing row.
type BaseAggregateRoot struct {
	BaseEntity
	Version int `gorm:"not null;default:1"`
}

// GetVersion returns the current optimistic-lock version
func (a *BaseAggregateRoot) GetVersion() int {
	return a.Version
}

// IncrementVersion bumps the version ahead of a compare-and-swap save
func (a *BaseAggregateRoot) IncrementVersion() {
	a.Version++
}

// TenantAggregateRoot scopes an aggregate to a tenant. Every query that
// touches one of these must filter on TenantID; CreatedBy is optional
// audit metadata.
type TenantAggregateRoot struct {
	BaseAggregateRoot
	TenantID  uuid.UUID  `gorm:"type:uuid;not null;index"`
	CreatedBy *uuid.UUID `gorm:"type:uuid;index"`
}

// NewTenantAggregateRoot builds a version-1 aggregate owned by tenantID
func NewTenantAggregateRoot(tenantID uuid.UUID) TenantAggregateRoot {
	return TenantAggregateRoot{
		BaseAggregateRoot: BaseAggregateRoot{
			BaseEntity: NewBaseEntity(),
			Version:    1,
		},
		TenantID: tenantID,
	}
}

// SetCreatedBy records the user who created the aggregate
func (t *TenantAggregateRoot) SetCreatedBy(userID uuid.UUID) {
	t.CreatedBy = &userID
}

// GetCreatedBy returns the creating user id, nil when unattributed
func (t *TenantAggregateRoot) GetCreatedBy() *uuid.UUID {
	return t.CreatedBy
}
