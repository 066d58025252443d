package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/tpm/backend/internal/domain/shared"
)

// TenantAggregateModel holds the columns every tenant-scoped aggregate
// table carries: identity, timestamps, the optimistic-lock version and
// tenant ownership.
type TenantAggregateModel struct {
	ID        uuid.UUID  `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time  `gorm:"not null"`
	UpdatedAt time.Time  `gorm:"not null"`
	Version   int        `gorm:"not null;default:1"`
	TenantID  uuid.UUID  `gorm:"type:uuid;not null;index"`
	CreatedBy *uuid.UUID `gorm:"type:uuid;index"`
}

// ToDomainRoot rebuilds the embedded aggregate root for domain mapping.
func (m *TenantAggregateModel) ToDomainRoot() shared.TenantAggregateRoot {
	return shared.TenantAggregateRoot{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		TenantID:  m.TenantID,
		CreatedBy: m.CreatedBy,
	}
}

// FromDomainTenantAggregateRoot copies the root columns from the domain side.
func (m *TenantAggregateModel) FromDomainTenantAggregateRoot(r shared.TenantAggregateRoot) {
	m.ID = r.ID
	m.CreatedAt = r.CreatedAt
	m.UpdatedAt = r.UpdatedAt
	m.Version = r.Version
	m.TenantID = r.TenantID
	m.CreatedBy = r.CreatedBy
}
