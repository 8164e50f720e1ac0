package policy

import "time"

// Policy rows with a NULL user_id apply to the whole organization.
type Policy struct {
	ID             int64     `gorm:"primaryKey"`
	OrganizationID int64     `gorm:"column:organization_id;not null;index:idx_policy_lookup"`
	CategoryID     int64     `gorm:"column:category_id;not null;index:idx_policy_lookup"`
	UserID         *int64    `gorm:"column:user_id;index:idx_policy_lookup"`
	MaxAmount      int64     `gorm:"column:max_amount;not null"`
	Period         string    `gorm:"column:period;not null"`
	AutoApprove    bool      `gorm:"column:auto_approve;not null;default:false"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// Partial unique indexes keep one policy per scope. Both postgres and sqlite
// accept this syntax.
var UniqueScopeIndexes = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_policy_org_wide ON policies (organization_id, category_id) WHERE user_id IS NULL`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_policy_user ON policies (organization_id, category_id, user_id) WHERE user_id IS NOT NULL`,
}
