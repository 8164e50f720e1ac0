package category

import "time"

type ExpenseCategory struct {
	ID             int64     `gorm:"primaryKey"`
	OrganizationID int64     `gorm:"column:organization_id;not null;uniqueIndex:idx_category_org_name"`
	Name           string    `gorm:"column:name;not null;uniqueIndex:idx_category_org_name"`
	Description    *string   `gorm:"column:description"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
