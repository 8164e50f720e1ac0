package organization

import "time"

type Organization struct {
	ID        int64     `gorm:"primaryKey"`
	Name      string    `gorm:"column:name;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

type Membership struct {
	ID             int64     `gorm:"primaryKey"`
	OrganizationID int64     `gorm:"column:organization_id;not null;uniqueIndex:idx_membership_org_user"`
	UserID         int64     `gorm:"column:user_id;not null;uniqueIndex:idx_membership_org_user"`
	Role           string    `gorm:"column:role;not null;default:MEMBER"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
}
