package category

import (
	"strings"
	"time"

	"github.com/frahmantamala/expense-reimbursement/internal"
	"github.com/frahmantamala/expense-reimbursement/internal/core/common/validation"
)

type CategoryResponse struct {
	ID             int64     `json:"id"`
	OrganizationID int64     `json:"organization_id"`
	Name           string    `json:"name"`
	Description    *string   `json:"description,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type CategoriesResponse struct {
	Categories []CategoryResponse `json:"categories"`
}

// CategoryDTO is used for both create and update; update replaces both fields.
type CategoryDTO struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

func (d *CategoryDTO) Normalize() {
	d.Name = strings.TrimSpace(d.Name)
	if d.Description != nil {
		trimmed := strings.TrimSpace(*d.Description)
		if trimmed == "" {
			d.Description = nil
		} else {
			d.Description = &trimmed
		}
	}
}

func (d CategoryDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("name", d.Name).
		Required().
		MaxLength(100, internal.ErrCodeValidationFailed)
	v.Field("description", d.Description).
		MaxLength(500, internal.ErrCodeInvalidDescription)
	return v.Validate()
}
