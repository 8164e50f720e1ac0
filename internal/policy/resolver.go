package policy

import (
	"context"
	"fmt"

	"github.com/frahmantamala/expense-reimbursement/internal"
)

// Lookup finds the policy for exactly one scope. It returns nil, nil when
// there is none; if several rows match, the lowest id wins.
type Lookup interface {
	FindByScope(ctx context.Context, orgID, categoryID int64, scope Scope) (*Policy, error)
}

var ErrPolicyNotFound = internal.NewNotFoundError("No policy found for this user and category", internal.ErrCodeNoPolicy)

const (
	ReasonUserSpecific = "User-specific policy takes precedence over organization-wide policy"
	ReasonOrgWide      = "No user-specific policy found, using organization-wide policy"
	ReasonNone         = "No policy found for this user and category combination"
)

// Debug explains a resolution: both candidates plus the one that won.
type Debug struct {
	UserSpecificPolicy *Policy `json:"user_specific_policy"`
	OrganizationPolicy *Policy `json:"organization_policy"`
	SelectedPolicy     *Policy `json:"selected_policy"`
	Reason             string  `json:"reason"`
}

// Resolver picks the effective policy for (organization, user, category).
// A user-specific policy always beats the organization-wide one.
type Resolver struct {
	lookup Lookup
}

func NewResolver(lookup Lookup) *Resolver {
	return &Resolver{lookup: lookup}
}

func (r *Resolver) Resolve(ctx context.Context, orgID, userID, categoryID int64) (*Policy, error) {
	p, err := r.lookup.FindByScope(ctx, orgID, categoryID, UserSpecific(userID))
	if err != nil {
		return nil, fmt.Errorf("find user policy: %w", err)
	}
	if p != nil {
		return p, nil
	}

	p, err = r.lookup.FindByScope(ctx, orgID, categoryID, OrgWide())
	if err != nil {
		return nil, fmt.Errorf("find organization policy: %w", err)
	}
	if p != nil {
		return p, nil
	}

	return nil, ErrPolicyNotFound
}

func (r *Resolver) Debug(ctx context.Context, orgID, userID, categoryID int64) (*Debug, error) {
	userPolicy, err := r.lookup.FindByScope(ctx, orgID, categoryID, UserSpecific(userID))
	if err != nil {
		return nil, fmt.Errorf("find user policy: %w", err)
	}
	orgPolicy, err := r.lookup.FindByScope(ctx, orgID, categoryID, OrgWide())
	if err != nil {
		return nil, fmt.Errorf("find organization policy: %w", err)
	}

	d := &Debug{UserSpecificPolicy: userPolicy, OrganizationPolicy: orgPolicy}
	switch {
	case userPolicy != nil:
		d.SelectedPolicy, d.Reason = userPolicy, ReasonUserSpecific
	case orgPolicy != nil:
		d.SelectedPolicy, d.Reason = orgPolicy, ReasonOrgWide
	default:
		d.Reason = ReasonNone
	}
	return d, nil
}
