package policy

import (
	"encoding/json"
	"strconv"
)

// Scope says who a policy applies to: everyone in the organization, or one
// user. The zero value is organization-wide. The user flag, not the id,
// decides which.
type Scope struct {
	userID int64
	user   bool
}

func OrgWide() Scope {
	return Scope{}
}

func UserSpecific(userID int64) Scope {
	return Scope{userID: userID, user: true}
}

// ScopeFromUserID decodes the nullable storage column.
func ScopeFromUserID(userID *int64) Scope {
	if userID == nil {
		return OrgWide()
	}
	return UserSpecific(*userID)
}

func (s Scope) IsOrgWide() bool {
	return !s.user
}

func (s Scope) UserID() (int64, bool) {
	return s.userID, s.user
}

// UserIDPtr encodes the scope for storage.
func (s Scope) UserIDPtr() *int64 {
	if s.IsOrgWide() {
		return nil
	}
	id := s.userID
	return &id
}

func (s Scope) String() string {
	if s.IsOrgWide() {
		return "organization"
	}
	return "user:" + strconv.FormatInt(s.userID, 10)
}

func (s Scope) MarshalJSON() ([]byte, error) {
	out := struct {
		Type   string `json:"type"`
		UserID *int64 `json:"user_id,omitempty"`
	}{Type: "ORGANIZATION", UserID: s.UserIDPtr()}
	if !s.IsOrgWide() {
		out.Type = "USER"
	}
	return json.Marshal(out)
}
