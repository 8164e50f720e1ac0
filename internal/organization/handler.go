package organization

import (
	"context"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/frahmantamala/expense-reimbursement/internal/transport"
)

type ServiceAPI interface {
	Create(ctx context.Context, callerID int64, dto OrganizationDTO) (*Organization, error)
	List(ctx context.Context, callerID int64) ([]*Summary, error)
	Get(ctx context.Context, callerID, orgID int64) (*Detail, error)
	Update(ctx context.Context, callerID, orgID int64, dto OrganizationDTO) (*Organization, error)
	InviteUser(ctx context.Context, callerID, orgID int64, dto InviteUserDTO) (*Member, error)
	ListMembers(ctx context.Context, callerID, orgID int64) ([]*Member, error)
	RemoveMember(ctx context.Context, callerID, orgID, userID int64) error
	UpdateMemberRole(ctx context.Context, callerID, orgID, userID int64, dto UpdateMemberRoleDTO) (*Member, error)
	GetCurrentMembership(ctx context.Context, callerID, orgID int64) (*Member, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

// Routes is mounted under /organizations. Nested resources share the same
// router, so they are registered by the caller next to these.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.ListOrganizations)
	r.Post("/", h.CreateOrganization)
	r.Get("/{orgId}", h.GetOrganization)
	r.Put("/{orgId}", h.UpdateOrganization)
	r.Get("/{orgId}/membership", h.GetCurrentMembership)
	r.Get("/{orgId}/members", h.ListMembers)
	r.Post("/{orgId}/members", h.InviteUser)
	r.Delete("/{orgId}/members/{userId}", h.RemoveMember)
	r.Put("/{orgId}/members/{userId}/role", h.UpdateMemberRole)
}

func (h *Handler) ListOrganizations(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.CallerID(w, r)
	if !ok {
		return
	}

	orgs, err := h.Service.List(r.Context(), callerID)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, OrganizationsResponse{Organizations: orgs})
}

func (h *Handler) CreateOrganization(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.CallerID(w, r)
	if !ok {
		return
	}

	var dto OrganizationDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	org, err := h.Service.Create(r.Context(), callerID, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, org)
}

func (h *Handler) GetOrganization(w http.ResponseWriter, r *http.Request) {
	callerID, orgID, ok := h.orgParams(w, r)
	if !ok {
		return
	}

	detail, err := h.Service.Get(r.Context(), callerID, orgID)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, detail)
}

func (h *Handler) UpdateOrganization(w http.ResponseWriter, r *http.Request) {
	callerID, orgID, ok := h.orgParams(w, r)
	if !ok {
		return
	}

	var dto OrganizationDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	org, err := h.Service.Update(r.Context(), callerID, orgID, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, org)
}

func (h *Handler) GetCurrentMembership(w http.ResponseWriter, r *http.Request) {
	callerID, orgID, ok := h.orgParams(w, r)
	if !ok {
		return
	}

	m, err := h.Service.GetCurrentMembership(r.Context(), callerID, orgID)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, m)
}

func (h *Handler) ListMembers(w http.ResponseWriter, r *http.Request) {
	callerID, orgID, ok := h.orgParams(w, r)
	if !ok {
		return
	}

	members, err := h.Service.ListMembers(r.Context(), callerID, orgID)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, MembersResponse{Members: members})
}

func (h *Handler) InviteUser(w http.ResponseWriter, r *http.Request) {
	callerID, orgID, ok := h.orgParams(w, r)
	if !ok {
		return
	}

	var dto InviteUserDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	m, err := h.Service.InviteUser(r.Context(), callerID, orgID, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, m)
}

func (h *Handler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	callerID, orgID, userID, ok := h.memberParams(w, r)
	if !ok {
		return
	}

	if err := h.Service.RemoveMember(r.Context(), callerID, orgID, userID); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) UpdateMemberRole(w http.ResponseWriter, r *http.Request) {
	callerID, orgID, userID, ok := h.memberParams(w, r)
	if !ok {
		return
	}

	var dto UpdateMemberRoleDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	m, err := h.Service.UpdateMemberRole(r.Context(), callerID, orgID, userID, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, m)
}

func (h *Handler) orgParams(w http.ResponseWriter, r *http.Request) (callerID, orgID int64, ok bool) {
	callerID, ok = h.CallerID(w, r)
	if !ok {
		return 0, 0, false
	}
	orgID, err := h.IDParam(r, "orgId")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return 0, 0, false
	}
	return callerID, orgID, true
}

func (h *Handler) memberParams(w http.ResponseWriter, r *http.Request) (callerID, orgID, userID int64, ok bool) {
	callerID, orgID, ok = h.orgParams(w, r)
	if !ok {
		return 0, 0, 0, false
	}
	userID, err := h.IDParam(r, "userId")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return 0, 0, 0, false
	}
	return callerID, orgID, userID, true
}
