package policy

import (
	"context"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/frahmantamala/expense-reimbursement/internal/transport"
)

type ServiceAPI interface {
	List(ctx context.Context, callerID, orgID int64) ([]*Policy, error)
	Get(ctx context.Context, callerID, policyID int64) (*Policy, error)
	Create(ctx context.Context, callerID, orgID int64, dto CreatePolicyDTO) (*Policy, error)
	Update(ctx context.Context, callerID, policyID int64, dto UpdatePolicyDTO) (*Policy, error)
	Delete(ctx context.Context, callerID, policyID int64) error
	ResolvePolicy(ctx context.Context, callerID, orgID, userID, categoryID int64) (*Policy, error)
	DebugPolicy(ctx context.Context, callerID, orgID, userID, categoryID int64) (*Debug, error)
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

// OrganizationRoutes is mounted under /organizations/{orgId}/policies.
func (h *Handler) OrganizationRoutes(r chi.Router) {
	r.Get("/", h.ListPolicies)
	r.Post("/", h.CreatePolicy)
	r.Get("/resolve", h.ResolvePolicy)
	r.Get("/debug", h.DebugPolicy)
}

// Routes is mounted under /policies.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/{policyId}", h.GetPolicy)
	r.Put("/{policyId}", h.UpdatePolicy)
	r.Delete("/{policyId}", h.DeletePolicy)
}

func (h *Handler) ListPolicies(w http.ResponseWriter, r *http.Request) {
	callerID, orgID, ok := h.orgParams(w, r)
	if !ok {
		return
	}

	policies, err := h.Service.List(r.Context(), callerID, orgID)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, PoliciesResponse{Policies: policies})
}

func (h *Handler) CreatePolicy(w http.ResponseWriter, r *http.Request) {
	callerID, orgID, ok := h.orgParams(w, r)
	if !ok {
		return
	}

	var dto CreatePolicyDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	p, err := h.Service.Create(r.Context(), callerID, orgID, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, p)
}

func (h *Handler) GetPolicy(w http.ResponseWriter, r *http.Request) {
	callerID, policyID, ok := h.policyParams(w, r)
	if !ok {
		return
	}

	p, err := h.Service.Get(r.Context(), callerID, policyID)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) UpdatePolicy(w http.ResponseWriter, r *http.Request) {
	callerID, policyID, ok := h.policyParams(w, r)
	if !ok {
		return
	}

	var dto UpdatePolicyDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	p, err := h.Service.Update(r.Context(), callerID, policyID, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) DeletePolicy(w http.ResponseWriter, r *http.Request) {
	callerID, policyID, ok := h.policyParams(w, r)
	if !ok {
		return
	}

	if err := h.Service.Delete(r.Context(), callerID, policyID); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ResolvePolicy(w http.ResponseWriter, r *http.Request) {
	callerID, orgID, userID, categoryID, ok := h.resolveParams(w, r)
	if !ok {
		return
	}

	p, err := h.Service.ResolvePolicy(r.Context(), callerID, orgID, userID, categoryID)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) DebugPolicy(w http.ResponseWriter, r *http.Request) {
	callerID, orgID, userID, categoryID, ok := h.resolveParams(w, r)
	if !ok {
		return
	}

	d, err := h.Service.DebugPolicy(r.Context(), callerID, orgID, userID, categoryID)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, d)
}

func (h *Handler) orgParams(w http.ResponseWriter, r *http.Request) (int64, int64, bool) {
	callerID, ok := h.CallerID(w, r)
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

func (h *Handler) policyParams(w http.ResponseWriter, r *http.Request) (int64, int64, bool) {
	callerID, ok := h.CallerID(w, r)
	if !ok {
		return 0, 0, false
	}
	policyID, err := h.IDParam(r, "policyId")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return 0, 0, false
	}
	return callerID, policyID, true
}

func (h *Handler) resolveParams(w http.ResponseWriter, r *http.Request) (callerID, orgID, userID, categoryID int64, ok bool) {
	callerID, orgID, ok = h.orgParams(w, r)
	if !ok {
		return
	}
	var err error
	if userID, err = h.QueryID(r, "user_id"); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return 0, 0, 0, 0, false
	}
	if categoryID, err = h.QueryID(r, "category_id"); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return 0, 0, 0, 0, false
	}
	return callerID, orgID, userID, categoryID, true
}
