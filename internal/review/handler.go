package review

import (
	"context"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/frahmantamala/expense-reimbursement/internal/expense"
	"github.com/frahmantamala/expense-reimbursement/internal/transport"
)

type ServiceAPI interface {
	Approve(ctx context.Context, callerID, expenseID int64, comment *string) (*expense.Expense, error)
	Reject(ctx context.Context, callerID, expenseID int64, comment *string) (*expense.Expense, error)
	ListPending(ctx context.Context, callerID, orgID int64) ([]*expense.Expense, error)
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

// ExpenseRoutes is mounted under /expenses.
func (h *Handler) ExpenseRoutes(r chi.Router) {
	r.Post("/{expenseId}/approve", h.ApproveExpense)
	r.Post("/{expenseId}/reject", h.RejectExpense)
}

// OrganizationRoutes is mounted under /organizations/{orgId}/reviews.
func (h *Handler) OrganizationRoutes(r chi.Router) {
	r.Get("/pending", h.ListPending)
}

func (h *Handler) ApproveExpense(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.Service.Approve)
}

func (h *Handler) RejectExpense(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.Service.Reject)
}

type decision func(ctx context.Context, callerID, expenseID int64, comment *string) (*expense.Expense, error)

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, fn decision) {
	callerID, ok := h.CallerID(w, r)
	if !ok {
		return
	}
	expenseID, err := h.IDParam(r, "expenseId")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var dto DecisionDTO
	if err := h.DecodeOptionalJSON(r, &dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if verr := dto.Validate(); verr != nil {
		h.WriteAppError(w, verr)
		return
	}

	updated, err := fn(r.Context(), callerID, expenseID, dto.Comment)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) ListPending(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.CallerID(w, r)
	if !ok {
		return
	}
	orgID, err := h.IDParam(r, "orgId")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	pending, err := h.Service.ListPending(r.Context(), callerID, orgID)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	if pending == nil {
		pending = []*expense.Expense{}
	}
	h.WriteJSON(w, http.StatusOK, PendingResponse{Expenses: pending})
}
