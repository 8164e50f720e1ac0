package expense

import (
	"context"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/frahmantamala/expense-reimbursement/internal/transport"
)

type ServiceAPI interface {
	SubmitExpense(ctx context.Context, callerID int64, dto SubmitExpenseDTO) (*SubmitResult, error)
	List(ctx context.Context, callerID, orgID int64, status *Status) ([]*Expense, error)
	Get(ctx context.Context, callerID, expenseID int64) (*Expense, error)
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

// OrganizationRoutes is mounted under /organizations/{orgId}/expenses.
func (h *Handler) OrganizationRoutes(r chi.Router) {
	r.Get("/", h.ListExpenses)
	r.Post("/", h.SubmitExpense)
}

// Routes is mounted under /expenses.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/{expenseId}", h.GetExpense)
}

func (h *Handler) SubmitExpense(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.CallerID(w, r)
	if !ok {
		return
	}
	orgID, err := h.IDParam(r, "orgId")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var dto SubmitExpenseDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	dto.OrganizationID = orgID

	result, err := h.Service.SubmitExpense(r.Context(), callerID, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, result)
}

func (h *Handler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.CallerID(w, r)
	if !ok {
		return
	}
	orgID, err := h.IDParam(r, "orgId")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var status *Status
	if raw := r.URL.Query().Get("status"); raw != "" {
		s := Status(raw)
		status = &s
	}

	expenses, err := h.Service.List(r.Context(), callerID, orgID, status)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	if expenses == nil {
		expenses = []*Expense{}
	}
	h.WriteJSON(w, http.StatusOK, ExpensesResponse{Expenses: expenses})
}

func (h *Handler) GetExpense(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.CallerID(w, r)
	if !ok {
		return
	}
	expenseID, err := h.IDParam(r, "expenseId")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	e, err := h.Service.Get(r.Context(), callerID, expenseID)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, e)
}
