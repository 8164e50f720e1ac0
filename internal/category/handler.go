package category

import (
	"context"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/frahmantamala/expense-reimbursement/internal/transport"
)

type ServiceAPI interface {
	List(ctx context.Context, callerID, orgID int64) ([]CategoryResponse, error)
	Get(ctx context.Context, callerID, orgID, categoryID int64) (*CategoryResponse, error)
	Create(ctx context.Context, callerID, orgID int64, dto CategoryDTO) (*CategoryResponse, error)
	Update(ctx context.Context, callerID, orgID, categoryID int64, dto CategoryDTO) (*CategoryResponse, error)
	Delete(ctx context.Context, callerID, orgID, categoryID int64) error
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

// Routes is mounted under /organizations/{orgId}/categories.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.ListCategories)
	r.Post("/", h.CreateCategory)
	r.Get("/{categoryId}", h.GetCategory)
	r.Put("/{categoryId}", h.UpdateCategory)
	r.Delete("/{categoryId}", h.DeleteCategory)
}

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.CallerID(w, r)
	if !ok {
		return
	}
	orgID, err := h.IDParam(r, "orgId")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	categories, err := h.Service.List(r.Context(), callerID, orgID)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, CategoriesResponse{Categories: categories})
}

func (h *Handler) GetCategory(w http.ResponseWriter, r *http.Request) {
	callerID, orgID, categoryID, ok := h.params(w, r)
	if !ok {
		return
	}

	cat, err := h.Service.Get(r.Context(), callerID, orgID, categoryID)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, cat)
}

func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.CallerID(w, r)
	if !ok {
		return
	}
	orgID, err := h.IDParam(r, "orgId")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var dto CategoryDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	cat, err := h.Service.Create(r.Context(), callerID, orgID, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, cat)
}

func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	callerID, orgID, categoryID, ok := h.params(w, r)
	if !ok {
		return
	}

	var dto CategoryDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	cat, err := h.Service.Update(r.Context(), callerID, orgID, categoryID, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, cat)
}

func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	callerID, orgID, categoryID, ok := h.params(w, r)
	if !ok {
		return
	}

	if err := h.Service.Delete(r.Context(), callerID, orgID, categoryID); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) params(w http.ResponseWriter, r *http.Request) (callerID, orgID, categoryID int64, ok bool) {
	callerID, ok = h.CallerID(w, r)
	if !ok {
		return 0, 0, 0, false
	}
	var err error
	if orgID, err = h.IDParam(r, "orgId"); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return 0, 0, 0, false
	}
	if categoryID, err = h.IDParam(r, "categoryId"); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return 0, 0, 0, false
	}
	return callerID, orgID, categoryID, true
}
