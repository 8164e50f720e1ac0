package review_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/expense-reimbursement/internal"
	"github.com/frahmantamala/expense-reimbursement/internal/expense"
	"github.com/frahmantamala/expense-reimbursement/internal/review"
	"github.com/frahmantamala/expense-reimbursement/internal/transport"
	"github.com/frahmantamala/expense-reimbursement/pkg/logger"
)

// recordingService captures the decision it was asked to make.
type recordingService struct {
	calls   int
	comment *string
}

func (s *recordingService) decide(expenseID int64, comment *string, status expense.Status) (*expense.Expense, error) {
	s.calls++
	s.comment = comment
	return &expense.Expense{ID: expenseID, Status: status}, nil
}

func (s *recordingService) Approve(ctx context.Context, callerID, expenseID int64, comment *string) (*expense.Expense, error) {
	return s.decide(expenseID, comment, expense.StatusApproved)
}

func (s *recordingService) Reject(ctx context.Context, callerID, expenseID int64, comment *string) (*expense.Expense, error) {
	return s.decide(expenseID, comment, expense.StatusRejected)
}

func (s *recordingService) ListPending(ctx context.Context, callerID, orgID int64) ([]*expense.Expense, error) {
	return nil, nil
}

var _ = Describe("Review Handler", func() {
	var (
		svc    *recordingService
		router chi.Router
	)

	BeforeEach(func() {
		svc = &recordingService{}
		handler := review.NewHandler(transport.NewBaseHandler(logger.Discard()), svc)
		router = chi.NewRouter()
		router.Route("/expenses", handler.ExpenseRoutes)
	})

	send := func(path string, body io.Reader) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, body)
		req = req.WithContext(internal.ContextWithCaller(req.Context(), internal.Caller{ID: 1}))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	It("approves without a body", func() {
		rec := send("/expenses/5/approve", nil)

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(svc.calls).To(Equal(1))
		Expect(svc.comment).To(BeNil())
	})

	It("approves when an empty body arrives without a length", func() {
		req := httptest.NewRequest(http.MethodPost, "/expenses/5/approve", io.NopCloser(strings.NewReader("")))
		req.Header.Set("Transfer-Encoding", "chunked")
		Expect(req.ContentLength).To(BeEquivalentTo(-1))
		req = req.WithContext(internal.ContextWithCaller(req.Context(), internal.Caller{ID: 1}))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		Expect(rec.Code).To(Equal(http.StatusOK), rec.Body.String())
		Expect(svc.comment).To(BeNil())
	})

	It("passes the comment through on reject", func() {
		rec := send("/expenses/5/reject", strings.NewReader(`{"comment":"missing receipt"}`))

		Expect(rec.Code).To(Equal(http.StatusOK))
		var e expense.Expense
		Expect(json.Unmarshal(rec.Body.Bytes(), &e)).To(Succeed())
		Expect(e.Status).To(Equal(expense.StatusRejected))
		Expect(*svc.comment).To(Equal("missing receipt"))
	})

	It("still rejects malformed bodies", func() {
		rec := send("/expenses/5/approve", strings.NewReader(`{"comment":`))

		Expect(rec.Code).To(Equal(http.StatusBadRequest))
		Expect(svc.calls).To(BeZero())
	})
})
