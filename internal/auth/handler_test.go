package auth_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/frahmantamala/expense-reimbursement/internal"
	"github.com/frahmantamala/expense-reimbursement/internal/auth"
	"github.com/frahmantamala/expense-reimbursement/pkg/logger"
)

type stubService struct {
	tokens auth.AuthTokens
	err    error
	claims *auth.Claims
	user   *auth.User
}

func (s *stubService) Authenticate(ctx context.Context, dto auth.LoginDTO) (auth.AuthTokens, error) {
	return s.tokens, s.err
}

func (s *stubService) RefreshTokens(ctx context.Context, refreshToken string) (auth.AuthTokens, error) {
	return s.tokens, s.err
}

func (s *stubService) ValidateAccessToken(tokenString string) (*auth.Claims, error) {
	if s.claims == nil {
		return nil, internal.ErrInvalidToken
	}
	return s.claims, nil
}

func (s *stubService) GetActiveUser(ctx context.Context, userID int64) (*auth.User, error) {
	return s.user, nil
}

var _ = ginkgo.Describe("Handler", func() {
	var (
		svc     *stubService
		handler *auth.Handler
	)

	ginkgo.BeforeEach(func() {
		svc = &stubService{}
		handler = auth.NewHandler(svc, logger.Discard())
	})

	ginkgo.Describe("Login", func() {
		ginkgo.It("returns tokens", func() {
			svc.tokens = auth.AuthTokens{AccessToken: "a", RefreshToken: "r", TokenType: "Bearer"}
			body, _ := json.Marshal(auth.LoginDTO{Email: "a@b.co", Password: "pw"})

			rec := httptest.NewRecorder()
			handler.Login(rec, httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body)))

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
			gomega.Expect(rec.Body.String()).To(gomega.ContainSubstring(`"access_token":"a"`))
		})

		ginkgo.It("maps invalid credentials to 401", func() {
			svc.err = internal.ErrInvalidCredentials
			body, _ := json.Marshal(auth.LoginDTO{Email: "a@b.co", Password: "pw"})

			rec := httptest.NewRecorder()
			handler.Login(rec, httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body)))

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
			gomega.Expect(rec.Body.String()).To(gomega.ContainSubstring("INVALID_CREDENTIALS"))
		})

		ginkgo.It("rejects malformed JSON", func() {
			rec := httptest.NewRecorder()
			handler.Login(rec, httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString("{")))

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusBadRequest))
		})
	})

	ginkgo.Describe("AuthMiddleware", func() {
		var reached bool
		var seen internal.Caller

		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reached = true
			seen, _ = internal.CallerFromContext(r.Context())
		})

		ginkgo.BeforeEach(func() {
			reached = false
			seen = internal.Caller{}
		})

		ginkgo.It("requires a bearer token", func() {
			rec := httptest.NewRecorder()
			handler.AuthMiddleware(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
			gomega.Expect(reached).To(gomega.BeFalse())
		})

		ginkgo.It("rejects invalid tokens", func() {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Authorization", "Bearer garbage")
			rec := httptest.NewRecorder()
			handler.AuthMiddleware(next).ServeHTTP(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
			gomega.Expect(reached).To(gomega.BeFalse())
		})

		ginkgo.It("stores the caller in the context", func() {
			svc.claims = &auth.Claims{UserID: 7, Email: "u@example.com"}
			svc.user = &auth.User{ID: 7, Email: "u@example.com"}

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Authorization", "Bearer good")
			rec := httptest.NewRecorder()
			handler.AuthMiddleware(next).ServeHTTP(rec, req)

			gomega.Expect(reached).To(gomega.BeTrue())
			gomega.Expect(seen.ID).To(gomega.BeEquivalentTo(7))
		})
	})
})
