package auth_test

import (
	"context"
	"errors"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/frahmantamala/expense-reimbursement/internal"
	"github.com/frahmantamala/expense-reimbursement/internal/auth"
	"github.com/frahmantamala/expense-reimbursement/internal/auth/mocks"
	"github.com/frahmantamala/expense-reimbursement/pkg/logger"
)

var _ = ginkgo.Describe("Guard", func() {
	var (
		ctx    context.Context
		ctrl   *gomock.Controller
		reader *mocks.MockMembershipReader
		guard  *auth.Guard
	)

	ginkgo.BeforeEach(func() {
		ctx = context.Background()
		ctrl = gomock.NewController(ginkgo.GinkgoT())
		reader = mocks.NewMockMembershipReader(ctrl)
		guard = auth.NewGuard(reader, logger.Discard())
	})

	ginkgo.Describe("RequireMember", func() {
		ginkgo.It("returns the caller's role", func() {
			reader.EXPECT().GetRole(gomock.Any(), int64(10), int64(1)).Return(auth.RoleMember, nil)

			role, err := guard.RequireMember(ctx, 10, 1)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(role).To(gomega.Equal(auth.RoleMember))
		})

		ginkgo.It("forbids outsiders", func() {
			reader.EXPECT().GetRole(gomock.Any(), int64(10), int64(99)).Return(auth.Role(""), nil)

			_, err := guard.RequireMember(ctx, 10, 99)
			appErr, ok := internal.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Type).To(gomega.Equal(internal.ErrorTypeForbidden))
			gomega.Expect(appErr.Message).To(gomega.Equal("You are not a member of this organization"))
		})

		ginkgo.It("turns lookup failures into internal errors", func() {
			reader.EXPECT().GetRole(gomock.Any(), gomock.Any(), gomock.Any()).Return(auth.Role(""), errors.New("db down"))

			_, err := guard.RequireMember(ctx, 10, 1)
			appErr, ok := internal.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Type).To(gomega.Equal(internal.ErrorTypeInternal))
		})
	})

	ginkgo.Describe("RequireAdmin", func() {
		ginkgo.It("lets admins through", func() {
			reader.EXPECT().GetRole(gomock.Any(), int64(10), int64(2)).Return(auth.RoleAdmin, nil)

			gomega.Expect(guard.RequireAdmin(ctx, 10, 2, "Only admins can approve expenses")).To(gomega.Succeed())
		})

		ginkgo.DescribeTable("denies everyone else with the supplied message",
			func(role auth.Role) {
				reader.EXPECT().GetRole(gomock.Any(), int64(10), int64(1)).Return(role, nil)

				err := guard.RequireAdmin(ctx, 10, 1, "Only admins can approve expenses")
				appErr, ok := internal.IsAppError(err)
				gomega.Expect(ok).To(gomega.BeTrue())
				gomega.Expect(appErr.Type).To(gomega.Equal(internal.ErrorTypeForbidden))
				gomega.Expect(appErr.Message).To(gomega.Equal("Only admins can approve expenses"))
			},
			ginkgo.Entry("member", auth.RoleMember),
			ginkgo.Entry("non-member", auth.Role("")),
		)
	})
})
