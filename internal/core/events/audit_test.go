package events_test

import (
	"bytes"
	"context"
	"log/slog"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/expense-reimbursement/internal/core/events"
	"github.com/frahmantamala/expense-reimbursement/pkg/logger"
)

var _ = Describe("AuditLog", func() {
	var buf *bytes.Buffer

	BeforeEach(func() {
		buf = &bytes.Buffer{}
	})

	audit := func() *slog.Logger {
		return slog.New(slog.NewJSONHandler(buf, nil))
	}

	It("records submissions with the matched policy", func() {
		policyID := int64(7)
		evt := events.NewExpenseSubmittedEvent(1, 2, 3, 5000, "APPROVED", &policyID)

		Expect(events.AuditLog(audit())(context.Background(), evt)).To(Succeed())
		Expect(buf.String()).To(ContainSubstring(`"event_type":"expense.submitted"`))
		Expect(buf.String()).To(ContainSubstring(`"policy_id":7`))
		Expect(buf.String()).To(ContainSubstring(`"amount":5000`))
	})

	It("records reviews", func() {
		evt := events.NewExpenseReviewedEvent(1, 2, 9, "REJECTED")

		Expect(events.AuditLog(audit())(context.Background(), evt)).To(Succeed())
		Expect(buf.String()).To(ContainSubstring(`"reviewer_id":9`))
		Expect(buf.String()).To(ContainSubstring(`"status":"REJECTED"`))
	})

	It("subscribes to both expense events", func() {
		bus := events.NewEventBus(logger.Discard())
		events.SubscribeAudit(bus, audit())

		Expect(bus.Publish(context.Background(), events.NewExpenseReviewedEvent(1, 2, 9, "APPROVED"))).To(Succeed())
		Expect(bus.Publish(context.Background(), events.NewExpenseSubmittedEvent(1, 2, 3, 10, "SUBMITTED", nil))).To(Succeed())
		Expect(bus.Wait(context.Background())).To(Succeed())
		Expect(bytes.Count(buf.Bytes(), []byte(`"msg":"audit"`))).To(Equal(2))
	})
})
