package expense_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/expense-reimbursement/internal/expense"
	"github.com/frahmantamala/expense-reimbursement/internal/policy"
)

var _ = Describe("Decide", func() {
	limit := func(max int64, autoApprove bool) *policy.Policy {
		return &policy.Policy{ID: 1, MaxAmount: max, Period: policy.PeriodMonthly, AutoApprove: autoApprove}
	}

	DescribeTable("status",
		func(p *policy.Policy, amount int64, want expense.Status) {
			Expect(expense.Decide(p, amount).Status).To(Equal(want))
		},
		Entry("no policy", nil, int64(5000), expense.StatusSubmitted),
		Entry("no policy, large amount", nil, int64(1_000_000_000), expense.StatusSubmitted),
		Entry("auto-approve below the limit", limit(50000, true), int64(10000), expense.StatusApproved),
		Entry("auto-approve at the limit", limit(50000, true), int64(50000), expense.StatusApproved),
		Entry("auto-approve one unit over", limit(50000, true), int64(50001), expense.StatusRejected),
		Entry("manual below the limit", limit(50000, false), int64(10000), expense.StatusSubmitted),
		Entry("manual at the limit", limit(50000, false), int64(50000), expense.StatusSubmitted),
		Entry("manual over the limit", limit(50000, false), int64(50001), expense.StatusRejected),
	)

	It("explains a missing policy", func() {
		d := expense.Decide(nil, 5000)
		Expect(d.Message).To(ContainSubstring("No policy found"))
		Expect(d.AutoDecided()).To(BeFalse())
	})

	It("references the limit and period when rejecting", func() {
		p := limit(50000, true)
		p.Period = policy.PeriodYearly

		d := expense.Decide(p, 50001)
		Expect(d.Message).To(Equal("Expense auto-rejected: amount exceeds the YEARLY policy limit of 500.00"))
		Expect(d.AutoDecided()).To(BeTrue())
	})

	It("flags manual approval within limits", func() {
		d := expense.Decide(limit(50000, false), 100)
		Expect(d.Message).To(Equal(expense.MessageManualApproval))
	})

	DescribeTable("FormatAmount",
		func(minor int64, want string) {
			Expect(expense.FormatAmount(minor)).To(Equal(want))
		},
		Entry(nil, int64(0), "0.00"),
		Entry(nil, int64(5), "0.05"),
		Entry(nil, int64(50001), "500.01"),
		Entry(nil, int64(-250), "-2.50"),
	)
})
