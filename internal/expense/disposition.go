package expense

import (
	"fmt"

	"github.com/frahmantamala/expense-reimbursement/internal/policy"
)

const (
	MessageNoPolicy       = "No policy found for this category and user combination. Expense submitted for manual review."
	MessageAutoApproved   = "Expense auto-approved: amount is within the policy limit"
	MessageManualApproval = "Expense is within policy limits but requires manual approval"
)

// Disposition is the status a new expense starts in, and why.
type Disposition struct {
	Status  Status `json:"status"`
	Message string `json:"message"`
}

// AutoDecided reports whether the engine resolved the expense without a
// reviewer.
func (d Disposition) AutoDecided() bool {
	return d.Status != StatusSubmitted
}

// Decide applies p to amount. A nil policy always leaves the expense for
// manual review. Exceeding the limit rejects even when AutoApprove is set,
// and the limit itself is still within policy.
func Decide(p *policy.Policy, amount int64) Disposition {
	switch {
	case p == nil:
		return Disposition{Status: StatusSubmitted, Message: MessageNoPolicy}
	case amount > p.MaxAmount:
		return Disposition{
			Status: StatusRejected,
			Message: fmt.Sprintf("Expense auto-rejected: amount exceeds the %s policy limit of %s",
				p.Period, FormatAmount(p.MaxAmount)),
		}
	case p.AutoApprove:
		return Disposition{Status: StatusApproved, Message: MessageAutoApproved}
	default:
		return Disposition{Status: StatusSubmitted, Message: MessageManualApproval}
	}
}

// FormatAmount renders minor units with two decimals, e.g. 50000 -> "500.00".
func FormatAmount(minor int64) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return fmt.Sprintf("%s%d.%02d", sign, minor/100, minor%100)
}
