package events

import (
	"context"
	"log/slog"
)

// AuditLog returns a handler that writes one structured line per expense
// event.
func AuditLog(logger *slog.Logger) Handler {
	return func(ctx context.Context, event Event) error {
		attrs := []any{
			"event_id", event.EventID(),
			"event_type", event.EventType(),
			"occurred_at", event.OccurredAt(),
		}
		switch e := event.(type) {
		case *ExpenseSubmittedEvent:
			attrs = append(attrs,
				"expense_id", e.ExpenseID,
				"organization_id", e.OrganizationID,
				"user_id", e.UserID,
				"amount", e.Amount,
				"status", e.Status)
			if e.PolicyID != nil {
				attrs = append(attrs, "policy_id", *e.PolicyID)
			}
		case *ExpenseReviewedEvent:
			attrs = append(attrs,
				"expense_id", e.ExpenseID,
				"organization_id", e.OrganizationID,
				"reviewer_id", e.ReviewerID,
				"status", e.Status)
		default:
			attrs = append(attrs, "payload", event.Payload())
		}
		logger.InfoContext(ctx, "audit", attrs...)
		return nil
	}
}

// SubscribeAudit attaches AuditLog to every expense event type.
func SubscribeAudit(bus *EventBus, logger *slog.Logger) {
	for _, t := range []string{EventTypeExpenseSubmitted, EventTypeExpenseReviewed} {
		bus.Subscribe(t, AuditLog(logger))
	}
}
