package events

// Topic constants for domain events emitted by the POS.
const (
	TopicOrderCreated    = "order.created"
	TopicOrderVoided     = "order.voided"
	TopicExpenseRecorded = "expense.recorded"
	TopicExpenseDeleted  = "expense.deleted"
	TopicMenuUpdated     = "menu.updated"
)

// DefaultTopics returns the canonical list of topics that support notifications.
func DefaultTopics() []string {
	return []string{
		TopicOrderCreated,
		TopicOrderVoided,
		TopicExpenseRecorded,
		TopicExpenseDeleted,
		TopicMenuUpdated,
	}
}
