package interfaces

// EventPublisher delivers ledger notifications to downstream consumers.
// Publishing happens after the financial state has committed; a delivery
// failure never rolls a ledger operation back.
type EventPublisher interface {
	Publish(topic string, event any) error
}
