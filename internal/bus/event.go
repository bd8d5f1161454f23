package bus

import "time"

// Event kinds published inside the client.
const (
	KindStatusChanged   = "session.status_changed"
	KindConfigAccepted  = "session.config_accepted"
	KindContactSelected = "conversation.contact_selected"
	KindMessageAppended = "message.appended"
	KindDeliveryChanged = "message.delivery_changed"
	KindNotice          = "notify.notice"
	KindReceipt         = "receipt.delivery"
)

// Event is a domain event published on the bus. ID and Timestamp are filled by
// Publish when left empty.
type Event struct {
	ID        string
	Kind      string
	Timestamp time.Time
	Payload   any
}
