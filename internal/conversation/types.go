package conversation

import "fmt"

// Contact is a roster entry. Contacts are fixed for the life of a Store.
type Contact struct {
	ID                 string
	Name               string
	LastMessagePreview string
	LastActivityLabel  string
	UnreadCount        int
	Online             bool
	Phone              string
}

// Presence is the one-line presence text shown under the contact name.
func (c Contact) Presence() string {
	if c.Online {
		return "online"
	}
	return "last seen today at 12:30"
}

// Origin tells who authored a message.
type Origin int

const (
	Remote Origin = iota
	Local
)

func (o Origin) String() string {
	if o == Local {
		return "local"
	}
	return "remote"
}

// Delivery is the delivery state of a local message. States only move
// forward: Sent, then Delivered, then Read.
type Delivery int

const (
	Sent Delivery = iota
	Delivered
	Read
)

func (d Delivery) String() string {
	switch d {
	case Sent:
		return "sent"
	case Delivered:
		return "delivered"
	case Read:
		return "read"
	default:
		return fmt.Sprintf("delivery(%d)", int(d))
	}
}

// ParseDelivery parses the String form of a Delivery.
func ParseDelivery(s string) (Delivery, error) {
	switch s {
	case "sent":
		return Sent, nil
	case "delivered":
		return Delivered, nil
	case "read":
		return Read, nil
	}
	return 0, fmt.Errorf("unknown delivery state %q", s)
}

// Message is one entry in a contact's log.
type Message struct {
	ID             string
	Content        string
	CreatedAtLabel string
	Origin         Origin
	Delivery       Delivery
}
