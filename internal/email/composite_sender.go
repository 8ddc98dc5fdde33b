package email

import (
	"context"
	"fmt"
	"strings"
)

// CompositeEmailSender implements the Sender interface and delegates sending to multiple Senders.
type CompositeEmailSender struct {
	senders []Sender
}

// NewCompositeEmailSender creates a new CompositeEmailSender.
func NewCompositeEmailSender(senders ...Sender) *CompositeEmailSender {
	cs := &CompositeEmailSender{}
	for _, s := range senders {
		cs.AddSender(s)
	}
	return cs
}

// AddSender adds a sender to the composite sender's list.
func (cs *CompositeEmailSender) AddSender(sender Sender) {
	if sender != nil {
		cs.senders = append(cs.senders, sender)
	}
}

// Len reports the number of registered senders.
func (cs *CompositeEmailSender) Len() int {
	return len(cs.senders)
}

// Send calls every registered sender. The returned id is the first one
// reported by a sender, in registration order.
func (cs *CompositeEmailSender) Send(ctx context.Context, msg *Message) (string, error) {
	if len(cs.senders) == 0 {
		return "", fmt.Errorf("no senders configured in CompositeEmailSender")
	}

	var id string
	var allErrors []string
	for _, sender := range cs.senders {
		sentID, err := sender.Send(ctx, msg)
		if err != nil {
			allErrors = append(allErrors, err.Error())
			continue
		}
		if id == "" {
			id = sentID
		}
	}

	if len(allErrors) > 0 {
		return id, fmt.Errorf("composite email send failed: [ %s ]", strings.Join(allErrors, "; "))
	}
	return id, nil
}
