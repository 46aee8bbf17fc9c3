package reminders

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/aligeramy/somas/internal/engine"
)

const reminderSubject = "reminders.due"

type publisher interface {
	Publish(subject string, data []byte) error
}

// NATSNotifier publishes reminders on the reminders.due subject for a
// downstream delivery worker.
type NATSNotifier struct {
	pub  publisher
	conn *nats.Conn
}

func NewNATSNotifier(natsURL string) (*NATSNotifier, error) {
	nc, err := nats.Connect(natsURL, nats.Name("somas-reminders"))
	if err != nil {
		return nil, err
	}
	return &NATSNotifier{pub: nc, conn: nc}, nil
}

func (n *NATSNotifier) Notify(ctx context.Context, r engine.DueReminder) error {
	payload, err := encode(r)
	if err != nil {
		return err
	}
	if err := n.pub.Publish(reminderSubject, payload); err != nil {
		return fmt.Errorf("publish to NATS: %w", err)
	}
	return nil
}

func (n *NATSNotifier) Close() {
	if n.conn != nil {
		if err := n.conn.Drain(); err != nil {
			n.conn.Close()
		}
	}
}
