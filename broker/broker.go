package broker

import (
	"go.uber.org/zap"
)

// Message is a single payload delivered on a subject.
type Message struct {
	Subject string
	Data    []byte
}

// Publisher is the write side used by services.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// Subscription delivers messages for one subject until Unsubscribe is called.
// The channel is never closed; readers stop on their own signal.
type Subscription interface {
	Messages() <-chan Message
	Unsubscribe() error
}

type Broker interface {
	Publisher
	Subscribe(subject string) (Subscription, error)
	Close() error
}

// subscriptionBuffer bounds how far a slow subscriber may lag before
// messages for it are dropped.
const subscriptionBuffer = 64

// New returns a NATS broker when url is set and an in-process broker otherwise.
func New(url string, log *zap.Logger) (Broker, error) {
	if url == "" {
		log.Info("NATS_URL not set, using in-memory broker")
		return NewMemoryBroker(log), nil
	}
	return NewNATSBroker(url, log)
}
