package broker

import (
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

type NATSBroker struct {
	conn *nats.Conn
	log  *zap.Logger
}

type natsSubscription struct {
	sub *nats.Subscription
	ch  chan Message
}

func NewNATSBroker(url string, log *zap.Logger) (*NATSBroker, error) {
	conn, err := nats.Connect(url,
		nats.Name("tasknotes-backend"),
		nats.Timeout(2*time.Second),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn("nats disconnected", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("nats reconnected", zap.String("url", nc.ConnectedUrlRedacted()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats: %w", err)
	}

	log.Info("connected to nats", zap.String("url", conn.ConnectedUrlRedacted()))
	return &NATSBroker{conn: conn, log: log}, nil
}

func (b *NATSBroker) Publish(subject string, data []byte) error {
	if err := b.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("nats publish %s: %w", subject, err)
	}
	return nil
}

func (b *NATSBroker) Subscribe(subject string) (Subscription, error) {
	s := &natsSubscription{ch: make(chan Message, subscriptionBuffer)}

	sub, err := b.conn.Subscribe(subject, func(msg *nats.Msg) {
		select {
		case s.ch <- Message{Subject: msg.Subject, Data: msg.Data}:
		default:
			b.log.Warn("dropping message for slow subscriber", zap.String("subject", msg.Subject))
		}
	})
	if err != nil {
		return nil, fmt.Errorf("nats subscribe %s: %w", subject, err)
	}
	s.sub = sub
	return s, nil
}

// Close drains pending messages before closing the connection.
func (b *NATSBroker) Close() error {
	return b.conn.Drain()
}

func (s *natsSubscription) Messages() <-chan Message {
	return s.ch
}

func (s *natsSubscription) Unsubscribe() error {
	return s.sub.Unsubscribe()
}
