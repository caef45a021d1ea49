package broker

import (
	"sync"

	"go.uber.org/zap"
)

// MemoryBroker fans messages out to subscribers of the same process.
type MemoryBroker struct {
	mu     sync.RWMutex
	subs   map[string]map[*memorySubscription]struct{}
	closed bool
	log    *zap.Logger
}

type memorySubscription struct {
	broker  *MemoryBroker
	subject string
	ch      chan Message
}

func NewMemoryBroker(log *zap.Logger) *MemoryBroker {
	return &MemoryBroker{
		subs: make(map[string]map[*memorySubscription]struct{}),
		log:  log,
	}
}

func (b *MemoryBroker) Publish(subject string, data []byte) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return ErrBrokerClosed
	}

	for sub := range b.subs[subject] {
		select {
		case sub.ch <- Message{Subject: subject, Data: data}:
		default:
			b.log.Warn("dropping message for slow subscriber", zap.String("subject", subject))
		}
	}
	return nil
}

func (b *MemoryBroker) Subscribe(subject string) (Subscription, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, ErrBrokerClosed
	}

	sub := &memorySubscription{
		broker:  b,
		subject: subject,
		ch:      make(chan Message, subscriptionBuffer),
	}
	if b.subs[subject] == nil {
		b.subs[subject] = make(map[*memorySubscription]struct{})
	}
	b.subs[subject][sub] = struct{}{}
	return sub, nil
}

func (b *MemoryBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	b.subs = make(map[string]map[*memorySubscription]struct{})
	return nil
}

func (s *memorySubscription) Messages() <-chan Message {
	return s.ch
}

func (s *memorySubscription) Unsubscribe() error {
	s.broker.mu.Lock()
	defer s.broker.mu.Unlock()

	if subs, ok := s.broker.subs[s.subject]; ok {
		delete(subs, s)
		if len(subs) == 0 {
			delete(s.broker.subs, s.subject)
		}
	}
	return nil
}
