package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"oc-ticketing/internal/logger"
	"oc-ticketing/internal/models"
)

// Publisher receives the front-end's activity: confirmed purchases and admin
// changes to the fixture list. Delivery is best effort; callers log failures
// and carry on.
type Publisher interface {
	PurchaseConfirmed(ctx context.Context, data models.PurchaseData) error
	MatchChanged(ctx context.Context, action Action, match models.Match) error
	Close() error
}

type Action string

const (
	MatchCreated Action = "created"
	MatchUpdated Action = "updated"
	MatchDeleted Action = "deleted"
)

type Topics struct {
	PurchaseConfirmed string
	MatchCreated      string
	MatchUpdated      string
	MatchDeleted      string
}

func NewTopics(prefix string) Topics {
	return Topics{
		PurchaseConfirmed: prefix + ".purchase.confirmed",
		MatchCreated:      prefix + ".match.created",
		MatchUpdated:      prefix + ".match.updated",
		MatchDeleted:      prefix + ".match.deleted",
	}
}

func (t Topics) All() []string {
	return []string{t.PurchaseConfirmed, t.MatchCreated, t.MatchUpdated, t.MatchDeleted}
}

func (t Topics) forAction(a Action) (string, error) {
	switch a {
	case MatchCreated:
		return t.MatchCreated, nil
	case MatchUpdated:
		return t.MatchUpdated, nil
	case MatchDeleted:
		return t.MatchDeleted, nil
	}
	return "", fmt.Errorf("unknown match action %q", a)
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type PurchaseEvent struct {
	PurchaseID  string    `json:"purchaseId"`
	MatchID     int64     `json:"matchId"`
	SectionID   int64     `json:"sectionId"`
	TicketCodes []string  `json:"ticketCodes"`
	OccurredAt  time.Time `json:"occurredAt"`
}

type MatchEvent struct {
	Action     Action       `json:"action"`
	Match      models.Match `json:"match"`
	OccurredAt time.Time    `json:"occurredAt"`
}

type Producer struct {
	writer messageWriter
	topics Topics
	logger *logger.Logger
	now    func() time.Time
}

// NewProducer writes to any topic; the topic is chosen per message.
func NewProducer(brokers []string, topics Topics, l *logger.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return newProducer(writer, topics, l)
}

func newProducer(w messageWriter, topics Topics, l *logger.Logger) *Producer {
	if l == nil {
		l = logger.Nop()
	}
	return &Producer{writer: w, topics: topics, logger: l, now: time.Now}
}

func (p *Producer) publish(ctx context.Context, topic, key string, payload any) error {
	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", topic, err)
	}
	if err := p.writer.WriteMessages(ctx, kafka.Message{Topic: topic, Key: []byte(key), Value: value}); err != nil {
		p.logger.Error("KAFKA", fmt.Sprintf("Failed to publish to %s: %v", topic, err))
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	p.logger.LogKafka("PUBLISH", topic, key)
	return nil
}

func (p *Producer) PurchaseConfirmed(ctx context.Context, data models.PurchaseData) error {
	if data.Purchase == nil {
		return fmt.Errorf("purchase event without receipt")
	}
	codes := make([]string, 0, len(data.Purchase.Tickets))
	for _, t := range data.Purchase.Tickets {
		codes = append(codes, t.Code)
	}
	return p.publish(ctx, p.topics.PurchaseConfirmed, data.Purchase.PurchaseID, PurchaseEvent{
		PurchaseID:  data.Purchase.PurchaseID,
		MatchID:     data.Match.ID,
		SectionID:   data.Section.ID,
		TicketCodes: codes,
		OccurredAt:  p.now().UTC(),
	})
}

func (p *Producer) MatchChanged(ctx context.Context, action Action, match models.Match) error {
	topic, err := p.topics.forAction(action)
	if err != nil {
		return err
	}
	return p.publish(ctx, topic, strconv.FormatInt(match.ID, 10), MatchEvent{
		Action:     action,
		Match:      match,
		OccurredAt: p.now().UTC(),
	})
}

func (p *Producer) Close() error {
	return p.writer.Close()
}

// Noop is used when Kafka is disabled.
type Noop struct{}

func (Noop) PurchaseConfirmed(context.Context, models.PurchaseData) error { return nil }
func (Noop) MatchChanged(context.Context, Action, models.Match) error    { return nil }
func (Noop) Close() error                                                { return nil }
