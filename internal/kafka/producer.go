package kafka

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"park-portal/internal/config"
	"park-portal/internal/models"
)

// Producer streams ticket lifecycle events. One writer serves all topics;
// the topic is set per message.
type Producer struct {
	Writer *kafka.Writer
	Topics config.TopicConfig
}

func NewProducer(brokers []string, topics config.TopicConfig) *Producer {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Balancer: &kafka.LeastBytes{},
	}
	return &Producer{Writer: writer, Topics: topics}
}

func (p *Producer) publish(topic string, ticket models.Ticket) error {
	event := models.NewTicketEvent(ticket)
	value, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return p.Writer.WriteMessages(context.Background(),
		kafka.Message{
			Topic: topic,
			Key:   []byte(ticket.ID),
			Value: value,
		},
	)
}

// PublishTicketOrdered streams a draft creation event.
func (p *Producer) PublishTicketOrdered(ticket models.Ticket) error {
	return p.publish(p.Topics.TicketOrdered, ticket)
}

// PublishTicketPurchased streams a purchase finalization event.
func (p *Producer) PublishTicketPurchased(ticket models.Ticket) error {
	return p.publish(p.Topics.TicketPurchased, ticket)
}

// PublishTicketAmended streams a reservation change event.
func (p *Producer) PublishTicketAmended(ticket models.Ticket) error {
	return p.publish(p.Topics.TicketAmended, ticket)
}

func (p *Producer) Close() error {
	return p.Writer.Close()
}
