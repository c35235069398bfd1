package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/openmagecz/roivenue-export/internal/dal/rabbitmq"
	"github.com/openmagecz/roivenue-export/internal/service/models/feedevent"
	"github.com/spf13/viper"
	"github.com/streadway/amqp"
)

// FeedNotifier publishes feed-exported events to RabbitMQ.
type FeedNotifier struct {
	client *rabbitmq.Client
	queue  amqp.Queue
}

func NewFeedNotifier(client *rabbitmq.Client) *FeedNotifier {
	queueName := viper.GetString("notify.queue")
	if queueName == "" {
		queueName = "roivenue.feed.exported"
	}

	queue, err := client.DeclareQueue(rabbitmq.DeclareQueueConfig{
		Name:       queueName,
		Durable:    true,
		Exclusive:  false,
		AutoDelete: false,
	})
	if err != nil {
		panic(err)
	}

	return &FeedNotifier{
		client: client,
		queue:  queue,
	}
}

// Publish sends one event describing the exported feed.
func (n *FeedNotifier) Publish(ctx context.Context, event feedevent.Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal feed event: %w", err)
	}

	err = n.client.Channel().Publish(
		"",
		n.queue.Name,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish feed event: %w", err)
	}

	return nil
}
