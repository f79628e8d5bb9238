package rabbitmq

import "context"

type PublisherInterface interface {
	Publish(ctx context.Context, routingKey string, data any) error
}

var _ PublisherInterface = (*Publisher)(nil)
var _ PublisherInterface = NopPublisher{}

// NopPublisher stands in when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, routingKey string, data any) error {
	return nil
}
