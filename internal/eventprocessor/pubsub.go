// Lanolin - Wool Auction Market Analytics
// Copyright 2026 Merino Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/merinolabs/lanolin

package eventprocessor

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// Bus is the in-process pub/sub connecting the collect handler to the
// live-stats aggregator. Analytics is best-effort, so the channel buffers
// and drops under pressure instead of blocking request handling.
type Bus struct {
	channel    *gochannel.GoChannel
	serializer *Serializer
}

// NewBus creates the in-process pub/sub.
func NewBus() *Bus {
	logger := NewLoggerAdapter()
	ch := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: 1024,
	}, logger)
	return &Bus{channel: ch, serializer: NewSerializer()}
}

// PublishAccepted publishes one accepted-beacon envelope. Failures are
// returned for logging but must not fail the collect request; the event
// is already persisted by the time this runs.
func (b *Bus) PublishAccepted(env *BeaconEnvelope) error {
	payload, err := b.serializer.Marshal(env)
	if err != nil {
		return err
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := b.channel.Publish(TopicBeaconsAccepted, msg); err != nil {
		return fmt.Errorf("publish accepted beacon: %w", err)
	}
	return nil
}

// SubscribeAccepted subscribes to the accepted-beacon topic.
func (b *Bus) SubscribeAccepted(ctx context.Context) (<-chan *message.Message, error) {
	return b.channel.Subscribe(ctx, TopicBeaconsAccepted)
}

// Close shuts down the pub/sub and closes all subscriber channels.
func (b *Bus) Close() error {
	return b.channel.Close()
}
