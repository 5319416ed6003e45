package realtime

import (
	"context"
	"encoding/json"

	"caresaviour/utils"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// envelope is the pub/sub message shared between API instances.
type envelope struct {
	Room  string          `json:"room"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// RedisBridge publishes events on a Redis channel so that every instance,
// this one included, delivers them to its own connections.
type RedisBridge struct {
	client  *redis.Client
	channel string
	hub     *Hub
}

func NewRedisBridge(client *redis.Client, channel string, hub *Hub) *RedisBridge {
	return &RedisBridge{client: client, channel: channel, hub: hub}
}

// Emit publishes the event. When Redis is unreachable the event is still
// delivered to local connections.
func (b *RedisBridge) Emit(room, event string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	msg, err := json.Marshal(envelope{Room: room, Event: event, Data: data})
	if err != nil {
		return err
	}

	if err := b.client.Publish(context.Background(), b.channel, string(msg)).Err(); err != nil {
		utils.GetLogger().Warn("realtime: publish failed, delivering locally",
			zap.String("room", room), zap.String("event", event), zap.Error(err))
		return b.hub.Emit(room, event, json.RawMessage(data))
	}
	return nil
}

// Run relays channel messages into the local hub until ctx is cancelled.
func (b *RedisBridge) Run(ctx context.Context) {
	sub := b.client.Subscribe(ctx, b.channel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			b.relay(msg.Payload)
		}
	}
}

func (b *RedisBridge) relay(payload string) {
	var env envelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		utils.GetLogger().Warn("realtime: malformed bridge message", zap.Error(err))
		return
	}
	frame, err := json.Marshal(Frame{Event: env.Event, Data: env.Data})
	if err != nil {
		return
	}
	b.hub.deliver(env.Room, frame)
}
