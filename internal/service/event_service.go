package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/dsbe-portal-api/internal/dto"
	"github.com/noah-isme/dsbe-portal-api/internal/observability"
)

// Admin feed event types.
const (
	EventFormSubmitted         = "form.submitted"
	EventVerificationRequested = "verification.requested"
	EventDatasetImported       = "dataset.imported"
	EventStatusChanged         = "status.changed"
	EventRecordDeleted         = "record.deleted"
	EventFeedConnected         = "feed.connected"
)

const (
	feedBufferSize = 16
	recentEventCap = 512
)

// EventPublisher emits admin feed events.
type EventPublisher interface {
	Publish(ctx context.Context, eventType, entityRef, summary string, data map[string]interface{}) dto.FeedEvent
}

// EventService fans admin events out to live feed subscribers, across
// instances when Redis or NATS is configured. NATS carries the relay when
// both are present; every node must share the same transport settings.
type EventService interface {
	EventPublisher
	Subscribe() (<-chan dto.FeedEvent, func())
	Start(ctx context.Context)
}

type eventService struct {
	redis        *redis.Client
	redisChannel string
	nats         *nats.Conn
	natsSubject  string
	logger       zerolog.Logger
	tracer       trace.Tracer
	sanitizer    *bluemonday.Policy
	broker       *feedBroker
	recent       *recentEvents
	nodeID       string
}

type feedEnvelope struct {
	Source string        `json:"source"`
	Event  dto.FeedEvent `json:"event"`
	SentAt time.Time     `json:"sent_at"`
}

// recentEvents remembers the last delivered event ids so a relayed copy is
// broadcast at most once.
type recentEvents struct {
	mu    sync.Mutex
	seen  map[string]struct{}
	order []string
	limit int
}

type feedBroker struct {
	mu          sync.RWMutex
	subscribers map[chan dto.FeedEvent]struct{}
}

// NewEventService constructs the admin event service. Either transport may be nil.
func NewEventService(redisClient *redis.Client, channel string, natsConn *nats.Conn, logger zerolog.Logger) EventService {
	subject := ""
	if channel != "" {
		subject = strings.ReplaceAll(channel, ":", ".") + ".events"
		channel = channel + ":events"
	}

	return &eventService{
		redis:        redisClient,
		redisChannel: channel,
		nats:         natsConn,
		natsSubject:  subject,
		logger:       logger.With().Str("component", "event_service").Logger(),
		tracer:       otel.Tracer("github.com/noah-isme/dsbe-portal-api/internal/service/events"),
		sanitizer:    bluemonday.StrictPolicy(),
		broker:       &feedBroker{subscribers: make(map[chan dto.FeedEvent]struct{})},
		recent:       newRecentEvents(recentEventCap),
		nodeID:       uuid.NewString(),
	}
}

func (s *eventService) useNATS() bool {
	return s.nats != nil && s.natsSubject != ""
}

func (s *eventService) useRedis() bool {
	return !s.useNATS() && s.redis != nil && s.redisChannel != ""
}

func (s *eventService) Start(ctx context.Context) {
	switch {
	case s.useNATS():
		go s.consumeNATS(ctx)
	case s.useRedis():
		go s.consumeRedis(ctx)
	}
}

func (s *eventService) Publish(ctx context.Context, eventType, entityRef, summary string, data map[string]interface{}) dto.FeedEvent {
	ctx, span := s.tracer.Start(ctx, "events.publish", trace.WithAttributes(
		attribute.String("event.type", eventType),
		attribute.String("event.entity_ref", entityRef),
	))
	defer span.End()

	event := dto.FeedEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		EntityRef: entityRef,
		Summary:   plainText(s.sanitizer, summary),
		Data:      data,
		CreatedAt: time.Now().UTC(),
	}

	s.recent.add(event.ID)
	s.broker.broadcast(event)
	if err := s.publish(ctx, event); err != nil {
		span.RecordError(err)
		s.logger.Warn().Err(err).Str("type", eventType).Msg("failed to publish admin event to broker")
	}

	observability.EventsPublished().WithLabelValues(eventType).Inc()
	return event
}

func (s *eventService) Subscribe() (<-chan dto.FeedEvent, func()) {
	channel := make(chan dto.FeedEvent, feedBufferSize)

	s.broker.subscribe(channel)
	observability.FeedClients().Inc()

	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			s.broker.unsubscribe(channel)
			observability.FeedClients().Dec()
		})
	}

	return channel, cleanup
}

func (s *eventService) publish(ctx context.Context, event dto.FeedEvent) error {
	payload, err := json.Marshal(feedEnvelope{Source: s.nodeID, Event: event, SentAt: time.Now().UTC()})
	if err != nil {
		return err
	}

	switch {
	case s.useNATS():
		return s.nats.Publish(s.natsSubject, payload)
	case s.useRedis():
		return s.redis.Publish(ctx, s.redisChannel, payload).Err()
	}
	return nil
}

func (s *eventService) consumeRedis(ctx context.Context) {
	pubsub := s.redis.Subscribe(ctx, s.redisChannel)
	defer func() { _ = pubsub.Close() }()

	for {
		msg, err := pubsub.ReceiveMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, redis.ErrClosed) {
				return
			}
			s.logger.Error().Err(err).Msg("admin event redis subscription closed")
			return
		}
		s.handleEnvelope([]byte(msg.Payload))
	}
}

func (s *eventService) consumeNATS(ctx context.Context) {
	sub, err := s.nats.Subscribe(s.natsSubject, func(msg *nats.Msg) {
		s.handleEnvelope(msg.Data)
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to subscribe to nats admin subject")
		return
	}

	go func() {
		<-ctx.Done()
		if err := sub.Drain(); err != nil {
			s.logger.Warn().Err(err).Msg("failed to drain admin nats subscription")
		}
	}()
}

func (s *eventService) handleEnvelope(payload []byte) {
	var envelope feedEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		s.logger.Warn().Err(err).Msg("invalid admin event payload")
		return
	}

	if envelope.Source == s.nodeID || !s.recent.add(envelope.Event.ID) {
		return
	}

	s.broker.broadcast(envelope.Event)
}

func newRecentEvents(limit int) *recentEvents {
	return &recentEvents{seen: make(map[string]struct{}, limit), limit: limit}
}

// add records id and reports whether it was new. Empty ids are always new.
func (r *recentEvents) add(id string) bool {
	if id == "" {
		return true
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.seen[id]; ok {
		return false
	}

	r.seen[id] = struct{}{}
	r.order = append(r.order, id)
	if len(r.order) > r.limit {
		delete(r.seen, r.order[0])
		r.order = r.order[1:]
	}
	return true
}

func (b *feedBroker) subscribe(ch chan dto.FeedEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[ch] = struct{}{}
}

func (b *feedBroker) unsubscribe(ch chan dto.FeedEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subscribers[ch]; ok {
		delete(b.subscribers, ch)
		close(ch)
	}
}

// broadcast never blocks; slow subscribers drop events.
func (b *feedBroker) broadcast(event dto.FeedEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for ch := range b.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}

type noopPublisher struct{}

func (noopPublisher) Publish(_ context.Context, eventType, entityRef, summary string, data map[string]interface{}) dto.FeedEvent {
	return dto.FeedEvent{Type: eventType, EntityRef: entityRef, Summary: summary, Data: data}
}

func publisherOrNoop(p EventPublisher) EventPublisher {
	if p == nil {
		return noopPublisher{}
	}
	return p
}
