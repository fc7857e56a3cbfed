package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/gema-notify/internal/dto"
	"github.com/noah-isme/gema-notify/internal/models"
	"github.com/noah-isme/gema-notify/internal/observability"
	"github.com/noah-isme/gema-notify/internal/repository"
)

const inboxBufferSize = 16

// InboxService persists in-app notifications and streams them to live
// recipient sessions via SSE, with redis/NATS bridging between replicas.
type InboxService interface {
	Publish(ctx context.Context, payload dto.InboxPublishRequest) (dto.InboxNotificationResponse, error)
	List(ctx context.Context, recipientID string, limit, offset int) ([]dto.InboxNotificationResponse, error)
	MarkRead(ctx context.Context, id uint, recipientID string) (dto.InboxNotificationResponse, error)
	Unread(ctx context.Context, recipientID string) (int64, error)
	Subscribe(recipientID string) (<-chan dto.InboxNotificationResponse, func())
	Start(ctx context.Context)
}

type inboxService struct {
	repo        repository.InboxRepository
	redis       *redis.Client
	redisStream string
	nats        *nats.Conn
	natsSubject string
	validator   *validator.Validate
	logger      zerolog.Logger
	tracer      trace.Tracer
	sanitizer   *bluemonday.Policy
	broker      *inboxBroker
	nodeID      string
}

type inboxEvent struct {
	Source       string                        `json:"source"`
	Notification dto.InboxNotificationResponse `json:"notification"`
	SentAt       time.Time                     `json:"sent_at"`
}

type inboxBroker struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan dto.InboxNotificationResponse]struct{}
}

// NewInboxService constructs the inbox service.
func NewInboxService(repo repository.InboxRepository, redisClient *redis.Client, channelBase string, natsConn *nats.Conn, validate *validator.Validate, logger zerolog.Logger) InboxService {
	stream := ""
	subject := ""
	if channelBase != "" {
		stream = channelBase + ":inbox"
		subject = strings.ReplaceAll(channelBase, ":", ".") + ".inbox"
	}

	return &inboxService{
		repo:        repo,
		redis:       redisClient,
		redisStream: stream,
		nats:        natsConn,
		natsSubject: subject,
		validator:   validate,
		logger:      logger.With().Str("component", "inbox_service").Logger(),
		tracer:      otel.Tracer("github.com/noah-isme/gema-notify/internal/service/inbox"),
		sanitizer:   bluemonday.StrictPolicy(),
		broker: &inboxBroker{
			subscribers: make(map[string]map[chan dto.InboxNotificationResponse]struct{}),
		},
		nodeID: uuid.NewString(),
	}
}

func (s *inboxService) Start(ctx context.Context) {
	if s.redis != nil && s.redisStream != "" {
		go s.consumeRedis(ctx)
	}
	if s.nats != nil && s.natsSubject != "" {
		go s.consumeNATS(ctx)
	}
}

func (s *inboxService) Publish(ctx context.Context, payload dto.InboxPublishRequest) (dto.InboxNotificationResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.InboxNotificationResponse{}, err
	}

	cleanBody := strings.TrimSpace(s.sanitizer.Sanitize(payload.Body))
	if cleanBody == "" {
		return dto.InboxNotificationResponse{}, errors.New("notification body empty after sanitization")
	}
	cleanTitle := strings.TrimSpace(s.sanitizer.Sanitize(payload.Title))

	spanCtx, span := s.tracer.Start(ctx, "inbox.publish", trace.WithAttributes(
		attribute.String("notification.recipient_id", payload.RecipientID),
		attribute.String("notification.type", payload.Type),
	))
	defer span.End()

	model := models.InboxNotification{
		RecipientID: payload.RecipientID,
		Type:        payload.Type,
		Priority:    payload.Priority,
		Title:       cleanTitle,
		Body:        cleanBody,
		ActionURL:   payload.ActionURL,
	}

	if err := s.repo.Create(spanCtx, &model); err != nil {
		span.RecordError(err)
		return dto.InboxNotificationResponse{}, err
	}

	response := dto.NewInboxNotificationResponse(model)
	s.broker.broadcast(response.RecipientID, response)
	if err := s.publish(spanCtx, response); err != nil {
		s.logger.Warn().Err(err).Msg("failed to publish inbox event to broker")
	}

	return response, nil
}

func (s *inboxService) List(ctx context.Context, recipientID string, limit, offset int) ([]dto.InboxNotificationResponse, error) {
	if strings.TrimSpace(recipientID) == "" {
		return nil, errors.New("recipient id is required")
	}

	notifications, err := s.repo.ListByRecipient(ctx, recipientID, limit, offset)
	if err != nil {
		return nil, err
	}

	return dto.NewInboxNotificationResponseSlice(notifications), nil
}

func (s *inboxService) Unread(ctx context.Context, recipientID string) (int64, error) {
	if strings.TrimSpace(recipientID) == "" {
		return 0, errors.New("recipient id is required")
	}

	return s.repo.CountUnread(ctx, recipientID)
}

func (s *inboxService) MarkRead(ctx context.Context, id uint, recipientID string) (dto.InboxNotificationResponse, error) {
	spanCtx, span := s.tracer.Start(ctx, "inbox.mark_read", trace.WithAttributes(
		attribute.String("notification.recipient_id", recipientID),
	))
	defer span.End()

	notification, err := s.repo.MarkRead(spanCtx, id, recipientID)
	if err != nil {
		span.RecordError(err)
		return dto.InboxNotificationResponse{}, err
	}

	return dto.NewInboxNotificationResponse(notification), nil
}

func (s *inboxService) Subscribe(recipientID string) (<-chan dto.InboxNotificationResponse, func()) {
	channel := make(chan dto.InboxNotificationResponse, inboxBufferSize)

	s.broker.subscribe(recipientID, channel)
	observability.SSEClientsActive().Inc()

	cleanup := func() {
		s.broker.unsubscribe(recipientID, channel)
		observability.SSEClientsActive().Dec()
	}

	return channel, cleanup
}

func (s *inboxService) publish(ctx context.Context, notification dto.InboxNotificationResponse) error {
	event := inboxEvent{
		Source:       s.nodeID,
		Notification: notification,
		SentAt:       time.Now().UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if s.redis != nil && s.redisStream != "" {
		if err := s.redis.Publish(ctx, s.redisStream, payload).Err(); err != nil {
			return err
		}
	}

	if s.nats != nil && s.natsSubject != "" {
		if err := s.nats.Publish(s.natsSubject, payload); err != nil {
			return err
		}
	}

	return nil
}

func (s *inboxService) consumeRedis(ctx context.Context) {
	pubsub := s.redis.Subscribe(ctx, s.redisStream)
	defer func() { _ = pubsub.Close() }()

	for {
		msg, err := pubsub.ReceiveMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			s.logger.Error().Err(err).Msg("inbox redis subscription closed")
			return
		}
		s.handleEvent([]byte(msg.Payload))
	}
}

func (s *inboxService) consumeNATS(ctx context.Context) {
	sub, err := s.nats.QueueSubscribe(s.natsSubject, "gema-notify-inbox", func(msg *nats.Msg) {
		s.handleEvent(msg.Data)
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to subscribe to nats inbox subject")
		return
	}

	go func() {
		<-ctx.Done()
		if err := sub.Drain(); err != nil {
			s.logger.Warn().Err(err).Msg("failed to drain inbox nats subscription")
		}
	}()
}

func (s *inboxService) handleEvent(payload []byte) {
	var event inboxEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		s.logger.Warn().Err(err).Msg("invalid inbox event payload")
		return
	}

	if event.Source == s.nodeID {
		return
	}

	s.broker.broadcast(event.Notification.RecipientID, event.Notification)
}

func (b *inboxBroker) subscribe(recipientID string, ch chan dto.InboxNotificationResponse) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.subscribers[recipientID]; !exists {
		b.subscribers[recipientID] = make(map[chan dto.InboxNotificationResponse]struct{})
	}
	b.subscribers[recipientID][ch] = struct{}{}
}

func (b *inboxBroker) unsubscribe(recipientID string, ch chan dto.InboxNotificationResponse) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if subscribers, ok := b.subscribers[recipientID]; ok {
		delete(subscribers, ch)
		close(ch)
		if len(subscribers) == 0 {
			delete(b.subscribers, recipientID)
		}
	}
}

func (b *inboxBroker) broadcast(recipientID string, notification dto.InboxNotificationResponse) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	subscribers := b.subscribers[recipientID]
	for ch := range subscribers {
		select {
		case ch <- notification:
		default:
		}
	}
}
