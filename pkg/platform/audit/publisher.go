// Package audit emits attorney lifecycle events. Emission is fire-and-forget:
// a failing sink is logged and never fails the business operation.
package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/mssola/useragent"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/angeljunes/vg-ms-attorney/pkg/requestcontext"
)

// Publisher accepts audit events.
type Publisher interface {
	Emit(ctx context.Context, event Event)
}

// Enrich fills category, correlation and client metadata from ctx. Fields
// already set on event are kept.
func Enrich(ctx context.Context, event Event) Event {
	if event.Category == "" {
		event.Category = event.Action.Category()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	if event.ActorRole == "" {
		event.ActorRole = requestcontext.CallerRole(ctx)
	}
	if event.ClientIP == "" {
		event.ClientIP = requestcontext.ClientIP(ctx)
	}
	if event.UserAgent == "" {
		event.UserAgent = requestcontext.UserAgent(ctx)
	}
	if event.UserAgent != "" && event.Browser == "" {
		ua := useragent.New(event.UserAgent)
		name, version := ua.Browser()
		event.Browser = strings.TrimSpace(name + " " + version)
		event.OS = ua.OS()
		event.Mobile = ua.Mobile()
	}
	return event
}

// LogPublisher writes each event as a structured log line.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Emit(ctx context.Context, event Event) {
	p.logger.InfoContext(ctx, "audit event",
		"action", string(event.Action),
		"category", string(event.Category),
		"attorney_id", event.AttorneyID,
		"uid", event.UID,
		"request_id", event.RequestID,
		"actor_role", event.ActorRole,
		"client_ip", event.ClientIP,
		"browser", event.Browser,
	)
}

// KafkaPublisher produces each event as JSON, keyed by attorney ID, to the
// client's default topic. Delivery is asynchronous.
type KafkaPublisher struct {
	client *kgo.Client
	logger *slog.Logger
}

func NewKafkaPublisher(client *kgo.Client, logger *slog.Logger) *KafkaPublisher {
	return &KafkaPublisher{client: client, logger: logger}
}

func (p *KafkaPublisher) Emit(ctx context.Context, event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to encode audit event", "error", err, "action", string(event.Action))
		return
	}
	record := &kgo.Record{
		Key:   []byte(event.AttorneyID),
		Value: payload,
		Headers: []kgo.RecordHeader{
			{Key: "category", Value: []byte(event.Category)},
			{Key: "request_id", Value: []byte(event.RequestID)},
		},
	}
	// The request context is about to end; delivery must outlive it.
	p.client.Produce(context.WithoutCancel(ctx), record, func(r *kgo.Record, err error) {
		if err != nil {
			p.logger.Error("failed to publish audit event",
				"error", err,
				"action", string(event.Action),
				"attorney_id", event.AttorneyID,
			)
		}
	})
}

// Fanout emits to every publisher in order.
type Fanout []Publisher

func (f Fanout) Emit(ctx context.Context, event Event) {
	for _, p := range f {
		if p != nil {
			p.Emit(ctx, event)
		}
	}
}
