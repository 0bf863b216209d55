// Package natsapi exposes the race service via NATS request/reply and
// publishes resolved turns on per-race subjects.
package natsapi

import (
	"context"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/ohler55/ojg/oj"

	"github.com/pitgrid/boostrace-service-go/log"
	"github.com/pitgrid/boostrace-service-go/pkg/service"
)

const requestTimeout = 10 * time.Second

type Option func(*Endpoint)

func WithLogger(l *log.Logger) Option {
	return func(e *Endpoint) { e.log = l }
}

// Endpoint binds the service operations to their subjects. The NATS
// connection is owned by the caller.
type Endpoint struct {
	conn    *nats.Conn
	service *service.RaceService
	log     *log.Logger
	subs    []*nats.Subscription
}

func NewEndpoint(
	conn *nats.Conn,
	svc *service.RaceService,
	opts ...Option,
) *Endpoint {
	ret := &Endpoint{
		conn:    conn,
		service: svc,
		log:     log.Default().Named("natsapi"),
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// Start subscribes all request handlers. Handlers run on the NATS
// delivery goroutine; the service serializes per race internally.
func (e *Endpoint) Start() error {
	handlers := map[string]nats.MsgHandler{
		SubjectRegister:   e.handleRegister,
		SubjectStart:      e.handleStart,
		SubjectSubmit:     e.handleSubmit,
		SubjectForce:      e.handleForce,
		SubjectPhase:      e.handlePhase,
		SubjectBoost:      e.handleBoost,
		SubjectView:       e.handleView,
		SubjectHistory:    e.handleHistory,
		SubjectUnregister: e.handleUnregister,
	}
	for subject, handler := range handlers {
		sub, err := e.conn.Subscribe(subject, handler)
		if err != nil {
			e.Shutdown()
			return err
		}
		e.subs = append(e.subs, sub)
	}
	e.log.Info("endpoint started", log.Int("subjects", len(e.subs)))
	return nil
}

// Shutdown unsubscribes all handlers. In-flight handlers finish.
func (e *Endpoint) Shutdown() {
	for _, sub := range e.subs {
		//nolint:errcheck // connection may already be closed
		sub.Unsubscribe()
	}
	e.subs = nil
}

// PublishTurn broadcasts a resolved turn on the race's turn subject.
func (e *Endpoint) PublishTurn(event service.TurnEvent) error {
	data, err := oj.Marshal(event)
	if err != nil {
		return err
	}
	return e.conn.Publish(SubjectForRaceTurn(event.RaceID), data)
}

func (e *Endpoint) handleRegister(msg *nats.Msg) {
	var req service.RegisterRaceRequest
	e.respond(msg, &req, func(ctx context.Context) (any, error) {
		return e.service.RegisterRace(ctx, &req)
	})
}

type raceIDRequest struct {
	RaceID string `json:"raceId"`
}

func (e *Endpoint) handleStart(msg *nats.Msg) {
	var req raceIDRequest
	e.respond(msg, &req, func(ctx context.Context) (any, error) {
		if err := e.service.StartRace(ctx, req.RaceID); err != nil {
			return nil, err
		}
		return req, nil
	})
}

func (e *Endpoint) handleSubmit(msg *nats.Msg) {
	var req service.SubmitActionRequest
	e.respond(msg, &req, func(ctx context.Context) (any, error) {
		return e.service.SubmitAction(ctx, &req)
	})
}

func (e *Endpoint) handleForce(msg *nats.Msg) {
	var req raceIDRequest
	e.respond(msg, &req, func(ctx context.Context) (any, error) {
		return e.service.ForceResolve(ctx, req.RaceID)
	})
}

func (e *Endpoint) handlePhase(msg *nats.Msg) {
	var req raceIDRequest
	e.respond(msg, &req, func(_ context.Context) (any, error) {
		return e.service.GetTurnPhase(req.RaceID)
	})
}

type playerRequest struct {
	RaceID   string `json:"raceId"`
	PlayerID string `json:"playerId"`
	Radius   int    `json:"radius,omitempty"`
}

func (e *Endpoint) handleBoost(msg *nats.Msg) {
	var req playerRequest
	e.respond(msg, &req, func(_ context.Context) (any, error) {
		return e.service.GetBoostAvailability(req.RaceID, req.PlayerID)
	})
}

func (e *Endpoint) handleView(msg *nats.Msg) {
	var req playerRequest
	e.respond(msg, &req, func(_ context.Context) (any, error) {
		return e.service.GetLocalView(req.RaceID, req.PlayerID, req.Radius)
	})
}

func (e *Endpoint) handleHistory(msg *nats.Msg) {
	var req service.HistoryRequest
	e.respond(msg, &req, func(ctx context.Context) (any, error) {
		return e.service.GetTurnHistory(ctx, &req)
	})
}

func (e *Endpoint) handleUnregister(msg *nats.Msg) {
	var req raceIDRequest
	e.respond(msg, &req, func(ctx context.Context) (any, error) {
		if err := e.service.UnregisterRace(ctx, req.RaceID); err != nil {
			return nil, err
		}
		return req, nil
	})
}

// respond decodes the request into req, runs the operation and replies
// with the uniform envelope.
func (e *Endpoint) respond(
	msg *nats.Msg,
	req any,
	op func(ctx context.Context) (any, error),
) {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	var data any
	err := oj.Unmarshal(msg.Data, req)
	if err == nil {
		data, err = op(ctx)
	}

	var payload []byte
	if err != nil {
		e.log.Debug("request failed",
			log.String("subject", msg.Subject),
			log.ErrorField(err))
		payload, err = encodeError(err)
	} else {
		payload, err = encodeReply(data)
	}
	if err != nil {
		e.log.Error("could not encode reply", log.ErrorField(err))
		return
	}
	if err := msg.Respond(payload); err != nil {
		e.log.Error("could not send reply",
			log.String("subject", msg.Subject),
			log.ErrorField(err))
	}
}
