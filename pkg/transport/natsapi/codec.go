package natsapi

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/ohler55/ojg/oj"

	"github.com/pitgrid/boostrace-service-go/pkg/model"
	"github.com/pitgrid/boostrace-service-go/pkg/processing/turn"
	"github.com/pitgrid/boostrace-service-go/pkg/service"
)

// ErrorKind classifies failures for clients without exposing Go error
// chains over the wire.
type ErrorKind string

const (
	KindNotFound           ErrorKind = "notFound"
	KindInvalidArgument    ErrorKind = "invalidArgument"
	KindFailedPrecondition ErrorKind = "failedPrecondition"
	KindConflict           ErrorKind = "conflict"
	KindInternal           ErrorKind = "internal"
)

type wireError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

// envelope is the uniform reply shape: exactly one of Data or Error is
// set.
type envelope struct {
	Data  any        `json:"data,omitempty"`
	Error *wireError `json:"error,omitempty"`
}

func encodeReply(data any) ([]byte, error) {
	return oj.Marshal(envelope{Data: data})
}

func encodeError(err error) ([]byte, error) {
	return oj.Marshal(envelope{Error: &wireError{
		Kind:    classify(err),
		Message: err.Error(),
	}})
}

//nolint:cyclop // plain mapping table
func classify(err error) ErrorKind {
	switch {
	case errors.Is(err, service.ErrRaceNotFound),
		errors.Is(err, service.ErrUnknownPlayer),
		errors.Is(err, pgx.ErrNoRows):
		return KindNotFound
	case errors.Is(err, service.ErrInvalidRaceID),
		errors.Is(err, service.ErrNoEntries),
		errors.Is(err, service.ErrDuplicateEntry),
		errors.Is(err, service.ErrInvalidLapCount),
		errors.Is(err, model.ErrInvalidBoost),
		errors.Is(err, model.ErrTrackTooShort),
		errors.Is(err, model.ErrSectorBounds),
		errors.Is(err, model.ErrSectorKindMismatch),
		errors.Is(err, model.ErrBoundedEdgeSector):
		return KindInvalidArgument
	case errors.Is(err, service.ErrRaceAlreadyStarted),
		errors.Is(err, turn.ErrRaceNotInProgress),
		errors.Is(err, turn.ErrPlayerNotActive),
		errors.Is(err, turn.ErrNoActiveParticipants):
		return KindFailedPrecondition
	case errors.Is(err, turn.ErrDuplicateSubmission),
		errors.Is(err, model.ErrCardNotAvailable):
		return KindConflict
	default:
		return KindInternal
	}
}
