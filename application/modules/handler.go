// Package modules holds the per-module-kind handlers. Every handler obeys
// the same contract: it persists exactly one entry for the draft and
// returns a confirmation, even when its side effects failed.
package modules

import (
	"context"

	"planner-backend/domain/core/entities"
	"planner-backend/domain/core/valueobjects"
)

// Draft is a classified capture awaiting module handling
type Draft struct {
	User           *entities.User
	InputKind      valueobjects.InputKind
	Kind           valueobjects.ModuleKind
	Content        valueobjects.CanonicalContent
	Title          string
	Fields         valueobjects.Payload
	SpokenResponse string // classifier-suggested confirmation phrasing, may be empty
}

// HandleResult carries the persisted entry and any linked side-effect
// records
type HandleResult struct {
	Entry         *entities.Entry
	CalendarEvent *entities.CalendarEvent // non-nil only when external creation succeeded
	Confirmation  string

	// FailureKind names the error class behind a degraded outcome (e.g.
	// AUTH_EXPIRED) so callers outside the pipeline can react, such as
	// triggering re-authorization. Empty on full success.
	FailureKind string
}

// ModuleHandler processes one classified draft. An error return is
// reserved for fatal request failures (persistence); degraded outcomes
// such as a failed external side effect are reported through the entry's
// status and the confirmation text instead.
type ModuleHandler interface {
	Handle(ctx context.Context, draft Draft) (*HandleResult, error)
}
