package googlecalendar

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"planner-backend/application/ports"
	pkgerrors "planner-backend/pkg/errors"
)

// TokenProvider hands out a per-user OAuth token source. Token grants and
// refresh-token storage are provisioned out of band.
type TokenProvider interface {
	TokenSource(ctx context.Context, userID string) (oauth2.TokenSource, error)
}

// Service implements ports.CalendarService against the Google Calendar
// API. A circuit breaker sits in front so a flapping upstream fails fast
// instead of stacking timeouts during capture.
type Service struct {
	tokens  TokenProvider
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

// NewService creates a new calendar service
func NewService(tokens TokenProvider, logger *zap.Logger) *Service {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "google-calendar",
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 5 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		IsSuccessful: func(err error) bool {
			// Auth and validation failures are the caller's problem, not
			// a sign the upstream is down
			return err == nil || pkgerrors.IsAuthExpired(err) || pkgerrors.IsValidation(err)
		},
	})

	return &Service{
		tokens:  tokens,
		breaker: cb,
		logger:  logger,
	}
}

// CreateEvent creates an event in the user's primary calendar and returns
// the external event identifier
func (s *Service) CreateEvent(ctx context.Context, userID string, details ports.EventDetails) (string, error) {
	ts, err := s.tokens.TokenSource(ctx, userID)
	if err != nil {
		return "", pkgerrors.NewAuthExpiredError("google-calendar")
	}

	id, err := s.breaker.Execute(func() (interface{}, error) {
		svc, err := calendar.NewService(ctx, option.WithTokenSource(ts))
		if err != nil {
			return "", pkgerrors.NewTransientError(fmt.Sprintf("failed to create calendar client: %v", err))
		}

		event := &calendar.Event{
			Summary:     details.Title,
			Location:    details.Location,
			Description: details.Description,
			Start:       &calendar.EventDateTime{DateTime: details.Start.Format(time.RFC3339)},
			End:         &calendar.EventDateTime{DateTime: details.End.Format(time.RFC3339)},
		}

		created, err := svc.Events.Insert("primary", event).Context(ctx).Do()
		if err != nil {
			return "", classifyCalendarError(err)
		}
		return created.Id, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", pkgerrors.NewTransientError("calendar upstream is unavailable")
		}
		return "", err
	}

	externalID := id.(string)
	s.logger.Info("calendar event created",
		zap.String("user_id", userID),
		zap.String("external_event_id", externalID),
		zap.Time("start", details.Start),
	)

	return externalID, nil
}

// classifyCalendarError maps Google API failures onto the error taxonomy
func classifyCalendarError(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case 401, 403:
			// 403 can also mean quota; Google reports rateLimitExceeded
			// through the errors list
			for _, item := range apiErr.Errors {
				if item.Reason == "rateLimitExceeded" || item.Reason == "userRateLimitExceeded" {
					return pkgerrors.NewRateLimitError("google-calendar")
				}
				if item.Reason == "quotaExceeded" {
					return pkgerrors.NewQuotaError("google-calendar")
				}
			}
			return pkgerrors.NewAuthExpiredError("google-calendar")
		case 429:
			return pkgerrors.NewRateLimitError("google-calendar")
		case 400, 404, 422:
			return pkgerrors.NewValidationError(fmt.Sprintf("calendar rejected event: %v", err))
		}
	}
	return pkgerrors.NewTransientError(fmt.Sprintf("calendar request failed: %v", err))
}
