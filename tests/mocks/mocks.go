// Package mocks provides testify mocks for the application ports, shared
// across the package-level unit tests.
package mocks

import (
	"context"
	"encoding/json"
	"time"

	"github.com/stretchr/testify/mock"

	"planner-backend/application/ports"
	"planner-backend/domain/core/entities"
	"planner-backend/domain/core/valueobjects"
	"planner-backend/domain/events"
)

type MockEntryRepository struct {
	mock.Mock
}

func (m *MockEntryRepository) Save(ctx context.Context, entry *entities.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockEntryRepository) SaveWithCalendarEvent(ctx context.Context, entry *entities.Entry, event *entities.CalendarEvent) error {
	args := m.Called(ctx, entry, event)
	return args.Error(0)
}

func (m *MockEntryRepository) GetByID(ctx context.Context, userID string, id valueobjects.EntryID) (*entities.Entry, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Entry), args.Error(1)
}

func (m *MockEntryRepository) GetCalendarEvent(ctx context.Context, userID string, id valueobjects.EntryID) (*entities.CalendarEvent, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.CalendarEvent), args.Error(1)
}

func (m *MockEntryRepository) ListByWindow(ctx context.Context, userID string, from, to time.Time) ([]*entities.Entry, error) {
	args := m.Called(ctx, userID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Entry), args.Error(1)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*entities.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) GetByAPIKeyHash(ctx context.Context, hash string) (*entities.User, error) {
	args := m.Called(ctx, hash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) ListActive(ctx context.Context) ([]*entities.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.User), args.Error(1)
}

func (m *MockUserRepository) Save(ctx context.Context, user *entities.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) Get(ctx context.Context, key ports.IdempotencyKey) (json.RawMessage, bool, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(json.RawMessage), args.Bool(1), args.Error(2)
}

func (m *MockIdempotencyStore) Store(ctx context.Context, key ports.IdempotencyKey, result interface{}) error {
	args := m.Called(ctx, key, result)
	return args.Error(0)
}

type MockDigestStore struct {
	mock.Mock
}

func (m *MockDigestStore) Claim(ctx context.Context, userID, day string) (bool, *ports.DigestRecord, error) {
	args := m.Called(ctx, userID, day)
	var prior *ports.DigestRecord
	if args.Get(1) != nil {
		prior = args.Get(1).(*ports.DigestRecord)
	}
	return args.Bool(0), prior, args.Error(2)
}

func (m *MockDigestStore) Complete(ctx context.Context, record *ports.DigestRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockDigestStore) Release(ctx context.Context, userID, day string) error {
	args := m.Called(ctx, userID, day)
	return args.Error(0)
}

type MockEventBus struct {
	mock.Mock
}

func (m *MockEventBus) Publish(ctx context.Context, event events.DomainEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventBus) PublishBatch(ctx context.Context, batch []events.DomainEvent) error {
	args := m.Called(ctx, batch)
	return args.Error(0)
}

type MockTranscriber struct {
	mock.Mock
}

func (m *MockTranscriber) Transcribe(ctx context.Context, audio []byte, filename string) (string, error) {
	args := m.Called(ctx, audio, filename)
	return args.String(0), args.Error(1)
}

type MockIntentClassifier struct {
	mock.Mock
}

func (m *MockIntentClassifier) Classify(ctx context.Context, content valueobjects.CanonicalContent, taxonomy []string, now time.Time, timezone string) (ports.Classification, error) {
	args := m.Called(ctx, content, taxonomy, now, timezone)
	return args.Get(0).(ports.Classification), args.Error(1)
}

type MockFallbackRecorder struct {
	mock.Mock
}

func (m *MockFallbackRecorder) RecordClassificationFallback(ctx context.Context, reason string) {
	m.Called(ctx, reason)
}

type MockCalendarService struct {
	mock.Mock
}

func (m *MockCalendarService) CreateEvent(ctx context.Context, userID string, details ports.EventDetails) (string, error) {
	args := m.Called(ctx, userID, details)
	return args.String(0), args.Error(1)
}

type MockSMSSender struct {
	mock.Mock
}

func (m *MockSMSSender) SendSMS(ctx context.Context, to, body string) (string, error) {
	args := m.Called(ctx, to, body)
	return args.String(0), args.Error(1)
}

type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) SendEmail(ctx context.Context, to, subject, htmlBody string) error {
	args := m.Called(ctx, to, subject, htmlBody)
	return args.Error(0)
}

type MockSummarizer struct {
	mock.Mock
}

func (m *MockSummarizer) Summarize(ctx context.Context, userName string, day string, grouped ports.GroupedEntries) (string, error) {
	args := m.Called(ctx, userName, day, grouped)
	return args.String(0), args.Error(1)
}
