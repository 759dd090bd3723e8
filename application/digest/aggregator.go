package digest

import (
	"context"
	"fmt"
	"html"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"planner-backend/application/ports"
	"planner-backend/domain/core/entities"
	"planner-backend/domain/core/valueobjects"
	"planner-backend/domain/events"
	pkgerrors "planner-backend/pkg/errors"
	"planner-backend/pkg/retry"
	"planner-backend/pkg/utils"
)

const snippetLimit = 120

// kindOrder fixes the section order of the digest body so repeated runs
// over the same day render identically.
var kindOrder = []valueobjects.ModuleKind{
	valueobjects.KindCalendar,
	valueobjects.KindTask,
	valueobjects.KindRemember,
	valueobjects.KindExpense,
	valueobjects.KindFood,
	valueobjects.KindGym,
	valueobjects.KindWork,
	valueobjects.KindJournal,
	valueobjects.KindDiary,
	valueobjects.KindMood,
	valueobjects.KindIdea,
	valueobjects.KindScreenshotNote,
	valueobjects.KindMemo,
}

var kindHeadings = map[valueobjects.ModuleKind]string{
	valueobjects.KindMemo:           "Notes",
	valueobjects.KindCalendar:       "Events",
	valueobjects.KindTask:           "Tasks",
	valueobjects.KindRemember:       "Reminders",
	valueobjects.KindJournal:        "Journal",
	valueobjects.KindDiary:          "Diary",
	valueobjects.KindMood:           "Mood",
	valueobjects.KindIdea:           "Ideas",
	valueobjects.KindExpense:        "Expenses",
	valueobjects.KindFood:           "Food",
	valueobjects.KindGym:            "Workouts",
	valueobjects.KindWork:           "Work",
	valueobjects.KindScreenshotNote: "Screenshots",
}

// Aggregator assembles and sends the per-user daily digest. The digest
// store's claim marker is the singleton lock: exactly one run owns a
// user-day, and concurrent triggers either replay the finished record or
// report the run as still in flight.
type Aggregator struct {
	entries    ports.EntryRepository
	store      ports.DigestStore
	summarizer ports.Summarizer
	email      ports.EmailSender
	eventBus   ports.EventBus
	policy     retry.Policy
	logger     *zap.Logger
	now        func() time.Time
}

// NewAggregator creates a digest aggregator
func NewAggregator(
	entries ports.EntryRepository,
	store ports.DigestStore,
	summarizer ports.Summarizer,
	email ports.EmailSender,
	eventBus ports.EventBus,
	logger *zap.Logger,
) *Aggregator {
	return &Aggregator{
		entries:    entries,
		store:      store,
		summarizer: summarizer,
		email:      email,
		eventBus:   eventBus,
		policy:     retry.DefaultPolicy(),
		logger:     logger,
		now:        time.Now,
	}
}

// RunForUser produces the digest for one user's local calendar day
// containing refTime. Re-running a completed day returns the prior record
// without re-sending; a day whose run is currently in flight returns an
// error so the caller can retry later.
func (a *Aggregator) RunForUser(ctx context.Context, user *entities.User, refTime time.Time) (*ports.DigestRecord, error) {
	if user == nil {
		return nil, fmt.Errorf("digest requires a user")
	}

	loc := user.Location()
	day := utils.DayKey(refTime, loc)

	claimed, prior, err := a.store.Claim(ctx, user.ID(), day)
	if err != nil {
		return nil, err
	}
	if !claimed {
		if prior != nil {
			a.logger.Info("digest already sent, replaying record",
				zap.String("user_id", user.ID()),
				zap.String("day", day),
			)
			return prior, nil
		}
		return nil, pkgerrors.NewTransientError(fmt.Sprintf("digest for %s is already in progress", day))
	}

	record, err := a.run(ctx, user, day, refTime, loc)
	if err != nil {
		// Release the claim so a later trigger can retry the day. A
		// failed release leaves the day stuck behind the marker's TTL,
		// which is preferable to a double send.
		if relErr := a.store.Release(ctx, user.ID(), day); relErr != nil {
			a.logger.Error("failed to release digest claim",
				zap.String("user_id", user.ID()),
				zap.String("day", day),
				zap.Error(relErr),
			)
		}
		return nil, err
	}

	if err := a.store.Complete(ctx, record); err != nil {
		// The email already went out; surfacing the error here would make
		// the caller retry and send twice. Log and hand back the record.
		a.logger.Error("failed to record completed digest",
			zap.String("user_id", user.ID()),
			zap.String("day", day),
			zap.Error(err),
		)
	}

	a.publishSent(ctx, user, record)

	return record, nil
}

func (a *Aggregator) run(ctx context.Context, user *entities.User, day string, refTime time.Time, loc *time.Location) (*ports.DigestRecord, error) {
	from, to := utils.DayWindow(refTime, loc)

	all, err := a.entries.ListByWindow(ctx, user.ID(), from, to)
	if err != nil {
		return nil, err
	}

	grouped, count := groupEntries(all, loc)

	record := &ports.DigestRecord{
		UserID:     user.ID(),
		Day:        day,
		EntryCount: count,
		SentAt:     a.now().UTC(),
	}

	// A quiet day completes the marker without an email, so re-triggers
	// stay idempotent.
	if count == 0 {
		a.logger.Info("no entries for digest day, skipping email",
			zap.String("user_id", user.ID()),
			zap.String("day", day),
		)
		return record, nil
	}

	body, summarized := a.renderBody(ctx, user, day, grouped)
	record.Subject = fmt.Sprintf("Your day in review: %s", day)
	record.Body = body
	record.Summarized = summarized

	if user.DigestAddress() == "" {
		a.logger.Warn("user has no digest address, skipping email",
			zap.String("user_id", user.ID()),
		)
		return record, nil
	}

	err = retry.Do(ctx, a.policy, func() error {
		return a.email.SendEmail(ctx, user.DigestAddress(), record.Subject, record.Body)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to send digest email")
	}

	return record, nil
}

// renderBody asks the summarizer for a narrative body and falls back to a
// plain grouped listing when summarization keeps failing. The digest
// always goes out; only its prose quality degrades.
func (a *Aggregator) renderBody(ctx context.Context, user *entities.User, day string, grouped ports.GroupedEntries) (string, bool) {
	var summary string
	err := retry.Do(ctx, a.policy, func() error {
		var callErr error
		summary, callErr = a.summarizer.Summarize(ctx, user.Name(), day, grouped)
		return callErr
	})
	if err == nil && strings.TrimSpace(summary) != "" {
		return summary, true
	}
	if err != nil {
		a.logger.Warn("summarizer unavailable, using plain listing",
			zap.String("user_id", user.ID()),
			zap.String("day", day),
			zap.Error(err),
		)
	}
	return renderPlainListing(day, grouped), false
}

// groupEntries buckets a day's entries by module kind. Failed entries are
// included: the capture happened even if its side effect did not, and the
// digest is the user's record of the day.
func groupEntries(all []*entities.Entry, loc *time.Location) (ports.GroupedEntries, int) {
	grouped := make(ports.GroupedEntries)
	count := 0
	for _, entry := range all {
		line := ports.DigestLine{
			Time:    entry.CreatedAt().In(loc),
			Title:   entry.Title(),
			Snippet: snippet(entry.Content().Text()),
		}
		grouped[entry.Kind()] = append(grouped[entry.Kind()], line)
		count++
	}
	for _, lines := range grouped {
		sort.Slice(lines, func(i, j int) bool { return lines[i].Time.Before(lines[j].Time) })
	}
	return grouped, count
}

// renderPlainListing is the deterministic fallback body: the day's
// entries grouped under kind headings, no prose.
func renderPlainListing(day string, grouped ports.GroupedEntries) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("<h2>Daily digest for %s</h2>\n", day))
	for _, kind := range kindOrder {
		lines, ok := grouped[kind]
		if !ok || len(lines) == 0 {
			continue
		}
		b.WriteString(fmt.Sprintf("<h3>%s</h3>\n<ul>\n", kindHeadings[kind]))
		for _, line := range lines {
			title := line.Title
			if title == "" {
				title = line.Snippet
			}
			b.WriteString(fmt.Sprintf("<li>%s &middot; %s</li>\n",
				line.Time.Format("15:04"),
				html.EscapeString(title),
			))
		}
		b.WriteString("</ul>\n")
	}
	return b.String()
}

func snippet(text string) string {
	text = strings.TrimSpace(text)
	if len(text) <= snippetLimit {
		return text
	}
	return text[:snippetLimit] + "..."
}

func (a *Aggregator) publishSent(ctx context.Context, user *entities.User, record *ports.DigestRecord) {
	event := events.NewDigestSent(user.ID(), record.Day, record.EntryCount, record.Summarized, a.now().UTC())
	if err := a.eventBus.Publish(ctx, event); err != nil {
		a.logger.Warn("failed to publish digest event",
			zap.String("user_id", user.ID()),
			zap.Error(err),
		)
	}
}
