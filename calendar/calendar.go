package calendar

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	t "github.com/quesurifn/whatsup-calendar-server/types"
	"go.uber.org/zap"
)

// Calendar turns the rows of a Source into an iCalendar feed. The zero values of
// Now and NewUID fall back to the wall clock and random UUIDs.
type Calendar struct {
	Logger  *zap.Logger
	Source  Source
	Header  Header
	Metrics *Metrics

	Now    func() time.Time
	NewUID func() string
}

// Feed is a rendered document plus counts describing how it was built.
type Feed struct {
	Body    string
	Rows    int
	Events  int
	Skipped int
}

// Load reads every record from the configured source and builds a feed.
// Only source failures are returned; bad rows are skipped.
func (c Calendar) Load(ctx context.Context) (Feed, error) {
	began := time.Now()

	records, err := c.readSource(ctx)
	if err != nil {
		c.Metrics.observeBuild(err, time.Since(began))
		return Feed{}, err
	}

	feed := c.Build(records)
	c.Metrics.observeBuild(nil, time.Since(began))
	return feed, nil
}

func (c Calendar) readSource(ctx context.Context) ([]t.Record, error) {
	if c.Source == nil {
		return nil, fmt.Errorf("%w: no source configured", ErrSourceUnavailable)
	}

	rc, err := c.Source.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	records, err := ReadRecords(rc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.Source, err)
	}
	return records, nil
}

// Build converts records into events, dropping those without a parseable start,
// and renders the document. It never fails.
func (c Calendar) Build(records []t.Record) Feed {
	events := c.Events(records)
	skipped := len(records) - len(events)
	c.Metrics.observeRows(len(records), skipped)

	c.logger().Info("feed built",
		zap.Int("rows", len(records)),
		zap.Int("events", len(events)),
		zap.Int("skipped", skipped),
	)

	return Feed{
		Body:    Render(c.header(), c.now().UTC(), events),
		Rows:    len(records),
		Events:  len(events),
		Skipped: skipped,
	}
}

// Events keeps the input order of the records that yield an event.
func (c Calendar) Events(records []t.Record) []t.Event {
	events := make([]t.Event, 0, len(records))
	for i, r := range records {
		e, ok := c.Event(r)
		if !ok {
			c.logger().Debug("skipping row without start", zap.Int("row", i+1), zap.String("start", r.Start))
			continue
		}
		c.logger().Debug("adding event", zap.String("uid", e.UID), zap.String("title", e.Title))
		events = append(events, e)
	}
	return events
}

// Event builds the event for one record. It returns false when the start time
// is missing or unparseable.
func (c Calendar) Event(r t.Record) (t.Event, bool) {
	start, ok := ParseDateTime(r.Start)
	if !ok {
		return t.Event{}, false
	}
	end, _ := ParseDateTime(r.End)

	uid := r.UID
	if uid == "" {
		uid = c.newUID()
	}

	return t.Event{
		UID:         uid,
		Title:       r.Title,
		Description: r.Description,
		Start:       start,
		End:         end,
		URL:         r.URL,
		Location:    r.Location,
	}, true
}

func (c Calendar) header() Header {
	if c.Header == (Header{}) {
		return DefaultHeader
	}
	return c.Header
}

func (c Calendar) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

func (c Calendar) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

func (c Calendar) newUID() string {
	if c.NewUID == nil {
		return uuid.NewString()
	}
	return c.NewUID()
}
