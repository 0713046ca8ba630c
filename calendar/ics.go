package calendar

import (
	"io"
	"strings"
	"time"

	t "github.com/quesurifn/whatsup-calendar-server/types"
)

const crlf = "\r\n"

// Header holds the calendar level properties written before any event.
type Header struct {
	ProdID      string
	Name        string
	Description string
	// TTL is an ISO-8601 duration used for both X-PUBLISHED-TTL and REFRESH-INTERVAL.
	TTL string
}

// DefaultHeader matches the published WhatsUp feed.
var DefaultHeader = Header{
	ProdID:      "-//WhatsUpInSpace//Railway Flask ICS//EN",
	Name:        "Whats Up 1.2",
	Description: "Whats Up 1.21",
	TTL:         "PT1M",
}

var descriptionEscaper = strings.NewReplacer("\r\n", `\n`, "\n", `\n`)

// lineWriter terminates every line with CRLF and keeps the first write error.
type lineWriter struct {
	w   io.Writer
	err error
}

func (lw *lineWriter) line(parts ...string) {
	if lw.err != nil {
		return
	}
	for _, p := range parts {
		if _, lw.err = io.WriteString(lw.w, p); lw.err != nil {
			return
		}
	}
	_, lw.err = io.WriteString(lw.w, crlf)
}

// WriteFeed writes a complete VCALENDAR document containing events in order.
// stamp is used as DTSTAMP for every event.
func WriteFeed(w io.Writer, h Header, stamp time.Time, events []t.Event) error {
	lw := &lineWriter{w: w}

	lw.line("BEGIN:VCALENDAR")
	lw.line("PRODID:", h.ProdID)
	lw.line("VERSION:2.0")
	lw.line("CALSCALE:GREGORIAN")
	lw.line("METHOD:PUBLISH")
	lw.line("X-WR-CALNAME:", h.Name)
	lw.line("X-WR-CALDESC:", h.Description)
	lw.line("X-PUBLISHED-TTL:", h.TTL)
	lw.line("REFRESH-INTERVAL;VALUE=DURATION:", h.TTL)

	dtstamp := FormatDateTime(stamp)
	for _, e := range events {
		lw.line("BEGIN:VEVENT")
		lw.line("UID:", e.UID)
		lw.line("DTSTAMP:", dtstamp)
		lw.line("DTSTART:", FormatDateTime(e.Start))
		if e.HasEnd() {
			lw.line("DTEND:", FormatDateTime(e.End))
		}
		if e.Title != "" {
			lw.line("SUMMARY:", e.Title)
		}
		if desc := descriptionEscaper.Replace(e.Description); desc != "" {
			lw.line("DESCRIPTION:", desc)
		}
		if e.Location != "" {
			lw.line("LOCATION:", e.Location)
		}
		if e.URL != "" {
			lw.line("URL:", e.URL)
		}
		lw.line("END:VEVENT")
	}

	lw.line("END:VCALENDAR")
	return lw.err
}

// Render returns the document WriteFeed would produce.
func Render(h Header, stamp time.Time, events []t.Event) string {
	var b strings.Builder
	// strings.Builder never fails a write.
	_ = WriteFeed(&b, h, stamp, events)
	return b.String()
}
