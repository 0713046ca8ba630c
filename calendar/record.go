package calendar

import (
	"strings"

	t "github.com/quesurifn/whatsup-calendar-server/types"
)

// Column synonyms, most specific first.
var (
	uidColumns         = []string{"uid", "id"}
	titleColumns       = []string{"title", "summary"}
	descriptionColumns = []string{"description"}
	startColumns       = []string{"dtstart", "start"}
	endColumns         = []string{"dtend", "end"}
	urlColumns         = []string{"url"}
	locationColumns    = []string{"location"}
)

// NewRecord resolves a row keyed by column name into a Record. Column names are
// matched case-insensitively and missing columns resolve to empty values.
func NewRecord(fields map[string]string) t.Record {
	normalized := make(map[string]string, len(fields))
	for k, v := range fields {
		key := normalizeColumn(k)
		if existing, ok := normalized[key]; ok && existing != "" {
			continue
		}
		normalized[key] = strings.TrimSpace(v)
	}

	return t.Record{
		UID:         firstValue(normalized, uidColumns),
		Title:       firstValue(normalized, titleColumns),
		Description: firstValue(normalized, descriptionColumns),
		Start:       firstValue(normalized, startColumns),
		End:         firstValue(normalized, endColumns),
		URL:         firstValue(normalized, urlColumns),
		Location:    firstValue(normalized, locationColumns),
	}
}

func normalizeColumn(name string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
}

func firstValue(fields map[string]string, columns []string) string {
	for _, c := range columns {
		if v := fields[c]; v != "" {
			return v
		}
	}
	return ""
}
