package calendar

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	t "github.com/quesurifn/whatsup-calendar-server/types"
)

// ErrSourceUnavailable is returned when the event source cannot be opened or fetched.
var ErrSourceUnavailable = errors.New("event source unavailable")

// Source yields the raw CSV bytes of the event table. A Source is opened once per
// feed build and must be safe for concurrent use.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
	String() string
}

// NewSource returns an HTTPSource for http(s) URLs and a FileSource otherwise.
func NewSource(location string, timeout time.Duration) Source {
	lower := strings.ToLower(location)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return NewHTTPSource(location, timeout)
	}
	return FileSource{Path: location}
}

// FileSource reads events from a local CSV file.
type FileSource struct {
	Path string
}

func (s FileSource) Open(_ context.Context) (io.ReadCloser, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}
	return f, nil
}

func (s FileSource) String() string {
	return s.Path
}

// HTTPSource downloads the CSV on every Open.
type HTTPSource struct {
	URL    string
	Client *resty.Client
}

func NewHTTPSource(url string, timeout time.Duration) *HTTPSource {
	client := resty.New()
	if timeout > 0 {
		client.SetTimeout(timeout)
	}
	return &HTTPSource{URL: url, Client: client}
}

func (s *HTTPSource) Open(ctx context.Context) (io.ReadCloser, error) {
	resp, err := s.Client.R().SetContext(ctx).Get(s.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: get %s: %w", ErrSourceUnavailable, s.URL, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: get %s: status %d", ErrSourceUnavailable, s.URL, resp.StatusCode())
	}

	return io.NopCloser(bytes.NewReader(resp.Body())), nil
}

func (s *HTTPSource) String() string {
	return s.URL
}

// ReadRecords parses a CSV table with a header row. Short rows leave the missing
// columns empty and cells beyond the header are ignored.
func ReadRecords(r io.Reader) ([]t.Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	var records []t.Record
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}

		fields := make(map[string]string, len(header))
		for i, name := range header {
			if i < len(row) {
				fields[name] = row[i]
			}
		}
		records = append(records, NewRecord(fields))
	}

	return records, nil
}
