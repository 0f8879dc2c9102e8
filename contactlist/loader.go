package contactlist

import (
	"context"
	"errors"
	"log/slog"
)

// Result is the outcome of an asynchronous load started by [Loader.Start].
type Result struct {
	Contacts []Contact
	Err      error
}

// Loader reads a [Source] and produces the canonical contact list.
type Loader struct {
	source Source
	logger *slog.Logger
}

// NewLoader returns a Loader over source. A nil logger discards output.
func NewLoader(source Source, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Loader{source: source, logger: logger}
}

// Load queries the source in display-name order and deduplicates the rows.
// The returned order is the source's order; Load never re-sorts.
//
// Source failures are returned as *Error matching [ErrSourceUnavailable].
// Context cancellation is returned as ctx.Err().
func (l *Loader) Load(ctx context.Context) ([]Contact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	records, err := l.source.Records(ctx, QueryOptions{SortByDisplayName: true})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return nil, ctxErr
		}
		return nil, &Error{Code: ErrorCodeSourceUnavailable, Message: "query failed", Err: err}
	}

	contacts := Dedupe(records)
	l.logger.Debug("contacts loaded",
		"records", len(records),
		"contacts", len(contacts),
	)
	return contacts, nil
}

// Start runs [Loader.Load] on a background goroutine. The returned channel
// receives exactly one Result and is then closed.
func (l *Loader) Start(ctx context.Context) <-chan Result {
	results := make(chan Result, 1)
	go func() {
		defer close(results)
		contacts, err := l.Load(ctx)
		results <- Result{Contacts: contacts, Err: err}
	}()
	return results
}

// Dedupe converts records to contacts, keeping only the first record seen
// for each ID. Later records with the same ID are discarded entirely.
func Dedupe(records []Record) []Contact {
	contacts := make([]Contact, 0, len(records))
	seen := make(map[string]struct{}, len(records))
	for _, record := range records {
		if _, exists := seen[record.ID]; exists {
			continue
		}
		seen[record.ID] = struct{}{}
		contacts = append(contacts, Contact(record))
	}
	return contacts
}
