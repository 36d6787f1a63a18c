package importer

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"event-rest-api/cmd/event-api/metrics"
	"event-rest-api/cmd/event-api/model"
	"event-rest-api/cmd/event-api/validation"

	"github.com/gocarina/gocsv"
	"github.com/goforj/godump"
	"github.com/rs/zerolog"
)

const (
	StatusCreated  = "created"
	StatusRejected = "rejected"
	StatusFailed   = "failed"
)

type IEventCreator interface {
	CreateEvent(ctx context.Context, event *model.Event) error
}

// Importer loads events from CSV rows through the same validation the
// JSON endpoints use. Rows are independent: a rejected row does not stop
// the rest of the file.
type Importer struct {
	events   IEventCreator
	pipeline *validation.EventPipeline
	source   string
}

func New(events IEventCreator, source string) *Importer {
	return &Importer{
		events:   events,
		pipeline: validation.NewEventPipeline(),
		source:   source,
	}
}

// Import parses r and creates every valid row. managerID may be nil.
func (i *Importer) Import(ctx context.Context, r io.Reader, managerID *int) (model.ImportResponse, error) {
	logger := zerolog.Ctx(ctx)

	var rows []*model.EventDto
	if err := gocsv.Unmarshal(skipBOM(r), &rows); err != nil {
		return model.ImportResponse{}, fmt.Errorf("parse csv: %w", err)
	}

	if logger.GetLevel() <= zerolog.DebugLevel {
		godump.Dump(rows)
	}

	resp := model.ImportResponse{Rows: make([]model.ImportRowResult, 0, len(rows))}
	for n, dto := range rows {
		// header is line 1
		result := model.ImportRowResult{Row: n + 2}

		errs, stage, err := i.pipeline.Validate(*dto)
		if err != nil {
			return model.ImportResponse{}, fmt.Errorf("validate row %d: %w", result.Row, err)
		}
		if errs.HasErrors() {
			metrics.ValidationFailures.WithLabelValues(string(stage)).Inc()
			result.Status = StatusRejected
			result.Errors = errs
			resp.Rejected++
			resp.Rows = append(resp.Rows, result)
			continue
		}

		event := model.NewEvent(*dto)
		event.ManagerID = managerID
		if err := i.events.CreateEvent(ctx, &event); err != nil {
			logger.Error().Err(err).Int("row", result.Row).Msg("import row failed")
			result.Status = StatusFailed
			resp.Rejected++
			resp.Rows = append(resp.Rows, result)
			continue
		}

		metrics.EventsCreated.WithLabelValues(i.source).Inc()
		result.ID = event.ID
		result.Status = StatusCreated
		resp.Imported++
		resp.Rows = append(resp.Rows, result)
	}

	logger.Info().
		Int("imported", resp.Imported).
		Int("rejected", resp.Rejected).
		Msg("csv import finished")

	return resp, nil
}

// skipBOM drops a leading UTF-8 byte order mark.
func skipBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	if head, err := br.Peek(3); err == nil && string(head) == "\xef\xbb\xbf" {
		_, _ = br.Discard(3)
	}
	return br
}
