package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/kigurumiya/reserve-backend/pkg/logger"
	"github.com/kigurumiya/reserve-backend/pkg/types"
)

// completionMarker is the slice of the reservation repository this job needs.
type completionMarker interface {
	MarkCompletedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// CompletionJobParams configure the reservation completion job.
type CompletionJobParams struct {
	Logger       *logger.Logger
	Reservations completionMarker
}

// NewCompletionJob builds the job that retires confirmed reservations once
// their rental date has passed.
func NewCompletionJob(params CompletionJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Reservations == nil {
		return nil, fmt.Errorf("reservations repository required")
	}
	return &completionJob{
		logg:         params.Logger,
		reservations: params.Reservations,
		now:          time.Now,
	}, nil
}

type completionJob struct {
	logg         *logger.Logger
	reservations completionMarker
	now          func() time.Time
}

func (j *completionJob) Name() string { return "reservation-completion" }

func (j *completionJob) Run(ctx context.Context) error {
	today := types.NormalizeDate(j.now().UTC())
	updated, err := j.reservations.MarkCompletedBefore(ctx, today)
	if err != nil {
		return fmt.Errorf("mark completed reservations: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{"count": updated})
	j.logg.Info(logCtx, "reservation completion loop complete")
	return nil
}
