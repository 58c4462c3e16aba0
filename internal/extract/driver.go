package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gradebook-extract/internal/config"
	"gradebook-extract/internal/gateway"
	"gradebook-extract/internal/logger"
	"gradebook-extract/internal/model"
	"gradebook-extract/internal/report"
	"gradebook-extract/internal/storage"
	"gradebook-extract/pkg/errors"

	"github.com/rs/zerolog"
)

// Summary is the outcome of one extraction run. Errors holds every
// non-fatal error in the order it was recorded; a non-empty list means
// a partial report, not a failed run.
type Summary struct {
	CoursesListed    int
	CoursesProcessed int
	RowsWritten      int
	Errors           []string
}

// Driver owns the full run: it dials the gateway, lists and orders the
// courses, walks them sequentially under the rotation policy, hands
// each course to the extractor, and publishes the report. The gateway
// and the report stream are owned exclusively by the driver for the
// run's duration.
type Driver struct {
	cfg    *config.Config
	dial   gateway.DialFunc
	policy RotationPolicy
	course *CourseExtractor
	store  storage.Publisher
	log    zerolog.Logger
}

// NewDriver builds a driver. store may be nil, in which case the
// published report stays local.
func NewDriver(cfg *config.Config, dial gateway.DialFunc, store storage.Publisher) *Driver {
	return &Driver{
		cfg:    cfg,
		dial:   dial,
		policy: PolicyFromConfig(cfg),
		course: NewCourseExtractor(cfg.App.FilterOnExternalGrade),
		store:  store,
		log:    logger.Get(),
	}
}

// Run executes the extraction. An error return means the run could not
// start (no session, no course list, no output destination); once the
// report is open every later failure is recorded in the summary and
// the report is always published, partial or not.
func (d *Driver) Run(ctx context.Context) (*Summary, error) {
	rec := &errors.Recorder{}
	sum := &Summary{}

	gw, err := d.dial(ctx)
	if err != nil {
		return nil, fmt.Errorf("open gateway: %w", err)
	}
	defer func() {
		if gw == nil {
			return
		}
		if err := gw.Logout(ctx); err != nil {
			d.log.Error().Err(err).Msg("Gateway logout failed")
		}
	}()

	courses, err := d.listCourses(ctx, gw)
	if err != nil {
		return nil, fmt.Errorf("load courses: %w", err)
	}
	sum.CoursesListed = len(courses)
	d.log.Info().Int("count", len(courses)).Msg("Courses loaded")

	// Ascending by course code, so unchanged data yields an identical
	// report on every run.
	sort.SliceStable(courses, func(i, j int) bool {
		return courses[i].CourseID < courses[j].CourseID
	})

	target, err := report.Open(d.cfg.App.OutputFile)
	if err != nil {
		return nil, err
	}

	w, err := d.newWriter(target)
	if err != nil {
		target.Discard()
		return nil, err
	}

	if err := w.WriteHeader(); err != nil {
		rec.Recordf("write report header: %v", err)
	} else {
		gw = d.processCourses(ctx, gw, courses, w, sum, rec)
	}

	if err := w.Flush(); err != nil {
		rec.Recordf("flush report stream: %v", err)
	}
	d.log.Info().Str("target", target.Path()).Msg("Publishing report")
	if err := target.Publish(); err != nil {
		rec.Recordf("publish report: %v", err)
	} else if d.store != nil && !target.IsStdout() {
		d.uploadReport(ctx, target.Path(), rec)
	}

	sum.Errors = rec.Messages()
	return sum, nil
}

func (d *Driver) listCourses(ctx context.Context, gw gateway.Gateway) ([]model.Course, error) {
	if contains := strings.TrimSpace(d.cfg.App.CourseIDContains); contains != "" {
		return gw.CoursesContaining(ctx, contains)
	}
	return gw.AllCourses(ctx)
}

func (d *Driver) newWriter(target *report.Target) (report.Writer, error) {
	switch d.cfg.App.OutputFormat {
	case config.FormatXLSX:
		return report.NewXLSX(target.Writer())
	case "", config.FormatDelimited:
		return report.NewDelimited(target.Writer(), d.cfg.App.DataDelimiter), nil
	default:
		return nil, fmt.Errorf("unsupported output format %q", d.cfg.App.OutputFormat)
	}
}

// processCourses walks the sorted course list. It returns the gateway
// that is live when the loop ends (rotation may have replaced the one
// passed in), or nil if a rotation failed to produce a new session.
func (d *Driver) processCourses(ctx context.Context, gw gateway.Gateway, courses []model.Course, w report.Writer, sum *Summary, rec *errors.Recorder) gateway.Gateway {
	for i, course := range courses {
		if ctx.Err() != nil {
			rec.Recordf("run cancelled: %v", ctx.Err())
			return gw
		}
		if d.cfg.App.MaxCourses >= 0 && i == d.cfg.App.MaxCourses {
			d.log.Info().Int("max_courses", d.cfg.App.MaxCourses).Msg("Maximum course limit reached, ending")
			return gw
		}

		if d.policy.ShouldRotate(i) {
			d.log.Info().
				Int("batch_size", d.policy.RotateEvery).
				Dur("delay", d.policy.RotateDelay).
				Msg("Client batch size reached, rotating session")
			d.sleep(ctx, d.policy.RotateDelay, rec)

			replacement, err := d.rotate(ctx, gw)
			if err != nil {
				rec.Recordf("rotate gateway session: %v", err)
				return nil
			}
			gw = replacement
		}

		if d.policy.ShouldPause(i) {
			d.log.Info().
				Int("batch_size", d.policy.PauseEvery).
				Dur("delay", d.policy.PauseDelay).
				Msg("Batch wait size reached, pausing before next batch")
			d.sleep(ctx, d.policy.PauseDelay, rec)
		}

		if course.ID == "" {
			rec.Recordf("course [%s] at index %d has no primary key, skipping", course.CourseID, i)
			continue
		}

		d.log.Info().Int("index", i+1).Str("course_id", course.CourseID).Msg("Processing course")
		rows, err := d.course.Extract(ctx, gw, course, w)
		sum.RowsWritten += rows
		if err != nil {
			rec.Recordf("process course [%s]: %v", course.CourseID, err)
			continue
		}
		sum.CoursesProcessed++
	}
	return gw
}

// rotate logs the old session out and dials a fresh one. The old
// session is always closed before the new one is opened; a logout
// failure is not fatal to the rotation.
func (d *Driver) rotate(ctx context.Context, old gateway.Gateway) (gateway.Gateway, error) {
	if err := old.Logout(ctx); err != nil {
		d.log.Error().Err(err).Msg("Logout of rotated session failed")
	}
	return d.dial(ctx)
}

// sleep waits for delay. An interrupted wait is recorded and then
// treated as if it had completed.
func (d *Driver) sleep(ctx context.Context, delay time.Duration, rec *errors.Recorder) {
	if delay <= 0 {
		return
	}
	select {
	case <-time.After(delay):
	case <-ctx.Done():
		rec.Recordf("batch wait interrupted: %v", ctx.Err())
	}
}

func (d *Driver) uploadReport(ctx context.Context, path string, rec *errors.Recorder) {
	f, err := os.Open(path)
	if err != nil {
		rec.Recordf("open published report for upload: %v", err)
		return
	}
	defer f.Close()

	key := filepath.Base(path)
	if err := d.store.Upload(ctx, key, f); err != nil {
		rec.Recordf("upload report to storage: %v", err)
		return
	}
	d.log.Info().Str("key", key).Msg("Report uploaded to storage")
}
