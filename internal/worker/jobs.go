package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

var (
	jobRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_job_runs_total",
			Help: "Background job iterations by job and result",
		},
		[]string{"job", "result"},
	)

	jobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "worker_job_duration_seconds",
			Help:    "Duration of background job iterations",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"job"},
	)
)

// Job is a long-running background loop. Run blocks until ctx is cancelled.
type Job interface {
	Name() string
	Run(ctx context.Context)
}

// Func is one iteration of a job.
type Func func(ctx context.Context) error

// IntervalJob runs fn on a fixed ticker.
type IntervalJob struct {
	name       string
	interval   time.Duration
	fn         Func
	runAtStart bool
	log        zerolog.Logger
}

func NewIntervalJob(name string, interval time.Duration, fn Func, log zerolog.Logger) *IntervalJob {
	return &IntervalJob{
		name:     name,
		interval: interval,
		fn:       fn,
		log:      log.With().Str("job", name).Logger(),
	}
}

// Immediately makes the job run once as soon as it starts, before the first tick.
func (j *IntervalJob) Immediately() *IntervalJob {
	j.runAtStart = true
	return j
}

func (j *IntervalJob) Name() string { return j.name }

func (j *IntervalJob) Run(ctx context.Context) {
	j.log.Info().Dur("interval", j.interval).Msg("worker started")
	if j.runAtStart {
		runOnce(ctx, j.name, j.fn, j.log)
	}

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			j.log.Info().Msg("worker stopped")
			return
		case <-ticker.C:
			runOnce(ctx, j.name, j.fn, j.log)
		}
	}
}

// DailyJob runs fn once a day at hour:00 in loc.
type DailyJob struct {
	name string
	hour int
	loc  *time.Location
	fn   Func
	now  func() time.Time
	log  zerolog.Logger
}

func NewDailyJob(name string, hour int, loc *time.Location, fn Func, log zerolog.Logger) *DailyJob {
	if loc == nil {
		loc = time.UTC
	}
	return &DailyJob{
		name: name,
		hour: hour,
		loc:  loc,
		fn:   fn,
		now:  time.Now,
		log:  log.With().Str("job", name).Logger(),
	}
}

func (j *DailyJob) Name() string { return j.name }

func (j *DailyJob) Run(ctx context.Context) {
	j.log.Info().Int("hour", j.hour).Str("location", j.loc.String()).Msg("worker started")
	for {
		next := nextDailyRun(j.now(), j.hour, j.loc)
		timer := time.NewTimer(time.Until(next))
		j.log.Debug().Time("next_run", next).Msg("worker scheduled")

		select {
		case <-ctx.Done():
			timer.Stop()
			j.log.Info().Msg("worker stopped")
			return
		case <-timer.C:
			runOnce(ctx, j.name, j.fn, j.log)
		}
	}
}

// nextDailyRun returns the first hour:00 in loc strictly after now.
func nextDailyRun(now time.Time, hour int, loc *time.Location) time.Time {
	local := now.In(loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), hour, 0, 0, 0, loc)
	if !next.After(local) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// runOnce executes one iteration. Errors and panics are logged and counted;
// they never stop the loop.
func runOnce(ctx context.Context, name string, fn Func, log zerolog.Logger) {
	start := time.Now()
	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		return fn(ctx)
	}()
	jobDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())

	if err != nil {
		jobRuns.WithLabelValues(name, "error").Inc()
		log.Error().Err(err).Msg("worker iteration failed")
		return
	}
	jobRuns.WithLabelValues(name, "ok").Inc()
}

// Start runs every job in its own goroutine. The returned function blocks
// until all jobs have returned after ctx is cancelled.
func Start(ctx context.Context, jobs ...Job) (wait func()) {
	var wg sync.WaitGroup
	for _, job := range jobs {
		wg.Add(1)
		go func(j Job) {
			defer wg.Done()
			j.Run(ctx)
		}(job)
	}
	return wg.Wait
}
