package superstaq

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// JobStatus is the aggregated state of a job.
type JobStatus int

const (
	StatusQueued JobStatus = iota
	StatusRunning
	StatusDone
	StatusError
	StatusCancelled
)

var statusNames = map[JobStatus]string{
	StatusQueued:    "Queued",
	StatusRunning:   "Running",
	StatusDone:      "Done",
	StatusError:     "Error",
	StatusCancelled: "Cancelled",
}

func (s JobStatus) String() string {
	if n, ok := statusNames[s]; ok {
		return n
	}
	return "Unknown"
}

// Terminal reports whether the status can no longer change.
func (s JobStatus) Terminal() bool {
	return s == StatusDone || s == StatusError || s == StatusCancelled
}

// ParseJobStatus maps a status string from the service, ignoring case.
func ParseJobStatus(s string) (JobStatus, error) {
	for st, name := range statusNames {
		if strings.EqualFold(s, name) {
			return st, nil
		}
	}
	return 0, errors.Errorf("unknown job status %q", s)
}

// statusRank orders statuses for aggregation; the highest rank wins.
var statusRank = map[JobStatus]int{
	StatusDone:      0,
	StatusRunning:   1,
	StatusQueued:    2,
	StatusCancelled: 3,
	StatusError:     4,
}

func aggregate(statuses []JobStatus) JobStatus {
	agg := StatusDone
	for _, s := range statuses {
		if statusRank[s] > statusRank[agg] {
			agg = s
		}
	}
	return agg
}

// Job is a handle to one or more remote jobs created by a single Backend.Run.
type Job struct {
	backend *Backend
	id      string
}

// NewJob wraps an existing job id, which may be a comma-separated list.
func NewJob(backend *Backend, id string) *Job {
	return &Job{backend: backend, id: id}
}

func (j *Job) ID() string        { return j.id }
func (j *Job) Backend() *Backend { return j.backend }
func (j *Job) ids() []string     { return strings.Split(j.id, ",") }
func (j *Job) Equal(o *Job) bool { return o != nil && j.id == o.id }
func (j *Job) Submit() error     { return ErrSubmitUnsupported }
func (j *Job) String() string    { return "<SuperstaQJob(id=" + j.id + ")>" }

func (j *Job) fetch(ctx context.Context) ([]*JobInfo, []JobStatus, error) {
	ids := j.ids()
	infos := make([]*JobInfo, 0, len(ids))
	statuses := make([]JobStatus, 0, len(ids))
	for _, id := range ids {
		info, err := j.backend.provider.JobStatus(ctx, id)
		if err != nil {
			return nil, nil, err
		}
		st, err := ParseJobStatus(info.Status)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "job %s", id)
		}
		jobPollsTotal.WithLabelValues(st.String()).Inc()
		infos = append(infos, info)
		statuses = append(statuses, st)
	}
	return infos, statuses, nil
}

// Status queries every underlying job and combines their states. Any error wins,
// then cancelled, queued and running; the job is done only when all parts are.
func (j *Job) Status(ctx context.Context) (JobStatus, error) {
	_, statuses, err := j.fetch(ctx)
	if err != nil {
		return 0, err
	}
	return aggregate(statuses), nil
}

// Result blocks until every underlying job is terminal, polling at the provider's
// poll interval, and returns the measured counts.
func (j *Job) Result(ctx context.Context) (*Result, error) {
	logger := j.backend.provider.logger.With(zap.String("job_id", j.id))
	ticker := time.NewTicker(j.backend.provider.cfg.PollInterval)
	defer ticker.Stop()

	for {
		infos, statuses, err := j.fetch(ctx)
		if err != nil {
			return nil, err
		}
		agg := aggregate(statuses)
		switch {
		case agg == StatusError:
			return nil, errors.Wrapf(ErrJobFailed, "job %s", j.id)
		case agg == StatusCancelled:
			return nil, errors.Wrapf(ErrJobCancelled, "job %s", j.id)
		case agg == StatusDone:
			return j.result(infos), nil
		}
		logger.Debug("waiting for job", zap.Stringer("status", agg))

		select {
		case <-ctx.Done():
			return nil, errors.Wrapf(ctx.Err(), "job %s", j.id)
		case <-ticker.C:
		}
	}
}

func (j *Job) result(infos []*JobInfo) *Result {
	r := &Result{
		BackendName: j.backend.name,
		JobID:       j.id,
		Success:     true,
		Experiments: make([]ExperimentResult, len(infos)),
	}
	for i, info := range infos {
		r.Experiments[i] = ExperimentResult{Shots: info.Shots, Counts: info.Samples}
	}
	return r
}

// ExperimentResult is the outcome of one circuit.
type ExperimentResult struct {
	Shots  int
	Counts map[string]int
}

// Result holds per-circuit outcomes in submission order.
type Result struct {
	BackendName string
	JobID       string
	Success     bool
	Experiments []ExperimentResult
}

// Counts returns the measured bitstring counts of the i-th circuit.
func (r *Result) Counts(i int) (map[string]int, error) {
	if i < 0 || i >= len(r.Experiments) {
		return nil, errors.Errorf("result has %d experiments, no index %d", len(r.Experiments), i)
	}
	return r.Experiments[i].Counts, nil
}
