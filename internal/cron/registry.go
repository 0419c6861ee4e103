package cron

import "context"

// Job is one billing maintenance task run by the cron worker.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Registry holds the jobs of one cycle. Jobs run in the order they were
// added and names are unique.
type Registry struct {
	order  []Job
	byName map[string]Job
}

func NewRegistry(jobs ...Job) *Registry {
	r := &Registry{byName: make(map[string]Job, len(jobs))}
	for _, job := range jobs {
		r.Register(job)
	}
	return r
}

// Register adds job and reports whether it was accepted. Nil jobs and
// names already taken are rejected.
func (r *Registry) Register(job Job) bool {
	if job == nil {
		return false
	}
	if r.byName == nil {
		r.byName = map[string]Job{}
	}
	if _, taken := r.byName[job.Name()]; taken {
		return false
	}
	r.byName[job.Name()] = job
	r.order = append(r.order, job)
	return true
}

// Jobs returns a copy so callers cannot reorder the cycle.
func (r *Registry) Jobs() []Job {
	return append([]Job(nil), r.order...)
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.order))
	for _, job := range r.order {
		names = append(names, job.Name())
	}
	return names
}
