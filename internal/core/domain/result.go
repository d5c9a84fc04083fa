package domain

import "time"

// TaskResult is the outcome of processing a single identifier.
// Exactly one TaskResult is produced per identifier of a batch.
type TaskResult struct {
	ID       string
	Success  bool
	Err      error
	Artifact string
	Digest   string
	Duration time.Duration
}

// Succeeded returns a successful result for id.
func Succeeded(id, artifact, digest string, d time.Duration) TaskResult {
	return TaskResult{
		ID:       id,
		Success:  true,
		Artifact: artifact,
		Digest:   digest,
		Duration: d,
	}
}

// Failed returns a failed result for id.
func Failed(id string, err error, d time.Duration) TaskResult {
	return TaskResult{
		ID:       id,
		Err:      err,
		Duration: d,
	}
}

// Message returns the failure message, or an empty string for a successful result.
func (r TaskResult) Message() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// Report aggregates the results of a batch. Results keep the order of the
// identifiers as they were given, independent of completion order.
type Report struct {
	Results []TaskResult
	Elapsed time.Duration
}

// Total returns the number of processed identifiers.
func (r *Report) Total() int {
	return len(r.Results)
}

// Successful returns the successful results in input order.
func (r *Report) Successful() []TaskResult {
	return r.filter(true)
}

// Failed returns the failed results in input order.
func (r *Report) Failed() []TaskResult {
	return r.filter(false)
}

// OK reports whether every task of the batch succeeded.
func (r *Report) OK() bool {
	for i := range r.Results {
		if !r.Results[i].Success {
			return false
		}
	}
	return true
}

func (r *Report) filter(success bool) []TaskResult {
	out := make([]TaskResult, 0, len(r.Results))
	for _, res := range r.Results {
		if res.Success == success {
			out = append(out, res)
		}
	}
	return out
}
