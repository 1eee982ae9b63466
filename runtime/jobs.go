package runtime

import (
	"fmt"

	"github.com/tliron/commonlog"
)

var jobLog = commonlog.GetLogger("jscore.jobs")

// Job is a unit of deferred work. Realm, when set, becomes the realm of the
// context the job runs in.
type Job struct {
	Name  string
	Realm *Realm
	Run   func(a *Agent) error
}

// EnqueueJob appends job to the agent's FIFO queue.
func (a *Agent) EnqueueJob(job Job) {
	jobLog.Debugf("enqueue %s (pending %d)", job.Name, len(a.jobs)+1)
	a.jobs = append(a.jobs, job)
}

// HostEnqueueJob routes job through the host hook.
func (a *Agent) HostEnqueueJob(job Job) {
	a.Host.EnqueueJob(a, job)
}

// PendingJobs returns the number of queued jobs.
func (a *Agent) PendingJobs() int {
	return len(a.jobs)
}

// RunJobs drains the queue, including jobs enqueued while draining. It
// must be called with an empty context stack. Exceptions escaping a job are
// reported to the host and draining continues.
func (a *Agent) RunJobs() error {
	Assert(len(a.stack) == 0, "jobs run only on an empty execution context stack")
	ran := 0
	for len(a.jobs) > 0 {
		if ran >= a.MaxJobsPerDrain {
			return fmt.Errorf("job queue did not drain after %d jobs", ran)
		}
		job := a.jobs[0]
		a.jobs[0] = Job{}
		a.jobs = a.jobs[1:]
		ran++
		jobLog.Debugf("run %s", job.Name)
		if err := a.runJob(job); err != nil {
			exc, ok := err.(*Exception)
			if !ok {
				return err
			}
			a.Host.ReportUncaught(a, exc)
		}
	}
	return nil
}

func (a *Agent) runJob(job Job) error {
	if job.Realm == nil {
		return job.Run(a)
	}
	restore, err := a.Enter(&ExecutionContext{Realm: job.Realm, CallSite: CallSite{FunctionName: job.Name}})
	if err != nil {
		return err
	}
	defer restore()
	return job.Run(a)
}
