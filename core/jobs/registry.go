package jobs

import (
	"errors"
	"fmt"
	"sync"
	"syscall"

	"golang.org/x/sys/unix"
)

// ErrNoSuchJob is returned when a job id isn't registered.
var ErrNoSuchJob = errors.New("no such job")

// Completion reports a background job whose members have all exited.
type Completion struct {
	JobID    int
	FirstPID int
	Cmd      string
	Status   int
}

// Snapshot is a read-only view of a registered job.
type Snapshot struct {
	JobID    int
	FirstPID int
	Cmd      string
	State    State
}

// Registry holds in-flight background jobs in the order they were enqueued.
// It is owned by one shell; the zero value is not usable, use NewRegistry.
type Registry struct {
	mu     sync.Mutex
	jobs   []*Job
	reaper Reaper
	kill   func(pid int, sig syscall.Signal) error
}

// NewRegistry creates an empty registry that reaps with reaper.
func NewRegistry(reaper Reaper) *Registry {
	if reaper == nil {
		reaper = WaitReaper{}
	}
	return &Registry{
		reaper: reaper,
		kill:   unix.Kill,
	}
}

// Enqueue assigns the job an id one larger than the highest registered id
// and appends it.
func (r *Registry) Enqueue(job *Job) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := 1
	for _, j := range r.jobs {
		if j.ID >= id {
			id = j.ID + 1
		}
	}
	job.ID = id
	r.jobs = append(r.jobs, job)
	return id
}

// Lookup returns the job registered under id.
func (r *Registry) Lookup(id int) (*Job, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, j := r.find(id)
	return j, j != nil
}

func (r *Registry) find(id int) (int, *Job) {
	for i, j := range r.jobs {
		if j.ID == id {
			return i, j
		}
	}
	return -1, nil
}

// Remove drops job id, keeping the order and ids of the others.
func (r *Registry) Remove(id int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	i, _ := r.find(id)
	if i < 0 {
		return false
	}
	r.jobs = append(r.jobs[:i], r.jobs[i+1:]...)
	return true
}

// IsJobRunning reports whether job id is registered and has a member that
// hasn't been reaped.
func (r *Registry) IsJobRunning(id int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, j := r.find(id)
	return j != nil && j.State() == Running
}

// Len returns the number of registered jobs.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.jobs)
}

// List returns a snapshot of every registered job in enqueue order.
func (r *Registry) List() []Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Snapshot, 0, len(r.jobs))
	for _, j := range r.jobs {
		out = append(out, Snapshot{JobID: j.ID, FirstPID: j.FirstPID(), Cmd: j.Cmd, State: j.State()})
	}
	return out
}

// PollCompleted tries to reap every member of every job without blocking.
// Jobs with all members reaped are removed and returned in enqueue order.
// Reap errors mark the member as gone, the same as a normal exit.
func (r *Registry) PollCompleted() []Completion {
	r.mu.Lock()
	defer r.mu.Unlock()

	var done []Completion
	kept := r.jobs[:0]
	for _, j := range r.jobs {
		for i := range j.members {
			if j.members[i].reaped {
				continue
			}
			ok, status, _ := r.reaper.Reap(j.members[i].pid, false)
			if ok {
				j.markReaped(i, status)
			}
		}
		if len(j.members) == 0 {
			j.state = Complete
		}

		if j.State() == Complete {
			done = append(done, Completion{JobID: j.ID, FirstPID: j.FirstPID(), Cmd: j.Cmd, Status: j.ExitStatus()})
			continue
		}
		kept = append(kept, j)
	}
	for i := len(kept); i < len(r.jobs); i++ {
		r.jobs[i] = nil
	}
	r.jobs = kept
	return done
}

// Signal sends sig to every live member of job id. Delivery isn't awaited;
// the next PollCompleted observes the effect. Members that already exited
// are skipped.
func (r *Registry) Signal(id int, sig syscall.Signal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, j := r.find(id)
	if j == nil {
		return fmt.Errorf("%%%d: %w", id, ErrNoSuchJob)
	}

	var errs []error
	for _, pid := range j.Live() {
		if err := r.kill(pid, sig); err != nil && !errors.Is(err, unix.ESRCH) {
			errs = append(errs, fmt.Errorf("pid %d: %w", pid, err))
		}
	}
	return errors.Join(errs...)
}
