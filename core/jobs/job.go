// Package jobs tracks the processes spawned for each pipeline.
package jobs

// State is the lifecycle state of a Job.
type State int

const (
	// Running means at least one member has not been reaped.
	Running State = iota
	// Complete means every member has been reaped and the job is waiting for
	// its final notification.
	Complete
)

func (s State) String() string {
	switch s {
	case Running:
		return "Running"
	case Complete:
		return "Complete"
	default:
		return "Unknown"
	}
}

type member struct {
	pid    int
	reaped bool
	status int
}

// Job is the set of processes started for one pipeline invocation.
type Job struct {
	// ID is assigned by Registry.Enqueue; it is zero for foreground jobs.
	ID  int
	Cmd string

	members []member
	state   State
}

// New creates an empty running job displaying cmd.
func New(cmd string) *Job {
	return &Job{Cmd: cmd}
}

// Add appends a member process. Members keep creation order.
func (j *Job) Add(pid int) {
	j.members = append(j.members, member{pid: pid})
}

// PIDs returns member process ids in creation order.
func (j *Job) PIDs() []int {
	out := make([]int, 0, len(j.members))
	for _, m := range j.members {
		out = append(out, m.pid)
	}
	return out
}

// Live returns the ids of members not yet reaped, in creation order.
func (j *Job) Live() []int {
	var out []int
	for _, m := range j.members {
		if !m.reaped {
			out = append(out, m.pid)
		}
	}
	return out
}

// FirstPID returns the id of the first member, or 0 for an empty job.
func (j *Job) FirstPID() int {
	if len(j.members) == 0 {
		return 0
	}
	return j.members[0].pid
}

// Len returns the number of members.
func (j *Job) Len() int {
	return len(j.members)
}

// State returns the job's lifecycle state.
func (j *Job) State() State {
	return j.state
}

// ExitStatus returns the status of the last member, valid once the job is
// Complete.
func (j *Job) ExitStatus() int {
	if len(j.members) == 0 {
		return 0
	}
	return j.members[len(j.members)-1].status
}

// markReaped records that member i exited with status and moves the job to
// Complete once no member is left.
func (j *Job) markReaped(i, status int) {
	j.members[i].reaped = true
	j.members[i].status = status
	for _, m := range j.members {
		if !m.reaped {
			return
		}
	}
	j.state = Complete
}

// Wait blocks until every member has been reaped, oldest first. Members that
// can't be reaped are reported to onError and treated as gone.
func (j *Job) Wait(reaper Reaper, onError func(pid int, err error)) {
	for i := range j.members {
		if j.members[i].reaped {
			continue
		}
		_, status, err := reaper.Reap(j.members[i].pid, true)
		if err != nil && onError != nil {
			onError(j.members[i].pid, err)
		}
		j.markReaped(i, status)
	}
	if len(j.members) == 0 {
		j.state = Complete
	}
}
