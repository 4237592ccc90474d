package supervisor

// Slot is one worker slot: a logical id in [0, N) and the pid of the
// child process currently occupying it, or 0 for vacant.
// Owned exclusively by the Supervisor; never touched by a worker.
type Slot struct {
	ID  int
	PID int
}

func (s Slot) Vacant() bool { return s.PID == 0 }
