package kern

import "github.com/architector1324/vnix/pkg/unit"

// TaskRun describes what a task executes: a unit dispatched to a
// named service.
type TaskRun struct {
	Unit *unit.Unit
	Serv string
}

// Task is the scheduler record wrapping a pending or running handler
// coroutine.
type Task struct {
	ID       uint
	ParentID uint
	Usr      string
	Name     string
	Run      TaskRun
}

// TaskSig is a signal deliverable to a task.
type TaskSig int

const (
	// SigKill prevents further resumption of the target task.
	SigKill TaskSig = iota
)
