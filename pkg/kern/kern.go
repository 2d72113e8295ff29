package kern

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/architector1324/vnix/pkg/drv"
	"github.com/architector1324/vnix/pkg/events"
	"github.com/architector1324/vnix/pkg/log"
	"github.com/architector1324/vnix/pkg/metrics"
	"github.com/architector1324/vnix/pkg/msg"
	"github.com/architector1324/vnix/pkg/store"
	"github.com/architector1324/vnix/pkg/term"
	"github.com/architector1324/vnix/pkg/unit"
	"github.com/architector1324/vnix/pkg/usr"
)

// KernDrv bundles the device handles the kernel owns.
type KernDrv struct {
	CLI  drv.CLI
	Disp drv.Disp
	Time drv.Time
	Rnd  drv.Rnd
	Mem  drv.Mem
}

type sigEntry struct {
	id  uint
	sig TaskSig
}

type resultEntry struct {
	id  uint
	out outcome
}

// Kern is the kernel: user, service and task registries, the data
// pool and the device handles, all behind one mutex. Coroutines take
// the mutex only inside single non-yielding segments; the scheduler
// hands out control so that exactly one task runs at a time.
type Kern struct {
	Drv    KernDrv
	Term   *term.Term
	Store  store.Store
	Events *events.Broker

	mu     sync.Mutex
	logger zerolog.Logger

	users    []usr.Usr
	services []Serv

	pool *unit.Pool

	lastTaskID   uint
	currTaskID   uint
	tasksQueue   []Task
	tasksRunning []Task
	tasksSignals []sigEntry
	taskResult   []resultEntry
}

// New creates a kernel over the given device handles.
func New(d KernDrv, t *term.Term, st store.Store) *Kern {
	k := &Kern{
		Drv:    d,
		Term:   t,
		Store:  st,
		Events: events.NewBroker(),
		logger: log.WithComponent("kern"),
		pool:   unit.NewPool(),
	}
	k.Events.Start()
	return k
}

// NewUnit interns a unit into the kernel data pool and returns its
// canonical representative.
func (k *Kern) NewUnit(u *unit.Unit) *unit.Unit {
	canon := k.pool.Intern(u)
	metrics.PoolUnits.Set(float64(k.pool.Len()))
	return canon
}

// PoolSize reports the recursive footprint of the data pool.
func (k *Kern) PoolSize(units unit.MemSizeUnits) int {
	return k.pool.Size(units)
}

// RegUsr registers a user, rejecting name and key collisions.
func (k *Kern) RegUsr(u usr.Usr) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	for _, reg := range k.users {
		switch {
		case reg.Name == u.Name && reg.PubKey != u.PubKey:
			return ErrUsrNameAlreadyReg
		case reg.Name == u.Name && reg.PubKey == u.PubKey:
			return ErrUsrAlreadyReg
		case reg.Name != u.Name && reg.PubKey == u.PubKey:
			return ErrUsrRegWithAnotherName
		}
	}

	k.users = append(k.users, u)
	k.Events.Publish(&events.Event{
		Type:    events.EventUsrRegistered,
		Message: u.Name,
	})
	return nil
}

// GetUsr locates a registered user by name.
func (k *Kern) GetUsr(ath string) (usr.Usr, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	for _, u := range k.users {
		if u.Name == ath {
			return u, nil
		}
	}
	return usr.Usr{}, ErrUsrNotFound
}

// RegServ registers a service under its unique name.
func (k *Kern) RegServ(s Serv) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	for _, reg := range k.services {
		if reg.Info.Name == s.Info.Name {
			return ErrServAlreadyReg
		}
	}

	k.services = append(k.services, s)
	k.Events.Publish(&events.Event{
		Type:    events.EventServRegistered,
		Message: s.Info.Name,
	})
	return nil
}

// GetServ locates a registered service by name.
func (k *Kern) GetServ(name string) (Serv, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	for _, s := range k.services {
		if s.Info.Name == name {
			return s, nil
		}
	}
	return Serv{}, ErrServNotFound
}

// ServNames lists registered service names in registration order.
func (k *Kern) ServNames() []string {
	k.mu.Lock()
	defer k.mu.Unlock()

	names := make([]string, len(k.services))
	for i, s := range k.services {
		names[i] = s.Info.Name
	}
	return names
}

// RegTask queues a task for the scheduler and returns its id. Ids are
// unique and monotonically increasing; the parent is the task that is
// currently scheduled.
func (k *Kern) RegTask(ath, name string, run TaskRun) (uint, error) {
	run.Unit = k.NewUnit(run.Unit)

	k.mu.Lock()
	defer k.mu.Unlock()

	t := Task{
		ID:       k.lastTaskID,
		ParentID: k.currTaskID,
		Usr:      ath,
		Name:     name,
		Run:      run,
	}
	k.tasksQueue = append(k.tasksQueue, t)
	k.lastTaskID++

	metrics.TasksRegistered.Inc()
	k.Events.Publish(&events.Event{
		Type:    events.EventTaskCreated,
		Message: fmt.Sprintf("%s#%d", t.Name, t.ID),
		Metadata: map[string]string{
			"usr":  t.Usr,
			"serv": t.Run.Serv,
		},
	})
	return t.ID, nil
}

// TaskSig posts a signal for the given task id. Delivery is observed
// before the next resume of the signaled task.
func (k *Kern) TaskSig(id uint, sig TaskSig) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	k.tasksSignals = append(k.tasksSignals, sigEntry{id: id, sig: sig})
	return nil
}

// TasksRunning snapshots the running task set.
func (k *Kern) TasksRunning() []Task {
	k.mu.Lock()
	defer k.mu.Unlock()

	out := make([]Task, len(k.tasksRunning))
	copy(out, k.tasksRunning)
	return out
}

// TaskRunning returns the currently scheduled task.
func (k *Kern) TaskRunning() (Task, bool) {
	k.mu.Lock()
	defer k.mu.Unlock()

	for _, t := range k.tasksRunning {
		if t.ID == k.currTaskID {
			return t, true
		}
	}
	return Task{}, false
}

// GetTaskResult drains the result of the given task if it has been
// posted. The read is destructive: a result is delivered exactly once.
func (k *Kern) GetTaskResult(id uint) (*msg.Msg, error, bool) {
	k.mu.Lock()
	defer k.mu.Unlock()

	for i, r := range k.taskResult {
		if r.id == id {
			k.taskResult = append(k.taskResult[:i], k.taskResult[i+1:]...)
			metrics.ResultsPending.Set(float64(len(k.taskResult)))
			return r.out.msg, r.out.err, true
		}
	}
	return nil, nil, false
}

// Msg builds a signed envelope for the unit under the named user. The
// unit is interned on its way into the kernel.
func (k *Kern) Msg(ath string, u *unit.Unit) (msg.Msg, error) {
	user, err := k.GetUsr(ath)
	if err != nil {
		return msg.Msg{}, err
	}
	return msg.New(user, k.NewUnit(u))
}

// Print writes through the shared terminal to the console driver.
func (k *Kern) Print(s string) error {
	if err := k.Term.Print(k.Drv.CLI, s); err != nil {
		return fmt.Errorf("%w: %v", ErrDrv, err)
	}
	return nil
}

// Println writes a line through the shared terminal.
func (k *Kern) Println(s string) error {
	return k.Print(s + "\n")
}

func (k *Kern) drainQueue() []Task {
	k.mu.Lock()
	defer k.mu.Unlock()

	queue := k.tasksQueue
	k.tasksQueue = nil
	return queue
}

func (k *Kern) addRunning(t Task) {
	k.mu.Lock()
	defer k.mu.Unlock()

	k.tasksRunning = append(k.tasksRunning, t)
	metrics.TasksRunning.Set(float64(len(k.tasksRunning)))
}

func (k *Kern) removeRunning(id uint) {
	k.mu.Lock()
	defer k.mu.Unlock()

	for i, t := range k.tasksRunning {
		if t.ID == id {
			k.tasksRunning = append(k.tasksRunning[:i], k.tasksRunning[i+1:]...)
			break
		}
	}
	metrics.TasksRunning.Set(float64(len(k.tasksRunning)))
}

func (k *Kern) setCurrTask(id uint) {
	k.mu.Lock()
	defer k.mu.Unlock()

	k.currTaskID = id
}

// takeSignal drains the first pending signal for the task id.
func (k *Kern) takeSignal(id uint) (TaskSig, bool) {
	k.mu.Lock()
	defer k.mu.Unlock()

	for i, s := range k.tasksSignals {
		if s.id == id {
			k.tasksSignals = append(k.tasksSignals[:i], k.tasksSignals[i+1:]...)
			return s.sig, true
		}
	}
	return 0, false
}

func (k *Kern) pushResult(id uint, out outcome) {
	k.mu.Lock()
	defer k.mu.Unlock()

	k.taskResult = append(k.taskResult, resultEntry{id: id, out: out})
	metrics.ResultsPending.Set(float64(len(k.taskResult)))
}
