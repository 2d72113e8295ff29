package kern

import (
	"fmt"

	"github.com/architector1324/vnix/pkg/events"
	"github.com/architector1324/vnix/pkg/metrics"
	"github.com/architector1324/vnix/pkg/msg"
)

// The cooperative scheduler. Tasks are resumable coroutines polled in
// registration order; suspension points are the only interleaving
// points. There is no preemption and no timeslicing.

type schedEntry struct {
	task Task
	c    *coro
	done bool
}

func (k *Kern) spawn(t Task) *schedEntry {
	c := newCoro()
	ctx := &Ctx{kern: k, task: t, c: c}
	c.start(ctx, k.taskBody(t))
	return &schedEntry{task: t, c: c}
}

// taskBody signs the task's unit under its user and dispatches it to
// the target service.
func (k *Kern) taskBody(t Task) func(*Ctx) (*msg.Msg, error) {
	return func(ctx *Ctx) (*msg.Msg, error) {
		m, err := k.Msg(t.Usr, t.Run.Unit)
		if err != nil {
			return nil, err
		}
		hlr, err := k.Send(t.Run.Serv, m)
		if err != nil {
			return nil, err
		}
		return hlr(ctx, m)
	}
}

// Run drives the scheduler until the task queue and the working set
// drain. The original kernel loops forever on bare metal; hosted, an
// empty system means there is nothing left that could ever produce
// work, so Run returns.
func (k *Kern) Run() error {
	for {
		queue := k.drainQueue()
		if len(queue) == 0 {
			return nil
		}

		runs := make([]*schedEntry, 0, len(queue))
		for _, t := range queue {
			runs = append(runs, k.spawn(t))
			k.addRunning(t)
		}

		for {
			timer := metrics.NewTimer()

			for _, e := range runs {
				if e.done {
					continue
				}

				// signals are observed before the next resume
				if sig, ok := k.takeSignal(e.task.ID); ok {
					switch sig {
					case SigKill:
						if err := k.Println(fmt.Sprintf("INFO vnix:kern: killed task `%s#%d`", e.task.Name, e.task.ID)); err != nil {
							return err
						}
						k.logger.Info().
							Uint("task_id", e.task.ID).
							Str("name", e.task.Name).
							Msg("task killed")

						k.removeRunning(e.task.ID)
						e.c.kill()
						e.done = true

						metrics.TasksKilled.Inc()
						k.Events.Publish(&events.Event{
							Type:    events.EventTaskKilled,
							Message: fmt.Sprintf("%s#%d", e.task.Name, e.task.ID),
						})
						continue
					}
				}

				k.setCurrTask(e.task.ID)

				st := e.c.resume()
				if !st.done {
					continue
				}

				if st.out.err != nil {
					if err := k.Println(fmt.Sprintf("ERR vnix:%s#%d: %v", e.task.Name, e.task.ID, st.out.err)); err != nil {
						return err
					}
					k.logger.Error().
						Err(st.out.err).
						Uint("task_id", e.task.ID).
						Str("name", e.task.Name).
						Msg("task failed")

					metrics.TasksFailed.Inc()
					k.Events.Publish(&events.Event{
						Type:    events.EventTaskFailed,
						Message: fmt.Sprintf("%s#%d", e.task.Name, e.task.ID),
					})
				} else {
					metrics.TasksCompleted.Inc()
					k.Events.Publish(&events.Event{
						Type:    events.EventTaskCompleted,
						Message: fmt.Sprintf("%s#%d", e.task.Name, e.task.ID),
					})
				}

				k.pushResult(e.task.ID, st.out)
				k.removeRunning(e.task.ID)
				e.done = true
			}

			metrics.SchedulerPasses.Inc()
			timer.ObserveDuration(metrics.SchedulerPassLatency)

			// children registered during the pass join the working set
			for _, t := range k.drainQueue() {
				runs = append(runs, k.spawn(t))
				k.addRunning(t)
			}

			allDone := true
			for _, e := range runs {
				if !e.done {
					allDone = false
					break
				}
			}
			if allDone {
				break
			}
		}
	}
}
