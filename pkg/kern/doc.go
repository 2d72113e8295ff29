/*
Package kern implements the cooperative task kernel: registries for
users, services and tasks, the interned data pool, signed message
dispatch and the round-robin scheduler.

# Scheduling model

Single-threaded cooperative. A task is a goroutine-backed resumable
coroutine; the scheduler and the coroutine pass one thread of control
back and forth, so exactly one task segment runs at any moment. There
is no preemption: forward progress between yields is the handler's
responsibility.

	┌────────────────────── SCHEDULER ──────────────────────┐
	│                                                        │
	│   tasks_queue ──▶ working set ──▶ tasks_running        │
	│                      │                                 │
	│         pass:  for each entry                          │
	│                  1. drain kill signal → drop coroutine │
	│                  2. resume once                        │
	│                  3. yield → next entry                 │
	│                  4. done  → task_result                │
	│                      │                                 │
	│                pick up children, repeat                │
	└────────────────────────────────────────────────────────┘

Ordering guarantees:

  - task ids are unique and monotonically increasing
  - a child registered by task T joins the working set after the pass
    in which T yielded
  - a signal is observed before the next resume of its target
  - results are readable by other tasks from their next resume on;
    GetTaskResult drains (a result is delivered exactly once)

# Cancellation

Kill is cooperative: the signal prevents further resumption and the
coroutine unwinds, releasing its stack. A killed task records no
result; a parent awaiting it is not notified.

# Dispatch

Send verifies the envelope first (a bad signature never reaches a
handler), answers the reflective `help`/`info` and `serv` topics
itself, and otherwise hands the service handler to the scheduler.

# Resolution

The resolver (Ctx.ReadAsync) walks units lazily: refs look up the
originating unit, local streams become awaited child tasks, remote
streams are a reserved extension and resolve to absent.
*/
package kern
