package kern

import "github.com/architector1324/vnix/pkg/msg"

// Tasks run as goroutine-backed coroutines. The scheduler and the
// task goroutine hand a single thread of control back and forth over
// a resume/step channel handshake: exactly one side runs at any moment, which is
// what makes the global kernel state safe to touch from handlers
// between yields.

type outcome struct {
	msg *msg.Msg
	err error
}

type step struct {
	done bool
	out  outcome
}

type killPanic struct{}

type coro struct {
	resumeCh chan struct{}
	stepCh   chan step
	killCh   chan struct{}
}

// Ctx is the handle a handler uses to suspend itself and to reach the
// kernel. Handlers must not retain it past their own return.
type Ctx struct {
	kern *Kern
	task Task
	c    *coro
}

// Kern returns the kernel the task runs on.
func (ctx *Ctx) Kern() *Kern { return ctx.kern }

// Task returns the scheduler record of the running task.
func (ctx *Ctx) Task() Task { return ctx.task }

// Yield suspends the task until the scheduler resumes it. If the task
// was killed in between, Yield never returns: the coroutine unwinds
// and its stack-held resources are released.
func (ctx *Ctx) Yield() {
	ctx.c.stepCh <- step{}
	<-ctx.c.resumeCh
	select {
	case <-ctx.c.killCh:
		panic(killPanic{})
	default:
	}
}

func newCoro() *coro {
	// resumeCh is buffered so kill can always park a wake-up for a
	// goroutine that is still on its way into Yield.
	return &coro{
		resumeCh: make(chan struct{}, 1),
		stepCh:   make(chan step),
		killCh:   make(chan struct{}),
	}
}

// start launches the coroutine body. The goroutine parks until the
// first resume so registration alone runs no handler code.
func (c *coro) start(ctx *Ctx, body func(*Ctx) (*msg.Msg, error)) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				if _, ok := r.(killPanic); ok {
					return
				}
				panic(r)
			}
		}()

		<-c.resumeCh
		select {
		case <-c.killCh:
			return
		default:
		}

		m, err := body(ctx)
		c.stepCh <- step{done: true, out: outcome{msg: m, err: err}}
	}()
}

// resume hands control to the coroutine and blocks until it yields or
// completes.
func (c *coro) resume() step {
	c.resumeCh <- struct{}{}
	return <-c.stepCh
}

// kill marks the coroutine dead and wakes it so the goroutine can
// unwind. No result is ever produced for a killed coroutine.
func (c *coro) kill() {
	close(c.killCh)
	c.resumeCh <- struct{}{}
}
