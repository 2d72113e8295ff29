package systask_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/architector1324/vnix/pkg/drv"
	"github.com/architector1324/vnix/pkg/kern"
	"github.com/architector1324/vnix/pkg/msg"
	"github.com/architector1324/vnix/pkg/serv/systask"
	"github.com/architector1324/vnix/pkg/store"
	"github.com/architector1324/vnix/pkg/term"
	"github.com/architector1324/vnix/pkg/unit"
	"github.com/architector1324/vnix/pkg/usr"
)

func newTestKern(t *testing.T) *kern.Kern {
	t.Helper()

	rnd := &drv.PRng{}
	for i := range rnd.Seed {
		rnd.Seed[i] = 1
	}

	d := kern.KernDrv{
		CLI:  &drv.HostCLI{Out: &bytes.Buffer{}},
		Disp: drv.StubDisp{},
		Time: drv.StubTime{},
		Rnd:  rnd,
		Mem:  drv.StubMem{TotalBytes: 1 << 30, FreeBytes: 1 << 29},
	}
	k := kern.New(d, term.New(), store.NewRAMStore())
	t.Cleanup(k.Events.Stop)

	super, _, err := usr.New("super", rnd)
	require.NoError(t, err)
	require.NoError(t, k.RegUsr(super))
	require.NoError(t, k.RegServ(systask.Serv()))
	return k
}

// constServ returns a service answering every message with {msg: <value>}.
func constServ(name, value string) kern.Serv {
	return kern.NewServ(name, "{}", func(ctx *kern.Ctx, m msg.Msg) (*msg.Msg, error) {
		out, err := ctx.Kern().Msg(m.Ath, unit.Map(unit.E("msg", unit.Str(value))))
		if err != nil {
			return nil, err
		}
		return &out, nil
	})
}

// Chain: the message threads through each service, the last write to
// the msg key wins.
func TestChain(t *testing.T) {
	k := newTestKern(t)
	require.NoError(t, k.RegServ(constServ("serv.a", "x")))
	require.NoError(t, k.RegServ(constServ("serv.b", "y")))

	id, err := k.RegTask("super", "init.load", kern.TaskRun{
		Unit: unit.Map(unit.E("task", unit.List(unit.Str("serv.a"), unit.Str("serv.b")))),
		Serv: systask.ServPath,
	})
	require.NoError(t, err)

	require.NoError(t, k.Run())

	m, rerr, ok := k.GetTaskResult(id)
	require.True(t, ok)
	require.NoError(t, rerr)
	require.NotNil(t, m)

	got, ok := m.Msg.AsMapFind("msg")
	require.True(t, ok)
	s, _ := got.AsStr()
	assert.Equal(t, "y", s)
}

// Chain with an explicit base message.
func TestChainWithMsg(t *testing.T) {
	k := newTestKern(t)

	var seen []string
	require.NoError(t, k.RegServ(kern.NewServ("serv.obs", "{}", func(ctx *kern.Ctx, m msg.Msg) (*msg.Msg, error) {
		if s, ok := m.Msg.AsStr(); ok {
			seen = append(seen, s)
		}
		return &m, nil
	})))

	id, err := k.RegTask("super", "init.load", kern.TaskRun{
		Unit: unit.Map(
			unit.E("task", unit.List(unit.Str("serv.obs"))),
			unit.E("msg", unit.Str("base")),
		),
		Serv: systask.ServPath,
	})
	require.NoError(t, err)

	require.NoError(t, k.Run())

	_, rerr, ok := k.GetTaskResult(id)
	require.True(t, ok)
	require.NoError(t, rerr)
	assert.Equal(t, []string{"base"}, seen)
}

// Loop with count: the stream executes exactly count times.
func TestLoopCount(t *testing.T) {
	k := newTestKern(t)

	counter := 0
	require.NoError(t, k.RegServ(kern.NewServ("sys.counter", "{}", func(ctx *kern.Ctx, m msg.Msg) (*msg.Msg, error) {
		counter++
		return &m, nil
	})))

	id, err := k.RegTask("super", "init.load", kern.TaskRun{
		Unit: unit.PairOf(
			unit.Str("task.loop"),
			unit.PairOf(unit.UInt(3), unit.StreamLoc(unit.Str("incr"), "sys.counter")),
		),
		Serv: systask.ServPath,
	})
	require.NoError(t, err)

	require.NoError(t, k.Run())

	assert.Equal(t, 3, counter)

	m, rerr, ok := k.GetTaskResult(id)
	require.True(t, ok)
	require.NoError(t, rerr)
	assert.Nil(t, m, "loop with unchanged athority produces no message")
}

// Simultaneous tasks: both children are registered detached; the
// shorter one finishes first.
func TestSim(t *testing.T) {
	k := newTestKern(t)

	var done []string
	var runningSeen int
	require.NoError(t, k.RegServ(kern.NewServ("serv.slow", "{}", func(ctx *kern.Ctx, m msg.Msg) (*msg.Msg, error) {
		for i := 0; i < 5; i++ {
			if n := len(ctx.Kern().TasksRunning()); n > runningSeen {
				runningSeen = n
			}
			ctx.Yield()
		}
		done = append(done, "slow")
		return nil, nil
	})))
	require.NoError(t, k.RegServ(kern.NewServ("serv.fast", "{}", func(ctx *kern.Ctx, m msg.Msg) (*msg.Msg, error) {
		ctx.Yield()
		done = append(done, "fast")
		return nil, nil
	})))

	id, err := k.RegTask("super", "init.load", kern.TaskRun{
		Unit: unit.PairOf(
			unit.Str("task.sim"),
			unit.List(
				unit.StreamLoc(unit.Str("a"), "serv.slow"),
				unit.StreamLoc(unit.Str("b"), "serv.fast"),
			),
		),
		Serv: systask.ServPath,
	})
	require.NoError(t, err)

	require.NoError(t, k.Run())

	assert.Equal(t, []string{"fast", "slow"}, done, "the shorter task finishes first")
	assert.GreaterOrEqual(t, runningSeen, 2, "both children run simultaneously")

	_, rerr, ok := k.GetTaskResult(id)
	require.True(t, ok)
	require.NoError(t, rerr)
}

// Queue: streams execute strictly one after another.
func TestQue(t *testing.T) {
	k := newTestKern(t)

	var rec []string
	require.NoError(t, k.RegServ(kern.NewServ("serv.rec", "{}", func(ctx *kern.Ctx, m msg.Msg) (*msg.Msg, error) {
		s, _ := m.Msg.AsStr()
		rec = append(rec, s+".start")
		ctx.Yield()
		rec = append(rec, s+".end")
		return &m, nil
	})))

	id, err := k.RegTask("super", "init.load", kern.TaskRun{
		Unit: unit.PairOf(
			unit.Str("task.que"),
			unit.List(
				unit.StreamLoc(unit.Str("a"), "serv.rec"),
				unit.StreamLoc(unit.Str("b"), "serv.rec"),
			),
		),
		Serv: systask.ServPath,
	})
	require.NoError(t, err)

	require.NoError(t, k.Run())

	assert.Equal(t, []string{"a.start", "a.end", "b.start", "b.end"}, rec)

	_, rerr, ok := k.GetTaskResult(id)
	require.True(t, ok)
	require.NoError(t, rerr)
}

// Stack: every element of the list is sent to the one service,
// awaited in order.
func TestStk(t *testing.T) {
	k := newTestKern(t)

	var rec []string
	require.NoError(t, k.RegServ(kern.NewServ("serv.rec", "{}", func(ctx *kern.Ctx, m msg.Msg) (*msg.Msg, error) {
		s, _ := m.Msg.AsStr()
		rec = append(rec, s)
		return &m, nil
	})))

	id, err := k.RegTask("super", "init.load", kern.TaskRun{
		Unit: unit.Map(unit.E("task.stk", unit.StreamLoc(
			unit.List(unit.Str("a"), unit.Str("b")),
			"serv.rec",
		))),
		Serv: systask.ServPath,
	})
	require.NoError(t, err)

	require.NoError(t, k.Run())

	assert.Equal(t, []string{"a", "b"}, rec)

	_, rerr, ok := k.GetTaskResult(id)
	require.True(t, ok)
	require.NoError(t, rerr)
}

// Separate: the child is detached, the parent does not await it.
func TestSep(t *testing.T) {
	k := newTestKern(t)

	var rec []string
	require.NoError(t, k.RegServ(kern.NewServ("serv.rec", "{}", func(ctx *kern.Ctx, m msg.Msg) (*msg.Msg, error) {
		s, _ := m.Msg.AsStr()
		rec = append(rec, s)
		return &m, nil
	})))

	_, err := k.RegTask("super", "init.load", kern.TaskRun{
		Unit: unit.PairOf(
			unit.Str("task.sep"),
			unit.StreamLoc(unit.Str("x"), "serv.rec"),
		),
		Serv: systask.ServPath,
	})
	require.NoError(t, err)

	require.NoError(t, k.Run())

	assert.Equal(t, []string{"x"}, rec)
}

// Kill: within one scheduler pass after the signal the task is gone
// from the running set.
func TestKill(t *testing.T) {
	k := newTestKern(t)

	require.NoError(t, k.RegServ(kern.NewServ("serv.spin", "{}", func(ctx *kern.Ctx, m msg.Msg) (*msg.Msg, error) {
		for {
			ctx.Yield()
		}
	})))

	spinID, err := k.RegTask("super", "spin", kern.TaskRun{
		Unit: unit.None(),
		Serv: "serv.spin",
	})
	require.NoError(t, err)

	_, err = k.RegTask("super", "init.load", kern.TaskRun{
		Unit: unit.PairOf(unit.Str("kill"), unit.UInt(uint32(spinID))),
		Serv: systask.ServPath,
	})
	require.NoError(t, err)

	require.NoError(t, k.Run())

	_, _, ok := k.GetTaskResult(spinID)
	assert.False(t, ok, "killed task records no result")
	assert.Empty(t, k.TasksRunning())
}

// Introspection: get.run / get.all describe the running set.
func TestGet(t *testing.T) {
	k := newTestKern(t)

	id, err := k.RegTask("super", "init.load", kern.TaskRun{
		Unit: unit.Str("get"),
		Serv: systask.ServPath,
	})
	require.NoError(t, err)

	require.NoError(t, k.Run())

	m, rerr, ok := k.GetTaskResult(id)
	require.True(t, ok)
	require.NoError(t, rerr)
	require.NotNil(t, m)

	info, ok := m.Msg.AsMapFind("msg")
	require.True(t, ok)

	run, ok := info.Find("run")
	require.True(t, ok)
	gotID, ok := run.AsMapFind("id")
	require.True(t, ok)
	v, _ := gotID.AsUInt()
	assert.Equal(t, uint32(id), v)

	allU, ok := info.Find("all")
	require.True(t, ok)
	all, ok := allU.AsList()
	require.True(t, ok)
	assert.Len(t, all, 1)

	tree, ok := info.Find("tree")
	require.True(t, ok)
	_, ok = tree.AsMapFind("child")
	assert.True(t, ok)
}

func TestGetAll(t *testing.T) {
	k := newTestKern(t)

	id, err := k.RegTask("super", "init.load", kern.TaskRun{
		Unit: unit.Str("get.all"),
		Serv: systask.ServPath,
	})
	require.NoError(t, err)

	require.NoError(t, k.Run())

	m, rerr, ok := k.GetTaskResult(id)
	require.True(t, ok)
	require.NoError(t, rerr)

	lstU, ok := m.Msg.AsMapFind("msg")
	require.True(t, ok)
	lst, ok := lstU.AsList()
	require.True(t, ok)
	require.Len(t, lst, 1)
	name, _ := lst[0].AsMapFind("name")
	s, _ := name.AsStr()
	assert.Equal(t, "init.load", s)
}

// Help: the man topic is served from the service's own help unit.
func TestHelpMan(t *testing.T) {
	k := newTestKern(t)

	id, err := k.RegTask("super", "init.load", kern.TaskRun{
		Unit: unit.Str("help.man"),
		Serv: systask.ServPath,
	})
	require.NoError(t, err)

	require.NoError(t, k.Run())

	m, rerr, ok := k.GetTaskResult(id)
	require.True(t, ok)
	require.NoError(t, rerr)

	man, ok := m.Msg.AsMapFind("msg")
	require.True(t, ok)
	_, ok = man.AsMapFind("kill")
	assert.True(t, ok, "man covers the kill operator")
}

// A bare stream request resolves through the kernel and sys.task
// answers with the callee's reply.
func TestStreamRequest(t *testing.T) {
	k := newTestKern(t)
	require.NoError(t, k.RegServ(constServ("serv.a", "x")))

	id, err := k.RegTask("super", "init.load", kern.TaskRun{
		Unit: unit.StreamLoc(unit.Str("ping"), "serv.a"),
		Serv: systask.ServPath,
	})
	require.NoError(t, err)

	require.NoError(t, k.Run())

	m, rerr, ok := k.GetTaskResult(id)
	require.True(t, ok)
	require.NoError(t, rerr)
	require.NotNil(t, m)

	got, ok := m.Msg.AsMapFind("msg")
	require.True(t, ok)
	s, _ := got.AsStr()
	assert.Equal(t, "x", s)
}
