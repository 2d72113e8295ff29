// Package systask implements the sys.task service: task composition
// operators (loop, sep, chain, que, sim, stk), running-task
// introspection and kill signalling.
package systask

import (
	"github.com/architector1324/vnix/pkg/kern"
	"github.com/architector1324/vnix/pkg/msg"
	"github.com/architector1324/vnix/pkg/serv"
	"github.com/architector1324/vnix/pkg/unit"
)

// ServPath is the registered name of the service.
const ServPath = "sys.task"

var servHelp = unit.Map(
	unit.E("name", unit.Str(ServPath)),
	unit.E("info", unit.Str("Service for task management")),
	unit.E("tut", unit.List(
		unit.Map(
			unit.E("info", unit.Str("Run task from stream")),
			unit.E("com", unit.Str("{sum:[1 2 3]}@math.calc@sys.task")),
		),
		unit.Map(
			unit.E("info", unit.Str("Run loop task from stream")),
			unit.E("com", unit.Str("(task.loop (5 (say a)@io.term))@sys.task")),
		),
		unit.Map(
			unit.E("info", unit.Str("Run parallel task")),
			unit.E("com", unit.Str("(task.sep a@io.term)@sys.task")),
		),
		unit.Map(
			unit.E("info", unit.Str("Run task chain with current message")),
			unit.E("com", unit.Str("{sum:[1 2 3] task:[math.calc io.term]}@sys.task")),
		),
		unit.Map(
			unit.E("info", unit.Str("Run several parallel tasks")),
			unit.E("com", unit.Str("(task.sim [a@io.term b@io.term])@sys.task")),
		),
		unit.Map(
			unit.E("info", unit.Str("Run sequence of tasks")),
			unit.E("com", unit.Str("(task.que [a@io.term b@io.term])@sys.task")),
		),
		unit.Map(
			unit.E("info", unit.Str("Send every message of a list to one service")),
			unit.E("com", unit.Str("(task.stk [a b]@io.term)@sys.task")),
		),
		unit.Map(
			unit.E("info", unit.Str("Get information about running tasks")),
			unit.E("com", unit.Str("get@sys.task")),
		),
		unit.Map(
			unit.E("info", unit.Str("Kill task by id")),
			unit.E("com", unit.Str("(kill 2)@sys.task")),
		),
	)),
	unit.E("man", unit.Map(
		unit.E("task.loop", unit.Str("(task.loop stream) | (task.loop (uint stream)) | {task.loop:stream}")),
		unit.E("task.sep", unit.Str("(task.sep stream) | {task.sep:stream}")),
		unit.E("task", unit.Str("{task:[serv] msg:unit}")),
		unit.E("task.sim", unit.Str("(task.sim [unit@serv]) | {task.sim:[unit@serv]}")),
		unit.E("task.que", unit.Str("(task.que [unit@serv]) | {task.que:[unit@serv]}")),
		unit.E("task.stk", unit.Str("(task.stk [unit]@serv) | {task.stk:[unit]@serv}")),
		unit.E("get", unit.Str("get | get.run | get.all | get.tree")),
		unit.E("kill", unit.Str("(kill uint)")),
	)),
)

// Serv returns the service record.
func Serv() kern.Serv {
	return kern.NewServ(ServPath, servHelp.String(), Hlr)
}

// opBody extracts the operand of an operator recognized either as a
// map key or as the head of a pair.
func opBody(ctx *kern.Ctx, u, orig *unit.Unit, op, ath string) (*unit.Unit, string, bool, error) {
	if body, ok := u.AsMapFind(op); ok {
		return body, ath, true, nil
	}
	if head, body, ok := u.AsPair(); ok {
		s, ath, ok, err := ctx.StrAsync(head, orig, ath)
		if err != nil || !ok {
			return nil, ath, false, err
		}
		if s != op {
			return nil, ath, false, nil
		}
		return body, ath, true, nil
	}
	return nil, ath, false, nil
}

// taskResult awaits the result of a child task, yielding between
// polls.
func taskResult(ctx *kern.Ctx, id uint) (*msg.Msg, error) {
	k := ctx.Kern()
	for {
		ctx.Yield()
		m, err, ok := k.GetTaskResult(id)
		if !ok {
			continue
		}
		return m, err
	}
}

// loopOp executes a stream either count times or indefinitely.
func loopOp(ctx *kern.Ctx, u, orig *unit.Unit, ath string) (string, bool, error) {
	body, ath, ok, err := opBody(ctx, u, orig, "task.loop", ath)
	if err != nil || !ok {
		return ath, false, err
	}

	// counted form: (count stream)
	if cntU, inner, isPair := body.AsPair(); isPair {
		cnt, ath, ok, err := ctx.UIntAsync(cntU, orig, ath)
		if err != nil || !ok {
			return ath, false, err
		}
		for i := uint32(0); i < cnt; i++ {
			_, nath, ok, err := ctx.ReadAsync(inner, orig, ath)
			if err != nil {
				return ath, false, err
			}
			if ok {
				ath = nath
			}
		}
		return ath, true, nil
	}

	// infinite
	for {
		if _, _, _, err := ctx.ReadAsync(body, orig, ath); err != nil {
			return ath, false, err
		}
		ctx.Yield()
	}
}

// sepOp registers a detached child task and does not await it.
func sepOp(ctx *kern.Ctx, u, orig *unit.Unit, ath string) (string, bool, error) {
	body, ath, ok, err := opBody(ctx, u, orig, "task.sep", ath)
	if err != nil || !ok {
		return ath, false, err
	}

	if inner, servName, addr, ok := body.AsStream(); ok && !addr.Remote {
		if _, err := ctx.Kern().RegTask(ath, ServPath, kern.TaskRun{Unit: inner, Serv: servName}); err != nil {
			return ath, false, err
		}
	}
	return ath, true, nil
}

// chainOp pipes a message through a list of services, threading each
// output as the next input's base.
func chainOp(ctx *kern.Ctx, u, orig *unit.Unit, ath string) (*unit.Unit, string, bool, error) {
	k := ctx.Kern()

	lstU, ath, ok, err := ctx.AsMapFindAsync(u, "task", orig, ath)
	if err != nil || !ok {
		return nil, ath, false, err
	}
	lst, ok := lstU.AsList()
	if !ok {
		return nil, ath, false, nil
	}

	cur := u
	if m, nath, ok, err := ctx.AsMapFindAsync(u, "msg", orig, ath); err != nil {
		return nil, ath, false, err
	} else if ok {
		cur = m
		ath = nath
	}

	for _, p := range lst {
		servName, nath, ok, err := ctx.StrAsync(p, orig, ath)
		if err != nil || !ok {
			return nil, ath, false, err
		}

		prev := cur
		id, err := k.RegTask(nath, ServPath, kern.TaskRun{Unit: cur, Serv: servName})
		if err != nil {
			return nil, ath, false, err
		}

		res, err := taskResult(ctx, id)
		if err != nil {
			return nil, ath, false, err
		}
		if res == nil {
			return nil, ath, false, nil
		}

		cur = prev.Merge(res.Msg)
		ath = res.Ath
	}
	return cur, ath, true, nil
}

// queOp sequentially awaits a list of streams, threading athority.
func queOp(ctx *kern.Ctx, u, orig *unit.Unit, ath string) (string, bool, error) {
	body, ath, ok, err := opBody(ctx, u, orig, "task.que", ath)
	if err != nil || !ok {
		return ath, false, err
	}
	lst, ath, ok, err := ctx.ListAsync(body, orig, ath)
	if err != nil || !ok {
		return ath, false, err
	}

	for _, p := range lst {
		_, nath, ok, err := ctx.ReadAsync(p, orig, ath)
		if err != nil {
			return ath, false, err
		}
		if ok {
			ath = nath
		}
	}
	return ath, true, nil
}

// simOp registers every stream of a list as a detached child.
func simOp(ctx *kern.Ctx, u, orig *unit.Unit, ath string) error {
	body, ath, ok, err := opBody(ctx, u, orig, "task.sim", ath)
	if err != nil || !ok {
		return err
	}
	lst, ath, ok, err := ctx.ListAsync(body, orig, ath)
	if err != nil || !ok {
		return err
	}

	for _, p := range lst {
		if inner, servName, addr, ok := p.AsStream(); ok && !addr.Remote {
			if _, err := ctx.Kern().RegTask(ath, ServPath, kern.TaskRun{Unit: inner, Serv: servName}); err != nil {
				return err
			}
		}
	}
	return nil
}

// stkOp sends every element of a list to a single service, awaiting
// each.
func stkOp(ctx *kern.Ctx, u, orig *unit.Unit, ath string) (string, bool, error) {
	k := ctx.Kern()

	var lstU *unit.Unit
	var servName string

	if body, ok := u.AsMapFind("task.stk"); ok {
		inner, s, addr, ok := body.AsStream()
		if !ok || addr.Remote {
			return ath, false, nil
		}
		lstU, servName = inner, s
	} else if head, body, ok := u.AsPair(); ok {
		s, nath, ok, err := ctx.StrAsync(head, orig, ath)
		if err != nil || !ok {
			return ath, false, err
		}
		if s != "task.stk" {
			return ath, false, nil
		}
		ath = nath
		inner, sv, addr, ok := body.AsStream()
		if !ok || addr.Remote {
			return ath, false, nil
		}
		lstU, servName = inner, sv
	} else {
		return ath, false, nil
	}

	lst, ath, ok, err := ctx.ListAsync(lstU, orig, ath)
	if err != nil || !ok {
		return ath, false, err
	}

	for _, p := range lst {
		m, nath, ok, err := ctx.ReadAsync(p, orig, ath)
		if err != nil || !ok {
			return ath, false, err
		}
		ath = nath

		id, err := k.RegTask(ath, ServPath, kern.TaskRun{Unit: m, Serv: servName})
		if err != nil {
			return ath, false, err
		}
		res, err := taskResult(ctx, id)
		if err != nil {
			return ath, false, err
		}
		if res != nil {
			ath = res.Ath
		}
	}
	return ath, true, nil
}

// streamOp resolves a bare stream request.
func streamOp(ctx *kern.Ctx, u, orig *unit.Unit, ath string) (*unit.Unit, string, bool, error) {
	if _, _, _, ok := u.AsStream(); !ok {
		return nil, ath, false, nil
	}
	return ctx.ReadAsync(u, orig, ath)
}

// runOps tries every composition operator in order. It returns the
// unit to merge into the reply (nil when the operator produced no
// message) and whether any operator applied.
func runOps(ctx *kern.Ctx, u, orig *unit.Unit, ath string) (*unit.Unit, string, bool, error) {
	// loop
	if nath, ok, err := loopOp(ctx, u, orig, ath); err != nil {
		return nil, ath, false, err
	} else if ok {
		if nath != ath {
			return u, nath, true, nil
		}
		return nil, ath, true, nil
	}

	// separate
	if nath, ok, err := sepOp(ctx, u, orig, ath); err != nil {
		return nil, ath, false, err
	} else if ok {
		if nath != ath {
			return u, nath, true, nil
		}
		return nil, ath, true, nil
	}

	// chain: the accumulated unit already carries the threaded msg key
	if res, nath, ok, err := chainOp(ctx, u, orig, ath); err != nil {
		return nil, ath, false, err
	} else if ok {
		return res, nath, true, nil
	}

	// sim: registers children, never produces a message
	if err := simOp(ctx, u, orig, ath); err != nil {
		return nil, ath, false, err
	}

	// queue
	if nath, ok, err := queOp(ctx, u, orig, ath); err != nil {
		return nil, ath, false, err
	} else if ok {
		if nath != ath {
			return u, nath, true, nil
		}
		return nil, ath, true, nil
	}

	// stack
	if nath, ok, err := stkOp(ctx, u, orig, ath); err != nil {
		return nil, ath, false, err
	} else if ok {
		if nath != ath {
			return u, nath, true, nil
		}
		return nil, ath, true, nil
	}

	// stream
	if res, nath, ok, err := streamOp(ctx, u, orig, ath); err != nil {
		return nil, ath, false, err
	} else if ok {
		return unit.Map(unit.E("msg", res)), nath, true, nil
	}

	return nil, ath, false, nil
}

// getOp answers the running-task introspection topics.
func getOp(ctx *kern.Ctx, u *unit.Unit, ath string) (*unit.Unit, string, bool, error) {
	k := ctx.Kern()

	s, ok := u.AsStr()
	if !ok {
		return nil, ath, false, nil
	}
	switch s {
	case "get", "get.run", "get.all", "get.tree":
	default:
		return nil, ath, false, nil
	}

	curr, ok := k.TaskRunning()
	if !ok {
		return nil, ath, false, nil
	}
	tasks := k.TasksRunning()

	taskLst := make([]*unit.Unit, 0, len(tasks))
	for _, t := range tasks {
		taskLst = append(taskLst, taskInfo(t))
	}

	var tree *unit.Unit
	if len(tasks) > 0 {
		root := tasks[0]
		for _, t := range tasks[1:] {
			if t.ID < root.ID {
				root = t
			}
		}
		tree = taskTree(root, tasks)
	} else {
		tree = unit.None()
	}

	info := unit.Map(
		unit.E("run", taskInfo(curr)),
		unit.E("all", unit.List(taskLst...)),
		unit.E("tree", tree),
	)
	ctx.Yield()

	switch s {
	case "get":
		return info, ath, true, nil
	default:
		res, ok := info.Find(s[len("get."):])
		if !ok {
			return nil, ath, false, nil
		}
		return res, ath, true, nil
	}
}

func taskInfo(t kern.Task) *unit.Unit {
	return unit.Map(
		unit.E("id", unit.UInt(uint32(t.ID))),
		unit.E("name", unit.Str(t.Name)),
		unit.E("usr", unit.Str(t.Usr)),
		unit.E("par.id", unit.UInt(uint32(t.ParentID))),
	)
}

func taskTree(root kern.Task, tasks []kern.Task) *unit.Unit {
	children := unit.None()
	var childLst []*unit.Unit
	for _, t := range tasks {
		if t.ID != root.ID && t.ID != root.ParentID && t.ParentID == root.ID {
			childLst = append(childLst, taskTree(t, tasks))
		}
	}
	if len(childLst) > 0 {
		children = unit.List(childLst...)
	}
	return unit.Map(
		unit.E("id", unit.UInt(uint32(root.ID))),
		unit.E("name", unit.Str(root.Name)),
		unit.E("usr", unit.Str(root.Usr)),
		unit.E("child", children),
	)
}

// signalOp posts a kill signal recognized as (kill uint).
func signalOp(ctx *kern.Ctx, u, orig *unit.Unit, ath string) (string, bool, error) {
	sigU, idU, ok := u.AsPair()
	if !ok {
		return ath, false, nil
	}

	sig, ath, ok, err := ctx.StrAsync(sigU, orig, ath)
	if err != nil || !ok {
		return ath, false, err
	}
	id, ath, ok, err := ctx.UIntAsync(idU, orig, ath)
	if err != nil || !ok {
		return ath, false, err
	}

	if sig != "kill" {
		return ath, false, nil
	}
	if err := ctx.Kern().TaskSig(uint(id), kern.SigKill); err != nil {
		return ath, false, err
	}
	return ath, true, nil
}

// Hlr is the sys.task handler.
func Hlr(ctx *kern.Ctx, m msg.Msg) (*msg.Msg, error) {
	k := ctx.Kern()
	ath := m.Ath

	if s, ok := m.Msg.AsStr(); ok {
		if res, ok := serv.HelpTopic(servHelp, s); ok {
			ctx.Yield()
			out, err := k.Msg(ath, unit.Map(unit.E("msg", res)))
			if err != nil {
				return nil, err
			}
			return &out, nil
		}
	}

	resolved, ath, ok, err := ctx.ReadAsync(m.Msg, m.Msg, ath)
	if err != nil || !ok {
		return nil, err
	}

	// composition operators
	if u, nath, ok, err := runOps(ctx, resolved, resolved, ath); err != nil {
		return nil, err
	} else if ok {
		if u == nil {
			return nil, nil
		}
		out, err := k.Msg(nath, resolved.Merge(u))
		if err != nil {
			return nil, err
		}
		return &out, nil
	}

	// introspection
	if u, nath, ok, err := getOp(ctx, resolved, ath); err != nil {
		return nil, err
	} else if ok {
		out, err := k.Msg(nath, unit.Map(unit.E("msg", u)))
		if err != nil {
			return nil, err
		}
		return &out, nil
	}

	// signal
	if nath, ok, err := signalOp(ctx, resolved, resolved, ath); err != nil {
		return nil, err
	} else if ok {
		if nath != ath {
			out, err := k.Msg(nath, resolved)
			if err != nil {
				return nil, err
			}
			return &out, nil
		}
		return &m, nil
	}

	// a bare stream request was already resolved by the initial read;
	// answer with what it produced
	if !unit.Equal(resolved, m.Msg) {
		out, err := k.Msg(ath, resolved)
		if err != nil {
			return nil, err
		}
		return &out, nil
	}

	return &m, nil
}
