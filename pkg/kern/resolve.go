package kern

import "github.com/architector1324/vnix/pkg/unit"

// The asynchronous unit resolver. Walking a unit may require work the
// kernel has not done yet: a ref points into the originating unit, a
// stream stands for a whole child task. Resolution therefore runs
// inside a task coroutine and may yield.

// ReadAsync resolves one level of u against the originating unit orig
// under the given athority. Refs are looked up in orig; a local
// stream registers a child task and cooperatively awaits its result,
// returning the callee's unit and its athority (which may differ when
// the callee re-signed). A remote stream is a reserved extension and
// resolves to absent. Any other unit resolves to itself.
func (ctx *Ctx) ReadAsync(u, orig *unit.Unit, ath string) (*unit.Unit, string, bool, error) {
	k := ctx.kern

	if path, ok := u.AsPath(); ok {
		found, ok := orig.Find(path...)
		if !ok {
			return nil, ath, false, nil
		}
		return found, ath, true, nil
	}

	if inner, serv, addr, ok := u.AsStream(); ok {
		if addr.Remote {
			return nil, ath, false, nil
		}

		id, err := k.RegTask(ath, "unit.read", TaskRun{Unit: inner, Serv: serv})
		if err != nil {
			return nil, ath, false, err
		}

		for {
			ctx.Yield()
			m, rerr, ok := k.GetTaskResult(id)
			if !ok {
				continue
			}
			if rerr != nil {
				return nil, ath, false, rerr
			}
			if m == nil {
				return nil, ath, false, nil
			}
			return m.Msg, m.Ath, true, nil
		}
	}

	return u, ath, true, nil
}

// AsMapFindAsync looks up key in u viewed as a map and resolves the
// found value.
func (ctx *Ctx) AsMapFindAsync(u *unit.Unit, key string, orig *unit.Unit, ath string) (*unit.Unit, string, bool, error) {
	found, ok := u.AsMapFind(key)
	if !ok {
		return nil, ath, false, nil
	}
	return ctx.ReadAsync(found, orig, ath)
}

// StrAsync resolves u and views it as a string.
func (ctx *Ctx) StrAsync(u, orig *unit.Unit, ath string) (string, string, bool, error) {
	res, ath, ok, err := ctx.ReadAsync(u, orig, ath)
	if err != nil || !ok {
		return "", ath, false, err
	}
	s, ok := res.AsStr()
	return s, ath, ok, nil
}

// UIntAsync resolves u and views it as an unsigned 32-bit integer. A
// non-negative signed 32-bit integer (what Parse yields for a small
// number) is accepted as well.
func (ctx *Ctx) UIntAsync(u, orig *unit.Unit, ath string) (uint32, string, bool, error) {
	res, ath, ok, err := ctx.ReadAsync(u, orig, ath)
	if err != nil || !ok {
		return 0, ath, false, err
	}
	if v, ok := res.AsInt(); ok && v >= 0 {
		return uint32(v), ath, true, nil
	}
	v, ok := res.AsUInt()
	return v, ath, ok, nil
}

// ListAsync resolves u and views it as a list.
func (ctx *Ctx) ListAsync(u, orig *unit.Unit, ath string) ([]*unit.Unit, string, bool, error) {
	res, ath, ok, err := ctx.ReadAsync(u, orig, ath)
	if err != nil || !ok {
		return nil, ath, false, err
	}
	lst, ok := res.AsList()
	return lst, ath, ok, nil
}
