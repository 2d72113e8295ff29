// Package syshw implements the sys.hw service: memory sizing and
// data pool footprint queries through the Mem driver.
package syshw

import (
	"github.com/architector1324/vnix/pkg/drv"
	"github.com/architector1324/vnix/pkg/kern"
	"github.com/architector1324/vnix/pkg/msg"
	"github.com/architector1324/vnix/pkg/serv"
	"github.com/architector1324/vnix/pkg/unit"
)

// ServPath is the registered name of the service.
const ServPath = "sys.hw"

var servHelp = unit.Map(
	unit.E("name", unit.Str(ServPath)),
	unit.E("info", unit.Str("Service for hardware management")),
	unit.E("tut", unit.List(
		unit.Map(
			unit.E("info", unit.Str("Get free memory size")),
			unit.E("com", unit.Str("mem.free@sys.hw")),
		),
		unit.Map(
			unit.E("info", unit.Str("Get total memory size")),
			unit.E("com", unit.Str("mem.sum@sys.hw")),
		),
		unit.Map(
			unit.E("info", unit.Str("Get kernel data pool size")),
			unit.E("com", unit.Str("pool.size@sys.hw")),
		),
	)),
	unit.E("man", unit.Map(
		unit.E("mem", unit.Str("mem.free | mem.sum")),
		unit.E("pool", unit.Str("pool.size")),
	)),
)

// Serv returns the service record.
func Serv() kern.Serv {
	return kern.NewServ(ServPath, servHelp.String(), Hlr)
}

// Hlr is the sys.hw handler.
func Hlr(ctx *kern.Ctx, m msg.Msg) (*msg.Msg, error) {
	k := ctx.Kern()
	ath := m.Ath

	s, ok := m.Msg.AsStr()
	if !ok {
		resolved, nath, rok, err := ctx.ReadAsync(m.Msg, m.Msg, ath)
		if err != nil || !rok {
			return nil, err
		}
		ath = nath
		if s, ok = resolved.AsStr(); !ok {
			return &m, nil
		}
	}

	if res, ok := serv.HelpTopic(servHelp, s); ok {
		ctx.Yield()
		out, err := k.Msg(ath, unit.Map(unit.E("msg", res)))
		if err != nil {
			return nil, err
		}
		return &out, nil
	}

	var res *unit.Unit
	switch s {
	case "mem.free":
		free, err := k.Drv.Mem.Free(drv.Kilo)
		if err != nil {
			return nil, err
		}
		res = unit.UInt(uint32(free))
	case "mem.sum":
		total, err := k.Drv.Mem.Total(drv.Kilo)
		if err != nil {
			return nil, err
		}
		res = unit.UInt(uint32(total))
	case "pool.size":
		res = unit.UInt(uint32(k.PoolSize(unit.Bytes)))
	default:
		return &m, nil
	}

	ctx.Yield()
	out, err := k.Msg(ath, unit.Map(unit.E("msg", res)))
	if err != nil {
		return nil, err
	}
	return &out, nil
}
