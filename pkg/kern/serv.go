package kern

import (
	"github.com/architector1324/vnix/pkg/metrics"
	"github.com/architector1324/vnix/pkg/msg"
	"github.com/architector1324/vnix/pkg/unit"
)

// ServInfo carries the public identity of a service.
type ServInfo struct {
	Name string
}

// Hlr is a service handler: a coroutine body turning a message into a
// new message, or nothing.
type Hlr func(ctx *Ctx, m msg.Msg) (*msg.Msg, error)

// Serv is a named service record: identity, help text and handler.
type Serv struct {
	Info ServInfo
	Help string
	Hlr  Hlr
}

// NewServ builds a service record.
func NewServ(name, help string, hlr Hlr) Serv {
	return Serv{Info: ServInfo{Name: name}, Help: help, Hlr: hlr}
}

// Send verifies the message and prepares the handler coroutine body
// for it. A bad signature rejects the message before any handler code
// runs. `help`/`info` and `serv` topics are answered by the kernel
// itself.
func (k *Kern) Send(servName string, m msg.Msg) (Hlr, error) {
	user, err := k.GetUsr(m.Ath)
	if err != nil {
		return nil, err
	}
	if err := user.Verify(m.Msg, m.Sign, m.Hash); err != nil {
		metrics.MessagesRejected.Inc()
		return nil, err
	}
	metrics.MessagesVerified.Inc()

	serv, err := k.GetServ(servName)
	if err != nil {
		return nil, err
	}

	topic := ""
	if t, ok := m.Msg.AsMapFind("help"); ok {
		if s, ok := t.AsStr(); ok {
			topic = s
		}
	} else if s, ok := m.Msg.AsStr(); ok {
		topic = s
	}

	switch topic {
	case "info", "help":
		help := unit.Map(unit.E("msg", unit.Str(serv.Help)))
		return func(ctx *Ctx, m msg.Msg) (*msg.Msg, error) {
			ctx.Yield()
			out, err := k.Msg(m.Ath, help)
			if err != nil {
				return nil, err
			}
			return &out, nil
		}, nil
	case "serv":
		return func(ctx *Ctx, m msg.Msg) (*msg.Msg, error) {
			names := k.ServNames()
			lst := make([]*unit.Unit, len(names))
			for i, name := range names {
				lst[i] = unit.Str(name)
			}
			u := unit.Map(unit.E("msg", unit.List(lst...)))
			ctx.Yield()
			out, err := k.Msg(m.Ath, u)
			if err != nil {
				return nil, err
			}
			return &out, nil
		}, nil
	}

	return serv.Hlr, nil
}
