// Package sysusr implements the sys.usr service: user generation,
// guest and full login registration.
package sysusr

import (
	"fmt"

	"github.com/architector1324/vnix/pkg/kern"
	"github.com/architector1324/vnix/pkg/msg"
	"github.com/architector1324/vnix/pkg/serv"
	"github.com/architector1324/vnix/pkg/unit"
	"github.com/architector1324/vnix/pkg/usr"
)

// ServPath is the registered name of the service.
const ServPath = "sys.usr"

var servHelp = unit.Map(
	unit.E("name", unit.Str(ServPath)),
	unit.E("info", unit.Str("Users management service")),
	unit.E("tut", unit.List(
		unit.Map(
			unit.E("info", unit.Str("Register new test user")),
			unit.E("com", unit.Str("{ath:test}@sys.usr")),
		),
		unit.Map(
			unit.E("info", unit.Str("Login test guest user, read-only")),
			unit.E("com", unit.Str("{ath:test pub:`..`}@sys.usr")),
		),
		unit.Map(
			unit.E("info", unit.Str("Login test user")),
			unit.E("com", unit.Str("{ath:test pub:`..` priv:`..`}@sys.usr")),
		),
	)),
	unit.E("man", unit.None()),
)

// Serv returns the service record.
func Serv() kern.Serv {
	return kern.NewServ(ServPath, servHelp.String(), Hlr)
}

// auth recognizes the three registration shapes: a bare name, a
// guest {ath pub} and a full login {ath pub priv}. A generated user
// comes with its persistable rendering.
func auth(ctx *kern.Ctx, u, orig *unit.Unit, ath string) (usr.Usr, string, bool, error) {
	k := ctx.Kern()

	if name, _, ok, err := ctx.StrAsync(u, orig, ath); err != nil {
		return usr.Usr{}, "", false, err
	} else if ok {
		user, out, err := usr.New(name, k.Drv.Rnd)
		return user, out, err == nil, err
	}

	name, ath, ok, err := func() (string, string, bool, error) {
		v, nath, ok, err := ctx.AsMapFindAsync(u, "ath", orig, ath)
		if err != nil || !ok {
			return "", ath, false, err
		}
		s, ok := v.AsStr()
		return s, nath, ok, nil
	}()
	if err != nil || !ok {
		return usr.Usr{}, "", false, err
	}

	if pubU, nath, ok, err := ctx.AsMapFindAsync(u, "pub", orig, ath); err != nil {
		return usr.Usr{}, "", false, err
	} else if ok {
		pub, ok := pubU.AsStr()
		if !ok {
			return usr.Usr{}, "", false, nil
		}
		ath = nath

		if privU, _, ok, err := ctx.AsMapFindAsync(u, "priv", orig, ath); err != nil {
			return usr.Usr{}, "", false, err
		} else if ok {
			priv, ok := privU.AsStr()
			if !ok {
				return usr.Usr{}, "", false, nil
			}
			user, err := usr.Login(name, priv, pub)
			return user, "", err == nil, err
		}

		user, err := usr.Guest(name, pub)
		return user, "", err == nil, err
	}

	user, out, err := usr.New(name, k.Drv.Rnd)
	return user, out, err == nil, err
}

// Hlr is the sys.usr handler.
func Hlr(ctx *kern.Ctx, m msg.Msg) (*msg.Msg, error) {
	k := ctx.Kern()

	if s, ok := m.Msg.AsStr(); ok {
		if res, ok := serv.HelpTopic(servHelp, s); ok {
			ctx.Yield()
			out, err := k.Msg(m.Ath, unit.Map(unit.E("msg", res)))
			if err != nil {
				return nil, err
			}
			return &out, nil
		}
	}

	user, persisted, ok, err := auth(ctx, m.Msg, m.Msg, m.Ath)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &m, nil
	}

	if err := k.RegUsr(user); err != nil {
		return nil, err
	}
	if err := k.Println(fmt.Sprintf("INFO vnix:sys.usr: user `%s` registered", user)); err != nil {
		return nil, err
	}
	ctx.Yield()

	if persisted != "" {
		if err := k.Println(fmt.Sprintf("WARN vnix:sys.usr: please, remember this account and save it anywhere %s", persisted)); err != nil {
			return nil, err
		}
		ctx.Yield()

		account, err := unit.Parse(persisted)
		if err != nil {
			return nil, err
		}
		out, err := k.Msg(user.Name, unit.Map(unit.E("msg", account)))
		if err != nil {
			return nil, err
		}
		return &out, nil
	}

	// re-sign the request under the new user when it can sign
	if !user.HasPriv() {
		return &m, nil
	}
	out, err := k.Msg(user.Name, m.Msg)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
