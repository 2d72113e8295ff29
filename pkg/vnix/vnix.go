// Package vnix wires the kernel together: built-in services, the
// super user and the root task.
package vnix

import (
	"fmt"

	"github.com/architector1324/vnix/pkg/kern"
	"github.com/architector1324/vnix/pkg/log"
	"github.com/architector1324/vnix/pkg/serv/syshw"
	"github.com/architector1324/vnix/pkg/serv/systask"
	"github.com/architector1324/vnix/pkg/serv/sysusr"
	"github.com/architector1324/vnix/pkg/serv/test"
	"github.com/architector1324/vnix/pkg/unit"
	"github.com/architector1324/vnix/pkg/usr"
)

// SuperUsr is the name of the user created at boot.
const SuperUsr = "super"

// Services returns the built-in service records in registration
// order.
func Services() []kern.Serv {
	return []kern.Serv{
		systask.Serv(),
		sysusr.Serv(),
		syshw.Serv(),
		test.EchoServ(),
		test.DumpServ(),
		test.DumpLoopServ(),
	}
}

// Boot populates a fresh kernel: registers the built-in services,
// creates and registers the super user. A failure here is fatal.
func Boot(k *kern.Kern) (usr.Usr, error) {
	logger := log.WithComponent("vnix")

	for _, s := range Services() {
		if err := k.RegServ(s); err != nil {
			return usr.Usr{}, fmt.Errorf("boot: %w", err)
		}
		if err := k.Println(fmt.Sprintf("INFO vnix:kern: service `%s` registered", s.Info.Name)); err != nil {
			return usr.Usr{}, err
		}
		logger.Info().Str("serv", s.Info.Name).Msg("service registered")
	}

	super, _, err := usr.New(SuperUsr, k.Drv.Rnd)
	if err != nil {
		return usr.Usr{}, fmt.Errorf("boot: %w", err)
	}
	if err := k.RegUsr(super); err != nil {
		return usr.Usr{}, fmt.Errorf("boot: %w", err)
	}
	if err := k.Println(fmt.Sprintf("INFO vnix:kern: user `%s` registered", super)); err != nil {
		return usr.Usr{}, err
	}
	logger.Info().Str("ath", super.Name).Msg("user registered")

	return super, nil
}

// Entry boots the kernel, schedules the root task from the given
// source text and runs the scheduler to completion.
func Entry(k *kern.Kern, initSrc, initServ string) error {
	if _, err := Boot(k); err != nil {
		return err
	}

	u, err := unit.Parse(initSrc)
	if err != nil {
		return fmt.Errorf("entry: %w", err)
	}

	if _, err := k.RegTask(SuperUsr, "init.load", kern.TaskRun{Unit: u, Serv: initServ}); err != nil {
		return fmt.Errorf("entry: %w", err)
	}

	return k.Run()
}
