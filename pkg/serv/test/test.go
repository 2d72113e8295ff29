// Package test implements the test.echo and test.dump services used
// to exercise the kernel.
package test

import (
	"fmt"

	"github.com/architector1324/vnix/pkg/kern"
	"github.com/architector1324/vnix/pkg/msg"
)

const (
	EchoPath     = "test.echo"
	DumpPath     = "test.dump"
	DumpLoopPath = "test.dump.loop"
)

// EchoServ returns the echo service: the input message comes back
// unchanged.
func EchoServ() kern.Serv {
	return kern.NewServ(EchoPath, "{name:test.echo info:`Returns the message back`}", echoHlr)
}

func echoHlr(ctx *kern.Ctx, m msg.Msg) (*msg.Msg, error) {
	return &m, nil
}

// DumpServ returns the dump service: prints the unit to the terminal
// and produces no message.
func DumpServ() kern.Serv {
	return kern.NewServ(DumpPath, "{name:test.dump info:`Prints the message to the terminal`}", dumpHlr)
}

func dumpHlr(ctx *kern.Ctx, m msg.Msg) (*msg.Msg, error) {
	if err := ctx.Kern().Println(fmt.Sprintf("test: %s", m.Msg)); err != nil {
		return nil, err
	}
	ctx.Yield()
	return nil, nil
}

// DumpLoopServ returns the looping dump service: prints the unit five
// times, yielding between prints.
func DumpLoopServ() kern.Serv {
	return kern.NewServ(DumpLoopPath, "{name:test.dump.loop info:`Prints the message five times`}", dumpLoopHlr)
}

func dumpLoopHlr(ctx *kern.Ctx, m msg.Msg) (*msg.Msg, error) {
	for i := 0; i < 5; i++ {
		if err := ctx.Kern().Println(fmt.Sprintf("test %d: %s", i, m.Msg)); err != nil {
			return nil, err
		}
		ctx.Yield()
	}
	return nil, nil
}
