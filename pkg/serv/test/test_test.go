package test_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/architector1324/vnix/pkg/drv"
	"github.com/architector1324/vnix/pkg/kern"
	servtest "github.com/architector1324/vnix/pkg/serv/test"
	"github.com/architector1324/vnix/pkg/store"
	"github.com/architector1324/vnix/pkg/term"
	"github.com/architector1324/vnix/pkg/unit"
	"github.com/architector1324/vnix/pkg/usr"
)

func newTestKern(t *testing.T) (*kern.Kern, *bytes.Buffer) {
	t.Helper()

	rnd := &drv.PRng{}
	for i := range rnd.Seed {
		rnd.Seed[i] = 1
	}

	out := &bytes.Buffer{}
	d := kern.KernDrv{
		CLI:  &drv.HostCLI{Out: out},
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
	return k, out
}

func TestEcho(t *testing.T) {
	k, _ := newTestKern(t)
	require.NoError(t, k.RegServ(servtest.EchoServ()))

	payload := unit.Map(unit.E("fill", unit.Byte(0xff)))
	id, err := k.RegTask("super", "t", kern.TaskRun{Unit: payload, Serv: servtest.EchoPath})
	require.NoError(t, err)
	require.NoError(t, k.Run())

	m, rerr, ok := k.GetTaskResult(id)
	require.True(t, ok)
	require.NoError(t, rerr)
	assert.True(t, unit.Equal(payload, m.Msg))
	assert.Equal(t, "super", m.Ath)
}

func TestDump(t *testing.T) {
	k, out := newTestKern(t)
	require.NoError(t, k.RegServ(servtest.DumpServ()))

	id, err := k.RegTask("super", "t", kern.TaskRun{Unit: unit.Str("hi"), Serv: servtest.DumpPath})
	require.NoError(t, err)
	require.NoError(t, k.Run())

	m, rerr, ok := k.GetTaskResult(id)
	require.True(t, ok)
	require.NoError(t, rerr)
	assert.Nil(t, m, "dump produces no message")
	assert.Contains(t, out.String(), "test: hi")
}

func TestDumpLoop(t *testing.T) {
	k, out := newTestKern(t)
	require.NoError(t, k.RegServ(servtest.DumpLoopServ()))

	_, err := k.RegTask("super", "t", kern.TaskRun{Unit: unit.Int(3), Serv: servtest.DumpLoopPath})
	require.NoError(t, err)
	require.NoError(t, k.Run())

	for i := 0; i < 5; i++ {
		assert.Equal(t, 1, strings.Count(out.String(), "test "+string(rune('0'+i))+": 3"))
	}
}
