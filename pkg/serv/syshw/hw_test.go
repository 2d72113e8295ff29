package syshw_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/architector1324/vnix/pkg/drv"
	"github.com/architector1324/vnix/pkg/kern"
	"github.com/architector1324/vnix/pkg/serv/syshw"
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
	require.NoError(t, k.RegServ(syshw.Serv()))
	return k
}

func query(t *testing.T, k *kern.Kern, req *unit.Unit) *unit.Unit {
	t.Helper()

	id, err := k.RegTask("super", "init.load", kern.TaskRun{Unit: req, Serv: syshw.ServPath})
	require.NoError(t, err)
	require.NoError(t, k.Run())

	m, rerr, ok := k.GetTaskResult(id)
	require.True(t, ok)
	require.NoError(t, rerr)
	require.NotNil(t, m)

	res, ok := m.Msg.AsMapFind("msg")
	require.True(t, ok)
	return res
}

func TestMemQueries(t *testing.T) {
	k := newTestKern(t)

	t.Run("mem.sum", func(t *testing.T) {
		v, ok := query(t, k, unit.Str("mem.sum")).AsUInt()
		require.True(t, ok)
		assert.Equal(t, uint32((1<<30)/1024), v)
	})

	t.Run("mem.free", func(t *testing.T) {
		v, ok := query(t, k, unit.Str("mem.free")).AsUInt()
		require.True(t, ok)
		assert.Equal(t, uint32((1<<29)/1024), v)
	})
}

func TestPoolSize(t *testing.T) {
	k := newTestKern(t)

	v, ok := query(t, k, unit.Str("pool.size")).AsUInt()
	require.True(t, ok)
	assert.Greater(t, v, uint32(0), "the request itself populates the pool")
}

func TestUnknownRequestEchoes(t *testing.T) {
	k := newTestKern(t)

	id, err := k.RegTask("super", "init.load", kern.TaskRun{
		Unit: unit.Str("nonsense"),
		Serv: syshw.ServPath,
	})
	require.NoError(t, err)
	require.NoError(t, k.Run())

	m, rerr, ok := k.GetTaskResult(id)
	require.True(t, ok)
	require.NoError(t, rerr)
	got, _ := m.Msg.AsStr()
	assert.Equal(t, "nonsense", got)
}
