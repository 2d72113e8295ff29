package sysusr_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/architector1324/vnix/pkg/drv"
	"github.com/architector1324/vnix/pkg/kern"
	"github.com/architector1324/vnix/pkg/serv/sysusr"
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
	require.NoError(t, k.RegServ(sysusr.Serv()))
	return k, out
}

func TestRegisterNewUser(t *testing.T) {
	k, out := newTestKern(t)

	id, err := k.RegTask("super", "init.load", kern.TaskRun{
		Unit: unit.Map(unit.E("ath", unit.Str("alice"))),
		Serv: sysusr.ServPath,
	})
	require.NoError(t, err)

	require.NoError(t, k.Run())

	alice, err := k.GetUsr("alice")
	require.NoError(t, err)
	assert.True(t, alice.HasPriv())

	m, rerr, ok := k.GetTaskResult(id)
	require.True(t, ok)
	require.NoError(t, rerr)
	require.NotNil(t, m)

	// the reply is signed by the fresh user and carries the account
	assert.Equal(t, "alice", m.Ath)
	account, ok := m.Msg.AsMapFind("msg")
	require.True(t, ok)
	_, ok = account.AsMapFind("pub")
	assert.True(t, ok)
	_, ok = account.AsMapFind("priv")
	assert.True(t, ok)

	assert.Contains(t, out.String(), "user `{ath:alice")
	assert.Contains(t, out.String(), "please, remember this account")
}

func TestRegisterGuest(t *testing.T) {
	k, _ := newTestKern(t)

	// a key pair generated elsewhere
	rnd := &drv.PRng{}
	for i := range rnd.Seed {
		rnd.Seed[i] = 7
	}
	foreign, _, err := usr.New("bob", rnd)
	require.NoError(t, err)

	id, err := k.RegTask("super", "init.load", kern.TaskRun{
		Unit: unit.Map(
			unit.E("ath", unit.Str("bob")),
			unit.E("pub", unit.Str(foreign.PubKey)),
		),
		Serv: sysusr.ServPath,
	})
	require.NoError(t, err)

	require.NoError(t, k.Run())

	bob, err := k.GetUsr("bob")
	require.NoError(t, err)
	assert.False(t, bob.HasPriv(), "guest users are read-only")

	// a guest cannot sign, so the reply stays under the caller
	m, rerr, ok := k.GetTaskResult(id)
	require.True(t, ok)
	require.NoError(t, rerr)
	assert.Equal(t, "super", m.Ath)
}

func TestDuplicateUserFails(t *testing.T) {
	k, _ := newTestKern(t)

	id, err := k.RegTask("super", "init.load", kern.TaskRun{
		Unit: unit.Map(
			unit.E("ath", unit.Str("super")),
			unit.E("pub", unit.Str("someotherkey")),
		),
		Serv: sysusr.ServPath,
	})
	require.NoError(t, err)

	require.NoError(t, k.Run())

	_, rerr, ok := k.GetTaskResult(id)
	require.True(t, ok)
	assert.ErrorIs(t, rerr, kern.ErrUsrNameAlreadyReg)
}

func TestHelpInfo(t *testing.T) {
	k, _ := newTestKern(t)

	id, err := k.RegTask("super", "init.load", kern.TaskRun{
		Unit: unit.Str("help.info"),
		Serv: sysusr.ServPath,
	})
	require.NoError(t, err)

	require.NoError(t, k.Run())

	m, rerr, ok := k.GetTaskResult(id)
	require.True(t, ok)
	require.NoError(t, rerr)

	info, ok := m.Msg.AsMapFind("msg")
	require.True(t, ok)
	s, _ := info.AsStr()
	assert.Equal(t, "Users management service", s)
}
