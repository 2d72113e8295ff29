package drv

import (
	"encoding/binary"
	"time"
)

// Stub drivers for tests and hosts without the corresponding device.

// StubDisp is a no-op display.
type StubDisp struct{}

func (StubDisp) Res() (int, int, error)                          { return 0, 0, nil }
func (StubDisp) ResList() ([][2]int, error)                      { return nil, nil }
func (StubDisp) SetRes(int, int) error                           { return nil }
func (StubDisp) Px(uint32, int, int) error                       { return nil }
func (StubDisp) Blk([2]int, [2]int, uint32, []uint32) error      { return nil }
func (StubDisp) Fill(func(int, int) uint32) error                { return nil }
func (StubDisp) Flush() error                                    { return nil }
func (StubDisp) FlushBlk([2]int, [2]int) error                   { return nil }
func (StubDisp) Mouse(bool) (*Mouse, error)                      { return nil, nil }

// PRng is a deterministic pseudo random generator seeded with 32
// bytes. The seed advances with every fill, like the original stub.
type PRng struct {
	Seed [32]byte
}

func (r *PRng) GetBytes(buf []byte) error {
	// fold the seed words through the finalizer so every position
	// matters and equal words do not cancel out
	var state uint64
	for i := 0; i < len(r.Seed); i += 8 {
		state ^= binary.BigEndian.Uint64(r.Seed[i : i+8])
		state = (state ^ (state >> 30)) * 0xbf58476d1ce4e5b9
		state = (state ^ (state >> 27)) * 0x94d049bb133111eb
		state ^= state >> 31
	}

	for i := range buf {
		// splitmix64 step
		state += 0x9e3779b97f4a7c15
		z := state
		z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
		z = (z ^ (z >> 27)) * 0x94d049bb133111eb
		z ^= z >> 31
		buf[i] = byte(z)
	}

	n := copy(r.Seed[:], buf)
	for i := n; i < 32; i++ {
		state += 0x9e3779b97f4a7c15
		r.Seed[i] = byte(state)
	}
	return nil
}

// StubTime is a clock frozen at the zero time.
type StubTime struct{}

func (StubTime) Now() time.Time          { return time.Time{} }
func (StubTime) Uptime() time.Duration   { return 0 }

// StubMem reports a fixed memory size.
type StubMem struct {
	TotalBytes uint64
	FreeBytes  uint64
}

func (m StubMem) Free(units MemSizeUnits) (uint64, error)  { return Scale(m.FreeBytes, units), nil }
func (m StubMem) Total(units MemSizeUnits) (uint64, error) { return Scale(m.TotalBytes, units), nil }
