package drv

import (
	"crypto/rand"
	"io"
	"os"
	"runtime"
	"time"
)

// Hosted drivers backed by the operating system.

// HostCLI writes to an io.Writer (stdout by default) and clears the
// screen with an ANSI sequence.
type HostCLI struct {
	Out io.Writer
}

func NewHostCLI() *HostCLI {
	return &HostCLI{Out: os.Stdout}
}

func (c *HostCLI) Clear() error {
	if _, err := io.WriteString(c.Out, "\x1b[2J\x1b[H"); err != nil {
		return ErrClear
	}
	return nil
}

func (c *HostCLI) Write(p []byte) (int, error) {
	n, err := c.Out.Write(p)
	if err != nil {
		return n, ErrWrite
	}
	return n, nil
}

func (c *HostCLI) Res() (int, int, error) {
	return 80, 24, nil
}

// HostTime is the system clock.
type HostTime struct {
	start time.Time
}

func NewHostTime() *HostTime {
	return &HostTime{start: time.Now()}
}

func (t *HostTime) Now() time.Time        { return time.Now() }
func (t *HostTime) Uptime() time.Duration { return time.Since(t.start) }

// HostRnd reads from the system entropy source.
type HostRnd struct{}

func (HostRnd) GetBytes(buf []byte) error {
	if _, err := rand.Read(buf); err != nil {
		return ErrGetBytes
	}
	return nil
}

// HostMem reports the Go runtime's view of process memory.
type HostMem struct{}

func (HostMem) Total(units MemSizeUnits) (uint64, error) {
	var st runtime.MemStats
	runtime.ReadMemStats(&st)
	return Scale(st.Sys, units), nil
}

func (HostMem) Free(units MemSizeUnits) (uint64, error) {
	var st runtime.MemStats
	runtime.ReadMemStats(&st)
	if st.Sys < st.Alloc {
		return 0, nil
	}
	return Scale(st.Sys-st.Alloc, units), nil
}
