package unit

import "fmt"

// Addr is the destination of a stream unit: the local kernel or a
// remote one identified by eight 16-bit fields.
type Addr struct {
	Remote bool
	Fields [8]uint16
}

// Local is the address of the running kernel.
var Local = Addr{}

// RemoteAddr builds a remote address from its eight fields.
func RemoteAddr(fields [8]uint16) Addr {
	return Addr{Remote: true, Fields: fields}
}

func (a Addr) String() string {
	if !a.Remote {
		return "loc"
	}
	return fmt.Sprintf("%#04x:%#04x:%#04x:%#04x:%#04x:%#04x:%#04x:%#04x",
		a.Fields[0], a.Fields[1], a.Fields[2], a.Fields[3],
		a.Fields[4], a.Fields[5], a.Fields[6], a.Fields[7])
}
