// Package msg implements the signed envelope wrapping a unit under a
// named athority.
package msg

import (
	"github.com/architector1324/vnix/pkg/unit"
	"github.com/architector1324/vnix/pkg/usr"
)

// Msg bundles a unit with the name of the user that produced it, the
// base64 signature of the unit's canonical bytes and their base64
// SHA3-256 hash. Messages are immutable.
type Msg struct {
	Ath  string
	Msg  *unit.Unit
	Sign string
	Hash string
}

// New signs and hashes the unit under the given user. Fails when the
// user carries no private key.
func New(u usr.Usr, m *unit.Unit) (Msg, error) {
	sign, err := u.Sign(m)
	if err != nil {
		return Msg{}, err
	}
	return Msg{
		Ath:  u.Name,
		Msg:  m,
		Sign: sign,
		Hash: usr.Hash(m),
	}, nil
}

// MergeWith returns the shallow merge of the message's unit with u:
// map keys of u override, non-maps are replaced. The result must be
// re-signed (see Kern.Msg) before it can travel as an envelope again.
func (m Msg) MergeWith(u *unit.Unit) *unit.Unit {
	return m.Msg.Merge(u)
}
