package unit

import (
	"encoding/binary"
	"math"
)

// Canonical byte serialization. The encoding is deterministic across
// structurally equal units and injective over all variants: it is the
// input of message signing and hashing and the interning key of the
// data pool.

const (
	tagNone byte = iota
	tagBool
	tagByte
	tagIntSmall
	tagIntNat
	tagIntBig
	tagDecSmall
	tagDecBig
	tagStr
	tagRef
	tagStream
	tagPair
	tagList
	tagMap
)

const (
	addrTagLoc byte = iota
	addrTagRemote
)

// Bytes returns the canonical byte serialization of the unit.
func (u *Unit) Bytes() []byte {
	return u.appendBytes(make([]byte, 0, 64))
}

func (u *Unit) appendBytes(b []byte) []byte {
	switch u.kind {
	case KindNone:
		b = append(b, tagNone)
	case KindBool:
		v := byte(0)
		if u.boolv {
			v = 1
		}
		b = append(b, tagBool, v)
	case KindByte:
		b = append(b, tagByte, u.bytev)
	case KindInt:
		switch u.ik {
		case IntSmall:
			b = append(b, tagIntSmall)
			b = binary.BigEndian.AppendUint32(b, uint32(u.i32))
		case IntNat:
			b = append(b, tagIntNat)
			b = binary.BigEndian.AppendUint32(b, u.u32)
		default:
			b = append(b, tagIntBig)
			sign := byte(0)
			if u.big.Sign() < 0 {
				sign = 1
			}
			b = append(b, sign)
			b = appendSized(b, u.big.Bytes())
		}
	case KindDec:
		if u.dk == DecSmall {
			b = append(b, tagDecSmall)
			b = binary.BigEndian.AppendUint32(b, math.Float32bits(u.f32))
		} else {
			b = append(b, tagDecBig)
			sign := byte(0)
			if u.rat.Sign() < 0 {
				sign = 1
			}
			b = append(b, sign)
			b = appendSized(b, u.rat.Num().Bytes())
			b = appendSized(b, u.rat.Denom().Bytes())
		}
	case KindStr:
		b = append(b, tagStr)
		b = appendSized(b, []byte(u.str))
	case KindRef:
		b = append(b, tagRef)
		b = binary.BigEndian.AppendUint32(b, uint32(len(u.path)))
		for _, s := range u.path {
			b = appendSized(b, []byte(s))
		}
	case KindStream:
		b = append(b, tagStream)
		b = u.inner.appendBytes(b)
		b = appendSized(b, []byte(u.serv))
		if u.addr.Remote {
			b = append(b, addrTagRemote)
			for _, f := range u.addr.Fields {
				b = binary.BigEndian.AppendUint16(b, f)
			}
		} else {
			b = append(b, addrTagLoc)
		}
	case KindPair:
		b = append(b, tagPair)
		b = u.u0.appendBytes(b)
		b = u.u1.appendBytes(b)
	case KindList:
		b = append(b, tagList)
		b = binary.BigEndian.AppendUint32(b, uint32(len(u.list)))
		for _, el := range u.list {
			b = el.appendBytes(b)
		}
	case KindMap:
		b = append(b, tagMap)
		b = binary.BigEndian.AppendUint32(b, uint32(len(u.pairs)))
		for _, e := range u.pairs {
			b = e.Key.appendBytes(b)
			b = e.Val.appendBytes(b)
		}
	}
	return b
}

func appendSized(b, payload []byte) []byte {
	b = binary.BigEndian.AppendUint32(b, uint32(len(payload)))
	return append(b, payload...)
}
