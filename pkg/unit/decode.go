package unit

import (
	"encoding/binary"
	"errors"
	"math"
	"math/big"
)

// ErrDecode reports a malformed canonical byte serialization.
var ErrDecode = errors.New("unit: decode fault")

// FromBytes decodes a canonical byte serialization produced by Bytes.
func FromBytes(b []byte) (*Unit, error) {
	u, rest, err := decode(b)
	if err != nil {
		return nil, err
	}
	if len(rest) != 0 {
		return nil, ErrDecode
	}
	return u, nil
}

func decode(b []byte) (*Unit, []byte, error) {
	if len(b) == 0 {
		return nil, nil, ErrDecode
	}
	tag, b := b[0], b[1:]

	switch tag {
	case tagNone:
		return None(), b, nil
	case tagBool:
		if len(b) < 1 {
			return nil, nil, ErrDecode
		}
		return Bool(b[0] != 0), b[1:], nil
	case tagByte:
		if len(b) < 1 {
			return nil, nil, ErrDecode
		}
		return Byte(b[0]), b[1:], nil
	case tagIntSmall:
		if len(b) < 4 {
			return nil, nil, ErrDecode
		}
		return Int(int32(binary.BigEndian.Uint32(b))), b[4:], nil
	case tagIntNat:
		if len(b) < 4 {
			return nil, nil, ErrDecode
		}
		return UInt(binary.BigEndian.Uint32(b)), b[4:], nil
	case tagIntBig:
		if len(b) < 1 {
			return nil, nil, ErrDecode
		}
		neg := b[0] == 1
		mag, b, err := readSized(b[1:])
		if err != nil {
			return nil, nil, err
		}
		v := new(big.Int).SetBytes(mag)
		if neg {
			v.Neg(v)
		}
		return IntBigVal(v), b, nil
	case tagDecSmall:
		if len(b) < 4 {
			return nil, nil, ErrDecode
		}
		return Dec(math.Float32frombits(binary.BigEndian.Uint32(b))), b[4:], nil
	case tagDecBig:
		if len(b) < 1 {
			return nil, nil, ErrDecode
		}
		neg := b[0] == 1
		num, b, err := readSized(b[1:])
		if err != nil {
			return nil, nil, err
		}
		den, b, err := readSized(b)
		if err != nil {
			return nil, nil, err
		}
		n := new(big.Int).SetBytes(num)
		if neg {
			n.Neg(n)
		}
		d := new(big.Int).SetBytes(den)
		if d.Sign() == 0 {
			return nil, nil, ErrDecode
		}
		return DecBigVal(new(big.Rat).SetFrac(n, d)), b, nil
	case tagStr:
		s, b, err := readSized(b)
		if err != nil {
			return nil, nil, err
		}
		return Str(string(s)), b, nil
	case tagRef:
		n, b, err := readLen(b)
		if err != nil {
			return nil, nil, err
		}
		path := make([]string, 0, n)
		for i := 0; i < n; i++ {
			var seg []byte
			seg, b, err = readSized(b)
			if err != nil {
				return nil, nil, err
			}
			path = append(path, string(seg))
		}
		return Path(path...), b, nil
	case tagStream:
		inner, b, err := decode(b)
		if err != nil {
			return nil, nil, err
		}
		serv, b, err := readSized(b)
		if err != nil {
			return nil, nil, err
		}
		if len(b) < 1 {
			return nil, nil, ErrDecode
		}
		addrTag, b := b[0], b[1:]
		addr := Local
		if addrTag == addrTagRemote {
			if len(b) < 16 {
				return nil, nil, ErrDecode
			}
			var fields [8]uint16
			for i := range fields {
				fields[i] = binary.BigEndian.Uint16(b[i*2:])
			}
			addr = RemoteAddr(fields)
			b = b[16:]
		} else if addrTag != addrTagLoc {
			return nil, nil, ErrDecode
		}
		return Stream(inner, string(serv), addr), b, nil
	case tagPair:
		u0, b, err := decode(b)
		if err != nil {
			return nil, nil, err
		}
		u1, b, err := decode(b)
		if err != nil {
			return nil, nil, err
		}
		return PairOf(u0, u1), b, nil
	case tagList:
		n, b, err := readLen(b)
		if err != nil {
			return nil, nil, err
		}
		lst := make([]*Unit, 0, n)
		for i := 0; i < n; i++ {
			var el *Unit
			el, b, err = decode(b)
			if err != nil {
				return nil, nil, err
			}
			lst = append(lst, el)
		}
		return List(lst...), b, nil
	case tagMap:
		n, b, err := readLen(b)
		if err != nil {
			return nil, nil, err
		}
		pairs := make([]Entry, 0, n)
		for i := 0; i < n; i++ {
			var k, v *Unit
			k, b, err = decode(b)
			if err != nil {
				return nil, nil, err
			}
			v, b, err = decode(b)
			if err != nil {
				return nil, nil, err
			}
			pairs = append(pairs, Entry{Key: k, Val: v})
		}
		return Map(pairs...), b, nil
	}
	return nil, nil, ErrDecode
}

func readLen(b []byte) (int, []byte, error) {
	if len(b) < 4 {
		return 0, nil, ErrDecode
	}
	return int(binary.BigEndian.Uint32(b)), b[4:], nil
}

func readSized(b []byte) ([]byte, []byte, error) {
	n, b, err := readLen(b)
	if err != nil {
		return nil, nil, err
	}
	if len(b) < n {
		return nil, nil, ErrDecode
	}
	return b[:n], b[n:], nil
}
