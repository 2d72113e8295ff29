package unit

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// Kind discriminates the unit variants.
type Kind uint8

const (
	KindNone Kind = iota
	KindBool
	KindByte
	KindInt
	KindDec
	KindStr
	KindRef
	KindStream
	KindPair
	KindList
	KindMap
)

// IntKind discriminates the integer subvariants.
type IntKind uint8

const (
	IntSmall IntKind = iota // signed 32-bit
	IntNat                  // unsigned 32-bit
	IntBig                  // arbitrary precision
)

// DecKind discriminates the decimal subvariants.
type DecKind uint8

const (
	DecSmall DecKind = iota // 32-bit float
	DecBig                  // arbitrary precision rational
)

// Entry is a single map entry. Duplicate keys are permitted; lookup
// returns the first match.
type Entry struct {
	Key *Unit
	Val *Unit
}

// Unit is the universal structured value of the system. Units are
// immutable after construction; mutation produces a new Unit.
type Unit struct {
	kind Kind

	boolv bool
	bytev byte

	ik  IntKind
	i32 int32
	u32 uint32
	big *big.Int

	dk  DecKind
	f32 float32
	rat *big.Rat

	str  string
	path []string

	inner *Unit
	serv  string
	addr  Addr

	u0, u1 *Unit

	list  []*Unit
	pairs []Entry
}

var (
	noneUnit  = &Unit{kind: KindNone}
	trueUnit  = &Unit{kind: KindBool, boolv: true}
	falseUnit = &Unit{kind: KindBool}
)

// Constructors

func None() *Unit { return noneUnit }

func Bool(v bool) *Unit {
	if v {
		return trueUnit
	}
	return falseUnit
}

func Byte(v byte) *Unit { return &Unit{kind: KindByte, bytev: v} }

func Int(v int32) *Unit { return &Unit{kind: KindInt, ik: IntSmall, i32: v} }

func UInt(v uint32) *Unit { return &Unit{kind: KindInt, ik: IntNat, u32: v} }

func IntBigVal(v *big.Int) *Unit {
	return &Unit{kind: KindInt, ik: IntBig, big: new(big.Int).Set(v)}
}

func Dec(v float32) *Unit { return &Unit{kind: KindDec, dk: DecSmall, f32: v} }

func DecBigVal(v *big.Rat) *Unit {
	return &Unit{kind: KindDec, dk: DecBig, rat: new(big.Rat).Set(v)}
}

func Str(s string) *Unit { return &Unit{kind: KindStr, str: s} }

// Path builds a ref unit from path segments.
func Path(segs ...string) *Unit {
	path := make([]string, len(segs))
	copy(path, segs)
	return &Unit{kind: KindRef, path: path}
}

// StreamLoc builds a stream unit addressed to the local kernel.
func StreamLoc(u *Unit, serv string) *Unit {
	return Stream(u, serv, Local)
}

func Stream(u *Unit, serv string, addr Addr) *Unit {
	return &Unit{kind: KindStream, inner: u, serv: serv, addr: addr}
}

func PairOf(u0, u1 *Unit) *Unit { return &Unit{kind: KindPair, u0: u0, u1: u1} }

func List(lst ...*Unit) *Unit {
	out := make([]*Unit, len(lst))
	copy(out, lst)
	return &Unit{kind: KindList, list: out}
}

func Map(pairs ...Entry) *Unit {
	out := make([]Entry, len(pairs))
	copy(out, pairs)
	return &Unit{kind: KindMap, pairs: out}
}

// E is a shorthand map entry constructor with a string key.
func E(key string, val *Unit) Entry { return Entry{Key: Str(key), Val: val} }

// Kind reports the variant of the unit.
func (u *Unit) Kind() Kind { return u.kind }

// Accessors. Each reports the carried value when the variant matches.

func (u *Unit) AsNone() bool { return u.kind == KindNone }

func (u *Unit) AsBool() (bool, bool) {
	if u.kind != KindBool {
		return false, false
	}
	return u.boolv, true
}

func (u *Unit) AsByte() (byte, bool) {
	if u.kind != KindByte {
		return 0, false
	}
	return u.bytev, true
}

func (u *Unit) AsInt() (int32, bool) {
	if u.kind != KindInt || u.ik != IntSmall {
		return 0, false
	}
	return u.i32, true
}

func (u *Unit) AsUInt() (uint32, bool) {
	if u.kind != KindInt || u.ik != IntNat {
		return 0, false
	}
	return u.u32, true
}

func (u *Unit) AsIntBig() (*big.Int, bool) {
	if u.kind != KindInt || u.ik != IntBig {
		return nil, false
	}
	return u.big, true
}

func (u *Unit) AsDec() (float32, bool) {
	if u.kind != KindDec || u.dk != DecSmall {
		return 0, false
	}
	return u.f32, true
}

func (u *Unit) AsDecBig() (*big.Rat, bool) {
	if u.kind != KindDec || u.dk != DecBig {
		return nil, false
	}
	return u.rat, true
}

func (u *Unit) AsStr() (string, bool) {
	if u.kind != KindStr {
		return "", false
	}
	return u.str, true
}

func (u *Unit) AsPath() ([]string, bool) {
	if u.kind != KindRef {
		return nil, false
	}
	return u.path, true
}

func (u *Unit) AsStream() (*Unit, string, Addr, bool) {
	if u.kind != KindStream {
		return nil, "", Addr{}, false
	}
	return u.inner, u.serv, u.addr, true
}

func (u *Unit) AsPair() (*Unit, *Unit, bool) {
	if u.kind != KindPair {
		return nil, nil, false
	}
	return u.u0, u.u1, true
}

func (u *Unit) AsList() ([]*Unit, bool) {
	if u.kind != KindList {
		return nil, false
	}
	return u.list, true
}

func (u *Unit) AsMap() ([]Entry, bool) {
	if u.kind != KindMap {
		return nil, false
	}
	return u.pairs, true
}

// AsMapFind scans the map for the first entry whose key, viewed as a
// string, equals key.
func (u *Unit) AsMapFind(key string) (*Unit, bool) {
	if u.kind != KindMap {
		return nil, false
	}
	for _, e := range u.pairs {
		if s, ok := e.Key.AsStr(); ok && s == key {
			return e.Val, true
		}
	}
	return nil, false
}

// Find descends by iterating path segments; each segment looks up the
// key in the current map.
func (u *Unit) Find(path ...string) (*Unit, bool) {
	cur := u
	for _, seg := range path {
		next, ok := cur.AsMapFind(seg)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

// Merge overlays other onto u. If both are maps the result is the
// ordered union where other's entry for a duplicate key overrides u's;
// otherwise other replaces u.
func (u *Unit) Merge(other *Unit) *Unit {
	left, lok := u.AsMap()
	right, rok := other.AsMap()
	if !lok || !rok {
		return other
	}

	out := make([]Entry, 0, len(left)+len(right))
	for _, e := range left {
		ks, ok := e.Key.AsStr()
		if ok {
			if over, found := other.AsMapFind(ks); found {
				out = append(out, Entry{Key: e.Key, Val: over})
				continue
			}
		}
		out = append(out, e)
	}
	for _, e := range right {
		ks, ok := e.Key.AsStr()
		if ok {
			if _, found := u.AsMapFind(ks); found {
				continue
			}
		}
		out = append(out, e)
	}
	return &Unit{kind: KindMap, pairs: out}
}

// Equal reports structural equality.
func Equal(a, b *Unit) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil || a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNone:
		return true
	case KindBool:
		return a.boolv == b.boolv
	case KindByte:
		return a.bytev == b.bytev
	case KindInt:
		if a.ik != b.ik {
			return false
		}
		switch a.ik {
		case IntSmall:
			return a.i32 == b.i32
		case IntNat:
			return a.u32 == b.u32
		default:
			return a.big.Cmp(b.big) == 0
		}
	case KindDec:
		if a.dk != b.dk {
			return false
		}
		if a.dk == DecSmall {
			return math.Float32bits(a.f32) == math.Float32bits(b.f32)
		}
		return a.rat.Cmp(b.rat) == 0
	case KindStr:
		return a.str == b.str
	case KindRef:
		if len(a.path) != len(b.path) {
			return false
		}
		for i := range a.path {
			if a.path[i] != b.path[i] {
				return false
			}
		}
		return true
	case KindStream:
		return a.serv == b.serv && a.addr == b.addr && Equal(a.inner, b.inner)
	case KindPair:
		return Equal(a.u0, b.u0) && Equal(a.u1, b.u1)
	case KindList:
		if len(a.list) != len(b.list) {
			return false
		}
		for i := range a.list {
			if !Equal(a.list[i], b.list[i]) {
				return false
			}
		}
		return true
	case KindMap:
		if len(a.pairs) != len(b.pairs) {
			return false
		}
		for i := range a.pairs {
			if !Equal(a.pairs[i].Key, b.pairs[i].Key) || !Equal(a.pairs[i].Val, b.pairs[i].Val) {
				return false
			}
		}
		return true
	}
	return false
}

// MemSizeUnits selects the unit of Size reports.
type MemSizeUnits int

const (
	Bytes MemSizeUnits = iota
	Kilo
	Mega
	Giga
)

const unitOverhead = 144 // in-memory footprint of the Unit box itself

// Size reports the recursive storage footprint of the unit.
func (u *Unit) Size(units MemSizeUnits) int {
	size := unitOverhead
	switch u.kind {
	case KindInt:
		if u.ik == IntBig {
			size += len(u.big.Bytes())
		}
	case KindDec:
		if u.dk == DecBig {
			size += len(u.rat.Num().Bytes()) + len(u.rat.Denom().Bytes())
		}
	case KindStr:
		size += len(u.str)
	case KindRef:
		for _, s := range u.path {
			size += len(s)
		}
	case KindStream:
		size += u.inner.Size(Bytes) + len(u.serv)
	case KindPair:
		size += u.u0.Size(Bytes) + u.u1.Size(Bytes)
	case KindList:
		for _, el := range u.list {
			size += el.Size(Bytes)
		}
	case KindMap:
		for _, e := range u.pairs {
			size += e.Key.Size(Bytes) + e.Val.Size(Bytes)
		}
	}

	switch units {
	case Kilo:
		return size / 1024
	case Mega:
		return size / (1024 * 1024)
	case Giga:
		return size / (1024 * 1024 * 1024)
	default:
		return size
	}
}

// String renders the unit in its textual form. None, bools, bytes,
// signed 32-bit ints, strings without backquotes, refs, pairs, lists,
// maps and local streams parse back to an equal unit. Unsigned and
// arbitrary-precision ints parse back as the first integer subvariant
// their value fits, rationals and non-finite or exponent-form decimals
// do not read back,
// and remote stream addresses are not read back.
func (u *Unit) String() string {
	var b strings.Builder
	u.render(&b)
	return b.String()
}

func (u *Unit) render(b *strings.Builder) {
	switch u.kind {
	case KindNone:
		b.WriteByte('-')
	case KindBool:
		if u.boolv {
			b.WriteByte('t')
		} else {
			b.WriteByte('f')
		}
	case KindByte:
		fmt.Fprintf(b, "0x%02x", u.bytev)
	case KindInt:
		switch u.ik {
		case IntSmall:
			b.WriteString(strconv.FormatInt(int64(u.i32), 10))
		case IntNat:
			b.WriteString(strconv.FormatUint(uint64(u.u32), 10))
		default:
			b.WriteString(u.big.String())
		}
	case KindDec:
		if u.dk == DecSmall {
			s := strconv.FormatFloat(float64(u.f32), 'g', -1, 32)
			if !strings.ContainsAny(s, ".eE") {
				s += ".0"
			}
			b.WriteString(s)
		} else {
			b.WriteString(u.rat.RatString())
		}
	case KindStr:
		if isBareStr(u.str) {
			b.WriteString(u.str)
		} else {
			b.WriteByte('`')
			b.WriteString(u.str)
			b.WriteByte('`')
		}
	case KindRef:
		b.WriteByte('@')
		b.WriteString(strings.Join(u.path, "."))
	case KindStream:
		u.inner.render(b)
		b.WriteByte('@')
		b.WriteString(u.serv)
		if u.addr.Remote {
			b.WriteByte('@')
			b.WriteString(u.addr.String())
		}
	case KindPair:
		b.WriteByte('(')
		u.u0.render(b)
		b.WriteByte(' ')
		u.u1.render(b)
		b.WriteByte(')')
	case KindList:
		b.WriteByte('[')
		for i, el := range u.list {
			if i > 0 {
				b.WriteByte(' ')
			}
			el.render(b)
		}
		b.WriteByte(']')
	case KindMap:
		b.WriteByte('{')
		for i, e := range u.pairs {
			if i > 0 {
				b.WriteByte(' ')
			}
			e.Key.render(b)
			b.WriteByte(':')
			e.Val.render(b)
		}
		b.WriteByte('}')
	}
}

func isBareStr(s string) bool {
	if s == "" || s == "-" || s == "t" || s == "f" {
		return false
	}
	first := rune(s[0])
	if first >= '0' && first <= '9' {
		return false
	}
	for _, r := range s {
		if !isWordRune(r) {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '.' || r == '_' || r == '#':
		return true
	}
	return false
}
