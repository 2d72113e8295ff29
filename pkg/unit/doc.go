/*
Package unit implements the universal structured value of the system.

A unit is an immutable tagged tree: none, bool, byte, integers (signed
and unsigned 32-bit plus arbitrary precision), decimals (32-bit float
plus arbitrary precision rational), string, ref (a path into the
originating unit), stream (a deferred request to a named service),
pair, list and map. Maps are ordered with first-match lookup; duplicate
keys are allowed and the first wins.

# Architecture

	┌─────────────────── UNIT SUBSYSTEM ───────────────────┐
	│                                                       │
	│  ┌──────────────┐   canonical    ┌────────────────┐  │
	│  │  Unit tree    │──── bytes ────▶│  sign / hash    │  │
	│  │  (immutable)  │               │  pool keying    │  │
	│  └──────┬───────┘               └────────────────┘  │
	│         │                                             │
	│  ┌──────▼───────┐               ┌────────────────┐  │
	│  │  Pool         │   intern      │  render/parse   │  │
	│  │  (interner)   │◀── by value ─▶│  textual form   │  │
	│  └──────────────┘               └────────────────┘  │
	└───────────────────────────────────────────────────────┘

# Canonical bytes

Bytes produces a deterministic, injective serialization used as the
signing and hashing input and as the interning key. FromBytes inverts
it; the pair round-trips every variant.

# Interning

The kernel owns a Pool. Interning walks the tree bottom-up so equal
substructures collapse onto one representative pointer: structural
equality becomes pointer identity for everything handed out by the
pool.

# Textual form

String renders a unit; Parse reads one back. None, bools, bytes,
signed 32-bit ints, strings without backquotes, refs, pairs, lists,
maps and local streams
round-trip; other numeric subvariants and remote streams do not (see
Unit.String). The syntax is the
original one: `-`, `t`/`f`, `0x??`, decimal numbers, backquoted
strings, `@a.b.c`, `(a b)`, `[a b c]`, `{k:v}` and a chainable
`@serv` stream suffix.
*/
package unit
