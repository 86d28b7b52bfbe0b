// Package intern implements L1: deduplicated string and byte-sequence
// interning tables, assigning small integer identifiers used throughout
// the value/heap model.
package intern

// StringId identifies an interned string. Identifiers in [0, 255] are
// reserved: StringId(b) always equals the identifier assigned to the
// one-character string chr(b), constructible in O(1) without a table
// lookup.
type StringId uint32

// BytesId identifies an interned byte sequence, analogous to StringId but
// with no reserved single-byte block (Python bytes literals don't get the
// same fast path as identifier-shaped strings).
type BytesId uint32

const reservedByteBlock = 256

// ByteStringId returns the StringId for the one-character string chr(b),
// in O(1), without touching the table.
func ByteStringId(b byte) StringId {
	return StringId(b)
}

// Tables holds the append-only string/bytes interning pools for one
// runtime instance. Tables are never shared across runtimes; identifiers
// from one Tables are meaningless against another.
type Tables struct {
	strings   []string
	stringIdx map[string]StringId

	byteSeqs    [][]byte
	byteSeqsIdx map[string]BytesId
}

// NewTables constructs a Tables with the reserved single-byte block
// pre-populated.
func NewTables() *Tables {
	t := &Tables{
		stringIdx:   make(map[string]StringId),
		byteSeqsIdx: make(map[string]BytesId),
	}
	t.strings = make([]string, reservedByteBlock)
	for b := 0; b < reservedByteBlock; b++ {
		s := string([]byte{byte(b)})
		t.strings[b] = s
		t.stringIdx[s] = StringId(b)
	}
	return t
}

// Intern returns the StringId for s, assigning a new identifier on first
// occurrence. Repeated calls with the same s always return the same id
// (testable property 8.2.8).
func (t *Tables) Intern(s string) StringId {
	if len(s) == 1 {
		return ByteStringId(s[0])
	}
	if id, ok := t.stringIdx[s]; ok {
		return id
	}
	id := StringId(len(t.strings))
	t.strings = append(t.strings, s)
	t.stringIdx[s] = id
	return id
}

// Lookup returns the string for id. Panics on an id never issued by this
// Tables, which indicates a core bug (an identifier crossing runtime
// instances, or hand-rolled arithmetic on a StringId outside the reserved
// block).
func (t *Tables) Lookup(id StringId) string {
	return t.strings[id]
}

// InternBytes returns the BytesId for b, assigning a new identifier on
// first occurrence.
func (t *Tables) InternBytes(b []byte) BytesId {
	key := string(b)
	if id, ok := t.byteSeqsIdx[key]; ok {
		return id
	}
	id := BytesId(len(t.byteSeqs))
	stored := make([]byte, len(b))
	copy(stored, b)
	t.byteSeqs = append(t.byteSeqs, stored)
	t.byteSeqsIdx[key] = id
	return id
}

// LookupBytes returns the byte sequence for id.
func (t *Tables) LookupBytes(id BytesId) []byte {
	return t.byteSeqs[id]
}

// Len reports the number of interned (non-reserved) entries, for
// diagnostics and tests.
func (t *Tables) Len() int {
	return len(t.strings) - reservedByteBlock
}
