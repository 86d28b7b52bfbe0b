package intern

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestByteStringIdIsOCalculatedAndMatchesOneCharString(t *testing.T) {
	tabs := NewTables()
	for b := 0; b < 256; b++ {
		fast := ByteStringId(byte(b))
		interned := tabs.Intern(string([]byte{byte(b)}))
		require.Equal(t, fast, interned, "byte %d", b)
	}
}

func TestInternIsIdempotent(t *testing.T) {
	tabs := NewTables()
	a := tabs.Intern("hello world")
	b := tabs.Intern("hello world")
	require.Equal(t, a, b)
	require.Equal(t, "hello world", tabs.Lookup(a))
}

func TestInternDistinctStringsGetDistinctIds(t *testing.T) {
	tabs := NewTables()
	a := tabs.Intern("foo")
	b := tabs.Intern("bar")
	require.NotEqual(t, a, b)
}

func TestInternBytesRoundTrip(t *testing.T) {
	tabs := NewTables()
	id := tabs.InternBytes([]byte{1, 2, 3})
	id2 := tabs.InternBytes([]byte{1, 2, 3})
	require.Equal(t, id, id2)
	require.Equal(t, []byte{1, 2, 3}, tabs.LookupBytes(id))
}

func TestInternBytesMutationAfterInternDoesNotAffectStoredCopy(t *testing.T) {
	tabs := NewTables()
	buf := []byte{9, 9, 9}
	id := tabs.InternBytes(buf)
	buf[0] = 0
	require.Equal(t, []byte{9, 9, 9}, tabs.LookupBytes(id))
}
