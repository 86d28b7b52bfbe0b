package hashobj

import (
	"testing"

	"github.com/corvidlang/corvid/internal/runerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSHA256OfHello is spec.md §8.4 scenario S5.
func TestSHA256OfHello(t *testing.T) {
	h, err := New("sha256", []byte("hello"), 0)
	require.NoError(t, err)
	got, err := Hexdigest(h, 0)
	require.NoError(t, err)
	assert.Equal(t, "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824", got)
}

func TestDigestIndependentOfUpdateBoundaries(t *testing.T) {
	whole, err := New("sha256", []byte("helloworld"), 0)
	require.NoError(t, err)
	wholeDigest, err := Digest(whole, 0)
	require.NoError(t, err)

	split, err := New("sha256", []byte("hello"), 0)
	require.NoError(t, err)
	Update(split, []byte("world"))
	splitDigest, err := Digest(split, 0)
	require.NoError(t, err)

	assert.Equal(t, wholeDigest, splitDigest, "digest must not depend on update() call boundaries")
}

func TestUpdateIdempotentOnEmptyInput(t *testing.T) {
	h, err := New("sha256", []byte("hello"), 0)
	require.NoError(t, err)
	before, err := Digest(h, 0)
	require.NoError(t, err)

	Update(h, nil)
	Update(h, []byte{})

	after, err := Digest(h, 0)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestCopyIsIndependent(t *testing.T) {
	orig, err := New("sha256", []byte("hello"), 0)
	require.NoError(t, err)
	dup := Copy(orig)

	Update(dup, []byte("world"))

	origDigest, err := Digest(orig, 0)
	require.NoError(t, err)
	dupDigest, err := Digest(dup, 0)
	require.NoError(t, err)
	assert.NotEqual(t, origDigest, dupDigest)

	helloDigest, err := Digest(orig, 0)
	require.NoError(t, err)
	assert.Equal(t, origDigest, helloDigest, "later updates to the copy must not affect the original")
}

func TestShakeRequiresLength(t *testing.T) {
	h, err := New("shake_128", []byte("hello"), 0)
	require.NoError(t, err)

	_, err = Digest(h, 0)
	require.Error(t, err)
	assert.True(t, runerr.IsExc(err, runerr.TypeError))

	d, err := Digest(h, 16)
	require.NoError(t, err)
	assert.Len(t, d, 16)
}

func TestFixedAlgorithmRejectsLength(t *testing.T) {
	h, err := New("sha256", []byte("hello"), 0)
	require.NoError(t, err)
	_, err = Digest(h, 10)
	require.Error(t, err)
	assert.True(t, runerr.IsExc(err, runerr.TypeError))
}

func TestBlake2bVariableDigestSize(t *testing.T) {
	h, err := New("blake2b", []byte("hello"), 16)
	require.NoError(t, err)
	assert.Equal(t, 16, h.DigestSize)
	d, err := Digest(h, 0)
	require.NoError(t, err)
	assert.Len(t, d, 16)
}

func TestSM3Properties(t *testing.T) {
	abc, err := New("sm3", []byte("abc"), 0)
	require.NoError(t, err)
	digestAbc, err := Digest(abc, 0)
	require.NoError(t, err)
	assert.Len(t, digestAbc, 32)

	again, err := New("sm3", []byte("abc"), 0)
	require.NoError(t, err)
	digestAgain, err := Digest(again, 0)
	require.NoError(t, err)
	assert.Equal(t, digestAbc, digestAgain, "hashing the same input twice must be deterministic")

	other, err := New("sm3", []byte("abd"), 0)
	require.NoError(t, err)
	digestOther, err := Digest(other, 0)
	require.NoError(t, err)
	assert.NotEqual(t, digestAbc, digestOther)
}

func TestMD5SHA1Combined(t *testing.T) {
	h, err := New("md5_sha1", []byte("hello"), 0)
	require.NoError(t, err)
	d, err := Digest(h, 0)
	require.NoError(t, err)
	assert.Len(t, d, 36)
}

func TestUnsupportedAlgorithm(t *testing.T) {
	_, err := New("crc32", nil, 0)
	require.Error(t, err)
	assert.True(t, runerr.IsExc(err, runerr.ValueError))
}

func TestAttributesExposed(t *testing.T) {
	h, err := New("sha256", nil, 0)
	require.NoError(t, err)
	assert.Equal(t, "sha256", h.Algorithm)
	assert.Equal(t, 32, h.DigestSize)
	assert.Equal(t, 64, h.BlockSize)
}
