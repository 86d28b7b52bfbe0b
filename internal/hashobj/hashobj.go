// Package hashobj implements the Hash Object Core (spec.md §4.4, §6.3):
// the uniform contract every hashlib algorithm (MD5, SHA family, SHA3
// family, BLAKE2b/s, SHAKE128/256, RIPEMD-160, SM3, combined MD5+SHA1)
// is built against. Grounded on
// _examples/original_source/crates/ouros/src/modules/hashlib.rs's
// accumulate-bytes design: a hash object stores the full message seen so
// far rather than a live hasher's internal state, so digest()/hexdigest()
// always recompute from scratch and copy() is a cheap buffer clone.
package hashobj

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"

	"github.com/corvidlang/corvid/internal/heap"
	"github.com/corvidlang/corvid/internal/runerr"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/blake2s"
	"golang.org/x/crypto/ripemd160"
	"golang.org/x/crypto/sha3"
)

// sumFunc computes a digest over the accumulated buffer. length is the
// requested output size for variable-length algorithms (SHAKE, BLAKE2b/s);
// -1 means "use the algorithm's configured/default size".
type sumFunc func(data []byte, length int) ([]byte, error)

// algorithm describes one registered hashlib digest.
type algorithm struct {
	name       string
	blockSize  int
	digestSize int // -1 for variable-length (SHAKE) algorithms
	variable   bool
	sum        sumFunc
}

var registry = map[string]algorithm{}

func register(a algorithm) { registry[a.name] = a }

func init() {
	register(algorithm{name: "md5", blockSize: 64, digestSize: 16, sum: fixedSum(func(b []byte) []byte {
		s := md5.Sum(b)
		return s[:]
	})})
	register(algorithm{name: "sha1", blockSize: 64, digestSize: 20, sum: fixedSum(func(b []byte) []byte {
		s := sha1.Sum(b)
		return s[:]
	})})
	register(algorithm{name: "sha224", blockSize: 64, digestSize: 28, sum: fixedSum(func(b []byte) []byte {
		s := sha256.Sum224(b)
		return s[:]
	})})
	register(algorithm{name: "sha256", blockSize: 64, digestSize: 32, sum: fixedSum(func(b []byte) []byte {
		s := sha256.Sum256(b)
		return s[:]
	})})
	register(algorithm{name: "sha384", blockSize: 128, digestSize: 48, sum: fixedSum(func(b []byte) []byte {
		s := sha512.Sum384(b)
		return s[:]
	})})
	register(algorithm{name: "sha512", blockSize: 128, digestSize: 64, sum: fixedSum(func(b []byte) []byte {
		s := sha512.Sum512(b)
		return s[:]
	})})
	register(algorithm{name: "sha3_224", blockSize: 144, digestSize: 28, sum: fixedSum(func(b []byte) []byte {
		s := sha3.Sum224(b)
		return s[:]
	})})
	register(algorithm{name: "sha3_256", blockSize: 136, digestSize: 32, sum: fixedSum(func(b []byte) []byte {
		s := sha3.Sum256(b)
		return s[:]
	})})
	register(algorithm{name: "sha3_384", blockSize: 104, digestSize: 48, sum: fixedSum(func(b []byte) []byte {
		s := sha3.Sum384(b)
		return s[:]
	})})
	register(algorithm{name: "sha3_512", blockSize: 72, digestSize: 64, sum: fixedSum(func(b []byte) []byte {
		s := sha3.Sum512(b)
		return s[:]
	})})
	register(algorithm{name: "shake_128", blockSize: 168, digestSize: -1, variable: true, sum: func(data []byte, length int) ([]byte, error) {
		if length <= 0 {
			return nil, missingLengthError("shake_128")
		}
		out := make([]byte, length)
		sha3.ShakeSum128(out, data)
		return out, nil
	}})
	register(algorithm{name: "shake_256", blockSize: 136, digestSize: -1, variable: true, sum: func(data []byte, length int) ([]byte, error) {
		if length <= 0 {
			return nil, missingLengthError("shake_256")
		}
		out := make([]byte, length)
		sha3.ShakeSum256(out, data)
		return out, nil
	}})
	register(algorithm{name: "blake2b", blockSize: 128, digestSize: 64, variable: true, sum: func(data []byte, length int) ([]byte, error) {
		if length <= 0 {
			length = 64
		}
		h, err := blake2b.New(length, nil)
		if err != nil {
			return nil, runerr.Exc(runerr.ValueError, "blake2b: invalid digest size %d", length)
		}
		h.Write(data)
		return h.Sum(nil), nil
	}})
	register(algorithm{name: "blake2s", blockSize: 64, digestSize: 32, variable: true, sum: func(data []byte, length int) ([]byte, error) {
		if length <= 0 {
			length = 32
		}
		h, err := blake2s.New(length, nil)
		if err != nil {
			return nil, runerr.Exc(runerr.ValueError, "blake2s: invalid digest size %d", length)
		}
		h.Write(data)
		return h.Sum(nil), nil
	}})
	register(algorithm{name: "ripemd160", blockSize: 64, digestSize: 20, sum: fixedSum(func(b []byte) []byte {
		h := ripemd160.New()
		h.Write(b)
		return h.Sum(nil)
	})})
	register(algorithm{name: "sm3", blockSize: 64, digestSize: 32, sum: fixedSum(sm3Sum)})
	register(algorithm{name: "md5_sha1", blockSize: 64, digestSize: 36, sum: fixedSum(func(b []byte) []byte {
		m := md5.Sum(b)
		s := sha1.Sum(b)
		return append(append([]byte{}, m[:]...), s[:]...)
	})})
}

// fixedSum adapts a fixed-size one-shot digest function to sumFunc,
// rejecting a non-default length request (spec.md §4.4: "SHAKE variants
// require a length argument... rejected on others").
func fixedSum(f func([]byte) []byte) sumFunc {
	return func(data []byte, length int) ([]byte, error) {
		if length > 0 {
			return nil, lengthNotAcceptedError()
		}
		return f(data), nil
	}
}

func missingLengthError(name string) error {
	return runerr.Exc(runerr.TypeError, "%s() missing required argument: 'length'", name)
}

func lengthNotAcceptedError() error {
	return runerr.Exc(runerr.TypeError, "digest() takes no arguments for this algorithm")
}

// New constructs a fresh hash object over the named algorithm, optionally
// seeded with data and (for BLAKE2b/s) a requested digest size (spec.md
// §4.4: "Variable-length hashes accept digest_size at construction").
func New(algoName string, data []byte, digestSize int) (*heap.HashObjectData, error) {
	a, ok := registry[algoName]
	if !ok {
		return nil, runerr.Exc(runerr.ValueError, "unsupported hash type %s", algoName)
	}
	size := a.digestSize
	if a.variable && digestSize > 0 {
		size = digestSize
	}
	buf := append([]byte{}, data...)
	return &heap.HashObjectData{
		Algorithm:  a.name,
		Buffer:     buf,
		DigestSize: size,
		BlockSize:  a.blockSize,
	}, nil
}

// Update appends b to the hash object's accumulated buffer (spec.md §4.4:
// "update(b) appends bytes; idempotence on empty input").
func Update(h *heap.HashObjectData, b []byte) {
	if len(b) == 0 {
		return
	}
	h.Buffer = append(h.Buffer, b...)
}

// Copy returns an independent hash object with the same algorithm,
// accumulated data, and digest size (spec.md §4.4 "copy()").
func Copy(h *heap.HashObjectData) *heap.HashObjectData {
	return &heap.HashObjectData{
		Algorithm:  h.Algorithm,
		Buffer:     append([]byte{}, h.Buffer...),
		DigestSize: h.DigestSize,
		BlockSize:  h.BlockSize,
	}
}

// Digest recomputes the digest over the full accumulated buffer (spec.md
// §4.4: "recomputes from scratch"). length is the requested output size,
// 0 meaning "use the object's configured DigestSize".
func Digest(h *heap.HashObjectData, length int) ([]byte, error) {
	a, ok := registry[h.Algorithm]
	if !ok {
		return nil, runerr.Internalf("hash object carries unknown algorithm %q", h.Algorithm)
	}
	if length <= 0 && a.variable {
		length = h.DigestSize
	}
	if a.variable && length <= 0 {
		return nil, missingLengthError(a.name)
	}
	return a.sum(h.Buffer, length)
}

// Hexdigest is Digest, hex-encoded.
func Hexdigest(h *heap.HashObjectData, length int) (string, error) {
	d, err := Digest(h, length)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(d), nil
}
