package utils

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	idMu   sync.Mutex
	idMono io.Reader
)

func init() {
	var seed int64
	_ = binary.Read(cryptoRand.Reader, binary.LittleEndian, &seed)
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	idMono = ulid.Monotonic(rand.New(rand.NewSource(seed)), 0)
}

// NewID returns a ULID string. IDs generated in the same millisecond stay
// lexicographically increasing.
func NewID() string {
	return NewIDAt(time.Now())
}

// NewIDAt returns a ULID whose timestamp component is t.
func NewIDAt(t time.Time) string {
	idMu.Lock()
	defer idMu.Unlock()

	id, err := ulid.New(ulid.Timestamp(t.UTC()), idMono)
	if err != nil {
		// Monotonic entropy overflow within one millisecond; fall back to fresh entropy.
		return ulid.Make().String()
	}
	return id.String()
}
