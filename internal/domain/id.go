package domain

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"sync/atomic"
	"time"
)

// ObjectHexLen is the length of a durable identifier: 24 hex characters,
// the same shape the reference persistence layer uses.
const ObjectHexLen = 24

var idCounter = func() *uint32 {
	var b [4]byte
	_, _ = rand.Read(b[:])
	c := binary.BigEndian.Uint32(b[:])
	return &c
}()

// NewObjectID returns a fresh 24-char hex identifier: 4 bytes of unix time,
// 5 random bytes, 3 bytes of a process-local counter. Creation-time ordering
// is preserved at second granularity, which is enough for list previews.
func NewObjectID() string {
	var b [12]byte
	binary.BigEndian.PutUint32(b[0:4], uint32(time.Now().Unix()))
	_, _ = rand.Read(b[4:9])
	c := atomic.AddUint32(idCounter, 1)
	b[9] = byte(c >> 16)
	b[10] = byte(c >> 8)
	b[11] = byte(c)
	return hex.EncodeToString(b[:])
}

// ValidObjectID reports whether s has the 24-char lowercase hex shape.
// Anything else must be rejected before it reaches a store.
func ValidObjectID(s string) bool {
	if len(s) != ObjectHexLen {
		return false
	}
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if (ch < '0' || ch > '9') && (ch < 'a' || ch > 'f') {
			return false
		}
	}
	return true
}
