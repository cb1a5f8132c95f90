package entity

import (
	"crypto/rand"
	"encoding/binary"
	"hash/fnv"
	"time"
)

const (
	licenseMin  = 100_000_000
	licenseSpan = 900_000_000
)

// DeriveLicenseNumber produces a 9-digit numeric license identifier from the
// registering user's id, a random salt and a high-resolution timestamp. The
// result always has exactly nine digits so it can double as a display and a
// lookup key. Works fully offline.
func DeriveLicenseNumber(userID string) string {
	var salt [8]byte
	_, _ = rand.Read(salt[:])

	h := fnv.New64a()
	h.Write([]byte(userID))
	h.Write(salt[:])

	var ts [8]byte
	binary.BigEndian.PutUint64(ts[:], uint64(time.Now().UnixNano()))
	h.Write(ts[:])

	n := licenseMin + h.Sum64()%licenseSpan
	return formatDigits(n, 9)
}

func formatDigits(n uint64, width int) string {
	buf := make([]byte, width)
	for i := width - 1; i >= 0; i-- {
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf)
}
