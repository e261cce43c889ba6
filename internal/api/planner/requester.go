package planner

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
)

const fingerprintTextRunes = 80

// Fingerprint derives the deduplication key for a logical request: the
// truncated, whitespace-normalized request text plus the arrival time bucket.
// Two identical submissions inside one bucket share a fingerprint.
func Fingerprint(requestText string, at time.Time, bucket time.Duration) string {
	if bucket <= 0 {
		bucket = 30 * time.Second
	}
	text := strings.ToLower(strings.Join(strings.Fields(requestText), " "))
	runes := []rune(text)
	if len(runes) > fingerprintTextRunes {
		runes = runes[:fingerprintTextRunes]
	}
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%d", string(runes), at.Truncate(bucket).Unix())))
	return hex.EncodeToString(sum[:])[:16]
}

// InflightStore tracks fingerprints with a generator call in flight. It is
// the only cross-request mutable state in the pipeline; TTL eviction covers
// the case where a release is lost to a crash mid-call.
type InflightStore struct {
	c *cache.Cache
}

func NewInflightStore(ttl time.Duration) *InflightStore {
	if ttl <= 0 {
		ttl = 45 * time.Second
	}
	return &InflightStore{c: cache.New(ttl, ttl)}
}

// TryAcquire atomically marks the fingerprint in flight. Returns false when
// an identical request is already being generated.
func (s *InflightStore) TryAcquire(fingerprint string) bool {
	return s.c.Add(fingerprint, struct{}{}, cache.DefaultExpiration) == nil
}

// Release frees the fingerprint once the generator call resolves or times out.
func (s *InflightStore) Release(fingerprint string) {
	s.c.Delete(fingerprint)
}
