package session

import (
	cryptorand "crypto/rand"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var sessionNameSanitizer = regexp.MustCompile(`[^a-zA-Z0-9\-]`)

var (
	entropyMu   sync.Mutex
	ulidEntropy = ulid.Monotonic(cryptorand.Reader, 0)
)

// GenerateSessionID returns a unique session ID using the provided base name
func GenerateSessionID(base string) string {
	base = strings.TrimSpace(base)
	if base == "" {
		base = "session"
	}
	base = strings.ToLower(strings.ReplaceAll(base, " ", "-"))
	base = sessionNameSanitizer.ReplaceAllString(base, "-")
	base = strings.Trim(base, "-")
	if base == "" {
		base = "session"
	}

	entropyMu.Lock()
	id := ulid.MustNew(ulid.Timestamp(time.Now()), ulidEntropy)
	entropyMu.Unlock()
	return fmt.Sprintf("%s-%s", base, strings.ToLower(id.String()))
}

// SessionTime returns the creation time encoded in an ID from GenerateSessionID.
func SessionTime(id string) (time.Time, bool) {
	idx := strings.LastIndexByte(id, '-')
	if idx < 0 || idx == len(id)-1 {
		return time.Time{}, false
	}
	parsed, err := ulid.ParseStrict(strings.ToUpper(id[idx+1:]))
	if err != nil {
		return time.Time{}, false
	}
	return ulid.Time(parsed.Time()), true
}
