package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// RecommendationKey hashes the normalized label so arbitrary backend text
// cannot shape the key.
func RecommendationKey(prediction string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(prediction))))
	return fmt.Sprintf("recs:%s", hex.EncodeToString(sum[:8]))
}

func ConditionKey(slug string) string {
	return fmt.Sprintf("condition:%s", slug)
}

func RateLimitKey(client string) string {
	return fmt.Sprintf("ratelimit:%s", client)
}
