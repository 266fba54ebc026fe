package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// HashBuffer returns the hex-encoded SHA-256 of raw bytes. Used to derive
// the design-hash component of cache keys.
func HashBuffer(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// HashObject returns the hex-encoded SHA-256 of a JSON-serializable value
// using a canonical serialization: the value is round-tripped through an
// untyped map so that every object's keys are emitted in sorted order.
// Without this step, two logically equal configs could hash differently
// depending on field insertion order.
func HashObject(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to serialize value for hashing: %w", err)
	}

	var canonical any
	if err := json.Unmarshal(raw, &canonical); err != nil {
		return "", fmt.Errorf("failed to canonicalize value for hashing: %w", err)
	}

	// encoding/json sorts map keys, so this second pass is deterministic.
	sorted, err := json.Marshal(canonical)
	if err != nil {
		return "", fmt.Errorf("failed to serialize canonical value: %w", err)
	}

	return HashBuffer(sorted), nil
}
