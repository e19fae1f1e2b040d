// Package idgen provides short, URL-safe unique key generation backed by
// nanoid. Synthetic keys are prefix-tagged so downstream code can always tell
// them apart from real backend identifiers.
package idgen

import (
	"fmt"
	"strconv"
	"time"

	nanoid "github.com/matoous/go-nanoid/v2"
)

// SyntheticPrefix tags keys generated for rows with no usable name.
var SyntheticPrefix = "syn-"

// Alphabet defines the character set used for the random portion of the key.
var Alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Length is the number of random characters generated (excluding the prefix).
var Length = 10

// Synthetic returns a new synthetic row key.
func Synthetic() (string, error) {
	return GenerateWithPrefix(SyntheticPrefix)
}

// MustSynthetic returns a new synthetic row key, falling back to a
// timestamp-based key if the random source fails. Reconciliation must never
// abort over key generation.
func MustSynthetic() string {
	id, err := Synthetic()
	if err != nil {
		return SyntheticPrefix + strconv.FormatInt(time.Now().UnixNano(), 36)
	}
	return id
}

// GenerateWithPrefix returns a new unique key with the given prefix.
func GenerateWithPrefix(prefix string) (string, error) {
	id, err := nanoid.Generate(Alphabet, Length)
	if err != nil {
		return "", fmt.Errorf("idgen: %w", err)
	}
	return prefix + id, nil
}
