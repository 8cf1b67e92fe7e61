package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/goccy/go-json"
)

// fragment lists everything a static render depends on
type fragment struct {
	Locale     string `json:"l"`
	Name       string `json:"n"`
	Value      any    `json:"v"`
	Descriptor any    `json:"d,omitempty"`
}

// FragmentKey derives the key of a rendered fragment from the locale, the
// field name, the stored value and the override descriptor. Map keys are
// encoded sorted so equal inputs give equal keys
func FragmentKey(locale, name string, value, descriptor any) (string, error) {
	data, err := json.Marshal(fragment{Locale: locale, Name: name, Value: value, Descriptor: descriptor})
	if err != nil {
		return "", fmt.Errorf("failed to encode fragment key: %w", err)
	}
	hash := sha256.Sum256(data)
	// 16 bytes keep keys short and collisions out of reach
	return "render:" + hex.EncodeToString(hash[:16]), nil
}
