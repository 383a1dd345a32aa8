// Package kconfig implements the kernel's configuration layer.
//
// Raw is a generic string-keyed store in the teacher's own idiom
// (config/config.go: Set/Get/Serialize/MergeFrom guarded by a sync.RWMutex,
// with Get reporting a Kind-NotFound kerr.Error for a missing key instead of
// the teacher's single ErrKeyNotFound sentinel). Kernel layers a typed,
// validated view of spec.md §6's option table on top of Raw, the way a real
// boot config is usually handed in as loosely-typed strings (flags, an env
// block, a boot-info struct) and then parsed into a strict struct once.
package kconfig

import (
	"bytes"
	"encoding/json"
	"sync"

	"github.com/proos-dev/kernel/kerr"
)

// Raw is a simple string-to-string configuration store. The zero value is
// not usable; construct with NewRaw.
type Raw struct {
	mu sync.RWMutex
	m  map[string]string
}

// NewRaw creates a new, empty Raw config.
func NewRaw() *Raw {
	return &Raw{m: make(map[string]string)}
}

// Set sets the value for key, overwriting any existing value.
func (c *Raw) Set(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[key] = value
}

// Get returns the value for key, or a Kind-NotFound error if key is absent.
func (c *Raw) Get(key string) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.m[key]
	if !ok {
		return "", kerr.NotFoundf("config key %q", key)
	}
	return v, nil
}

// Serialize encodes the config to a string. The teacher used a custom binary
// codec (veyron2/vom) that is not part of the retrieval pack's fetchable
// dependency graph; encoding/json is the stdlib substitute.
func (c *Raw) Serialize() (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(c.m); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// MergeFrom decodes a string produced by Serialize and merges it in,
// overwriting existing keys and adding new ones.
func (c *Raw) MergeFrom(serialized string) error {
	var m map[string]string
	if err := json.NewDecoder(bytes.NewBufferString(serialized)).Decode(&m); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, v := range m {
		c.m[k] = v
	}
	return nil
}
