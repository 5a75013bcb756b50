// Package pool provides object pooling for command text construction.
//
// Every query sent to the server is a freshly built string: the CYPHER
// parameter prefix, the query body and, for procedure calls, the argument list.
// Building them through pooled buffers keeps the hot query path from
// allocating a new builder per call.
//
// Pooled objects:
// - String builders
// - String slices (sorted parameter names)
//
// Usage:
//
//	sb := pool.GetStringBuilder()
//	defer pool.PutStringBuilder(sb)
//
//	sb.WriteString("CYPHER ")
//	sb.WriteString(name)
package pool

import (
	"sync"
)

// PoolConfig configures object pooling behavior.
type PoolConfig struct {
	// Enabled controls whether pooling is active
	Enabled bool

	// MaxSize limits the capacity of pooled string slices
	MaxSize int
}

var (
	configMu     sync.RWMutex
	globalConfig = PoolConfig{
		Enabled: true,
		MaxSize: 1000,
	}
)

// Configure sets global pool configuration.
// Should be called early during initialization.
func Configure(config PoolConfig) {
	configMu.Lock()
	globalConfig = config
	configMu.Unlock()
}

func currentConfig() PoolConfig {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}

// IsEnabled returns whether pooling is enabled.
func IsEnabled() bool {
	return currentConfig().Enabled
}

// =============================================================================
// String Builder Pool
// =============================================================================

// maxBuilderCap bounds the buffers kept for reuse. Queries carrying huge
// literal parameters are rare and should not pin memory.
const maxBuilderCap = 64 * 1024

var stringBuilderPool = sync.Pool{
	New: func() any {
		return &PooledStringBuilder{buf: make([]byte, 0, 256)}
	},
}

// PooledStringBuilder is a poolable string builder.
type PooledStringBuilder struct {
	buf []byte
}

// WriteString appends a string to the builder.
func (b *PooledStringBuilder) WriteString(s string) {
	b.buf = append(b.buf, s...)
}

// WriteByte appends a byte to the builder. It never fails.
func (b *PooledStringBuilder) WriteByte(c byte) error {
	b.buf = append(b.buf, c)
	return nil
}

// String returns the built string.
func (b *PooledStringBuilder) String() string {
	return string(b.buf)
}

// Len returns current length.
func (b *PooledStringBuilder) Len() int {
	return len(b.buf)
}

// Reset clears the builder for reuse.
func (b *PooledStringBuilder) Reset() {
	b.buf = b.buf[:0]
}

// GetStringBuilder returns a string builder from the pool.
func GetStringBuilder() *PooledStringBuilder {
	if !IsEnabled() {
		return &PooledStringBuilder{buf: make([]byte, 0, 256)}
	}
	b := stringBuilderPool.Get().(*PooledStringBuilder)
	b.Reset()
	return b
}

// PutStringBuilder returns a string builder to the pool.
func PutStringBuilder(b *PooledStringBuilder) {
	if !IsEnabled() || b == nil {
		return
	}
	if cap(b.buf) > maxBuilderCap {
		return
	}
	b.Reset()
	stringBuilderPool.Put(b)
}

// =============================================================================
// String Slice Pool
// =============================================================================

var stringSlicePool = sync.Pool{
	New: func() any {
		return make([]string, 0, 16)
	},
}

// GetStringSlice returns a string slice from the pool.
func GetStringSlice() []string {
	if !IsEnabled() {
		return make([]string, 0, 16)
	}
	return stringSlicePool.Get().([]string)[:0]
}

// PutStringSlice returns a string slice to the pool.
func PutStringSlice(s []string) {
	cfg := currentConfig()
	if !cfg.Enabled {
		return
	}
	if cap(s) > cfg.MaxSize {
		return
	}
	for i := range s {
		s[i] = ""
	}
	stringSlicePool.Put(s[:0])
}
