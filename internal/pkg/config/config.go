// Package config reads runtime settings by dotted key, for example
// "session.ttl_minutes". Missing keys yield zero values.
package config

import (
	"io"
	"time"
)

type Config interface {
	io.Closer

	GetBool(key string) bool
	GetString(key string) string
	GetInt(key string) int
	GetInt64(key string) int64
	GetUint(key string) uint
	GetFloat64(key string) float64

	// GetMillis, GetSecond and GetMinute read an integer and scale it.
	GetMillis(key string) time.Duration
	GetSecond(key string) time.Duration
	GetMinute(key string) time.Duration

	// GetBinary decodes a base64 value.
	GetBinary(key string) []byte

	// GetArray accepts a YAML list or a comma separated string. Blank
	// elements are dropped.
	GetArray(key string) []string
}
