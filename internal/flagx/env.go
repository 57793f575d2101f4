package flagx

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// EnvString overwrites dst with the value of key when the variable is set
// and non-empty.
func EnvString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

// EnvInt64 is EnvString for integers. A malformed value is reported
// instead of being silently ignored.
func EnvInt64(dst *int64, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fmt.Errorf("env %s: %w", key, err)
	}
	*dst = n
	return nil
}

// EnvUint32 is EnvInt64 for unsigned 32-bit values.
func EnvUint32(dst *uint32, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		return fmt.Errorf("env %s: %w", key, err)
	}
	*dst = uint32(n)
	return nil
}

// EnvDuration accepts time.ParseDuration syntax, e.g. "2h".
func EnvDuration(dst *time.Duration, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("env %s: %w", key, err)
	}
	*dst = d
	return nil
}
