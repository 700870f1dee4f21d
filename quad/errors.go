package quad

import "fmt"

// ConfigError reports a partition request that cannot be satisfied by
// construction: invalid thresholds, an empty dataset, or a coincident-point
// cluster larger than nmin. It is never retried or downgraded; the caller has
// to adjust the request.
type ConfigError struct {
	msg string
}

func (e *ConfigError) Error() string { return e.msg }

func configErrorf(format string, args ...interface{}) *ConfigError {
	return &ConfigError{msg: fmt.Sprintf(format, args...)}
}
