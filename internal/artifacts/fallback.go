// Package artifacts generates supplementary texts around a job opportunity.
// Every generator degrades to a static value instead of failing.
package artifacts

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"go.uber.org/zap"
)

// WithFallback runs op once and returns fallback() when op errors, panics or
// produces an empty value.
func WithFallback[T any](ctx context.Context, logger *zap.Logger, name string, op func(ctx context.Context) (T, error), fallback func() T) (result T) {
	if logger == nil {
		logger = zap.NewNop()
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Error("artifact generation panicked, using fallback",
				zap.String("artifact", name),
				zap.String("panic", fmt.Sprint(r)),
			)
			result = fallback()
		}
	}()

	value, err := op(ctx)
	if err != nil {
		logger.Warn("artifact generation failed, using fallback",
			zap.String("artifact", name),
			zap.Error(err),
		)
		return fallback()
	}

	if isEmpty(value) {
		logger.Warn("artifact generation returned nothing, using fallback", zap.String("artifact", name))
		return fallback()
	}

	return value
}

func isEmpty(v any) bool {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val) == ""
	case []string:
		return len(val) == 0
	case nil:
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Map:
		return rv.IsNil() || (rv.Kind() != reflect.Pointer && rv.Len() == 0)
	}
	return false
}
