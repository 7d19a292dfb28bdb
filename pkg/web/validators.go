package web

import (
	"errors"
	"net/http"
	"strconv"
)

// ParamValidator is a function type that validates a parameter.
type ParamValidator func(valueToTest int64) bool

func newComparisonValidator(valueInClosure int64, compareFn func(argValue, closedValue int64) bool) ParamValidator {
	return func(argValue int64) bool {
		return compareFn(argValue, valueInClosure)
	}
}

// Gte returns a ParamValidator that checks if the argument is greater than or equal to the value captured in the closure.
func Gte(valToCompareAgainst int64) ParamValidator {
	return newComparisonValidator(valToCompareAgainst, func(argValue, closedValue int64) bool {
		return argValue >= closedValue
	})
}

// Gt returns a ParamValidator that checks if the argument is greater than the value captured in the closure.
func Gt(valToCompareAgainst int64) ParamValidator {
	return newComparisonValidator(valToCompareAgainst, func(argValue, closedValue int64) bool {
		return argValue > closedValue
	})
}

// QueryIntOrDefault reads an integer query parameter. Missing, malformed or rejected values yield def.
// Values outside the int range are clamped to the nearest bound before validation.
func QueryIntOrDefault(r *http.Request, key string, pValidator ParamValidator, def int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return def
	}
	// on ErrRange ParseInt returns the clamped bound
	intValue, err := strconv.ParseInt(value, 10, strconv.IntSize)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return def
	}
	if !pValidator(intValue) {
		return def
	}
	return int(intValue)
}
