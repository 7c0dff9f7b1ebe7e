package cell

import (
	"math"
	"reflect"
)

// sameValue is the equality used for change detection across the whole
// graph: two NaNs are the same value, +0 and -0 are not, and values of
// non-comparable kinds (slices, maps, funcs) are never the same.
func sameValue[T any](a, b T) bool {
	switch av := any(a).(type) {
	case float64:
		bv, ok := any(b).(float64)
		if !ok {
			return false
		}
		if math.IsNaN(av) && math.IsNaN(bv) {
			return true
		}
		return av == bv && math.Signbit(av) == math.Signbit(bv)
	case float32:
		bv, ok := any(b).(float32)
		if !ok {
			return false
		}
		if math.IsNaN(float64(av)) && math.IsNaN(float64(bv)) {
			return true
		}
		return av == bv && math.Signbit(float64(av)) == math.Signbit(float64(bv))
	}
	ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)
	if !ra.IsValid() || !rb.IsValid() {
		return ra.IsValid() == rb.IsValid()
	}
	if ra.Type() != rb.Type() || !ra.Comparable() {
		return false
	}
	return ra.Equal(rb)
}
