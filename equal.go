package bml

import (
	"reflect"
	"regexp"
	"time"
)

// equaler is implemented by value types that define their own equality,
// such as Vec3 and Color.
type equaler[T any] interface {
	Equal(T) bool
}

// DeepEqual reports whether a and b are structurally equal. Maps and slices
// recurse; times and regular expressions compare by value; types with an
// Equal method of their own use it. Component updates are skipped when the
// reparsed data is DeepEqual to the stored data.
func DeepEqual(a, b any) bool {
	switch av := a.(type) {
	case nil:
		return b == nil
	case Data:
		bv, ok := b.(Data)
		return ok && mapsEqual(av, bv)
	case map[string]any:
		bv, ok := b.(map[string]any)
		return ok && mapsEqual(av, bv)
	case map[string]string:
		bv, ok := b.(map[string]string)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			if w, ok := bv[k]; !ok || w != v {
				return false
			}
		}
		return true
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !DeepEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	case time.Time:
		bv, ok := b.(time.Time)
		return ok && av.Equal(bv)
	case *regexp.Regexp:
		bv, ok := b.(*regexp.Regexp)
		if !ok || av == nil || bv == nil {
			return ok && av == bv
		}
		return av.String() == bv.String()
	case equaler[Vec3]:
		bv, ok := b.(Vec3)
		return ok && av.Equal(bv)
	case equaler[Color]:
		bv, ok := b.(Color)
		return ok && av.Equal(bv)
	}
	return reflect.DeepEqual(a, b)
}

func mapsEqual[M ~map[string]any](a, b M) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		w, ok := b[k]
		if !ok || !DeepEqual(v, w) {
			return false
		}
	}
	return true
}
