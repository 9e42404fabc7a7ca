package cache

import (
	"fmt"
	"reflect"

	"github.com/mitchellh/hashstructure/v2"
)

// Keyer lets a type choose its own cache key.
type Keyer interface {
	CacheKey() string
}

// NormalizeKey maps an arbitrary key to the string the cache stores it under.
//
// Strings are used as-is. Maps hash to the same 16 hex digit identity
// whatever their iteration order; slices and arrays hash in element order.
// The hash ignores the element type, so every empty or nil sequence shares
// the identity 0000000000000000. A nil pointer Keyer, values that cannot be
// hashed (funcs, channels) and all other types fall back to fmt.Sprint.
func NormalizeKey(key any) string {
	switch k := key.(type) {
	case string:
		return k
	case Keyer:
		if !isNilPointer(k) {
			return k.CacheKey()
		}
	}

	switch reflect.ValueOf(key).Kind() {
	case reflect.Map, reflect.Slice, reflect.Array:
		if h, err := hashstructure.Hash(key, hashstructure.FormatV2, nil); err == nil {
			return fmt.Sprintf("%016x", h)
		}
	}

	return fmt.Sprint(key)
}

func isNilPointer(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}
