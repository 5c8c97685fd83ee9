package converge

import (
	"fmt"
	"reflect"
)

// deferredMethods are method names that mark a value as a pending result
// with a continuation: futures expose Await, promise-style types expose Then.
var deferredMethods = []string{"Await", "AwaitContext", "Then"} //nolint:gochecknoglobals

// deferredType reports whether v is a deferred value and, if so, its type
// name for the misuse message. Methods declared on the pointer receiver count
// too, so returning a future by value is caught.
func deferredType(v any) (string, bool) {
	if v == nil {
		return "", false
	}

	rv := reflect.ValueOf(v)

	if rv.Kind() == reflect.Chan {
		return fmt.Sprintf("%T", v), true
	}

	typ := rv.Type()
	if typ.Kind() != reflect.Pointer {
		typ = reflect.PointerTo(typ)
	}

	for _, name := range deferredMethods {
		if _, ok := typ.MethodByName(name); ok {
			return fmt.Sprintf("%T", v), true
		}
	}

	return "", false
}
