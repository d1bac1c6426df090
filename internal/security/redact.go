package security

import (
	"fmt"
	"reflect"
	"strings"
)

// maxDepth caps traversal so a deeply nested (or adversarial) value
// can't blow the stack during log preparation.
const maxDepth = 10

var sensitiveKeys = []string{
	"access_token",
	"accesstoken",
	"token",
	"secret",
	"password",
	"key",
	"authorization",
	"auth",
}

// Redact walks an arbitrary value and masks anything stored under a
// sensitive-looking key before it reaches a log line. Maps, slices and
// structs are traversed recursively; circular references short-circuit
// to a placeholder instead of recursing forever.
func Redact(v any) any {
	return redact(reflect.ValueOf(v), map[uintptr]bool{}, 0, false)
}

// Mask replaces a secret string with its first four characters plus a
// fixed suffix, mirroring how the token appears in audit trails.
func Mask(s string) string {
	if s == "" {
		return "****"
	}
	if len(s) <= 4 {
		return s + "****"
	}
	return s[:4] + "****"
}

func isSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, s := range sensitiveKeys {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}

func redact(v reflect.Value, visited map[uintptr]bool, depth int, sensitive bool) any {
	if !v.IsValid() {
		return nil
	}
	if depth > maxDepth {
		return v.Interface()
	}

	switch v.Kind() {
	case reflect.Interface:
		if v.IsNil() {
			return nil
		}
		return redact(v.Elem(), visited, depth, sensitive)

	case reflect.Pointer:
		if v.IsNil() {
			return nil
		}
		ptr := v.Pointer()
		if visited[ptr] {
			return "[circular]"
		}
		visited[ptr] = true
		return redact(v.Elem(), visited, depth+1, sensitive)

	case reflect.Map:
		if v.IsNil() {
			return nil
		}
		ptr := v.Pointer()
		if visited[ptr] {
			return "[circular]"
		}
		visited[ptr] = true
		out := make(map[string]any, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			key := keyString(iter.Key())
			out[key] = redact(iter.Value(), visited, depth+1, isSensitiveKey(key))
		}
		return out

	case reflect.Slice:
		if v.IsNil() {
			return nil
		}
		ptr := v.Pointer()
		if visited[ptr] {
			return "[circular]"
		}
		visited[ptr] = true
		return redactList(v, visited, depth)

	case reflect.Array:
		return redactList(v, visited, depth)

	case reflect.Struct:
		out := make(map[string]any, v.NumField())
		t := v.Type()
		for i := 0; i < v.NumField(); i++ {
			field := t.Field(i)
			if !field.IsExported() {
				continue
			}
			out[field.Name] = redact(v.Field(i), visited, depth+1, isSensitiveKey(field.Name))
		}
		return out

	case reflect.String:
		if sensitive {
			return Mask(v.String())
		}
		return v.Interface()

	default:
		if sensitive {
			return "****"
		}
		return v.Interface()
	}
}

func redactList(v reflect.Value, visited map[uintptr]bool, depth int) any {
	out := make([]any, v.Len())
	for i := 0; i < v.Len(); i++ {
		out[i] = redact(v.Index(i), visited, depth+1, false)
	}
	return out
}

func keyString(v reflect.Value) string {
	if v.Kind() == reflect.String {
		return v.String()
	}
	return fmt.Sprintf("%v", v.Interface())
}
