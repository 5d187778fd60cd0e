package blackboard

import (
	"fmt"
	"reflect"
	"strings"
)

// lookupPath resolves a dotted path inside v. Each segment addresses a map
// entry (string keyed maps only) or an exported struct field, matched by
// name, then by json tag, then case-insensitively. Pointers and interfaces
// are followed transparently.
func lookupPath(v any, path string) (any, bool) {
	cur := reflect.ValueOf(v)
	for _, part := range strings.Split(path, PathSeparator) {
		next, ok := pathChild(cur, part)
		if !ok {
			return nil, false
		}
		cur = next
	}
	if !cur.IsValid() || !cur.CanInterface() {
		return nil, false
	}
	return cur.Interface(), true
}

// setPath assigns value at the dotted path inside root and returns the new
// root. Every map, struct and pointer along the path is copied, so a value
// already handed out by a read is never modified.
func setPath(root any, path string, value any) (any, error) {
	rv := reflect.ValueOf(root)
	if !rv.IsValid() {
		return nil, ErrNestedPathMissing
	}
	updated, err := setIn(rv, strings.Split(path, PathSeparator), value)
	if err != nil {
		return nil, err
	}
	return updated.Interface(), nil
}

func indirect(v reflect.Value) reflect.Value {
	for v.IsValid() && (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

func pathChild(v reflect.Value, name string) (reflect.Value, bool) {
	v = indirect(v)
	if !v.IsValid() {
		return reflect.Value{}, false
	}
	switch v.Kind() {
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return reflect.Value{}, false
		}
		e := v.MapIndex(reflect.ValueOf(name).Convert(v.Type().Key()))
		return e, e.IsValid()
	case reflect.Struct:
		i, ok := fieldIndex(v.Type(), name)
		if !ok {
			return reflect.Value{}, false
		}
		return v.Field(i), true
	}
	return reflect.Value{}, false
}

func fieldIndex(t reflect.Type, name string) (int, bool) {
	for i := range t.NumField() {
		if f := t.Field(i); f.IsExported() && f.Name == name {
			return i, true
		}
	}
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		if tag, _, _ := strings.Cut(f.Tag.Get("json"), ","); tag == name {
			return i, true
		}
	}
	for i := range t.NumField() {
		if f := t.Field(i); f.IsExported() && strings.EqualFold(f.Name, name) {
			return i, true
		}
	}
	return 0, false
}

func setIn(cur reflect.Value, parts []string, value any) (reflect.Value, error) {
	switch cur.Kind() {
	case reflect.Interface:
		if cur.IsNil() {
			return reflect.Value{}, ErrNestedPathMissing
		}
		return setIn(cur.Elem(), parts, value)

	case reflect.Pointer:
		if cur.IsNil() {
			return reflect.Value{}, ErrNestedPathMissing
		}
		updated, err := setIn(cur.Elem(), parts, value)
		if err != nil {
			return reflect.Value{}, err
		}
		p := reflect.New(cur.Type().Elem())
		p.Elem().Set(updated)
		return p, nil

	case reflect.Map:
		if cur.IsNil() || cur.Type().Key().Kind() != reflect.String {
			return reflect.Value{}, ErrNestedPathMissing
		}
		key := reflect.ValueOf(parts[0]).Convert(cur.Type().Key())
		if len(parts) == 1 {
			nv, err := assignable(value, cur.Type().Elem())
			if err != nil {
				return reflect.Value{}, err
			}
			cp := cloneMap(cur)
			cp.SetMapIndex(key, nv)
			return cp, nil
		}
		e := cur.MapIndex(key)
		if !e.IsValid() {
			return reflect.Value{}, ErrNestedPathMissing
		}
		updated, err := setIn(e, parts[1:], value)
		if err != nil {
			return reflect.Value{}, err
		}
		cp := cloneMap(cur)
		cp.SetMapIndex(key, updated)
		return cp, nil

	case reflect.Struct:
		i, ok := fieldIndex(cur.Type(), parts[0])
		if !ok {
			return reflect.Value{}, ErrNestedPathMissing
		}
		cp := reflect.New(cur.Type()).Elem()
		cp.Set(cur)
		f := cp.Field(i)
		if len(parts) == 1 {
			nv, err := assignable(value, f.Type())
			if err != nil {
				return reflect.Value{}, err
			}
			f.Set(nv)
			return cp, nil
		}
		updated, err := setIn(f, parts[1:], value)
		if err != nil {
			return reflect.Value{}, err
		}
		f.Set(updated)
		return cp, nil
	}
	return reflect.Value{}, ErrNestedPathMissing
}

func cloneMap(m reflect.Value) reflect.Value {
	cp := reflect.MakeMapWithSize(m.Type(), m.Len())
	for it := m.MapRange(); it.Next(); {
		cp.SetMapIndex(it.Key(), it.Value())
	}
	return cp
}

func assignable(value any, t reflect.Type) (reflect.Value, error) {
	if value == nil {
		switch t.Kind() {
		case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			return reflect.Zero(t), nil
		}
		return reflect.Value{}, fmt.Errorf("blackboard: cannot assign nil to %s", t)
	}
	v := reflect.ValueOf(value)
	if v.Type().AssignableTo(t) {
		return v, nil
	}
	if isNumeric(v.Kind()) && isNumeric(t.Kind()) {
		return v.Convert(t), nil
	}
	if v.Kind() == reflect.String && t.Kind() == reflect.String {
		return v.Convert(t), nil
	}
	return reflect.Value{}, fmt.Errorf("blackboard: cannot assign %T to %s", value, t)
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// isPrimitive reports whether v is a scalar (or nil), as opposed to a
// composite value whose fields a writer may mutate after reading.
func isPrimitive(v any) bool {
	if v == nil {
		return true
	}
	k := reflect.TypeOf(v).Kind()
	return isNumeric(k) || k == reflect.Bool || k == reflect.String ||
		k == reflect.Complex64 || k == reflect.Complex128
}
