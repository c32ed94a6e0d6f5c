package thicket

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// PropertyHolder is implemented by objects exposing named properties for
// attach-path assignment and renderer property updates.
type PropertyHolder interface {
	Property(name string) (any, bool)
	SetProperty(name string, value any) error
}

// Slots is a growable indexed sequence used for multi-slot attachment
// (for example several materials on one node). A numeric path segment
// addresses a slot.
type Slots struct {
	items []any
}

// NewSlots returns a sequence holding items in order.
func NewSlots(items ...any) *Slots {
	return &Slots{items: append([]any(nil), items...)}
}

// Len returns the number of slots.
func (s *Slots) Len() int { return len(s.items) }

// At returns the value at index, or nil when out of range.
func (s *Slots) At(index int) any {
	if index < 0 || index >= len(s.items) {
		return nil
	}
	return s.items[index]
}

// Set stores v at index, growing the sequence with nil slots as needed.
func (s *Slots) Set(index int, v any) {
	for len(s.items) <= index {
		s.items = append(s.items, nil)
	}
	s.items[index] = v
}

// Items returns a copy of the slots.
func (s *Slots) Items() []any { return append([]any(nil), s.items...) }

// Attach describes how a child is attached to its parent when it is not a
// structural graph child: either a property path or a custom function.
type Attach struct {
	Path []string
	Func AttachFunc
}

// AttachFunc performs a custom attachment and may return a cleanup that
// reverses it on detach.
type AttachFunc func(parent, child any, store *Store) (cleanup func())

// AttachNone keeps a child logically detached from its parent.
var AttachNone = &Attach{Path: []string{"none"}}

// AttachPath attaches into the property addressed by segments.
func AttachPath(segments ...string) *Attach {
	return &Attach{Path: append([]string(nil), segments...)}
}

// ParseAttach splits a dotted path ("material.1") into an attach path.
func ParseAttach(path string) *Attach {
	return AttachPath(strings.Split(path, ".")...)
}

// AttachWith attaches through fn.
func AttachWith(fn AttachFunc) *Attach {
	return &Attach{Func: fn}
}

// None reports whether the descriptor is the "none" sentinel.
func (a *Attach) None() bool {
	return a != nil && a.Func == nil && len(a.Path) > 0 && a.Path[0] == "none"
}

func (a *Attach) String() string {
	if a == nil {
		return "<nil>"
	}
	if a.Func != nil {
		return "func"
	}
	return strings.Join(a.Path, ".")
}

// GetPath reads the value at path starting from root.
func GetPath(root any, path []string) (any, error) {
	if len(path) == 0 {
		return nil, fmt.Errorf("get: %w: empty path", ErrInvalidPath)
	}
	cur := root
	for _, seg := range path {
		v, err := getProperty(cur, seg)
		if err != nil {
			return nil, fmt.Errorf("get %s: %w", strings.Join(path, "."), err)
		}
		cur = v
	}
	return cur, nil
}

// SetPath assigns value at path starting from root.
func SetPath(root any, path []string, value any) error {
	if len(path) == 0 {
		return fmt.Errorf("set: %w: empty path", ErrInvalidPath)
	}
	target := root
	if len(path) > 1 {
		v, err := GetPath(root, path[:len(path)-1])
		if err != nil {
			return err
		}
		target = v
	}
	if err := setProperty(target, path[len(path)-1], value); err != nil {
		return fmt.Errorf("set %s: %w", strings.Join(path, "."), err)
	}
	return nil
}

// coerceSlots turns the container addressed by path[:len-1] into *Slots
// when the last segment is numeric, keeping the previous value at index 0.
// Once coerced the container stays a *Slots.
func coerceSlots(root any, path []string) error {
	if len(path) < 2 {
		return nil
	}
	if _, err := strconv.Atoi(path[len(path)-1]); err != nil {
		return nil
	}
	container := path[:len(path)-1]
	cur, err := GetPath(root, container)
	if err != nil {
		return err
	}
	if _, ok := cur.(*Slots); ok {
		return nil
	}
	slots := NewSlots()
	if cur != nil {
		slots.Set(0, cur)
	}
	return SetPath(root, container, slots)
}

func getProperty(target any, name string) (any, error) {
	if isNil(target) {
		return nil, fmt.Errorf("%w: %q on nil", ErrInvalidPath, name)
	}
	switch t := target.(type) {
	case *Slots:
		idx, err := strconv.Atoi(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a slot index", ErrInvalidPath, name)
		}
		return t.At(idx), nil
	case PropertyHolder:
		v, ok := t.Property(name)
		if !ok {
			return nil, fmt.Errorf("%w: no property %q", ErrInvalidPath, name)
		}
		return v, nil
	case map[string]any:
		return t[name], nil
	}
	field, err := structField(target, name)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

func setProperty(target any, name string, value any) error {
	if isNil(target) {
		return fmt.Errorf("%w: %q on nil", ErrInvalidPath, name)
	}
	switch t := target.(type) {
	case *Slots:
		idx, err := strconv.Atoi(name)
		if err != nil || idx < 0 {
			return fmt.Errorf("%w: %q is not a slot index", ErrInvalidPath, name)
		}
		t.Set(idx, value)
		return nil
	case PropertyHolder:
		return t.SetProperty(name, value)
	case map[string]any:
		t[name] = value
		return nil
	}
	field, err := structField(target, name)
	if err != nil {
		return err
	}
	if !field.CanSet() {
		return fmt.Errorf("%w: field %q is not settable", ErrInvalidPath, name)
	}
	if value == nil {
		field.Set(reflect.Zero(field.Type()))
		return nil
	}
	v := reflect.ValueOf(value)
	switch {
	case v.Type().AssignableTo(field.Type()):
		field.Set(v)
	case v.Type().ConvertibleTo(field.Type()):
		field.Set(v.Convert(field.Type()))
	default:
		return fmt.Errorf("%w: cannot assign %T to field %q of type %s", ErrInvalidPath, value, name, field.Type())
	}
	return nil
}

// isNil reports whether v is nil or a typed nil pointer, map or interface.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Interface, reflect.Slice, reflect.Func:
		return rv.IsNil()
	}
	return false
}

// structField finds an exported field by name, trying the name as given and
// with its first letter upper-cased ("material" finds Material).
func structField(target any, name string) (reflect.Value, error) {
	v := reflect.ValueOf(target)
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return reflect.Value{}, fmt.Errorf("%w: %q on nil", ErrInvalidPath, name)
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return reflect.Value{}, fmt.Errorf("%w: %q on %T", ErrInvalidPath, name, target)
	}
	f := v.FieldByName(name)
	if !f.IsValid() {
		f = v.FieldByName(exportName(name))
	}
	if !f.IsValid() || !f.CanInterface() {
		return reflect.Value{}, fmt.Errorf("%w: no field %q on %T", ErrInvalidPath, name, target)
	}
	return f, nil
}

func exportName(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return name
	}
	return string(unicode.ToUpper(r)) + name[size:]
}
