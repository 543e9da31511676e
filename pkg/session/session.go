// Package session defines the read-only view of a framework-owned session
// that the action gate consults, and the lookup contract used to resolve a
// session id into that view.
//
// Session lifecycle (creation, mutation, expiry) belongs to the framework.
// Nothing in this module writes session state.
package session

import (
	"context"
	"errors"
	"reflect"
)

// StaffKey is the well-known attribute key under which the framework stores
// the authenticated human principal.
const StaffKey = "STAFF_SESSION"

// ErrNotFound is returned by a Lookup when the session id is unknown or the
// session has expired.
var ErrNotFound = errors.New("session not found")

// Session exposes single-attribute reads of a session.
type Session interface {
	// Attribute returns the value stored under key and whether the key exists.
	Attribute(key string) (any, bool)
}

// Lookup resolves a session id into a Session.
type Lookup interface {
	Lookup(ctx context.Context, id string) (Session, error)
}

// Staff is the credential object stored under StaffKey.
type Staff struct {
	ID   int64  `json:"id" yaml:"id"`
	Name string `json:"name,omitempty" yaml:"name"`
}

// Map is a Session backed by a plain attribute map.
type Map map[string]any

// Attribute implements Session.
func (m Map) Attribute(key string) (any, bool) {
	v, ok := m[key]
	return v, ok
}

// StaffFrom returns the staff credential of s, or nil when s is nil or holds
// no non-nil value under StaffKey.
func StaffFrom(s Session) any {
	if s == nil {
		return nil
	}
	v, ok := s.Attribute(StaffKey)
	if !ok || isNil(v) {
		return nil
	}
	return v
}

// isNil also catches typed nils such as (*Staff)(nil) stored in an interface.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
