// MIT License
//
// Copyright (c) 2022-2026 GoAkt Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package registry

import (
	"reflect"

	"github.com/tochemey/echo/internal/xsync"
)

// Registry maps type names to runtime types. It backs accepted-type checks
// on processes and the decoding of payloads that crossed a node boundary.
type Registry struct {
	types *xsync.Map[string, reflect.Type]
}

// New creates an empty Registry
func New() *Registry {
	return &Registry{types: xsync.NewStringMap[reflect.Type]()}
}

// Register records the type of v. v may be a value, a pointer or a reflect.Type.
func (r *Registry) Register(v any) {
	rtype := TypeOf(v)
	r.types.Set(Name(rtype), rtype)
}

// Deregister forgets the type of v
func (r *Registry) Deregister(v any) {
	r.types.Delete(Name(TypeOf(v)))
}

// Exists reports whether the type of v is registered
func (r *Registry) Exists(v any) bool {
	_, ok := r.types.Get(Name(TypeOf(v)))
	return ok
}

// Lookup returns the type registered under name
func (r *Registry) Lookup(name string) (reflect.Type, bool) {
	return r.types.Get(name)
}

// Len returns the number of registered types
func (r *Registry) Len() int {
	return r.types.Len()
}

// TypeOf returns the runtime type of v
func TypeOf(v any) reflect.Type {
	if rtype, ok := v.(reflect.Type); ok {
		return rtype
	}
	return reflect.TypeOf(v)
}

// Name returns the fully qualified name of a type, e.g. "*github.com/x/y.Event"
func Name(rtype reflect.Type) string {
	if rtype == nil {
		return "<nil>"
	}
	if rtype.Kind() == reflect.Pointer {
		return "*" + Name(rtype.Elem())
	}
	if rtype.PkgPath() == "" {
		return rtype.String()
	}
	return rtype.PkgPath() + "." + rtype.Name()
}

// NameOf returns the type name of v
func NameOf(v any) string {
	return Name(TypeOf(v))
}
