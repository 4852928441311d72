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

package message

import (
	"encoding/json"
	"reflect"
	"strings"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"

	gerrors "github.com/tochemey/echo/errors"
	"github.com/tochemey/echo/internal/registry"
)

const (
	jsonPrefix  = "json:"
	protoPrefix = "proto:"
)

// Serializer turns payloads into bytes tagged with a content type and back.
// It is used whenever a payload crosses a node boundary or is persisted.
type Serializer interface {
	// Marshal encodes v and returns its content type
	Marshal(v any) (contentType string, data []byte, err error)
	// Unmarshal decodes data according to contentType
	Unmarshal(contentType string, data []byte) (any, error)
}

// JSONSerializer encodes payloads as JSON. Payload types must be registered
// so that they can be rebuilt on the receiving side.
type JSONSerializer struct {
	types *registry.Registry
}

var _ Serializer = (*JSONSerializer)(nil)

// NewJSONSerializer creates a JSONSerializer knowing the given payload types
// in addition to the builtin scalar ones
func NewJSONSerializer(types ...any) *JSONSerializer {
	s := &JSONSerializer{types: registry.New()}
	s.Register("", 0, int32(0), int64(0), uint(0), uint64(0), 0.0, float32(0), false, []byte{}, map[string]any{}, []any{})
	s.Register(types...)
	return s
}

// Register adds payload types
func (s *JSONSerializer) Register(types ...any) {
	for _, t := range types {
		s.types.Register(t)
	}
}

// Marshal implements Serializer
func (s *JSONSerializer) Marshal(v any) (string, []byte, error) {
	if !s.types.Exists(v) {
		return "", nil, gerrors.ErrUnknownContentType
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "", nil, err
	}
	return jsonPrefix + registry.NameOf(v), data, nil
}

// Unmarshal implements Serializer
func (s *JSONSerializer) Unmarshal(contentType string, data []byte) (any, error) {
	name, ok := strings.CutPrefix(contentType, jsonPrefix)
	if !ok {
		return nil, gerrors.ErrUnknownContentType
	}

	rtype, ok := s.types.Lookup(name)
	if !ok {
		return nil, gerrors.ErrUnknownContentType
	}

	ptr := reflect.New(rtype)
	if err := json.Unmarshal(data, ptr.Interface()); err != nil {
		return nil, err
	}
	return ptr.Elem().Interface(), nil
}

// ProtoSerializer encodes protobuf messages. Types are resolved through the
// global protobuf registry.
type ProtoSerializer struct{}

var _ Serializer = ProtoSerializer{}

// Marshal implements Serializer
func (ProtoSerializer) Marshal(v any) (string, []byte, error) {
	msg, ok := v.(proto.Message)
	if !ok {
		return "", nil, gerrors.ErrUnknownContentType
	}
	data, err := proto.Marshal(msg)
	if err != nil {
		return "", nil, err
	}
	return protoPrefix + string(msg.ProtoReflect().Descriptor().FullName()), data, nil
}

// Unmarshal implements Serializer
func (ProtoSerializer) Unmarshal(contentType string, data []byte) (any, error) {
	name, ok := strings.CutPrefix(contentType, protoPrefix)
	if !ok {
		return nil, gerrors.ErrUnknownContentType
	}

	mt, err := protoregistry.GlobalTypes.FindMessageByName(protoreflect.FullName(name))
	if err != nil {
		return nil, gerrors.ErrUnknownContentType
	}

	msg := mt.New().Interface()
	if err := proto.Unmarshal(data, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// Serializers tries each serializer in order
type Serializers []Serializer

var _ Serializer = Serializers(nil)

// DefaultSerializer handles protobuf messages and the builtin scalar types
func DefaultSerializer() Serializers {
	return Serializers{ProtoSerializer{}, NewJSONSerializer()}
}

// Marshal implements Serializer
func (s Serializers) Marshal(v any) (string, []byte, error) {
	for _, serializer := range s {
		contentType, data, err := serializer.Marshal(v)
		if err == nil {
			return contentType, data, nil
		}
	}
	return "", nil, gerrors.ErrUnknownContentType
}

// Unmarshal implements Serializer
func (s Serializers) Unmarshal(contentType string, data []byte) (any, error) {
	for _, serializer := range s {
		v, err := serializer.Unmarshal(contentType, data)
		if err == nil {
			return v, nil
		}
	}
	return nil, gerrors.ErrUnknownContentType
}
