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

// Package message defines the envelopes exchanged between processes.
//
// Every message belongs to one of three families, reported by its Tag:
// system control (lifecycle commands handled by the runtime), user control
// (runtime notifications surfaced to user code) and user payload (tell,
// request and response). Payload envelopes carry a Header with the routing
// metadata: sender, reply-to, conversation id, optional session id and an
// optional due time.
package message

import (
	"time"

	"github.com/tochemey/echo/address"
)

// Tag identifies the family of a message
type Tag int

const (
	// SystemTag marks lifecycle commands
	SystemTag Tag = iota
	// UserControlTag marks runtime notifications
	UserControlTag
	// UserTag marks fire-and-forget payloads
	UserTag
	// RequestTag marks payloads awaiting a response
	RequestTag
	// ResponseTag marks the answer to a request
	ResponseTag
)

// String returns the string representation of the tag
func (t Tag) String() string {
	switch t {
	case SystemTag:
		return "system"
	case UserControlTag:
		return "user-control"
	case UserTag:
		return "user"
	case RequestTag:
		return "request"
	case ResponseTag:
		return "response"
	default:
		return ""
	}
}

// Message is implemented by every envelope
type Message interface {
	Tag() Tag
}

// Header carries the routing metadata of payload envelopes
type Header struct {
	Sender         address.ProcessID
	ReplyTo        address.ProcessID
	ConversationID int64
	SessionID      string
	Due            time.Time
}

// User is a fire-and-forget payload
type User struct {
	Header
	Content any
}

// Tag implements Message
func (*User) Tag() Tag { return UserTag }

// Request is a payload whose sender awaits a correlated Response.
// A request always carries a RequestID and a ReplyTo address.
type Request struct {
	Header
	RequestID int64
	Content   any
	// Waiting lists the processes blocked on this request, innermost first
	Waiting []address.ProcessID
}

// Tag implements Message
func (*Request) Tag() Tag { return RequestTag }

// IsWaiting reports whether pid is blocked on this request
func (r *Request) IsWaiting(pid address.ProcessID) bool {
	for _, waiting := range r.Waiting {
		if waiting == pid {
			return true
		}
	}
	return false
}

// Response answers the Request with the same RequestID
type Response struct {
	Header
	RequestID int64
	Content   any
	Err       error
}

// Tag implements Message
func (*Response) Tag() Tag { return ResponseTag }

// IsFaulted reports whether the request failed
func (r *Response) IsFaulted() bool {
	return r.Err != nil
}
