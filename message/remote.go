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
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tochemey/echo/address"
	gerrors "github.com/tochemey/echo/errors"
)

// RemoteType is the kind of a RemoteMessage
type RemoteType string

const (
	RemoteTell        RemoteType = "tell"
	RemoteAsk         RemoteType = "ask"
	RemoteResponse    RemoteType = "response"
	RemoteSystem      RemoteType = "system"
	RemoteUserControl RemoteType = "user-control"
)

// remote tags for control messages
const (
	tagShutdown   = "shutdown"
	tagKill       = "kill"
	tagRestart    = "restart"
	tagWatch      = "watch"
	tagUnwatch    = "unwatch"
	tagLink       = "link"
	tagUnlink     = "unlink"
	tagTerminated = "terminated"
	tagNull       = "null"
)

// RemoteMessage is the wire form of an envelope sent through the cluster collaborator
type RemoteMessage struct {
	Type           RemoteType        `json:"type"`
	Tag            string            `json:"tag,omitempty"`
	Exception      string            `json:"exception,omitempty"`
	Child          string            `json:"child,omitempty"`
	To             address.ProcessID `json:"to"`
	Sender         address.ProcessID `json:"sender"`
	ReplyTo        address.ProcessID `json:"replyTo"`
	RequestID      int64             `json:"requestId"`
	ContentType    string            `json:"contentType,omitempty"`
	Content        []byte            `json:"content,omitempty"`
	MessageID      string            `json:"messageId"`
	SessionID      string            `json:"sessionId,omitempty"`
	ConversationID int64             `json:"conversationId"`
	Due            int64             `json:"due,omitempty"`
}

// Encode returns the JSON form of m
func (m *RemoteMessage) Encode() ([]byte, error) {
	return json.Marshal(m)
}

// DecodeRemoteMessage parses the JSON form of a RemoteMessage
func DecodeRemoteMessage(data []byte) (*RemoteMessage, error) {
	m := new(RemoteMessage)
	if err := json.Unmarshal(data, m); err != nil {
		return nil, err
	}
	return m, nil
}

// ToRemote converts an envelope addressed to `to` into its wire form
func ToRemote(msg Message, to address.ProcessID, serializer Serializer) (*RemoteMessage, error) {
	remote := &RemoteMessage{
		To:        to,
		RequestID: -1,
		MessageID: uuid.NewString(),
	}

	switch m := msg.(type) {
	case *User:
		remote.Type = RemoteTell
		if err := remote.setHeader(m.Header, m.Content, serializer); err != nil {
			return nil, err
		}
	case *Request:
		remote.Type = RemoteAsk
		remote.RequestID = m.RequestID
		if err := remote.setHeader(m.Header, m.Content, serializer); err != nil {
			return nil, err
		}
	case *Response:
		remote.Type = RemoteResponse
		remote.RequestID = m.RequestID
		if m.Err != nil {
			remote.Exception = m.Err.Error()
			remote.setRouting(m.Header)
			break
		}
		if err := remote.setHeader(m.Header, m.Content, serializer); err != nil {
			return nil, err
		}
	case *Shutdown:
		remote.Type = RemoteSystem
		remote.Tag = tagKill
		if m.MaintainState {
			remote.Tag = tagShutdown
		}
	case *Restart:
		remote.Type, remote.Tag = RemoteSystem, tagRestart
	case *Watch:
		remote.Type, remote.Tag, remote.Sender = RemoteSystem, tagWatch, m.Watcher
	case *Unwatch:
		remote.Type, remote.Tag, remote.Sender = RemoteSystem, tagUnwatch, m.Watcher
	case *Link:
		remote.Type, remote.Tag, remote.Sender = RemoteSystem, tagLink, m.ID
	case *Unlink:
		remote.Type, remote.Tag, remote.Sender = RemoteSystem, tagUnlink, m.ID
	case *Terminated:
		remote.Type, remote.Tag, remote.Child = RemoteUserControl, tagTerminated, m.ID.String()
	case *Null:
		remote.Type, remote.Tag = RemoteUserControl, tagNull
	default:
		return nil, fmt.Errorf("%T cannot cross a node boundary: %w", msg, gerrors.ErrRemoteNotSupported)
	}

	return remote, nil
}

// ToMessage rebuilds the envelope carried by m
func (m *RemoteMessage) ToMessage(serializer Serializer) (Message, error) {
	switch m.Type {
	case RemoteTell:
		content, err := m.content(serializer)
		if err != nil {
			return nil, err
		}
		return &User{Header: m.header(), Content: content}, nil
	case RemoteAsk:
		content, err := m.content(serializer)
		if err != nil {
			return nil, err
		}
		return &Request{Header: m.header(), RequestID: m.RequestID, Content: content}, nil
	case RemoteResponse:
		if m.Exception != "" {
			return &Response{Header: m.header(), RequestID: m.RequestID, Err: &gerrors.RemoteError{Message: m.Exception}}, nil
		}
		content, err := m.content(serializer)
		if err != nil {
			return nil, err
		}
		return &Response{Header: m.header(), RequestID: m.RequestID, Content: content}, nil
	case RemoteSystem:
		switch m.Tag {
		case tagShutdown:
			return &Shutdown{MaintainState: true}, nil
		case tagKill:
			return &Shutdown{}, nil
		case tagRestart:
			return &Restart{}, nil
		case tagWatch:
			return &Watch{Watcher: m.Sender}, nil
		case tagUnwatch:
			return &Unwatch{Watcher: m.Sender}, nil
		case tagLink:
			return &Link{ID: m.Sender}, nil
		case tagUnlink:
			return &Unlink{ID: m.Sender}, nil
		}
	case RemoteUserControl:
		switch m.Tag {
		case tagTerminated:
			pid, err := address.Parse(m.Child)
			if err != nil {
				return nil, err
			}
			return &Terminated{ID: pid}, nil
		case tagNull:
			return &Null{}, nil
		}
	}
	return nil, fmt.Errorf("(type=%s, tag=%s) %w", m.Type, m.Tag, gerrors.ErrUnknownContentType)
}

func (m *RemoteMessage) setRouting(header Header) {
	m.Sender = header.Sender
	m.ReplyTo = header.ReplyTo
	m.SessionID = header.SessionID
	m.ConversationID = header.ConversationID
	if !header.Due.IsZero() {
		m.Due = header.Due.UnixNano()
	}
}

func (m *RemoteMessage) setHeader(header Header, content any, serializer Serializer) error {
	m.setRouting(header)
	contentType, data, err := serializer.Marshal(content)
	if err != nil {
		return fmt.Errorf("failed to encode %T: %w", content, err)
	}
	m.ContentType = contentType
	m.Content = data
	return nil
}

func (m *RemoteMessage) header() Header {
	header := Header{
		Sender:         m.Sender,
		ReplyTo:        m.ReplyTo,
		ConversationID: m.ConversationID,
		SessionID:      m.SessionID,
	}
	if m.Due > 0 {
		header.Due = time.Unix(0, m.Due)
	}
	return header
}

func (m *RemoteMessage) content(serializer Serializer) (any, error) {
	return serializer.Unmarshal(m.ContentType, m.Content)
}
