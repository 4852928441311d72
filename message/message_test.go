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
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/tochemey/echo/address"
	gerrors "github.com/tochemey/echo/errors"
	"github.com/tochemey/echo/supervisor"
)

type greeting struct {
	Text  string `json:"text"`
	Count int    `json:"count"`
}

func TestTags(t *testing.T) {
	testCases := []struct {
		msg Message
		tag Tag
	}{
		{new(User), UserTag},
		{new(Request), RequestTag},
		{new(Response), ResponseTag},
		{new(Shutdown), SystemTag},
		{new(Restart), SystemTag},
		{new(Watch), SystemTag},
		{new(Unwatch), SystemTag},
		{new(Link), SystemTag},
		{new(Unlink), SystemTag},
		{new(DispatchWatch), SystemTag},
		{new(DispatchUnwatch), SystemTag},
		{new(Escalation), SystemTag},
		{new(GetChildren), UserControlTag},
		{new(Terminated), UserControlTag},
		{new(Null), UserControlTag},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.tag, tc.msg.Tag())
	}
	assert.Equal(t, "request", RequestTag.String())
	assert.Equal(t, "", Tag(99).String())
}

func TestRequestAndResponse(t *testing.T) {
	a := address.MustParse("//s/root/user/a")
	req := &Request{RequestID: 1, Waiting: []address.ProcessID{a}}
	assert.True(t, req.IsWaiting(a))
	assert.False(t, req.IsWaiting(address.MustParse("//s/root/user/b")))

	assert.False(t, (&Response{RequestID: 1}).IsFaulted())
	assert.True(t, (&Response{RequestID: 1, Err: errors.New("x")}).IsFaulted())
}

func TestDeadLetter(t *testing.T) {
	to := address.MustParse("//s/root/user/a")
	from := address.MustParse("//s/root/user/b")

	t.Run("With no sender and an error", func(t *testing.T) {
		d := DeadLetter{Recipient: to, Err: errors.New("boom"), Message: "hello"}
		assert.Equal(t, "Dead letter from: no-sender to: //s/root/user/a, failed because: boom. Type: string Content: hello", d.String())
	})

	t.Run("With reason and error", func(t *testing.T) {
		d := DeadLetter{Sender: from, Recipient: to, Err: errors.New("boom"), Reason: "invalid", Message: &greeting{Text: "hi"}}
		assert.True(t, strings.HasPrefix(d.String(), "Dead letter from: //s/root/user/b to: //s/root/user/a, failed because: invalid boom."))
		assert.Equal(t, "greeting", d.ContentTypeDisplay())
	})

	t.Run("With reason only", func(t *testing.T) {
		d := DeadLetter{Sender: from, Recipient: to, Reason: "no route", Message: 1}
		assert.Contains(t, d.String(), "failed because: no route.")
	})

	t.Run("With nothing", func(t *testing.T) {
		d := DeadLetter{Recipient: to}
		assert.Equal(t, "Dead letter from: no-sender to: //s/root/user/a. Type: [null] Content: [null]", d.String())
	})

	t.Run("With long content", func(t *testing.T) {
		d := DeadLetter{Recipient: to, Message: strings.Repeat("x", 150)}
		assert.Equal(t, strings.Repeat("x", 100)+"...", d.ContentDisplay())
	})
}

func TestFailure(t *testing.T) {
	f := Failure{
		Process:   address.MustParse("//s/root/user/a"),
		Message:   "boom",
		Err:       errors.New("failed"),
		Directive: supervisor.RestartDirective,
	}
	assert.Equal(t, "process //s/root/user/a failed on string from no-sender: failed (Restart)", f.String())
}

func TestSerializers(t *testing.T) {
	t.Run("JSON with registered types", func(t *testing.T) {
		s := NewJSONSerializer(greeting{}, &greeting{})

		contentType, data, err := s.Marshal(greeting{Text: "hi", Count: 2})
		require.NoError(t, err)
		assert.Equal(t, "json:github.com/tochemey/echo/message.greeting", contentType)

		v, err := s.Unmarshal(contentType, data)
		require.NoError(t, err)
		assert.Equal(t, greeting{Text: "hi", Count: 2}, v)

		contentType, data, err = s.Marshal(&greeting{Text: "ptr"})
		require.NoError(t, err)
		v, err = s.Unmarshal(contentType, data)
		require.NoError(t, err)
		assert.Equal(t, &greeting{Text: "ptr"}, v)
	})

	t.Run("JSON with builtin scalars", func(t *testing.T) {
		s := NewJSONSerializer()
		contentType, data, err := s.Marshal(42)
		require.NoError(t, err)
		v, err := s.Unmarshal(contentType, data)
		require.NoError(t, err)
		assert.Equal(t, 42, v)
	})

	t.Run("JSON with unknown types", func(t *testing.T) {
		s := NewJSONSerializer()
		_, _, err := s.Marshal(greeting{})
		require.ErrorIs(t, err, gerrors.ErrUnknownContentType)
		_, err = s.Unmarshal("json:missing", nil)
		require.ErrorIs(t, err, gerrors.ErrUnknownContentType)
		_, err = s.Unmarshal("proto:x", nil)
		require.ErrorIs(t, err, gerrors.ErrUnknownContentType)
	})

	t.Run("Proto", func(t *testing.T) {
		s := ProtoSerializer{}
		contentType, data, err := s.Marshal(wrapperspb.String("hello"))
		require.NoError(t, err)
		assert.Equal(t, "proto:google.protobuf.StringValue", contentType)

		v, err := s.Unmarshal(contentType, data)
		require.NoError(t, err)
		assert.True(t, proto.Equal(wrapperspb.String("hello"), v.(proto.Message)))

		_, _, err = s.Marshal("text")
		require.ErrorIs(t, err, gerrors.ErrUnknownContentType)
		_, err = s.Unmarshal("proto:does.not.Exist", nil)
		require.ErrorIs(t, err, gerrors.ErrUnknownContentType)
	})

	t.Run("Default serializer picks by payload", func(t *testing.T) {
		s := DefaultSerializer()
		contentType, _, err := s.Marshal(wrapperspb.Int64(1))
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(contentType, "proto:"))

		contentType, data, err := s.Marshal("plain")
		require.NoError(t, err)
		v, err := s.Unmarshal(contentType, data)
		require.NoError(t, err)
		assert.Equal(t, "plain", v)

		_, _, err = s.Marshal(struct{}{})
		require.ErrorIs(t, err, gerrors.ErrUnknownContentType)
		_, err = s.Unmarshal("xml:thing", nil)
		require.ErrorIs(t, err, gerrors.ErrUnknownContentType)
	})
}

func TestRemoteMessage(t *testing.T) {
	serializer := Serializers{ProtoSerializer{}, NewJSONSerializer(greeting{})}
	to := address.MustParse("//remote/root/user/a")
	from := address.MustParse("//local/root/user/b")
	due := time.Unix(0, 1_700_000_000_000_000_000)

	roundTrip := func(t *testing.T, msg Message) Message {
		t.Helper()
		remote, err := ToRemote(msg, to, serializer)
		require.NoError(t, err)
		require.NotEmpty(t, remote.MessageID)
		assert.Equal(t, to, remote.To)

		bytes, err := remote.Encode()
		require.NoError(t, err)
		decoded, err := DecodeRemoteMessage(bytes)
		require.NoError(t, err)

		out, err := decoded.ToMessage(serializer)
		require.NoError(t, err)
		return out
	}

	t.Run("Tell keeps the header", func(t *testing.T) {
		header := Header{Sender: from, ConversationID: 7, SessionID: "session", Due: due}
		out := roundTrip(t, &User{Header: header, Content: greeting{Text: "hi"}})
		user := out.(*User)
		assert.Equal(t, greeting{Text: "hi"}, user.Content)
		assert.Equal(t, from, user.Sender)
		assert.EqualValues(t, 7, user.ConversationID)
		assert.Equal(t, "session", user.SessionID)
		assert.True(t, due.Equal(user.Due))
	})

	t.Run("Request and response", func(t *testing.T) {
		out := roundTrip(t, &Request{Header: Header{ReplyTo: from}, RequestID: 3, Content: wrapperspb.String("q")})
		req := out.(*Request)
		assert.EqualValues(t, 3, req.RequestID)
		assert.Equal(t, from, req.ReplyTo)

		out = roundTrip(t, &Response{RequestID: 3, Content: "answer"})
		assert.Equal(t, "answer", out.(*Response).Content)

		out = roundTrip(t, &Response{RequestID: 3, Err: errors.New("failed")})
		resp := out.(*Response)
		require.True(t, resp.IsFaulted())
		assert.EqualError(t, resp.Err, "failed")
	})

	t.Run("Control messages", func(t *testing.T) {
		assert.Equal(t, &Shutdown{MaintainState: true}, roundTrip(t, &Shutdown{MaintainState: true}))
		assert.Equal(t, &Shutdown{}, roundTrip(t, &Shutdown{}))
		assert.Equal(t, &Restart{}, roundTrip(t, &Restart{}))
		assert.Equal(t, &Watch{Watcher: from}, roundTrip(t, &Watch{Watcher: from}))
		assert.Equal(t, &Unwatch{Watcher: from}, roundTrip(t, &Unwatch{Watcher: from}))
		assert.Equal(t, &Link{ID: from}, roundTrip(t, &Link{ID: from}))
		assert.Equal(t, &Unlink{ID: from}, roundTrip(t, &Unlink{ID: from}))
		assert.Equal(t, &Terminated{ID: from}, roundTrip(t, &Terminated{ID: from}))
		assert.Equal(t, &Null{}, roundTrip(t, &Null{}))
	})

	t.Run("Unsupported messages", func(t *testing.T) {
		_, err := ToRemote(&GetChildren{}, to, serializer)
		require.ErrorIs(t, err, gerrors.ErrRemoteNotSupported)

		_, err = ToRemote(&User{Content: struct{}{}}, to, serializer)
		require.ErrorIs(t, err, gerrors.ErrUnknownContentType)

		_, err = (&RemoteMessage{Type: "bogus"}).ToMessage(serializer)
		require.ErrorIs(t, err, gerrors.ErrUnknownContentType)

		_, err = DecodeRemoteMessage([]byte("{"))
		require.Error(t, err)
	})
}
