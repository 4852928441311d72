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
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/tochemey/echo/address"
)

const maxContentDisplay = 100

// DeadLetter records a message that could not be delivered or processed
type DeadLetter struct {
	Sender    address.ProcessID
	Recipient address.ProcessID
	Err       error
	Reason    string
	Message   any
	Time      time.Time
}

// ContentDisplay returns the message content, cut at 100 characters
func (d DeadLetter) ContentDisplay() string {
	if d.Message == nil {
		return "[null]"
	}
	text := fmt.Sprint(d.Message)
	if len(text) > maxContentDisplay {
		return text[:maxContentDisplay] + "..."
	}
	return text
}

// ContentTypeDisplay returns the type name of the message
func (d DeadLetter) ContentTypeDisplay() string {
	if d.Message == nil {
		return "[null]"
	}
	rtype := reflect.TypeOf(d.Message)
	for rtype.Kind() == reflect.Pointer {
		rtype = rtype.Elem()
	}
	if rtype.Name() == "" {
		return rtype.String()
	}
	return rtype.Name()
}

// String renders the dead letter for logs
func (d DeadLetter) String() string {
	var sb strings.Builder
	sb.WriteString("Dead letter from: ")
	sb.WriteString(processDisplay(d.Sender))
	sb.WriteString(" to: ")
	sb.WriteString(d.Recipient.String())

	switch {
	case d.Err != nil && d.Reason != "":
		fmt.Fprintf(&sb, ", failed because: %s %v.", d.Reason, d.Err)
	case d.Err != nil:
		fmt.Fprintf(&sb, ", failed because: %v.", d.Err)
	case d.Reason != "":
		fmt.Fprintf(&sb, ", failed because: %s.", d.Reason)
	default:
		sb.WriteString(".")
	}

	fmt.Fprintf(&sb, " Type: %s Content: %s", d.ContentTypeDisplay(), d.ContentDisplay())
	return sb.String()
}

func processDisplay(pid address.ProcessID) string {
	if pid.IsZero() {
		return "no-sender"
	}
	return pid.String()
}
