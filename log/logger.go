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

package log

// Logger is the logging facade used by the process runtime.
// Implementations must be safe for concurrent use since every process
// logs from its own drain goroutine.
type Logger interface {
	// Debug logs at debug level.
	Debug(...any)
	// Debugf logs a formatted message at debug level.
	Debugf(string, ...any)
	// Info logs at info level.
	Info(...any)
	// Infof logs a formatted message at info level.
	Infof(string, ...any)
	// Warn logs at warning level.
	Warn(...any)
	// Warnf logs a formatted message at warning level.
	Warnf(string, ...any)
	// Error logs at error level.
	Error(...any)
	// Errorf logs a formatted message at error level.
	Errorf(string, ...any)
	// With returns a Logger that adds the given key-value pairs to every entry.
	With(keyValues ...any) Logger
	// LogLevel returns the minimum enabled level
	LogLevel() Level
	// Flush writes any buffered entries
	Flush() error
}
