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

package actor

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	imetric "github.com/tochemey/echo/internal/metric"
)

// registerMetrics exposes the system counters as observable instruments
func (x *ActorSystem) registerMetrics() error {
	meter := imetric.NewProvider(x.meterProvider).Meter()
	instruments, err := imetric.NewSystemMetric(meter)
	if err != nil {
		return err
	}

	attrs := metric.WithAttributes(attribute.String("echo.system", x.name.String()))
	x.metrics, err = meter.RegisterCallback(func(_ context.Context, observer metric.Observer) error {
		var peers int64
		if x.remoting != nil {
			peers = x.remoting.peers.Load()
		}
		observer.ObserveInt64(instruments.ProcessesCount(), int64(x.table.Len()), attrs)
		observer.ObserveInt64(instruments.DeadlettersCount(), x.deadLettersCount.Load(), attrs)
		observer.ObserveInt64(instruments.ProcessedCount(), x.processedCount.Load(), attrs)
		observer.ObserveInt64(instruments.FailuresCount(), x.failureCount.Load(), attrs)
		observer.ObserveInt64(instruments.RestartsCount(), x.restartCount.Load(), attrs)
		observer.ObserveInt64(instruments.PeersCount(), peers, attrs)
		observer.ObserveInt64(instruments.Uptime(), int64(x.Uptime().Seconds()), attrs)
		return nil
	}, instruments.Observables()...)
	return err
}

func (x *ActorSystem) unregisterMetrics() error {
	if x.metrics == nil {
		return nil
	}
	return x.metrics.Unregister()
}
