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

package metric

import "go.opentelemetry.io/otel/metric"

// SystemMetric groups the instruments describing one process-system
//
// Instruments:
//   - echo.processes.count   (Int64ObservableGauge)
//   - echo.deadletters.count (Int64ObservableCounter)
//   - echo.processed.count   (Int64ObservableCounter)
//   - echo.failures.count    (Int64ObservableCounter)
//   - echo.restarts.count    (Int64ObservableCounter)
//   - echo.peers.count       (Int64ObservableGauge)
//   - echo.uptime            (Int64ObservableCounter, unit: seconds)
type SystemMetric struct {
	processesCount   metric.Int64ObservableGauge
	deadlettersCount metric.Int64ObservableCounter
	processedCount   metric.Int64ObservableCounter
	failuresCount    metric.Int64ObservableCounter
	restartsCount    metric.Int64ObservableCounter
	peersCount       metric.Int64ObservableGauge
	uptime           metric.Int64ObservableCounter
}

// NewSystemMetric creates the instruments on meter
func NewSystemMetric(meter metric.Meter) (*SystemMetric, error) {
	var instruments SystemMetric
	var err error

	if instruments.processesCount, err = meter.Int64ObservableGauge(
		"echo.processes.count",
		metric.WithDescription("Total number of live processes in the system"),
	); err != nil {
		return nil, err
	}

	if instruments.deadlettersCount, err = meter.Int64ObservableCounter(
		"echo.deadletters.count",
		metric.WithDescription("Total number of dead letters in the system"),
	); err != nil {
		return nil, err
	}

	if instruments.processedCount, err = meter.Int64ObservableCounter(
		"echo.processed.count",
		metric.WithDescription("Total number of messages handled by the processes of the system"),
	); err != nil {
		return nil, err
	}

	if instruments.failuresCount, err = meter.Int64ObservableCounter(
		"echo.failures.count",
		metric.WithDescription("Total number of handler failures in the system"),
	); err != nil {
		return nil, err
	}

	if instruments.restartsCount, err = meter.Int64ObservableCounter(
		"echo.restarts.count",
		metric.WithDescription("Total number of process restarts in the system"),
	); err != nil {
		return nil, err
	}

	if instruments.peersCount, err = meter.Int64ObservableGauge(
		"echo.peers.count",
		metric.WithDescription("Total number of live remote systems sharing the cluster"),
	); err != nil {
		return nil, err
	}

	if instruments.uptime, err = meter.Int64ObservableCounter(
		"echo.uptime",
		metric.WithDescription("Uptime of the system in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	return &instruments, nil
}

// ProcessesCount returns the live processes instrument
func (x *SystemMetric) ProcessesCount() metric.Int64ObservableGauge {
	return x.processesCount
}

// DeadlettersCount returns the dead letters instrument
func (x *SystemMetric) DeadlettersCount() metric.Int64ObservableCounter {
	return x.deadlettersCount
}

// ProcessedCount returns the handled messages instrument
func (x *SystemMetric) ProcessedCount() metric.Int64ObservableCounter {
	return x.processedCount
}

// FailuresCount returns the handler failures instrument
func (x *SystemMetric) FailuresCount() metric.Int64ObservableCounter {
	return x.failuresCount
}

// RestartsCount returns the restarts instrument
func (x *SystemMetric) RestartsCount() metric.Int64ObservableCounter {
	return x.restartsCount
}

// PeersCount returns the remote systems instrument
func (x *SystemMetric) PeersCount() metric.Int64ObservableGauge {
	return x.peersCount
}

// Uptime returns the uptime instrument
func (x *SystemMetric) Uptime() metric.Int64ObservableCounter {
	return x.uptime
}

// Observables returns every instrument for Meter.RegisterCallback
func (x *SystemMetric) Observables() []metric.Observable {
	return []metric.Observable{
		x.processesCount,
		x.deadlettersCount,
		x.processedCount,
		x.failuresCount,
		x.restartsCount,
		x.peersCount,
		x.uptime,
	}
}
