/*
Copyright 2025.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	otelmetric "go.opentelemetry.io/otel/metric"
)

// MetricOptions describes an instrument. Attributes are attached to every
// recording made through the wrapper.
type MetricOptions struct {
	Name        string
	Description string
	Unit        string
	Attributes  []attribute.KeyValue
}

func (o MetricOptions) instrumentOptions() (otelmetric.InstrumentOption, otelmetric.InstrumentOption) {
	return otelmetric.WithDescription(o.Description), otelmetric.WithUnit(o.Unit)
}

type Counter struct {
	counter otelmetric.Int64Counter
	attrs   []attribute.KeyValue
}

func NewCounter(meter otelmetric.Meter, opts MetricOptions) (*Counter, error) {
	description, unit := opts.instrumentOptions()
	counter, err := meter.Int64Counter(opts.Name, description, unit)
	if err != nil {
		return nil, err
	}
	return &Counter{counter: counter, attrs: opts.Attributes}, nil
}

func (c *Counter) Add(ctx context.Context, value int64, attrs ...attribute.KeyValue) {
	c.counter.Add(ctx, value, otelmetric.WithAttributes(withBase(c.attrs, attrs)...))
}

func (c *Counter) Inc(ctx context.Context, attrs ...attribute.KeyValue) {
	c.Add(ctx, 1, attrs...)
}

type Histogram struct {
	histogram otelmetric.Float64Histogram
	attrs     []attribute.KeyValue
}

func NewHistogram(meter otelmetric.Meter, opts MetricOptions) (*Histogram, error) {
	description, unit := opts.instrumentOptions()
	histogram, err := meter.Float64Histogram(opts.Name, description, unit)
	if err != nil {
		return nil, err
	}
	return &Histogram{histogram: histogram, attrs: opts.Attributes}, nil
}

func (h *Histogram) Record(ctx context.Context, value float64, attrs ...attribute.KeyValue) {
	h.histogram.Record(ctx, value, otelmetric.WithAttributes(withBase(h.attrs, attrs)...))
}

// Observation is one gauge reading for a single attribute set
type Observation struct {
	Value      float64
	Attributes []attribute.KeyValue
}

// GaugeCallback is polled on every collection and may report several series,
// e.g. one per queue
type GaugeCallback func(context.Context) []Observation

// Gauge reports values read at collection time, so it cannot drift from the
// source it observes
type Gauge struct {
	gauge otelmetric.Float64ObservableGauge
}

func NewGauge(meter otelmetric.Meter, opts MetricOptions, callback GaugeCallback) (*Gauge, error) {
	description, unit := opts.instrumentOptions()
	gauge, err := meter.Float64ObservableGauge(
		opts.Name,
		description,
		unit,
		otelmetric.WithFloat64Callback(func(ctx context.Context, observer otelmetric.Float64Observer) error {
			for _, obs := range callback(ctx) {
				observer.Observe(obs.Value, otelmetric.WithAttributes(withBase(opts.Attributes, obs.Attributes)...))
			}
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}

	return &Gauge{gauge: gauge}, nil
}

func withBase(base, attrs []attribute.KeyValue) []attribute.KeyValue {
	if len(base) == 0 {
		return attrs
	}
	out := make([]attribute.KeyValue, 0, len(base)+len(attrs))
	out = append(out, base...)
	return append(out, attrs...)
}
