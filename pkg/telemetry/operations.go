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
	"sync"
	"time"

	otelmetric "go.opentelemetry.io/otel/metric"
)

var (
	operationMetrics     *OperationMetrics
	operationMetricsOnce sync.Once
)

// OperationMetrics counts coordinator operations and how long they take
type OperationMetrics struct {
	CountTotal *Counter
	ErrorTotal *Counter
	Duration   *Histogram
}

// NewOperationMetrics registers the operation instruments on meter
func NewOperationMetrics(meter otelmetric.Meter) (*OperationMetrics, error) {
	countTotal, err := NewCounter(meter, MetricOptions{
		Name:        BuildMetricName("operation_count", MetricNameSuffixTotal),
		Description: "total number of user manager operations, labelled by operation and status",
		Unit:        "1",
	})
	if err != nil {
		return nil, err
	}

	errorTotal, err := NewCounter(meter, MetricOptions{
		Name: BuildMetricName("operation_error", MetricNameSuffixTotal),
		Description: "total number of failed user manager operations. " +
			"error% = usermanager_operation_error_total / usermanager_operation_count_total",
		Unit: "1",
	})
	if err != nil {
		return nil, err
	}

	duration, err := NewHistogram(meter, MetricOptions{
		Name:        BuildMetricName("operation", MetricNameSuffixDuration),
		Description: "latency of user manager operations including remote calls",
		Unit:        "s",
	})
	if err != nil {
		return nil, err
	}

	return &OperationMetrics{
		CountTotal: countTotal,
		ErrorTotal: errorTotal,
		Duration:   duration,
	}, nil
}

// InitOperationMetrics creates the process-wide OperationMetrics once
func InitOperationMetrics(meter otelmetric.Meter) error {
	var initErr error
	operationMetricsOnce.Do(func() {
		operationMetrics, initErr = NewOperationMetrics(meter)
	})
	return initErr
}

func GetOperationMetrics() *OperationMetrics {
	return operationMetrics
}

// RecordOperation records one finished operation started at start
func (om *OperationMetrics) RecordOperation(ctx context.Context, operation string, start time.Time, err error) {
	if om == nil {
		return
	}
	status := StatusFromError(err)
	om.CountTotal.Inc(ctx, WithOperation(operation), WithStatus(status))
	if err != nil {
		om.ErrorTotal.Inc(ctx, WithOperation(operation))
	}
	om.Duration.Record(ctx, time.Since(start).Seconds(), WithOperation(operation), WithStatus(status))
}
