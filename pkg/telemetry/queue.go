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

	"go.opentelemetry.io/otel/attribute"
	otelmetric "go.opentelemetry.io/otel/metric"
)

var (
	queueMetrics     *QueueMetrics
	queueMetricsOnce sync.Once
)

type QueueMetrics struct {
	EnqueuedTotal  *Counter
	RejectedTotal  *Counter
	ProcessedTotal *Counter
	Depth          *Gauge

	mu     sync.RWMutex
	depths map[string]func() int
}

func NewQueueMetrics(meter otelmetric.Meter) (*QueueMetrics, error) {
	enqueued, err := NewCounter(meter, MetricOptions{
		Name:        BuildMetricName("queue_enqueued", MetricNameSuffixTotal),
		Description: "total number of items accepted by the queue",
		Unit:        "1",
	})
	if err != nil {
		return nil, err
	}

	rejected, err := NewCounter(meter, MetricOptions{
		Name:        BuildMetricName("queue_rejected", MetricNameSuffixTotal),
		Description: "total number of items rejected because the queue was full",
		Unit:        "1",
	})
	if err != nil {
		return nil, err
	}

	processed, err := NewCounter(meter, MetricOptions{
		Name:        BuildMetricName("queue_processed", MetricNameSuffixTotal),
		Description: "total number of items executed by the queue consumer",
		Unit:        "1",
	})
	if err != nil {
		return nil, err
	}

	qm := &QueueMetrics{
		EnqueuedTotal:  enqueued,
		RejectedTotal:  rejected,
		ProcessedTotal: processed,
		depths:         make(map[string]func() int),
	}
	qm.Depth, err = NewGauge(meter, MetricOptions{
		Name:        BuildMetricName("queue_depth", ""),
		Description: "number of items currently held by the queue, pending and in flight",
		Unit:        "1",
	}, qm.observeDepths)
	if err != nil {
		return nil, err
	}

	return qm, nil
}

func InitQueueMetrics(meter otelmetric.Meter) error {
	var initErr error
	queueMetricsOnce.Do(func() {
		queueMetrics, initErr = NewQueueMetrics(meter)
	})
	return initErr
}

func GetQueueMetrics() *QueueMetrics {
	return queueMetrics
}

func (qm *QueueMetrics) RecordEnqueued(ctx context.Context, queue string) {
	if qm == nil {
		return
	}
	qm.EnqueuedTotal.Inc(ctx, WithQueue(queue))
}

func (qm *QueueMetrics) RecordRejected(ctx context.Context, queue string) {
	if qm == nil {
		return
	}
	qm.RejectedTotal.Inc(ctx, WithQueue(queue))
}

func (qm *QueueMetrics) RecordDequeued(ctx context.Context, queue string) {
	if qm == nil {
		return
	}
	qm.ProcessedTotal.Inc(ctx, WithQueue(queue))
}

// ObserveDepth registers the length function reported as the depth of queue.
// A later call with the same name replaces the earlier one.
func (qm *QueueMetrics) ObserveDepth(queue string, length func() int) {
	if qm == nil || length == nil {
		return
	}
	qm.mu.Lock()
	defer qm.mu.Unlock()
	qm.depths[queue] = length
}

func (qm *QueueMetrics) observeDepths(context.Context) []Observation {
	qm.mu.RLock()
	defer qm.mu.RUnlock()

	out := make([]Observation, 0, len(qm.depths))
	for name, length := range qm.depths {
		out = append(out, Observation{
			Value:      float64(length()),
			Attributes: []attribute.KeyValue{WithQueue(name)},
		})
	}
	return out
}
