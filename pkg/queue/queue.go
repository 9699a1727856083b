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

package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/BBQAnChang/SBHomework/pkg/logger"
	"github.com/BBQAnChang/SBHomework/pkg/telemetry"
)

const DefaultInterval = time.Second

// ErrQueueFull is returned by Enqueue when the queue is at capacity
var ErrQueueFull = errors.New("queue is full")

// Item pairs a payload with the work to run for it
type Item[T any] struct {
	Element T
	Execute func(T)
}

type Option func(*options)

type options struct {
	interval time.Duration
	metrics  *telemetry.QueueMetrics
	name     string
}

// WithInterval sets the minimum spacing between two executions
func WithInterval(d time.Duration) Option {
	return func(o *options) {
		o.interval = d
	}
}

func WithMetrics(m *telemetry.QueueMetrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// Queue is a bounded FIFO drained by a single consumer goroutine that runs at
// most one item per interval. Items still waiting or executing count against
// the capacity.
type Queue[T any] struct {
	mu       sync.Mutex
	items    []Item[T]
	inFlight int
	maxSize  int

	limiter *rate.Limiter
	cancel  context.CancelFunc
	done    chan struct{}

	name    string
	metrics *telemetry.QueueMetrics
}

// New creates an idle queue that holds at most maxSize items
func New[T any](maxSize int, opts ...Option) (*Queue[T], error) {
	if maxSize <= 0 {
		return nil, fmt.Errorf("queue size must be positive, got %d", maxSize)
	}

	o := &options{
		interval: DefaultInterval,
		name:     "default",
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.interval <= 0 {
		return nil, fmt.Errorf("queue interval must be positive, got %s", o.interval)
	}

	q := &Queue[T]{
		items:   make([]Item[T], 0, maxSize),
		maxSize: maxSize,
		limiter: rate.NewLimiter(rate.Every(o.interval), 1),
		name:    o.name,
		metrics: o.metrics,
	}
	q.metrics.ObserveDepth(q.name, q.Len)
	return q, nil
}

// Enqueue appends item at the tail and starts the consumer when it is idle
func (q *Queue[T]) Enqueue(item Item[T]) error {
	if item.Execute == nil {
		return errors.New("queue item has no Execute function")
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items)+q.inFlight >= q.maxSize {
		q.metrics.RecordRejected(context.Background(), q.name)
		return ErrQueueFull
	}

	q.items = append(q.items, item)
	q.metrics.RecordEnqueued(context.Background(), q.name)

	if q.cancel == nil {
		q.startLocked()
	}
	return nil
}

// Stop cancels the pending tick. Waiting items are kept and drained after the
// next Enqueue; an executing item runs to completion.
func (q *Queue[T]) Stop() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.cancel != nil {
		q.cancel()
		q.cancel = nil
	}
}

// Len reports the number of items waiting or executing
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items) + q.inFlight
}

func (q *Queue[T]) Cap() int {
	return q.maxSize
}

// Running reports whether a consumer is scheduled
func (q *Queue[T]) Running() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.cancel != nil
}

func (q *Queue[T]) startLocked() {
	ctx, cancel := context.WithCancel(context.Background())
	prev := q.done
	done := make(chan struct{})

	q.cancel = cancel
	q.done = done

	go q.consume(ctx, prev, done)
}

func (q *Queue[T]) consume(ctx context.Context, prev <-chan struct{}, done chan struct{}) {
	defer close(done)

	// the previous consumer may still be executing its last item
	if prev != nil {
		<-prev
	}

	log := logger.Logger(ctx).WithFields(logrus.Fields{
		"component": "queue",
		"queue":     q.name,
	})

	for {
		if err := q.limiter.Wait(ctx); err != nil {
			log.Debug("queue consumer stopped")
			return
		}

		item, ok := q.pop(ctx)
		if !ok {
			log.Debug("queue drained, consumer going idle")
			return
		}

		item.Execute(item.Element)

		q.mu.Lock()
		q.inFlight--
		q.mu.Unlock()
		q.metrics.RecordDequeued(context.Background(), q.name)
	}
}

// pop removes the head item. It returns false, and marks the consumer idle,
// when the queue is empty or the consumer was stopped.
func (q *Queue[T]) pop(ctx context.Context) (Item[T], bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if ctx.Err() != nil {
		return Item[T]{}, false
	}

	if len(q.items) == 0 {
		q.cancel()
		q.cancel = nil
		return Item[T]{}, false
	}

	item := q.items[0]
	q.items[0] = Item[T]{}
	q.items = q.items[1:]
	q.inFlight++
	return item, true
}
