package usermanager

import (
	"time"

	"github.com/BBQAnChang/SBHomework/pkg/telemetry"
)

const (
	DefaultMaxCreateCount  = 10
	DefaultQueueInterval   = time.Second
	DefaultBulkCreateDelay = time.Second
	DefaultPageLimit       = 100
)

type Option func(*options)

type options struct {
	maxCreateCount   int
	queueInterval    time.Duration
	bulkCreateDelay  time.Duration
	pageLimit        int
	operationMetrics *telemetry.OperationMetrics
	queueMetrics     *telemetry.QueueMetrics
}

func defaultOptions() *options {
	return &options{
		maxCreateCount:  DefaultMaxCreateCount,
		queueInterval:   DefaultQueueInterval,
		bulkCreateDelay: DefaultBulkCreateDelay,
		pageLimit:       DefaultPageLimit,
	}
}

// WithMaxCreateCount sets the queue capacity and the bulk admission limit
func WithMaxCreateCount(n int) Option {
	return func(o *options) {
		o.maxCreateCount = n
	}
}

// WithQueueInterval sets the spacing between two queued creations
func WithQueueInterval(d time.Duration) Option {
	return func(o *options) {
		o.queueInterval = d
	}
}

// WithBulkCreateDelay sets the per-index delay used by CreateUsers
func WithBulkCreateDelay(d time.Duration) Option {
	return func(o *options) {
		o.bulkCreateDelay = d
	}
}

func WithPageLimit(n int) Option {
	return func(o *options) {
		o.pageLimit = n
	}
}

func WithOperationMetrics(m *telemetry.OperationMetrics) Option {
	return func(o *options) {
		o.operationMetrics = m
	}
}

func WithQueueMetrics(m *telemetry.QueueMetrics) Option {
	return func(o *options) {
		o.queueMetrics = m
	}
}
