package observer

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/anime-shed/vegindex-go/pkg/rgbvi"
)

// IndexEvent represents an index computation event
type IndexEvent struct {
	EventType      EventType              `json:"event_type"`
	Timestamp      time.Time              `json:"timestamp"`
	ImageURL       string                 `json:"image_url"`
	Formulas       []string               `json:"formulas,omitempty"`
	ProcessingTime time.Duration          `json:"processing_time"`
	Success        bool                   `json:"success"`
	ErrorMessage   string                 `json:"error_message,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}

// EventType represents the type of index event
type EventType string

const (
	// ComputationStarted when index computation begins
	ComputationStarted EventType = "computation_started"
	// ComputationCompleted when every requested index was computed
	ComputationCompleted EventType = "computation_completed"
	// ComputationFailed when computation fails
	ComputationFailed EventType = "computation_failed"
	// RenderCompleted when an index image was encoded
	RenderCompleted EventType = "render_completed"
	// ImageFetched when image is successfully fetched
	ImageFetched EventType = "image_fetched"
	// ImageFetchFailed when image fetch fails
	ImageFetchFailed EventType = "image_fetch_failed"
	// DegeneracyDetected when a formula stabilized too many denominators
	DegeneracyDetected EventType = "degeneracy_detected"
)

// Observer defines the interface for event observers
type Observer interface {
	OnEvent(ctx context.Context, event IndexEvent)
	GetObserverName() string
}

// Subject defines the interface for event publishers
type Subject interface {
	Subscribe(observer Observer)
	Unsubscribe(observer Observer)
	NotifyObservers(ctx context.Context, event IndexEvent)
}

// LoggingObserver logs index events
type LoggingObserver struct {
	logger *logrus.Logger
}

// NewLoggingObserver creates a new logging observer
func NewLoggingObserver(logger *logrus.Logger) Observer {
	return &LoggingObserver{
		logger: logger,
	}
}

// OnEvent handles index events by logging them
func (o *LoggingObserver) OnEvent(ctx context.Context, event IndexEvent) {
	fields := logrus.Fields{
		"event_type":      event.EventType,
		"image_url":       event.ImageURL,
		"processing_time": event.ProcessingTime,
		"success":         event.Success,
	}
	if len(event.Formulas) > 0 {
		fields["formulas"] = event.Formulas
	}
	if event.ErrorMessage != "" {
		fields["error"] = event.ErrorMessage
	}
	for k, v := range event.Metadata {
		fields[k] = v
	}

	entry := o.logger.WithFields(fields)
	switch event.EventType {
	case ComputationStarted:
		entry.Info("Index computation started")
	case ComputationCompleted:
		entry.Info("Index computation completed")
	case ComputationFailed:
		entry.Error("Index computation failed")
	case RenderCompleted:
		entry.Info("Index rendered")
	case ImageFetched:
		entry.Debug("Image fetched successfully")
	case ImageFetchFailed:
		entry.Error("Image fetch failed")
	case DegeneracyDetected:
		entry.Warn("Degenerate denominators detected")
	default:
		entry.Info("Index event occurred")
	}
}

// GetObserverName returns the observer name
func (o *LoggingObserver) GetObserverName() string {
	return "logging_observer"
}

// Metrics is a snapshot of MetricsObserver counters
type Metrics struct {
	TotalComputations      int64            `json:"total_computations"`
	SuccessfulComputations int64            `json:"successful_computations"`
	FailedComputations     int64            `json:"failed_computations"`
	Renders                int64            `json:"renders"`
	FetchFailures          int64            `json:"fetch_failures"`
	TotalProcessingTime    time.Duration    `json:"total_processing_time"`
	AvgProcessingTime      time.Duration    `json:"avg_processing_time"`
	FormulaCounts          map[string]int64 `json:"formula_counts"`
	DegenerateCounts       map[string]int64 `json:"degenerate_counts"`
}

// MetricsObserver collects metrics from index events
type MetricsObserver struct {
	mu      sync.RWMutex
	metrics Metrics
}

// NewMetricsObserver creates a new metrics observer
func NewMetricsObserver() *MetricsObserver {
	return &MetricsObserver{
		metrics: Metrics{
			FormulaCounts:    make(map[string]int64),
			DegenerateCounts: make(map[string]int64),
		},
	}
}

// OnEvent handles index events by collecting metrics
func (o *MetricsObserver) OnEvent(ctx context.Context, event IndexEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch event.EventType {
	case ComputationStarted:
		o.metrics.TotalComputations++
	case ComputationCompleted:
		o.metrics.SuccessfulComputations++
		o.metrics.TotalProcessingTime += event.ProcessingTime
		for _, f := range event.Formulas {
			o.metrics.FormulaCounts[f]++
		}
	case ComputationFailed:
		o.metrics.FailedComputations++
	case RenderCompleted:
		o.metrics.Renders++
		for _, f := range event.Formulas {
			o.metrics.FormulaCounts[f]++
		}
	case ImageFetchFailed:
		o.metrics.FetchFailures++
	case DegeneracyDetected:
		for _, f := range event.Formulas {
			o.metrics.DegenerateCounts[f]++
		}
	}
}

// GetObserverName returns the observer name
func (o *MetricsObserver) GetObserverName() string {
	return "metrics_observer"
}

// GetMetrics returns a copy of the current metrics
func (o *MetricsObserver) GetMetrics() Metrics {
	o.mu.RLock()
	defer o.mu.RUnlock()

	m := o.metrics
	if m.SuccessfulComputations > 0 {
		m.AvgProcessingTime = m.TotalProcessingTime / time.Duration(m.SuccessfulComputations)
	}
	m.FormulaCounts = make(map[string]int64, len(o.metrics.FormulaCounts))
	for k, v := range o.metrics.FormulaCounts {
		m.FormulaCounts[k] = v
	}
	m.DegenerateCounts = make(map[string]int64, len(o.metrics.DegenerateCounts))
	for k, v := range o.metrics.DegenerateCounts {
		m.DegenerateCounts[k] = v
	}
	return m
}

// EventPublisher implements the Subject interface
type EventPublisher struct {
	mu        sync.RWMutex
	observers []Observer
	inflight  sync.WaitGroup
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher() *EventPublisher {
	return &EventPublisher{
		observers: make([]Observer, 0),
	}
}

// Subscribe adds an observer
func (p *EventPublisher) Subscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observers = append(p.observers, observer)
}

// Unsubscribe removes an observer
func (p *EventPublisher) Unsubscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, obs := range p.observers {
		if obs.GetObserverName() == observer.GetObserverName() {
			p.observers = append(p.observers[:i], p.observers[i+1:]...)
			break
		}
	}
}

// NotifyObservers notifies all observers of an event, each on its own goroutine
func (p *EventPublisher) NotifyObservers(ctx context.Context, event IndexEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	p.mu.RLock()
	observers := make([]Observer, len(p.observers))
	copy(observers, p.observers)
	p.mu.RUnlock()

	for _, observer := range observers {
		p.inflight.Add(1)
		go func(obs Observer) {
			defer p.inflight.Done()
			defer func() {
				if r := recover(); r != nil {
					logrus.WithField("observer", obs.GetObserverName()).
						WithField("panic", r).
						Error("Observer panicked while handling event")
				}
			}()
			obs.OnEvent(ctx, event)
		}(observer)
	}
}

// Wait blocks until every notification sent so far has been handled
func (p *EventPublisher) Wait() {
	p.inflight.Wait()
}

// DiagnosticsHook publishes degenerate diagnostics as DegeneracyDetected events
func DiagnosticsHook(ctx context.Context, subject Subject, imageURL string) rgbvi.Hook {
	return func(d rgbvi.Diagnostic) {
		if d.Kind != rgbvi.DiagnosticDegenerate {
			return
		}
		subject.NotifyObservers(ctx, IndexEvent{
			EventType: DegeneracyDetected,
			ImageURL:  imageURL,
			Formulas:  []string{d.Formula},
			Success:   true,
			Metadata: map[string]interface{}{
				"count":    d.Count,
				"total":    d.Total,
				"fraction": d.Fraction(),
			},
		})
	}
}
