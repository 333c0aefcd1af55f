package ondemand

import (
	"context"
	"net/http"
	"sync"
	"time"

	es "github.com/launchdarkly/eventsource"
	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
	"go.uber.org/atomic"
	"golang.org/x/exp/maps"

	"github.com/mohsenKh75/next-patterns/interfaces"
)

const (
	streamReadTimeout        = 5 * time.Minute
	streamMaxRetryDelay      = 30 * time.Second
	streamRetryResetInterval = 60 * time.Second
	streamJitterRatio        = 0.5
	defaultStreamRetryDelay  = 1 * time.Second
)

// Invalidator is the part of the revalidation cache that the subscriber drives.
type Invalidator interface {
	Invalidate(ctx context.Context, keys ...string) error
	InvalidateTag(ctx context.Context, tag string) ([]string, error)
}

// Subscriber keeps a connection to a revalidation event stream and applies every "revalidate"
// event to an Invalidator. Malformed events are logged and skipped; other event types are ignored.
type Subscriber struct {
	uri                   string
	client                *http.Client
	headers               http.Header
	target                Invalidator
	initialReconnectDelay time.Duration
	loggers               ldlog.Loggers
	stream                *es.Stream
	halt                  chan struct{}
	connected             atomic.Bool
	closeOnce             sync.Once
	lock                  sync.Mutex
}

// NewSubscriber creates a Subscriber for the stream at uri. It does not connect until Start is
// called.
func NewSubscriber(
	uri string,
	httpConfig interfaces.HTTPConfiguration,
	target Invalidator,
	initialReconnectDelay time.Duration,
	loggers ldlog.Loggers,
) *Subscriber {
	var client *http.Client
	if httpConfig.CreateHTTPClient != nil {
		client = httpConfig.CreateHTTPClient()
	}
	if client == nil {
		client = &http.Client{}
	}
	// the stream is long-lived; the read timeout of the stream replaces the client timeout
	streamClient := *client
	streamClient.Timeout = 0
	if initialReconnectDelay <= 0 {
		initialReconnectDelay = defaultStreamRetryDelay
	}
	return &Subscriber{
		uri:                   uri,
		client:                &streamClient,
		headers:               httpConfig.DefaultHeaders,
		target:                target,
		initialReconnectDelay: initialReconnectDelay,
		loggers:               loggers,
		halt:                  make(chan struct{}),
	}
}

// Start connects to the stream in the background. closeWhenReady is closed once the first
// connection succeeds, or when the subscriber gives up because of an unrecoverable error.
func (s *Subscriber) Start(closeWhenReady chan<- struct{}) {
	s.loggers.Infof("Connecting to revalidation stream at %s", s.uri)
	go s.subscribe(closeWhenReady)
}

// IsConnected returns true once the subscriber has received a response from the stream.
func (s *Subscriber) IsConnected() bool {
	return s.connected.Load()
}

// Close stops the subscriber and closes its connection.
func (s *Subscriber) Close() error {
	s.closeOnce.Do(func() {
		close(s.halt)
		s.lock.Lock()
		if s.stream != nil {
			s.stream.Close()
		}
		s.lock.Unlock()
	})
	return nil
}

func (s *Subscriber) subscribe(closeWhenReady chan<- struct{}) {
	var readyOnce sync.Once
	ready := func() { readyOnce.Do(func() { close(closeWhenReady) }) }

	req, reqErr := http.NewRequest("GET", s.uri, nil)
	if reqErr != nil {
		s.loggers.Errorf(
			"Unable to create a stream request; this is not a network problem, most likely a bad URI: %s",
			reqErr,
		)
		ready()
		return
	}
	if s.headers != nil {
		req.Header = maps.Clone(s.headers)
	}

	errorHandler := func(err error) es.StreamErrorHandlerResult {
		select {
		case <-s.halt:
			return es.StreamErrorHandlerResult{CloseNow: true}
		default:
		}
		if se, ok := err.(es.SubscriptionError); ok {
			if !isHTTPErrorRecoverable(se.Code) {
				s.loggers.Errorf("Error in revalidation stream connection (giving up permanently): HTTP error %d", se.Code)
				ready()
				return es.StreamErrorHandlerResult{CloseNow: true}
			}
			s.loggers.Warnf("Error in revalidation stream connection (will retry): HTTP error %d", se.Code)
			return es.StreamErrorHandlerResult{CloseNow: false}
		}
		s.loggers.Warnf("Error in revalidation stream connection (will retry): %s", err)
		return es.StreamErrorHandlerResult{CloseNow: false}
	}

	stream, err := es.SubscribeWithRequestAndOptions(req,
		es.StreamOptionHTTPClient(s.client),
		es.StreamOptionReadTimeout(streamReadTimeout),
		es.StreamOptionInitialRetry(s.initialReconnectDelay),
		es.StreamOptionUseBackoff(streamMaxRetryDelay),
		es.StreamOptionUseJitter(streamJitterRatio),
		es.StreamOptionRetryResetInterval(streamRetryResetInterval),
		es.StreamOptionErrorHandler(errorHandler),
		es.StreamOptionCanRetryFirstConnection(-1),
		es.StreamOptionLogger(s.loggers.ForLevel(ldlog.Info)),
	)
	if err != nil {
		ready()
		return
	}

	s.lock.Lock()
	select {
	case <-s.halt:
		s.lock.Unlock()
		stream.Close()
		ready()
		return
	default:
	}
	s.stream = stream
	s.lock.Unlock()
	s.connected.Store(true)
	s.loggers.Info("Connected to revalidation stream")
	ready()

	s.consumeStream(stream)
}

func (s *Subscriber) consumeStream(stream *es.Stream) {
	// Consume remaining Events and Errors so we can garbage collect
	defer func() {
		for range stream.Events {
		} // COVERAGE: no way to cause this condition in unit tests
		if stream.Errors != nil {
			for range stream.Errors { // COVERAGE: no way to cause this condition in unit tests
			}
		}
	}()

	for {
		select {
		case event, ok := <-stream.Events:
			if !ok {
				return
			}
			s.handleEvent(event)
		case <-s.halt:
			return
		}
	}
}

func (s *Subscriber) handleEvent(event es.Event) {
	if event.Event() != revalidateEvent {
		if s.loggers.IsDebugEnabled() {
			s.loggers.Debugf("Ignoring revalidation stream event %q", event.Event())
		}
		return
	}
	data, err := parseRevalidateData([]byte(event.Data()))
	if err != nil {
		s.loggers.Errorf("Received revalidation stream \"%s\" event with malformed JSON data (%s); ignoring it",
			event.Event(), err)
		return
	}

	ctx := context.Background()
	for _, tag := range data.Tags {
		keys, err := s.target.InvalidateTag(ctx, tag)
		if err != nil {
			s.loggers.Warnf("Failed to invalidate tag %q: %s", tag, err)
			continue
		}
		s.loggers.Infof("Revalidated tag %q (%d cached entries)", tag, len(keys))
	}
	if len(data.Keys) > 0 {
		if err := s.target.Invalidate(ctx, data.Keys...); err != nil {
			s.loggers.Warnf("Failed to invalidate %d keys: %s", len(data.Keys), err)
			return
		}
		s.loggers.Infof("Revalidated %d cached keys", len(data.Keys))
	}
}

// Tests whether an HTTP error status represents a condition that might resolve on its own if we retry.
func isHTTPErrorRecoverable(statusCode int) bool {
	if statusCode >= 400 && statusCode < 500 {
		switch statusCode {
		case 400: // bad request
			return true
		case 408: // request timeout
			return true
		case 429: // too many requests
			return true
		default:
			return false // all other 4xx errors are unrecoverable
		}
	}
	return true
}
