package metrics

import "time"

// Recorder defines the metrics the client packages report.
// This interface allows sessions and HTTP clients to run without Prometheus.
//
//go:generate mockgen -destination=mocks/mock_recorder.go -package=mocks . Recorder
type Recorder interface {
	// ObserveCommand records a finished request/response exchange.
	ObserveCommand(command string, status int, duration time.Duration)

	// IncrementParseErrors counts a malformed response.
	IncrementParseErrors()

	// ExchangeStarted and ExchangeFinished bracket an exchange in flight.
	ExchangeStarted()
	ExchangeFinished()

	// AddBytesSent and AddBytesReceived count transport traffic.
	AddBytesSent(n int)
	AddBytesReceived(n int)

	// ObserveHTTPRequest records a scanner daemon HTTP request.
	ObserveHTTPRequest(method string, status int, duration time.Duration)
}

// Noop is a Recorder that discards everything.
type Noop struct{}

func (Noop) ObserveCommand(string, int, time.Duration)     {}
func (Noop) IncrementParseErrors()                         {}
func (Noop) ExchangeStarted()                              {}
func (Noop) ExchangeFinished()                             {}
func (Noop) AddBytesSent(int)                              {}
func (Noop) AddBytesReceived(int)                          {}
func (Noop) ObserveHTTPRequest(string, int, time.Duration) {}

// Ensure that both recorders implement Recorder.
var (
	_ Recorder = (*PrometheusMetrics)(nil)
	_ Recorder = Noop{}
)
