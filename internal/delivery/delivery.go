// Package delivery performs the best-effort side effects of a submission:
// the webhook POST and the confirmation message.
//
// Delivery never feeds back into the booking flow. Outcomes are reported
// to an Observer and the log so a host can surface lost bookings without
// changing what the customer sees.
package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/wakuwakusystemsharing/form-management-sub001/internal/logger"
	"github.com/wakuwakusystemsharing/form-management-sub001/internal/metrics"
	"github.com/wakuwakusystemsharing/form-management-sub001/internal/wizard"
)

// DefaultTimeout bounds one webhook call.
const DefaultTimeout = 10 * time.Second

var (
	ErrNoMessenger = errors.New("delivery: no messenger configured")
	ErrNoRecipient = errors.New("delivery: submission has no line user id")
	ErrUnknownKind = errors.New("delivery: unknown effect kind")
)

// StatusError is a webhook response outside 2xx.
type StatusError struct {
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("delivery: endpoint responded %d", e.Status)
}

// Result is the outcome of one effect.
type Result struct {
	Kind    wizard.EffectKind
	Target  string
	Status  int
	Err     error
	Elapsed time.Duration
}

// OK reports whether the effect was delivered.
func (r Result) OK() bool { return r.Err == nil }

// Observer is told about every delivery attempt.
type Observer interface {
	Delivered(ctx context.Context, r Result)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, r Result)

func (f ObserverFunc) Delivered(ctx context.Context, r Result) { f(ctx, r) }

// Messenger sends the confirmation text to a customer.
type Messenger interface {
	SendText(ctx context.Context, to, text string) error
}

// Dispatcher delivers effects. The zero value is not usable; use New.
type Dispatcher struct {
	client    *http.Client
	messenger Messenger
	observer  Observer
	log       logger.Logger
	wg        sync.WaitGroup
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

func WithHTTPClient(c *http.Client) Option { return func(d *Dispatcher) { d.client = c } }
func WithMessenger(m Messenger) Option     { return func(d *Dispatcher) { d.messenger = m } }
func WithObserver(o Observer) Option       { return func(d *Dispatcher) { d.observer = o } }
func WithLogger(l logger.Logger) Option    { return func(d *Dispatcher) { d.log = l } }

// New returns a Dispatcher with a DefaultTimeout HTTP client and no messenger.
func New(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		client: &http.Client{Timeout: DefaultTimeout},
		log:    logger.NewNoOpLogger(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch starts every effect in the background and returns immediately.
// The work is detached from ctx cancellation; Wait blocks until it ends.
func (d *Dispatcher) Dispatch(ctx context.Context, effects []wizard.Effect) {
	bg := context.WithoutCancel(ctx)
	for _, e := range effects {
		d.wg.Add(1)
		go func(e wizard.Effect) {
			defer d.wg.Done()
			d.Deliver(bg, e)
		}(e)
	}
}

// Wait blocks until dispatched effects finish.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Deliver performs one effect synchronously. No retries.
func (d *Dispatcher) Deliver(ctx context.Context, e wizard.Effect) Result {
	start := time.Now()
	var r Result
	switch e.Kind {
	case wizard.EffectWebhook:
		r = d.webhook(ctx, e)
	case wizard.EffectMessage:
		r = d.message(ctx, e)
	default:
		r = Result{Kind: e.Kind, Err: fmt.Errorf("%w: %q", ErrUnknownKind, e.Kind)}
	}
	r.Elapsed = time.Since(start)

	outcome := metrics.OutcomeOK
	fields := logger.Fields{"kind": string(r.Kind), "target": r.Target, "status": r.Status}
	if r.Err != nil {
		outcome = metrics.OutcomeFailed
		d.log.WithError(r.Err).Warn("delivery failed", fields)
	} else {
		d.log.Debug("delivered", fields)
	}
	metrics.DeliveriesTotal.WithLabelValues(string(r.Kind), outcome).Inc()
	if d.observer != nil {
		d.observer.Delivered(ctx, r)
	}
	return r
}

func (d *Dispatcher) webhook(ctx context.Context, e wizard.Effect) Result {
	r := Result{Kind: e.Kind, Target: e.URL}
	body, err := json.Marshal(e.Payload)
	if err != nil {
		r.Err = fmt.Errorf("encode payload: %w", err)
		return r
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.URL, bytes.NewReader(body))
	if err != nil {
		r.Err = fmt.Errorf("build request: %w", err)
		return r
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		r.Err = fmt.Errorf("post webhook: %w", err)
		return r
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	r.Status = resp.StatusCode
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		r.Err = &StatusError{Status: resp.StatusCode}
	}
	return r
}

func (d *Dispatcher) message(ctx context.Context, e wizard.Effect) Result {
	to := e.Payload.State.LineUserID
	r := Result{Kind: e.Kind, Target: to}
	switch {
	case d.messenger == nil:
		r.Err = ErrNoMessenger
	case to == "":
		r.Err = ErrNoRecipient
	default:
		r.Err = d.messenger.SendText(ctx, to, e.Text)
	}
	return r
}
