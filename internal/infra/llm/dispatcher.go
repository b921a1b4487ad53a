package llm

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Transport is one way of reaching an upstream model.
// SDKClient and RawHTTPClient implement it.
type Transport interface {
	Complete(ctx context.Context, call CompletionCall) (UpstreamResponse, error)
}

// Recorder receives one observation per dispatch. A zero duration means no
// upstream call was made. metrics.PrometheusRecorder satisfies it.
type Recorder interface {
	ObserveDispatch(provider, transport, outcome string, duration time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) ObserveDispatch(string, string, string, time.Duration) {}

// Dispatch outcomes, used as metric labels.
const (
	OutcomeOK                = "ok"
	OutcomeUnknownProvider   = "unknown_provider"
	OutcomeMissingCredential = "missing_credential"
	OutcomeTransportError    = "transport_error"
	OutcomeMalformed         = "malformed"
	OutcomeError             = "error"
)

// unknownProviderLabel stands in for unresolved provider names so user input
// never becomes a metric label.
const unknownProviderLabel = "unknown"


// Dispatcher resolves a provider to its profile and issues exactly one call
// through the matching transport. No retries.
type Dispatcher struct {
	profiles   ProfileTable
	transports map[TransportKind]Transport
	recorder   Recorder
}

// NewDispatcher wires the profile table to the two transports.
// rec may be nil.
func NewDispatcher(profiles ProfileTable, sdk, raw Transport, rec Recorder) *Dispatcher {
	if rec == nil {
		rec = nopRecorder{}
	}
	return &Dispatcher{
		profiles: profiles,
		transports: map[TransportKind]Transport{
			TransportSDK:     sdk,
			TransportRawHTTP: raw,
		},
		recorder: rec,
	}
}

// Resolve returns the profile for provider or ErrUnknownProvider.
func (d *Dispatcher) Resolve(provider string) (Profile, error) {
	return d.profiles.Lookup(provider)
}

// Dispatch sends call to the provider's upstream model and returns the raw
// response unmodified.
func (d *Dispatcher) Dispatch(ctx context.Context, call Call) (UpstreamResponse, error) {
	profile, err := d.profiles.Lookup(call.Provider)
	if err != nil {
		d.recorder.ObserveDispatch(unknownProviderLabel, "", OutcomeUnknownProvider, 0)
		return UpstreamResponse{}, err
	}

	return d.send(ctx, profile.ID, profile.Transport, CompletionCall{
		Model:     profile.Model,
		Messages:  call.Messages(),
		MaxTokens: call.MaxTokens,
	})
}

// Complete sends call to a fixed model over the SDK transport.
func (d *Dispatcher) Complete(ctx context.Context, call CompletionCall) (UpstreamResponse, error) {
	return d.send(ctx, call.Model, TransportSDK, call)
}

func (d *Dispatcher) send(ctx context.Context, label string, kind TransportKind, call CompletionCall) (UpstreamResponse, error) {
	t, ok := d.transports[kind]
	if !ok || t == nil {
		d.recorder.ObserveDispatch(label, string(kind), OutcomeError, 0)
		return UpstreamResponse{}, fmt.Errorf("llm dispatcher: no transport registered for %q", kind)
	}

	start := time.Now()
	resp, err := t.Complete(ctx, call)
	d.recorder.ObserveDispatch(label, string(kind), outcomeOf(err), time.Since(start))
	return resp, err
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, ErrMissingCredential):
		return OutcomeMissingCredential
	case errors.Is(err, ErrMalformedResponse):
		return OutcomeMalformed
	case IsTransport(err):
		return OutcomeTransportError
	default:
		return OutcomeError
	}
}
