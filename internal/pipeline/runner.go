package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/systmms/akops/internal/akeyless"
	"github.com/systmms/akops/internal/logging"
	"github.com/systmms/akops/internal/secure"
)

// DefaultTimeout bounds each Akeyless call when neither the runner nor the
// record sets one.
const DefaultTimeout = 30 * time.Second

// Broker is the Akeyless surface the runner needs. *akeyless.Client implements it.
type Broker interface {
	Authenticate(ctx context.Context, cred akeyless.Credential) (string, error)
	Dispatch(ctx context.Context, token string, op akeyless.Operation) (json.RawMessage, error)
}

// CredentialSource yields the credential for the record at index.
type CredentialSource interface {
	Credential(ctx context.Context, index int) (akeyless.Credential, error)
}

// CredentialFunc adapts a function to CredentialSource.
type CredentialFunc func(ctx context.Context, index int) (akeyless.Credential, error)

// Credential implements CredentialSource.
func (f CredentialFunc) Credential(ctx context.Context, index int) (akeyless.Credential, error) {
	return f(ctx, index)
}

// StaticCredential returns the same credential for every record.
func StaticCredential(cred akeyless.Credential) CredentialSource {
	return CredentialFunc(func(context.Context, int) (akeyless.Credential, error) {
		return cred, nil
	})
}

// SealedCredential opens a sealed credential once per record, so the
// plaintext key only exists for the duration of that record.
func SealedCredential(sealed *secure.SealedCredential) CredentialSource {
	return CredentialFunc(func(context.Context, int) (akeyless.Credential, error) {
		return sealed.Credential()
	})
}

// Result is the outcome of one record. Exactly one of Payload and Err is set.
type Result struct {
	Index   int
	Payload json.RawMessage
	Err     error
}

// MarshalJSON renders {"item":i,"json":payload}, or {"item":i,"json":{"error":msg}}
// for a failed record.
func (r Result) MarshalJSON() ([]byte, error) {
	payload := r.Payload
	if r.Err != nil {
		errJSON, err := json.Marshal(map[string]string{"error": r.Err.Error()})
		if err != nil {
			return nil, err
		}
		payload = errJSON
	}
	if len(payload) == 0 {
		payload = json.RawMessage("{}")
	}

	return json.Marshal(struct {
		Item int             `json:"item"`
		JSON json.RawMessage `json:"json"`
	}{Item: r.Index, JSON: payload})
}

// RecordError identifies the record that stopped a run.
type RecordError struct {
	Index     int
	Operation string
	Err       error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("record %d (%s): %v", e.Index, e.Operation, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// Runner processes records strictly in order, one at a time.
type Runner struct {
	Broker         Broker
	Credentials    CredentialSource
	ContinueOnFail bool

	// DefaultTimeout applies to each call of a record that sets no timeout.
	DefaultTimeout time.Duration

	Logger  *logging.Logger
	Metrics *Metrics
}

// Run executes records and returns one Result per processed record, in input
// order. Without ContinueOnFail the first failure is returned as a
// *RecordError alongside the results that preceded it.
func (r *Runner) Run(ctx context.Context, records []Record) ([]Result, error) {
	logger := r.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	results := make([]Result, 0, len(records))
	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		start := time.Now()
		payload, err := r.runOne(ctx, i, rec)
		r.Metrics.RecordOperation(metricOperation(rec.Operation), err, time.Since(start))

		if err != nil {
			if !r.ContinueOnFail {
				return results, &RecordError{Index: i, Operation: rec.Operation, Err: err}
			}
			logger.Warn("Record %d (%s) failed: %v", i, rec.Operation, err)
			results = append(results, Result{Index: i, Err: err})
			continue
		}

		logger.Debug("Record %d (%s) completed in %s", i, rec.Operation, time.Since(start).Round(time.Millisecond))
		results = append(results, Result{Index: i, Payload: payload})
	}

	return results, nil
}

func (r *Runner) runOne(ctx context.Context, index int, rec Record) (json.RawMessage, error) {
	op, err := akeyless.NewOperation(rec.Operation, rec.Parameters)
	if err != nil {
		return nil, err
	}

	cred, err := r.Credentials.Credential(ctx, index)
	if err != nil {
		return nil, err
	}

	timeout := rec.CallTimeout(r.defaultTimeout())

	var token string
	err = withCallTimeout(ctx, timeout, func(ctx context.Context) error {
		var authErr error
		token, authErr = r.Broker.Authenticate(ctx, cred)
		return authErr
	})
	r.Metrics.RecordAuthentication(err)
	if err != nil {
		return nil, err
	}

	var payload json.RawMessage
	err = withCallTimeout(ctx, timeout, func(ctx context.Context) error {
		var dispatchErr error
		payload, dispatchErr = r.Broker.Dispatch(ctx, token, op)
		return dispatchErr
	})
	return payload, err
}

func (r *Runner) defaultTimeout() time.Duration {
	if r.DefaultTimeout > 0 {
		return r.DefaultTimeout
	}
	return DefaultTimeout
}

// withCallTimeout runs fn under its own deadline derived from ctx.
func withCallTimeout(ctx context.Context, timeout time.Duration, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return fn(ctx)
}

// metricOperation keeps the operation label bounded to known kinds.
func metricOperation(name string) string {
	if k, err := akeyless.ParseKind(name); err == nil {
		return string(k)
	}
	return "unknown"
}
