package fakes

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/systmms/akops/internal/akeyless"
)

// DispatchCall records one Dispatch invocation.
type DispatchCall struct {
	Token     string
	Operation akeyless.Operation
}

// FakeBroker is a test double for pipeline.Broker and the CLI broker.
type FakeBroker struct {
	mu sync.Mutex

	// Token is returned by Authenticate when the credential carries none.
	Token string

	// AuthErr is returned by Authenticate if set.
	AuthErr error

	// Payloads maps an operation kind to the payload Dispatch returns.
	Payloads map[akeyless.Kind]json.RawMessage

	// Errs maps an operation kind to the error Dispatch returns.
	Errs map[akeyless.Kind]error

	// DispatchFunc, if set, overrides Payloads and Errs.
	DispatchFunc func(ctx context.Context, token string, op akeyless.Operation) (json.RawMessage, error)

	// Items maps a path to the names ListItems returns.
	Items map[string][]string

	// Described maps an item name to DescribeItem's result.
	Described map[string]*akeyless.ItemInfo

	AuthCallCount int
	Credentials   []akeyless.Credential
	Dispatched    []DispatchCall
}

// NewFakeBroker creates a fake broker with defaults.
func NewFakeBroker() *FakeBroker {
	return &FakeBroker{
		Token:     "fake-akeyless-token",
		Payloads:  make(map[akeyless.Kind]json.RawMessage),
		Errs:      make(map[akeyless.Kind]error),
		Items:     make(map[string][]string),
		Described: make(map[string]*akeyless.ItemInfo),
	}
}

// SetPayload sets the raw JSON returned for an operation kind.
func (f *FakeBroker) SetPayload(kind akeyless.Kind, payload string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Payloads[kind] = json.RawMessage(payload)
}

// SetError makes Dispatch fail for an operation kind.
func (f *FakeBroker) SetError(kind akeyless.Kind, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Errs[kind] = err
}

// Authenticate returns the credential's token, or Token.
func (f *FakeBroker) Authenticate(ctx context.Context, cred akeyless.Credential) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.AuthCallCount++
	f.Credentials = append(f.Credentials, cred)

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if f.AuthErr != nil {
		return "", f.AuthErr
	}
	if cred.Token != "" {
		return string(cred.Token), nil
	}
	if err := cred.Validate(); err != nil {
		return "", &akeyless.AuthError{Message: err.Error(), Err: err}
	}
	return f.Token, nil
}

// Dispatch returns the configured payload or error for op's kind.
func (f *FakeBroker) Dispatch(ctx context.Context, token string, op akeyless.Operation) (json.RawMessage, error) {
	f.mu.Lock()
	f.Dispatched = append(f.Dispatched, DispatchCall{Token: token, Operation: op})
	fn := f.DispatchFunc
	f.mu.Unlock()

	if op == nil {
		return nil, &akeyless.ValidationError{Message: "unknown operation"}
	}
	if fn != nil {
		return fn(ctx, token, op)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.Errs[op.Kind()]; ok {
		return nil, err
	}
	if payload, ok := f.Payloads[op.Kind()]; ok {
		return payload, nil
	}
	return json.RawMessage("{}"), nil
}

// ListItems returns Items[path].
func (f *FakeBroker) ListItems(ctx context.Context, token, path string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Items[path], nil
}

// DescribeItem returns Described[name], or a 404 RemoteError.
func (f *FakeBroker) DescribeItem(ctx context.Context, token, name string) (*akeyless.ItemInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if info, ok := f.Described[name]; ok {
		return info, nil
	}
	return nil, &akeyless.RemoteError{Endpoint: "/describe-item", StatusCode: 404, Message: fmt.Sprintf("item %s not found", name)}
}

// DispatchCount returns the number of Dispatch calls.
func (f *FakeBroker) DispatchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Dispatched)
}
