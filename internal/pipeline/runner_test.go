package pipeline_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systmms/akops/internal/akeyless"
	"github.com/systmms/akops/internal/pipeline"
	"github.com/systmms/akops/internal/secure"
	"github.com/systmms/akops/tests/fakes"
)

var testCredential = akeyless.Credential{
	AuthMethod: akeyless.AuthMethodAccessKey,
	AccessID:   "p-123",
	AccessKey:  "key-456",
}

func threeRecords() []pipeline.Record {
	return []pipeline.Record{
		{Operation: "getStaticSecret", Parameters: akeyless.Parameters{SecretName: "/db/password"}},
		{Operation: "createFolder", Parameters: akeyless.Parameters{FolderName: "/team"}},
		{Operation: "deleteItems", Parameters: akeyless.Parameters{Path: "/old"}},
	}
}

func TestRunner_PassesPayloadThrough(t *testing.T) {
	t.Parallel()

	broker := fakes.NewFakeBroker()
	broker.SetPayload(akeyless.KindGetStaticSecret, `{"/db/password":"s3cr3t"}`)

	runner := &pipeline.Runner{Broker: broker, Credentials: pipeline.StaticCredential(testCredential)}
	results, err := runner.Run(context.Background(), threeRecords()[:1])
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.JSONEq(t, `{"/db/password":"s3cr3t"}`, string(results[0].Payload))
	assert.NoError(t, results[0].Err)

	require.Len(t, broker.Dispatched, 1)
	assert.Equal(t, "fake-akeyless-token", broker.Dispatched[0].Token)
	assert.Equal(t, akeyless.GetStaticSecret{Name: "/db/password"}, broker.Dispatched[0].Operation)
}

func TestRunner_ContinueOnFail(t *testing.T) {
	t.Parallel()

	broker := fakes.NewFakeBroker()
	broker.SetError(akeyless.KindCreateFolder, &akeyless.RemoteError{Endpoint: "/folder-create", StatusCode: 400, Message: "folder already exists"})

	metrics := pipeline.NewMetrics()
	runner := &pipeline.Runner{
		Broker:         broker,
		Credentials:    pipeline.StaticCredential(testCredential),
		ContinueOnFail: true,
		Metrics:        metrics,
	}

	results, err := runner.Run(context.Background(), threeRecords())
	require.NoError(t, err)
	require.Len(t, results, 3)

	for i, r := range results {
		assert.Equal(t, i, r.Index)
	}
	assert.NoError(t, results[0].Err)
	assert.ErrorContains(t, results[1].Err, "folder already exists")
	assert.NoError(t, results[2].Err)

	// one authentication per record
	assert.Equal(t, 3, broker.AuthCallCount)

	assert.Equal(t, 3.0, counterValue(t, metrics, "akops_authentications_total", map[string]string{"outcome": "success"}))
}

func TestRunner_AbortsWithoutContinueOnFail(t *testing.T) {
	t.Parallel()

	broker := fakes.NewFakeBroker()
	remote := &akeyless.RemoteError{Endpoint: "/folder-create", StatusCode: 400, Message: "folder already exists"}
	broker.SetError(akeyless.KindCreateFolder, remote)

	runner := &pipeline.Runner{Broker: broker, Credentials: pipeline.StaticCredential(testCredential)}
	results, err := runner.Run(context.Background(), threeRecords())

	var recErr *pipeline.RecordError
	require.ErrorAs(t, err, &recErr)
	assert.Equal(t, 1, recErr.Index)
	assert.Equal(t, "createFolder", recErr.Operation)
	assert.ErrorIs(t, err, remote)

	require.Len(t, results, 1)
	assert.Equal(t, 2, broker.DispatchCount())
}

func TestRunner_InvalidOperationNeverDispatches(t *testing.T) {
	t.Parallel()

	broker := fakes.NewFakeBroker()
	runner := &pipeline.Runner{
		Broker:         broker,
		Credentials:    pipeline.StaticCredential(testCredential),
		ContinueOnFail: true,
	}

	results, err := runner.Run(context.Background(), []pipeline.Record{
		{Operation: "rotateEverything"},
		{Operation: "getStaticSecret"},
	})
	require.NoError(t, err)
	require.Len(t, results, 2)

	var vErr *akeyless.ValidationError
	assert.ErrorAs(t, results[0].Err, &vErr)
	assert.ErrorContains(t, results[0].Err, "unknown operation: rotateEverything")
	assert.ErrorAs(t, results[1].Err, &vErr)
	assert.Equal(t, "secretName", vErr.Field)

	assert.Equal(t, 0, broker.AuthCallCount)
	assert.Equal(t, 0, broker.DispatchCount())
}

func TestRunner_AuthFailureIsPerRecord(t *testing.T) {
	t.Parallel()

	broker := fakes.NewFakeBroker()
	broker.AuthErr = &akeyless.AuthError{StatusCode: 401, Message: "access denied"}

	metrics := pipeline.NewMetrics()
	runner := &pipeline.Runner{
		Broker:         broker,
		Credentials:    pipeline.StaticCredential(testCredential),
		ContinueOnFail: true,
		Metrics:        metrics,
	}

	results, err := runner.Run(context.Background(), threeRecords())
	require.NoError(t, err)
	require.Len(t, results, 3)
	for _, r := range results {
		assert.EqualError(t, r.Err, "Akeyless authentication failed: access denied")
	}

	assert.Equal(t, 0, broker.DispatchCount())
	assert.Equal(t, 3.0, counterValue(t, metrics, "akops_authentications_total", map[string]string{"outcome": "error"}))
}

func TestRunner_RecordTimeoutApplies(t *testing.T) {
	t.Parallel()

	broker := fakes.NewFakeBroker()
	var deadline time.Duration
	broker.DispatchFunc = func(ctx context.Context, _ string, _ akeyless.Operation) (json.RawMessage, error) {
		d, ok := ctx.Deadline()
		require.True(t, ok)
		deadline = time.Until(d)
		return json.RawMessage(`{}`), nil
	}

	rec := threeRecords()[0]
	rec.AdditionalFields.Timeout = 250

	runner := &pipeline.Runner{
		Broker:         broker,
		Credentials:    pipeline.StaticCredential(testCredential),
		DefaultTimeout: time.Hour,
	}
	_, err := runner.Run(context.Background(), []pipeline.Record{rec})
	require.NoError(t, err)

	assert.LessOrEqual(t, deadline, 250*time.Millisecond)
	assert.Greater(t, deadline, time.Duration(0))
}

func TestRunner_TimeoutSurfacesAsError(t *testing.T) {
	t.Parallel()

	broker := fakes.NewFakeBroker()
	broker.DispatchFunc = func(ctx context.Context, _ string, _ akeyless.Operation) (json.RawMessage, error) {
		<-ctx.Done()
		return nil, &akeyless.RemoteError{Endpoint: "/get-secret-value", Message: ctx.Err().Error(), Err: ctx.Err()}
	}

	runner := &pipeline.Runner{
		Broker:         broker,
		Credentials:    pipeline.StaticCredential(testCredential),
		DefaultTimeout: 20 * time.Millisecond,
		ContinueOnFail: true,
	}
	results, err := runner.Run(context.Background(), threeRecords()[:1])
	require.NoError(t, err)

	assert.ErrorIs(t, results[0].Err, context.DeadlineExceeded)
}

func TestRunner_StopsOnCancelledContext(t *testing.T) {
	t.Parallel()

	broker := fakes.NewFakeBroker()
	ctx, cancel := context.WithCancel(context.Background())
	broker.DispatchFunc = func(context.Context, string, akeyless.Operation) (json.RawMessage, error) {
		cancel()
		return json.RawMessage(`{}`), nil
	}

	runner := &pipeline.Runner{
		Broker:         broker,
		Credentials:    pipeline.StaticCredential(testCredential),
		ContinueOnFail: true,
	}
	results, err := runner.Run(ctx, threeRecords())

	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, results, 1)
	assert.Equal(t, 1, broker.DispatchCount())
}

func TestRunner_CredentialSourceError(t *testing.T) {
	t.Parallel()

	broker := fakes.NewFakeBroker()
	runner := &pipeline.Runner{
		Broker: broker,
		Credentials: pipeline.CredentialFunc(func(context.Context, int) (akeyless.Credential, error) {
			return akeyless.Credential{}, errors.New("keyring locked")
		}),
	}

	_, err := runner.Run(context.Background(), threeRecords())
	assert.ErrorContains(t, err, "record 0 (getStaticSecret): keyring locked")
	assert.Equal(t, 0, broker.AuthCallCount)
}

func TestRunner_SealedCredential(t *testing.T) {
	t.Parallel()

	sealed, err := secure.Seal(akeyless.Credential{AuthMethod: akeyless.AuthMethodToken, Token: "t-sealed"})
	require.NoError(t, err)
	defer sealed.Destroy()

	broker := fakes.NewFakeBroker()
	runner := &pipeline.Runner{Broker: broker, Credentials: pipeline.SealedCredential(sealed)}

	_, err = runner.Run(context.Background(), threeRecords())
	require.NoError(t, err)

	for _, call := range broker.Dispatched {
		assert.Equal(t, "t-sealed", call.Token)
	}
}

func TestResult_MarshalJSON(t *testing.T) {
	t.Parallel()

	ok, err := json.Marshal(pipeline.Result{Index: 0, Payload: json.RawMessage(`{"a":"b"}`)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"item":0,"json":{"a":"b"}}`, string(ok))

	failed, err := json.Marshal(pipeline.Result{Index: 2, Err: &akeyless.AuthError{Message: "bad key"}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"item":2,"json":{"error":"Akeyless authentication failed: bad key"}}`, string(failed))

	empty, err := json.Marshal(pipeline.Result{Index: 1})
	require.NoError(t, err)
	assert.JSONEq(t, `{"item":1,"json":{}}`, string(empty))
}
