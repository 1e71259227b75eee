package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/systmms/akops/internal/akeyless"
	"github.com/systmms/akops/internal/config"
	akerrors "github.com/systmms/akops/internal/errors"
	"github.com/systmms/akops/internal/logging"
	"github.com/systmms/akops/internal/pipeline"
	"github.com/systmms/akops/internal/secure"
)

// Broker is the Akeyless surface the commands use. *akeyless.Client implements it.
type Broker interface {
	pipeline.Broker
	ListItems(ctx context.Context, token, path string) ([]string, error)
	DescribeItem(ctx context.Context, token, name string) (*akeyless.ItemInfo, error)
}

// App carries the state shared by every command.
type App struct {
	Config  *config.Config
	Profile string

	// Timeout overrides the profile timeout when positive.
	Timeout time.Duration

	// NewBroker builds the broker for a credential. Nil means a real client.
	NewBroker func(cred akeyless.Credential, logger *logging.Logger) (Broker, error)
}

func (a *App) logger() *logging.Logger {
	if a.Config != nil && a.Config.Logger != nil {
		return a.Config.Logger
	}
	return logging.Discard()
}

// load reads the config file once. A missing file is fine; the environment
// may carry everything.
func (a *App) load() error {
	if a.Config.Definition != nil {
		return nil
	}
	return a.Config.Load()
}

// session resolves the profile into a sealed credential and a broker. With
// validate unset an incomplete credential is left for Authenticate to reject.
func (a *App) session(validate bool) (*secure.SealedCredential, Broker, error) {
	if err := a.load(); err != nil {
		return nil, nil, err
	}

	cred, err := a.Config.Credential(a.Profile)
	if err != nil {
		return nil, nil, err
	}
	if validate {
		if err := cred.Validate(); err != nil {
			return nil, nil, akerrors.VendorError("authentication", err)
		}
	}

	broker, err := a.broker(cred)
	if err != nil {
		return nil, nil, err
	}

	sealed, err := secure.Seal(cred)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to protect credential: %w", err)
	}
	return sealed, broker, nil
}

func (a *App) broker(cred akeyless.Credential) (Broker, error) {
	if a.NewBroker != nil {
		return a.NewBroker(cred, a.logger())
	}
	client, err := akeyless.NewClientForCredential(cred, akeyless.WithLogger(a.logger()))
	if err != nil {
		return nil, akerrors.UserError{
			Message:    "Failed to configure the Akeyless client",
			Details:    err.Error(),
			Suggestion: "Check ca_cert in your profile",
			Err:        err,
		}
	}
	return client, nil
}

func (a *App) callTimeout() time.Duration {
	if a.Timeout > 0 {
		return a.Timeout
	}
	return a.Config.Timeout(a.Profile)
}

// runner builds a pipeline runner over a fresh session. Under continueOnFail
// a bad credential fails each record instead of the whole run.
func (a *App) runner(continueOnFail bool, metrics *pipeline.Metrics) (*pipeline.Runner, func(), error) {
	sealed, broker, err := a.session(!continueOnFail)
	if err != nil {
		return nil, nil, err
	}
	r := &pipeline.Runner{
		Broker:         broker,
		Credentials:    pipeline.SealedCredential(sealed),
		ContinueOnFail: continueOnFail,
		DefaultTimeout: a.callTimeout(),
		Logger:         a.logger(),
		Metrics:        metrics,
	}
	return r, sealed.Destroy, nil
}

// dispatchOne runs a single operation and returns its raw payload.
func (a *App) dispatchOne(ctx context.Context, kind akeyless.Kind, params akeyless.Parameters) (json.RawMessage, error) {
	r, done, err := a.runner(false, nil)
	if err != nil {
		return nil, err
	}
	defer done()

	results, err := r.Run(ctx, []pipeline.Record{{Operation: string(kind), Parameters: params}})
	if err != nil {
		var recErr *pipeline.RecordError
		if errors.As(err, &recErr) {
			return nil, akerrors.VendorError(string(kind), recErr.Err)
		}
		return nil, err
	}
	return results[0].Payload, nil
}

// withToken authenticates once and calls fn with the token.
func (a *App) withToken(ctx context.Context, fn func(ctx context.Context, broker Broker, token string) error) error {
	sealed, broker, err := a.session(true)
	if err != nil {
		return err
	}
	defer sealed.Destroy()

	cred, err := sealed.Credential()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, a.callTimeout())
	defer cancel()

	token, err := broker.Authenticate(ctx, cred)
	if err != nil {
		return akerrors.VendorError("authentication", err)
	}
	return fn(ctx, broker, token)
}

// printJSON writes payload indented, followed by a newline.
func printJSON(w io.Writer, payload json.RawMessage) error {
	var out []byte
	if indented, err := indent(payload); err == nil {
		out = indented
	} else {
		out = payload
	}
	_, err := fmt.Fprintln(w, string(out))
	return err
}
