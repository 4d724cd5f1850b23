package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anthonyraymond/stompauth/internal/broker"
	"github.com/anthonyraymond/stompauth/pkg/auth/simple"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// App wires the credential file authenticator into the broker.
type App struct {
	conf          *AppConfig
	authenticator *simple.SimpleAuthenticator
	broker        *broker.Broker
	logger        *zap.Logger
}

// Start loads the credentials then starts the broker. Any credential error is fatal here.
func Start(conf *AppConfig, logger *zap.Logger) (*App, error) {
	authenticator, err := simple.NewFromConfig(conf.Auth)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load broker credentials")
	}
	logger.Info("credentials loaded",
		zap.String("authFile", conf.Auth.AuthFile),
		zap.Int("logins", authenticator.Len()),
	)

	a := &App{
		conf:          conf,
		authenticator: authenticator,
		logger:        logger,
	}
	b, err := broker.Start(conf.Broker, authenticator, a.reloadCredentials, logger)
	if err != nil {
		return nil, errors.Wrap(err, "failed to start broker")
	}
	a.broker = b
	return a, nil
}

func (a *App) reloadCredentials() error {
	if err := a.authenticator.LoadFile(a.conf.Auth.AuthFile); err != nil {
		return err
	}
	a.logger.Info("credentials loaded",
		zap.String("authFile", a.conf.Auth.AuthFile),
		zap.Int("logins", a.authenticator.Len()),
	)
	return nil
}

func (a *App) Broker() *broker.Broker {
	return a.broker
}

// Run blocks until ctx is done or a termination signal is received. SIGHUP reloads the
// credentials file, a failed reload keeps the previous credentials.
func (a *App) Run(ctx context.Context) {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signals)

	for {
		select {
		case <-ctx.Done():
			a.Stop()
			return
		case sig := <-signals:
			if sig == syscall.SIGHUP {
				a.logger.Info("received SIGHUP, reloading credentials")
				_ = a.broker.ReloadCredentials()
				continue
			}
			a.logger.Info("received signal, stopping", zap.String("signal", sig.String()))
			a.Stop()
			return
		}
	}
}

func (a *App) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	a.broker.Shutdown(ctx)
}
