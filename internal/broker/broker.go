package broker

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/anthonyraymond/stompauth/pkg/auth"
	stompServer "github.com/go-stomp/stomp/v3/server"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/rs/cors"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// ReloadFunc re-reads the credentials behind the broker authenticator. It must leave
// the current credentials in place when it fails.
type ReloadFunc func() error

// Broker is an embedded STOMP server listening on TCP and, optionally, on a
// websocket endpoint. Every CONNECT frame goes through the same Authenticator.
type Broker struct {
	conf          *Config
	authenticator auth.Authenticator
	reload        ReloadFunc
	logger        *zap.Logger
	tcpListener   net.Listener
	wsListener    *websocketListener
	httpListener  net.Listener
	httpServer    *http.Server
	started       *atomic.Bool
	loadedAt      *atomic.Int64
	reloads       *atomic.Uint32
	lastReloadErr *atomic.Error
}

func Start(conf *Config, authenticator auth.Authenticator, reload ReloadFunc, logger *zap.Logger) (*Broker, error) {
	if authenticator == nil {
		return nil, errors.New("broker requires an authenticator")
	}
	if reload == nil {
		reload = func() error { return nil }
	}
	logger = logger.Named("broker")

	b := &Broker{
		conf:          conf,
		authenticator: &loggingAuthenticator{delegate: authenticator, logger: logger},
		reload:        reload,
		logger:        logger,
		started:       atomic.NewBool(false),
		loadedAt:      atomic.NewInt64(time.Now().UnixNano()),
		reloads:       atomic.NewUint32(0),
		lastReloadErr: atomic.NewError(nil),
	}

	tcpListener, err := net.Listen("tcp", conf.Stomp.Addr)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to listen for stomp on '%s'", conf.Stomp.Addr)
	}
	b.tcpListener = tcpListener
	b.startStompServer(tcpListener)
	logger.Info("stomp server listening", zap.String("addr", tcpListener.Addr().String()))

	if conf.Http.Enabled {
		if err := b.startHttp(); err != nil {
			b.shutdown(context.Background())
			return nil, err
		}
	}

	b.started.Store(true)
	return b, nil
}

func (b *Broker) startHttp() error {
	// Connections upgraded on the negotiation endpoint are handed to the stomp server
	// through wsListener.Accept(), just like a real net.Listener.
	b.wsListener = newWebSocketListener(b.conf.WebSocket, b.logger)
	b.startStompServer(b.wsListener)

	router := mux.NewRouter()
	registerApiRoutes(router.PathPrefix(b.conf.Http.HttpApiUrl).Subrouter(), b.Status)
	router.HandleFunc(b.conf.Http.WsNegotiationEndpointUrl, b.wsListener.HttpNegotiationHandleFunc())

	handler := cors.New(cors.Options{
		AllowedOrigins: b.conf.Http.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet},
	}).Handler(router)

	listener, err := net.Listen("tcp", b.conf.Http.Addr)
	if err != nil {
		return errors.Wrapf(err, "failed to listen for http on '%s'", b.conf.Http.Addr)
	}
	b.httpListener = listener
	b.httpServer = &http.Server{
		Handler:           handler,
		ReadTimeout:       b.conf.Http.ReadTimeout,
		ReadHeaderTimeout: b.conf.Http.ReadHeaderTimeout,
		WriteTimeout:      b.conf.Http.WriteTimeout,
		IdleTimeout:       b.conf.Http.IdleTimeout,
		MaxHeaderBytes:    b.conf.Http.MaxHeaderBytes,
	}

	go func() {
		if err := b.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			b.logger.Error("http server has been closed", zap.Error(err))
		}
	}()
	b.logger.Info("websocket stomp endpoint listening",
		zap.String("addr", listener.Addr().String()),
		zap.String("path", b.conf.Http.WsNegotiationEndpointUrl),
	)
	return nil
}

func (b *Broker) startStompServer(listener net.Listener) {
	go func() {
		err := (&stompServer.Server{
			Authenticator: b.authenticator,
			HeartBeat:     b.conf.Stomp.HeartBeat,
			Log:           WrapZapLogger(b.logger),
		}).Serve(listener)
		if err != nil && b.started.Load() {
			b.logger.Error("stomp server has been closed", zap.String("listener", listener.Addr().String()), zap.Error(err))
		}
	}()
}

// ReloadCredentials runs the reload function. On failure the broker keeps
// authenticating against the previous credentials and the error is returned.
func (b *Broker) ReloadCredentials() error {
	if err := b.reload(); err != nil {
		b.lastReloadErr.Store(err)
		b.logger.Error("failed to reload credentials, keeping previous ones", zap.Error(err))
		return err
	}
	b.lastReloadErr.Store(nil)
	b.reloads.Inc()
	b.loadedAt.Store(time.Now().UnixNano())
	b.logger.Info("credentials reloaded", zap.Uint32("reloads", b.reloads.Load()))
	return nil
}

// Addr returns the stomp tcp listener address.
func (b *Broker) Addr() net.Addr {
	return b.tcpListener.Addr()
}

// HttpAddr returns the http listener address, nil when http is disabled.
func (b *Broker) HttpAddr() net.Addr {
	if b.httpListener == nil {
		return nil
	}
	return b.httpListener.Addr()
}

func (b *Broker) Status() Status {
	s := Status{
		Started:  b.started.Load(),
		LoadedAt: time.Unix(0, b.loadedAt.Load()).UTC(),
		Reloads:  b.reloads.Load(),
		Logins:   -1,
	}
	if counter, ok := b.unwrappedAuthenticator().(interface{ Len() int }); ok {
		s.Logins = counter.Len()
	}
	if err := b.lastReloadErr.Load(); err != nil {
		s.LastReloadError = err.Error()
	}
	return s
}

func (b *Broker) unwrappedAuthenticator() auth.Authenticator {
	if l, ok := b.authenticator.(*loggingAuthenticator); ok {
		return l.delegate
	}
	return b.authenticator
}

func (b *Broker) Shutdown(ctx context.Context) {
	if !b.started.CAS(true, false) {
		return
	}
	b.logger.Info("shutting down broker")
	b.shutdown(ctx)
}

// a lock free and nil safe version of Shutdown()
func (b *Broker) shutdown(ctx context.Context) {
	b.started.Store(false)
	if b.tcpListener != nil {
		_ = b.tcpListener.Close()
	}
	if b.wsListener != nil {
		_ = b.wsListener.Close()
	}
	if b.httpServer != nil {
		if err := b.httpServer.Shutdown(ctx); err != nil {
			_ = b.httpServer.Close()
		}
	}
}

type Status struct {
	Started         bool      `json:"started"`
	LoadedAt        time.Time `json:"loadedAt"`
	Reloads         uint32    `json:"reloads"`
	Logins          int       `json:"logins"`
	LastReloadError string    `json:"lastReloadError,omitempty"`
}

type loggingAuthenticator struct {
	delegate auth.Authenticator
	logger   *zap.Logger
}

func (a *loggingAuthenticator) Authenticate(login, passcode string) bool {
	ok := a.delegate.Authenticate(login, passcode)
	if !ok {
		a.logger.Warn("rejected stomp connection", zap.String("login", login))
	} else {
		a.logger.Debug("accepted stomp connection", zap.String("login", login))
	}
	return ok
}
