package easyws

import (
	"io"
	"net/url"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	// DefaultTimeout bounds the transport dial of a connect attempt.
	DefaultTimeout = 10 * time.Second

	// DefaultInterval separates keep-alive pings while connected.
	DefaultInterval = time.Second
)

// Config is the immutable configuration a Client is built with.
type Config struct {
	// Endpoint is the ws:// or wss:// URL to connect to.
	Endpoint string

	// Timeout bounds the transport dial. It also caps how long a cycle waits
	// for the transport to confirm closure on disconnect.
	Timeout time.Duration

	// Interval is the keep-alive ping period. Zero disables pinging.
	Interval time.Duration
}

// Builder assembles a Client. Endpoint is required, every other knob has a
// default. Start with NewBuilder; the zero Builder is not usable.
type Builder struct {
	cfg       Config
	transport Transport
	headers   HeaderProvider
	logger    logger
}

func NewBuilder(endpoint string) *Builder {
	return &Builder{
		cfg: Config{
			Endpoint: endpoint,
			Timeout:  DefaultTimeout,
			Interval: DefaultInterval,
		},
		logger: noopLogger{},
	}
}

// WithTimeout overrides the connect timeout.
func (b *Builder) WithTimeout(d time.Duration) *Builder {
	b.cfg.Timeout = d
	return b
}

// WithInterval overrides the keep-alive ping interval. Zero disables pinging.
func (b *Builder) WithInterval(d time.Duration) *Builder {
	b.cfg.Interval = d
	return b
}

// WithTransport replaces the default fasthttp-backed transport.
func (b *Builder) WithTransport(t Transport) *Builder {
	b.transport = t
	return b
}

// WithHeaderProvider supplies extra handshake headers to the default
// transport. Custom transports carry their own header wiring.
func (b *Builder) WithHeaderProvider(hp HeaderProvider) *Builder {
	b.headers = hp
	return b
}

// WithLogWriter routes the client's logs to w.
func (b *Builder) WithLogWriter(w io.Writer) *Builder {
	b.logger = newWriterLogger(w)
	return b
}

// WithZapLogger routes the client's logs through l.
func (b *Builder) WithZapLogger(l *zap.Logger) *Builder {
	b.logger = newZapLogger(l)
	return b
}

// Build validates the configuration and returns a Client in Disconnected
// state with no running loop.
func (b *Builder) Build() (*Client, error) {
	if err := validateEndpoint(b.cfg.Endpoint); err != nil {
		return nil, err
	}

	if b.cfg.Timeout <= 0 {
		return nil, errors.Wrap(ErrInvalidConfig, "timeout must be positive")
	}

	if b.cfg.Interval < 0 {
		return nil, errors.Wrap(ErrInvalidConfig, "interval cannot be negative")
	}

	transport := b.transport
	if transport == nil {
		transport = newWebsocketTransport(b.logger, b.headers)
	} else if ls, ok := transport.(loggerSetter); ok {
		ls.setLogger(b.logger)
	}

	return newClient(b.cfg, b.logger, transport), nil
}

func validateEndpoint(endpoint string) error {
	if endpoint == "" {
		return errors.Wrap(ErrInvalidEndpoint, "endpoint is required")
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return errors.Wrap(ErrInvalidEndpoint, err.Error())
	}

	switch u.Scheme {
	case "ws", "wss":
	default:
		return errors.Wrapf(ErrInvalidEndpoint, "unsupported scheme %q", u.Scheme)
	}

	if u.Host == "" {
		return errors.Wrap(ErrInvalidEndpoint, "endpoint host is required")
	}

	return nil
}
