package messagebroker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// Publisher is the narrow publishing contract used by application services.
type Publisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}

// NatsClient wraps a NATS connection.
type NatsClient struct {
	conn   *nats.Conn
	logger *slog.Logger
}

// NewNatsClient connects to NATS with reconnect handlers that log through logger.
// natsURL example: "nats://localhost:4222"
func NewNatsClient(natsURL, appName string, logger *slog.Logger) (*NatsClient, error) {
	log := logger.With("component", "nats_client")
	nc, err := nats.Connect(natsURL,
		nats.Name(appName),
		nats.Timeout(5*time.Second),
		nats.PingInterval(20*time.Second),
		nats.MaxPingsOutstanding(3),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn("NATS disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Info("NATS reconnected", "url", c.ConnectedUrl())
		}),
		nats.ClosedHandler(func(c *nats.Conn) {
			log.Error("NATS connection closed", "error", c.LastError())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return &NatsClient{conn: nc, logger: log}, nil
}

// Publish sends data on subject. The context is only checked before publishing;
// core NATS publishes are fire-and-forget.
func (c *NatsClient) Publish(ctx context.Context, subject string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := c.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("publishing to %s: %w", subject, err)
	}
	c.logger.DebugContext(ctx, "published NATS message", "subject", subject, "bytes", len(data))
	return nil
}

// Subscribe registers handler on subject. A non-empty queueGroup load-balances
// messages across service instances.
func (c *NatsClient) Subscribe(ctx context.Context, subject, queueGroup string, handler nats.MsgHandler) (*nats.Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var (
		sub *nats.Subscription
		err error
	)
	if queueGroup != "" {
		sub, err = c.conn.QueueSubscribe(subject, queueGroup, handler)
	} else {
		sub, err = c.conn.Subscribe(subject, handler)
	}
	if err != nil {
		return nil, fmt.Errorf("subscribing to %s: %w", subject, err)
	}
	c.logger.Info("Subscribed to NATS subject", "subject", subject, "queue_group", queueGroup)
	return sub, nil
}

// Close drains pending messages and closes the connection.
func (c *NatsClient) Close() {
	if c.conn != nil && !c.conn.IsClosed() {
		if err := c.conn.Drain(); err != nil {
			c.logger.Warn("NATS drain failed", "error", err)
		}
		c.conn.Close()
	}
}
