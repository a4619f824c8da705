// Package bus is the MQTT transport: one inbound telemetry subscription and
// fire-and-forget actuator publishes.
package bus

import (
	"context"
	"sync"
	"time"

	"codeberg.org/mutker/homedash/internal/errors"
	"codeberg.org/mutker/homedash/internal/logger"
	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	// QoS used for every subscription and publish
	QoS = 0

	DefaultConnectTimeout = 10 * time.Second
	DefaultPublishTimeout = 5 * time.Second

	disconnectQuiesce = 250
)

// Handler receives one inbound message. It runs on the client's delivery
// goroutine and must not block.
type Handler func(topic string, payload []byte)

type Config struct {
	Broker         string
	ClientID       string
	Username       string
	Password       string
	ConnectTimeout time.Duration
	PublishTimeout time.Duration
}

func (c Config) Validate() error {
	errFactory := errors.New()

	if c.Broker == "" {
		return errFactory.WithMessage(ErrInvalidConfig, "broker is empty")
	}
	if c.ClientID == "" {
		return errFactory.WithMessage(ErrInvalidConfig, "client id is empty")
	}

	return nil
}

type Client struct {
	cfg    Config
	client mqtt.Client
	log    logger.Logger

	mu   sync.Mutex
	subs map[string]Handler
}

// New prepares a client. Nothing is sent until Connect.
func New(cfg Config, log logger.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = DefaultConnectTimeout
	}
	if cfg.PublishTimeout <= 0 {
		cfg.PublishTimeout = DefaultPublishTimeout
	}

	c := &Client{
		cfg:  cfg,
		log:  log,
		subs: make(map[string]Handler),
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetOnConnectHandler(c.onConnect).
		SetConnectionLostHandler(c.onConnectionLost).
		SetReconnectingHandler(func(_ mqtt.Client, _ *mqtt.ClientOptions) {
			c.log.Debug().Str("broker", cfg.Broker).Msg("Reconnecting to broker")
		})
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	c.client = mqtt.NewClient(opts)

	return c, nil
}

// Connect opens the session. With connect retry enabled the client keeps
// trying in the background after the timeout; an error here only means the
// first attempt did not complete in time.
func (c *Client) Connect(ctx context.Context) error {
	errFactory := errors.New()

	token := c.client.Connect()
	if err := c.wait(ctx, token, c.cfg.ConnectTimeout); err != nil {
		return errFactory.Wrap(ErrConnectFailed, err)
	}

	return nil
}

// Subscribe registers h for topic. Subscriptions are restored on every
// reconnect.
func (c *Client) Subscribe(topic string, h Handler) error {
	c.mu.Lock()
	c.subs[topic] = h
	c.mu.Unlock()

	if !c.client.IsConnectionOpen() {
		return nil
	}

	return c.subscribe(topic, h)
}

func (c *Client) subscribe(topic string, h Handler) error {
	errFactory := errors.New()

	token := c.client.Subscribe(topic, QoS, func(_ mqtt.Client, msg mqtt.Message) {
		h(msg.Topic(), msg.Payload())
	})
	if !token.WaitTimeout(c.cfg.ConnectTimeout) {
		return errFactory.WithData(ErrSubscribeFailed, topic)
	}
	if err := token.Error(); err != nil {
		return errFactory.Wrap(ErrSubscribeFailed, err)
	}

	c.log.Info().Str("topic", topic).Msg("Subscribed")

	return nil
}

// Publish sends payload to topic once, without retaining it
func (c *Client) Publish(ctx context.Context, topic, payload string) error {
	errFactory := errors.New()

	if !c.client.IsConnectionOpen() {
		return errFactory.WithData(ErrNotConnected, c.cfg.Broker)
	}

	token := c.client.Publish(topic, QoS, false, payload)
	if err := c.wait(ctx, token, c.cfg.PublishTimeout); err != nil {
		return errFactory.Wrap(ErrPublishFailed, err)
	}

	return nil
}

// IsConnected reports whether the session is currently open
func (c *Client) IsConnected() bool {
	return c.client.IsConnectionOpen()
}

// Close disconnects from the broker
func (c *Client) Close() {
	if c.client.IsConnected() {
		c.client.Disconnect(disconnectQuiesce)
	}
	c.log.Debug().Msg("Bus client closed")
}

func (c *Client) wait(ctx context.Context, token mqtt.Token, timeout time.Duration) error {
	errFactory := errors.New()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-token.Done():
		return token.Error()
	case <-timer.C:
		return errFactory.New(ErrTimeout)
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Client) onConnect(_ mqtt.Client) {
	c.log.Info().Str("broker", c.cfg.Broker).Msg("Connected to broker")

	c.mu.Lock()
	subs := make(map[string]Handler, len(c.subs))
	for topic, h := range c.subs {
		subs[topic] = h
	}
	c.mu.Unlock()

	// onConnect runs on the client's own goroutine; subscribing from it
	// must not wait on acknowledgements that goroutine would deliver.
	go func() {
		for topic, h := range subs {
			if err := c.subscribe(topic, h); err != nil {
				c.log.Error().Err(err).Str("topic", topic).Msg("Failed to subscribe")
			}
		}
	}()
}

func (c *Client) onConnectionLost(_ mqtt.Client, err error) {
	c.log.Warn().Err(err).Str("broker", c.cfg.Broker).Msg("Connection to broker lost")
}
