/*
DESCRIPTION
  mqtt.go provides an implementation of the ButtonDevice interface for button
  states published to an MQTT broker, such as by a joystick relay.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package mqtt provides an implementation of the ButtonDevice interface for
// button states received on MQTT topics of the form <prefix>/<button>, with
// the button's value as a decimal payload.
package mqtt

import (
	"errors"
	"fmt"
	"path"
	"strconv"
	"strings"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/ausocean/camcorder/config"
	"github.com/ausocean/camcorder/device"
	"github.com/ausocean/utils/logging"
)

// To indicate package when logging.
const pkg = "mqtt: "

// Defaults and timing.
const (
	defaultBroker  = "tcp://127.0.0.1:1883"
	defaultTopic   = "/device/joystick/1/#"
	clientID       = "camcorder"
	connectTimeout = 5 * time.Second
	qos            = 0
)

// Configuration errors.
var (
	errBadBroker = errors.New("MQTT broker bad or unset, defaulting")
	errBadTopic  = errors.New("MQTT topic bad or unset, defaulting")
)

// Buttons is an implementation of the ButtonDevice interface that subscribes
// to button topics on an MQTT broker.
type Buttons struct {
	log    logging.Logger
	broker string
	topic  string

	mu        sync.Mutex
	isRunning bool
	client    paho.Client
}

// New returns a new Buttons.
func New(l logging.Logger) *Buttons { return &Buttons{log: l} }

// Name returns the name of the device.
func (b *Buttons) Name() string { return "MQTT" }

// Set configures the broker and topic filter from c.MQTTBroker and
// c.MQTTTopic.
func (b *Buttons) Set(c config.Config) error {
	var errs device.MultiError
	b.broker = c.MQTTBroker
	if b.broker == "" {
		errs = append(errs, errBadBroker)
		b.broker = defaultBroker
	}
	b.topic = c.MQTTTopic
	if b.topic == "" {
		errs = append(errs, errBadTopic)
		b.topic = defaultTopic
	}
	if len(errs) != 0 {
		return errs
	}
	return nil
}

// Start connects to the broker and subscribes to the topic filter. The
// subscription is renewed on every reconnection.
func (b *Buttons) Start(dst chan<- device.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.isRunning {
		return nil
	}

	handler := func(_ paho.Client, msg paho.Message) {
		e, err := parse(msg.Topic(), msg.Payload())
		if err != nil {
			b.log.Warning(pkg+"bad button message", "topic", msg.Topic(), "error", err.Error())
			return
		}
		e.Source = b.Name()
		if !device.Send(dst, e) {
			b.log.Warning(pkg+"dropped button event", "button", e.Button)
		}
	}

	opts := paho.NewClientOptions()
	opts.AddBroker(b.broker)
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.OnConnect = func(c paho.Client) {
		b.log.Info(pkg+"connected", "broker", b.broker)
		token := c.Subscribe(b.topic, qos, handler)
		if token.WaitTimeout(connectTimeout) && token.Error() != nil {
			b.log.Error(pkg+"could not subscribe", "topic", b.topic, "error", token.Error().Error())
		}
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		b.log.Warning(pkg+"connection lost, reconnecting", "broker", b.broker, "error", err.Error())
	}

	client := paho.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		b.log.Warning(pkg+"broker not yet reachable, retrying in background", "broker", b.broker)
	} else if err := token.Error(); err != nil {
		return fmt.Errorf("could not connect to broker: %w", err)
	}

	b.client = client
	b.isRunning = true
	return nil
}

// parse parses a button event from topic, e.g. /device/joystick/1/3, and
// payload, e.g. "1".
func parse(topic string, payload []byte) (device.Event, error) {
	n, err := strconv.Atoi(path.Base(topic))
	if err != nil || n < 0 {
		return device.Event{}, fmt.Errorf("no button number in topic %q", topic)
	}
	v, err := strconv.Atoi(strings.TrimSpace(string(payload)))
	if err != nil {
		return device.Event{}, fmt.Errorf("bad payload %q: %w", payload, err)
	}
	return device.Event{Button: n, Value: v, Time: time.Now()}, nil
}

// Stop disconnects from the broker.
func (b *Buttons) Stop() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.isRunning {
		return nil
	}
	b.client.Disconnect(250)
	b.client = nil
	b.isRunning = false
	return nil
}

// IsRunning is used to determine if the device is running.
func (b *Buttons) IsRunning() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.isRunning
}
