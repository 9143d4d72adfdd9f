// ABOUTME: Sensor source fed by MQTT topics
// ABOUTME: Keeps the latest numeric payload for temperature and light
package sensors

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/harperreed/nightchorus/internal/config"
)

const connectTimeout = 30 * time.Second

// MQTT subscribes to one topic per reading. Until the first message
// arrives the configured defaults are reported.
type MQTT struct {
	cfg    config.MQTTSettings
	logger *slog.Logger
	client mqtt.Client

	mu          sync.Mutex
	temperature float64
	light       float64
}

// NewMQTT connects to the broker and subscribes to both topics.
func NewMQTT(cfg config.MQTTSettings, defaults config.SensorDefaults, logger *slog.Logger) (*MQTT, error) {
	m := newMQTTState(cfg, defaults, logger)

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	opts.SetUsername(cfg.Username)
	opts.SetPassword(cfg.Password)
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetOnConnectHandler(m.onConnect)
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		m.logger.Warn("connection to MQTT broker lost", "broker", cfg.Broker, "error", err)
	})

	m.client = mqtt.NewClient(opts)
	token := m.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		m.client.Disconnect(0)
		return nil, fmt.Errorf("mqtt connect to %s: timeout", cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect to %s: %w", cfg.Broker, err)
	}
	return m, nil
}

func newMQTTState(cfg config.MQTTSettings, defaults config.SensorDefaults, logger *slog.Logger) *MQTT {
	if logger == nil {
		logger = slog.Default()
	}
	return &MQTT{
		cfg:         cfg,
		logger:      logger,
		temperature: defaults.Temperature,
		light:       defaults.Light,
	}
}

// onConnect also runs after automatic reconnects, restoring subscriptions.
func (m *MQTT) onConnect(c mqtt.Client) {
	m.logger.Info("connected to MQTT broker", "broker", m.cfg.Broker)
	for _, topic := range []string{m.cfg.TemperatureTopic, m.cfg.LightTopic} {
		if topic == "" {
			continue
		}
		token := c.Subscribe(topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
			m.handle(msg.Topic(), msg.Payload())
		})
		if token.WaitTimeout(10*time.Second) && token.Error() != nil {
			m.logger.Error("mqtt subscribe failed", "topic", topic, "error", token.Error())
		}
	}
}

func (m *MQTT) handle(topic string, payload []byte) {
	v, err := parseReading(string(payload))
	if err != nil {
		m.logger.Warn("ignoring sensor payload", "topic", topic, "payload", string(payload), "error", err)
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	switch topic {
	case m.cfg.TemperatureTopic:
		m.temperature = v
	case m.cfg.LightTopic:
		m.light = v
	default:
		return
	}
	m.logger.Debug("sensor update", "topic", topic, "value", v)
}

func (m *MQTT) ReadTemperature() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.temperature
}

func (m *MQTT) ReadLight() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.light
}

func (m *MQTT) Close() error {
	if m.client != nil && m.client.IsConnected() {
		m.client.Disconnect(250)
	}
	return nil
}
