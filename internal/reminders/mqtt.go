package reminders

import (
	"context"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"

	"github.com/aligeramy/somas/internal/engine"
)

const publishTimeout = 5 * time.Second

var connectHandler mqtt.OnConnectHandler = func(client mqtt.Client) {
	log.Info().Msg("connected to MQTT broker")
}

var connectLostHandler mqtt.ConnectionLostHandler = func(client mqtt.Client, err error) {
	log.Warn().Err(err).Msg("MQTT connection lost")
}

// MQTTNotifier publishes each reminder on the recipient's topic,
// gyms/{gym}/users/{user}/reminders.
type MQTTNotifier struct {
	client mqtt.Client
	qos    byte
}

// NewMQTTNotifier connects to brokerURL as clientID.
func NewMQTTNotifier(brokerURL, clientID string) (*MQTTNotifier, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(brokerURL)
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)
	opts.OnConnect = connectHandler
	opts.OnConnectionLost = connectLostHandler

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}
	return newMQTTNotifier(client), nil
}

func newMQTTNotifier(client mqtt.Client) *MQTTNotifier {
	return &MQTTNotifier{client: client, qos: 1}
}

func reminderTopic(r engine.DueReminder) string {
	return fmt.Sprintf("gyms/%s/users/%s/reminders", r.GymID, r.UserID)
}

func (n *MQTTNotifier) Notify(ctx context.Context, r engine.DueReminder) error {
	payload, err := encode(r)
	if err != nil {
		return err
	}
	topic := reminderTopic(r)
	token := n.client.Publish(topic, n.qos, false, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish to %s timed out", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}
	return nil
}

func (n *MQTTNotifier) Close() {
	n.client.Disconnect(250)
	log.Info().Msg("MQTT client disconnected")
}
