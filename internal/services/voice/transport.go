package voice

import (
	"context"
	"log"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/climaneer/climaneer/pkg/mqttbus"
)

const (
	TranscriptTopic = "voice/transcript"
	AnnounceTopic   = "voice/announce"
)

// Transport feeds broker-delivered transcripts into an interpreter and
// publishes its announcements back out, keeping the interpreter itself free
// of any MQTT awareness. Construct the transport first, hand its Announce
// method to the interpreter's actions, then Run with that interpreter.
type Transport struct {
	client    mqtt.Client
	publisher *mqttbus.Publisher
}

func NewTransport(client mqtt.Client) *Transport {
	return &Transport{
		client:    client,
		publisher: mqttbus.NewPublisher(client, AnnounceTopic, 1),
	}
}

// Announce publishes one spoken line. Suitable as the interpreter's Announce
// action.
func (t *Transport) Announce(text string) {
	if err := t.publisher.PublishMessage(text); err != nil {
		log.Printf("[Voice] announce publish failed: %v", err)
	}
}

// Run consumes transcripts and dispatches them until ctx is cancelled.
func (t *Transport) Run(ctx context.Context, interp *Interpreter) {
	consumer := mqttbus.NewConsumer(t.client, TranscriptTopic, 1, func(_ string, msg mqtt.Message) error {
		interp.Interpret(ctx, string(msg.Payload()))
		return nil
	})
	consumer.ConsumeMessage(ctx)
}
