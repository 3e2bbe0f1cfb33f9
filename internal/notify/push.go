package notify

import (
	"context"
	"fmt"

	"btevta-wasl-backend/internal/domain"
	"btevta-wasl-backend/internal/logger"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// MessageSender is the subset of the FCM client used here.
type MessageSender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// PushNotifier publishes events to FCM topics named <prefix>-<kind>.
type PushNotifier struct {
	client      MessageSender
	topicPrefix string
}

func NewPushNotifier(ctx context.Context, credentialsFile, projectID, topicPrefix string) (*PushNotifier, error) {
	var cfg *firebase.Config
	if projectID != "" {
		cfg = &firebase.Config{ProjectID: projectID}
	}
	app, err := firebase.NewApp(ctx, cfg, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase messaging: %w", err)
	}
	return newPushNotifier(client, topicPrefix), nil
}

func newPushNotifier(client MessageSender, topicPrefix string) *PushNotifier {
	return &PushNotifier{client: client, topicPrefix: topicPrefix}
}

func (p *PushNotifier) Topic(kind domain.EventKind) string {
	return fmt.Sprintf("%s-%s", p.topicPrefix, kind)
}

func (p *PushNotifier) Send(ctx context.Context, ev domain.Event) error {
	title, body := Describe(ev)
	data := map[string]string{
		"event_id":     ev.ID.String(),
		"kind":         string(ev.Kind),
		"candidate_id": fmt.Sprint(ev.CandidateID),
		"subject_type": ev.SubjectType,
		"subject_id":   fmt.Sprint(ev.SubjectID),
	}
	for k, v := range ev.Payload {
		if _, taken := data[k]; !taken {
			data[k] = fmt.Sprint(v)
		}
	}

	msg := &messaging.Message{
		Topic:        p.Topic(ev.Kind),
		Notification: &messaging.Notification{Title: title, Body: body},
		Data:         data,
	}
	logger.ExternalServiceCall("fcm", "send", "topic", msg.Topic)
	_, err := p.client.Send(ctx, msg)
	logger.ExternalServiceResult("fcm", "send", err, "topic", msg.Topic)
	if err != nil {
		return fmt.Errorf("push %s: %w", ev.Kind, err)
	}
	return nil
}
