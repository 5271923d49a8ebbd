// Package kafka streams audit events to a Kafka topic so downstream consumers
// (society dashboards, notification services) can follow gate activity.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	audit "gatehouse/pkg/platform/audit"
)

// Sink implements audit.Store by producing one record per event, keyed by
// subject so a record's history stays ordered within a partition.
type Sink struct {
	client *kgo.Client
	topic  string
}

// Message is the JSON value written to the topic.
type Message struct {
	Category  string    `json:"category"`
	Timestamp time.Time `json:"timestamp"`
	Subject   string    `json:"subject"`
	Action    string    `json:"action"`
	FlatNo    string    `json:"flatNo,omitempty"`
	Decision  string    `json:"decision,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	RequestID string    `json:"requestId,omitempty"`
	ActorID   string    `json:"actorId,omitempty"`
	Terminal  string    `json:"terminal,omitempty"`
}

// New connects a producer to brokers. The topic is created on first write if
// the cluster allows it.
func New(brokers []string, topic string) (*Sink, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.AllowAutoTopicCreation(),
		kgo.RequiredAcks(kgo.AllISRAcks()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return &Sink{client: client, topic: topic}, nil
}

// EnsureTopic creates the audit topic with the broker's default partition
// count and replication. An existing topic is not an error.
func (s *Sink) EnsureTopic(ctx context.Context) error {
	resp, err := kadm.NewClient(s.client).CreateTopic(ctx, -1, -1, nil, s.topic)
	if err != nil {
		return fmt.Errorf("create audit topic: %w", err)
	}
	return topicErr(resp)
}

func topicErr(resp kadm.CreateTopicResponse) error {
	if resp.Err == nil || errors.Is(resp.Err, kerr.TopicAlreadyExists) {
		return nil
	}
	return fmt.Errorf("create audit topic %s: %w", resp.Topic, resp.Err)
}

func (s *Sink) Append(ctx context.Context, event audit.Event) error {
	value, err := json.Marshal(toMessage(event))
	if err != nil {
		return fmt.Errorf("marshal audit message: %w", err)
	}
	record := &kgo.Record{
		Topic: s.topic,
		Key:   []byte(event.Subject),
		Value: value,
	}
	if err := s.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce audit message: %w", err)
	}
	return nil
}

// Health pings the cluster.
func (s *Sink) Health(ctx context.Context) error {
	return s.client.Ping(ctx)
}

func (s *Sink) Close() {
	s.client.Close()
}

func toMessage(e audit.Event) Message {
	return Message{
		Category:  string(e.Category),
		Timestamp: e.Timestamp.UTC(),
		Subject:   e.Subject,
		Action:    e.Action,
		FlatNo:    e.FlatNo,
		Decision:  e.Decision,
		Reason:    e.Reason,
		RequestID: e.RequestID,
		ActorID:   e.ActorID,
		Terminal:  e.Terminal,
	}
}
