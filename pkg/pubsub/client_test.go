package pubsub

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/localdrop-backend/pkg/config"
)

func TestTopicResourceName(t *testing.T) {
	cases := map[string]struct{ project, topic, want string }{
		"bare id":        {"p1", " events ", "projects/p1/topics/events"},
		"full name kept": {"p1", "projects/other/topics/x", "projects/other/topics/x"},
		"no project":     {"", "events", ""},
		"no topic":       {"p1", "", ""},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			require.Equal(t, tc.want, TopicResourceName(tc.project, tc.topic))
		})
	}
}

func TestNewClientValidatesConfig(t *testing.T) {
	_, err := NewClient(context.Background(), config.GCPConfig{ProjectID: " "}, config.PubSubConfig{DomainTopic: "t"}, nil)
	require.ErrorIs(t, err, errProjectIDRequired)

	_, err = NewClient(context.Background(), config.GCPConfig{ProjectID: "p"}, config.PubSubConfig{}, nil)
	require.ErrorIs(t, err, errTopicRequired)
}

func TestDisconnectedClient(t *testing.T) {
	var nilClient *Client
	require.Equal(t, "", nilClient.DomainTopic())
	require.ErrorIs(t, nilClient.Ping(context.Background()), errClosed)
	require.NoError(t, nilClient.Close())

	_, err := (&Client{cfg: config.PubSubConfig{DomainTopic: "t"}}).Publish(context.Background(), "t", []byte("{}"), nil)
	require.ErrorIs(t, err, errClosed)
}
