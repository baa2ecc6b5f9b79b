package pubsub

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	pubsub "cloud.google.com/go/pubsub/v2"
	"cloud.google.com/go/pubsub/v2/apiv1/pubsubpb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/angelmondragon/localdrop-backend/pkg/config"
	"github.com/angelmondragon/localdrop-backend/pkg/logger"
)

var (
	errProjectIDRequired = errors.New("pubsub: gcp project id is required")
	errTopicRequired     = errors.New("pubsub: domain topic is required")
	errClosed            = errors.New("pubsub: client not connected")
)

// Client publishes domain events. Publishers are created once per topic and
// flushed on Close.
type Client struct {
	gcp     *pubsub.Client
	project string
	cfg     config.PubSubConfig

	mu         sync.Mutex
	publishers map[string]*pubsub.Publisher
}

// NewClient connects to Pub/Sub and makes sure the domain topic is there,
// creating it when cfg.CreateTopic is set. PUBSUB_EMULATOR_HOST is honoured by
// the underlying library.
func NewClient(ctx context.Context, gcp config.GCPConfig, cfg config.PubSubConfig, logg *logger.Logger) (*Client, error) {
	project := strings.TrimSpace(gcp.ProjectID)
	if project == "" {
		return nil, errProjectIDRequired
	}
	if strings.TrimSpace(cfg.DomainTopic) == "" {
		return nil, errTopicRequired
	}

	raw, err := pubsub.NewClient(ctx, project)
	if err != nil {
		return nil, fmt.Errorf("pubsub: connect: %w", err)
	}
	c := &Client{gcp: raw, project: project, cfg: cfg, publishers: map[string]*pubsub.Publisher{}}

	created, err := c.ensureTopic(ctx, cfg.DomainTopic, cfg.CreateTopic)
	if err != nil {
		_ = raw.Close()
		return nil, err
	}
	if logg != nil {
		logg.Info(logg.WithFields(ctx, map[string]any{"topic": cfg.DomainTopic, "created": created}), "pubsub.ready")
	}
	return c, nil
}

func (c *Client) ensureTopic(ctx context.Context, topic string, create bool) (bool, error) {
	name := TopicResourceName(c.project, topic)
	_, err := c.gcp.TopicAdminClient.GetTopic(ctx, &pubsubpb.GetTopicRequest{Topic: name})
	switch {
	case err == nil:
		return false, nil
	case status.Code(err) != codes.NotFound:
		return false, fmt.Errorf("pubsub: get topic %s: %w", name, err)
	case !create:
		return false, fmt.Errorf("pubsub: topic %s does not exist", name)
	}
	if _, err := c.gcp.TopicAdminClient.CreateTopic(ctx, &pubsubpb.Topic{Name: name}); err != nil && status.Code(err) != codes.AlreadyExists {
		return false, fmt.Errorf("pubsub: create topic %s: %w", name, err)
	}
	return true, nil
}

// DomainTopic is where marketplace events go.
func (c *Client) DomainTopic() string {
	if c == nil {
		return ""
	}
	return c.cfg.DomainTopic
}

// Publish sends one message and waits for the server id.
func (c *Client) Publish(ctx context.Context, topic string, data []byte, attrs map[string]string) (string, error) {
	pub, err := c.publisher(topic)
	if err != nil {
		return "", err
	}
	if c.cfg.PublishTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.PublishTimeout)
		defer cancel()
	}
	id, err := pub.Publish(ctx, &pubsub.Message{Data: data, Attributes: attrs}).Get(ctx)
	if err != nil {
		return "", fmt.Errorf("pubsub: publish to %s: %w", topic, err)
	}
	return id, nil
}

func (c *Client) publisher(topic string) (*pubsub.Publisher, error) {
	if c == nil || c.gcp == nil {
		return nil, errClosed
	}
	name := TopicResourceName(c.project, topic)
	if name == "" {
		return nil, fmt.Errorf("pubsub: no topic name in %q", topic)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.publishers[name]; ok {
		return p, nil
	}
	p := c.gcp.Publisher(name)
	c.publishers[name] = p
	return p, nil
}

// Ping checks the domain topic is reachable.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.gcp == nil {
		return errClosed
	}
	_, err := c.ensureTopic(ctx, c.cfg.DomainTopic, false)
	return err
}

// Close flushes pending publishes, then closes the connection.
func (c *Client) Close() error {
	if c == nil || c.gcp == nil {
		return nil
	}
	c.mu.Lock()
	for name, p := range c.publishers {
		p.Stop()
		delete(c.publishers, name)
	}
	c.mu.Unlock()
	return c.gcp.Close()
}

// TopicResourceName turns a topic id into projects/<project>/topics/<id>.
// Full resource names pass through.
func TopicResourceName(project, topic string) string {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return ""
	}
	if strings.HasPrefix(topic, "projects/") && strings.Contains(topic, "/topics/") {
		return topic
	}
	if project = strings.TrimSpace(project); project == "" {
		return ""
	}
	return "projects/" + project + "/topics/" + topic
}
