package redis

import "strings"

// Keyspace builds colon separated keys under one namespace.
type Keyspace string

const defaultKeyspace Keyspace = "ld"

// Key joins the non-empty parts under the namespace.
func (k Keyspace) Key(parts ...string) string {
	var b strings.Builder
	b.WriteString(string(k))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		b.WriteByte(':')
		b.WriteString(part)
	}
	return b.String()
}

// IdempotencyKey namespaces a replay record for one route scope.
func (c *Client) IdempotencyKey(scope, id string) string {
	return c.keys().Key("idempotency", scope, id)
}

// RateLimitKey namespaces a fixed-window counter.
func (c *Client) RateLimitKey(scope string) string {
	return c.keys().Key("rate_limit", scope)
}

// LockKey namespaces a job lock prefix.
func (c *Client) LockKey(name string) string {
	return c.keys().Key("lock", name)
}

func (c *Client) keys() Keyspace {
	if c == nil || c.space == "" {
		return defaultKeyspace
	}
	return c.space
}
