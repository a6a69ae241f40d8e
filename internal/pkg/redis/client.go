// internal/pkg/redis/client.go
package redis

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
)

// Client wraps go-redis with a registry of named Lua scripts. Adapters load
// their scripts once at construction time and run them by name afterwards.
type Client struct {
	rdb     *goredis.Client
	scripts map[string]*goredis.Script
}

// NewClient connects to a single Redis node and verifies the connection.
func NewClient(addr string) (*Client, error) {
	rdb := goredis.NewClient(&goredis.Options{Addr: addr})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return &Client{
		rdb:     rdb,
		scripts: make(map[string]*goredis.Script),
	}, nil
}

// LoadScriptFromContent registers a named Lua script.
func (c *Client) LoadScriptFromContent(name, content string) error {
	if _, exists := c.scripts[name]; exists {
		return fmt.Errorf("script %q is already registered", name)
	}
	c.scripts[name] = goredis.NewScript(content)
	return nil
}

// RunScript executes a previously registered script. go-redis runs EVALSHA
// and falls back to EVAL when the script is not cached server-side.
func (c *Client) RunScript(ctx context.Context, name string, keys []string, args ...interface{}) (interface{}, error) {
	script, ok := c.scripts[name]
	if !ok {
		return nil, fmt.Errorf("script %q is not registered", name)
	}
	return script.Run(ctx, c.rdb, keys, args...).Result()
}

// GetClient exposes the raw client for pipelines and admin commands.
func (c *Client) GetClient() *goredis.Client {
	return c.rdb
}

func (c *Client) Close() error {
	return c.rdb.Close()
}
