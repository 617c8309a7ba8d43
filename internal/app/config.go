package app

import (
	"errors"
	"time"

	"github.com/vk/hotpanel/internal/model"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// ListenAddr is the address the websocket gateway binds to.
	ListenAddr string
	// PanelsPath optionally points at a directory of persisted .hcl panel
	// sources to register at startup. The sandbox only reads it; writing
	// generated panels to disk belongs to an external collaborator.
	PanelsPath string
	// FeedURL optionally points at the authoring pipeline's socket.io
	// endpoint. Empty disables the feed.
	FeedURL string
	// FeedNamespace is the socket.io namespace of the feed.
	FeedNamespace string
	// ImportTimeout is the compile budget per attempt. Zero means the
	// compiler default.
	ImportTimeout time.Duration

	// OnError, if set, receives every failure record synchronously, for
	// host-level telemetry.
	OnError func(model.PanelError)

	LogFormat string
	LogLevel  string
}

// NewConfig validates a Config.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.ListenAddr == "" {
		return nil, errors.New("ListenAddr is a required configuration field and cannot be empty")
	}
	if cfg.ImportTimeout < 0 {
		return nil, errors.New("ImportTimeout cannot be negative")
	}
	return &cfg, nil
}
