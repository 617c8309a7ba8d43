// Package feed consumes the authoring pipeline's socket.io event stream and
// pushes each generated panel into the registry. It is optional: the sandbox
// runs fine with the websocket gateway as its only inbound surface.
package feed

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"

	"github.com/vk/hotpanel/internal/ctxlog"
	"github.com/vk/hotpanel/internal/model"
	"github.com/vk/hotpanel/internal/registry"
)

// updateEvent is the socket.io event name the authoring pipeline emits for
// each generated or regenerated panel.
const updateEvent = "panel_update"

// connectTimeout bounds the initial connection handshake.
const connectTimeout = 15 * time.Second

// Config holds the connection settings for the authoring feed.
type Config struct {
	URL                string
	Namespace          string
	InsecureSkipVerify bool
}

// Feed is a live connection to the authoring pipeline.
type Feed struct {
	io *socket.Socket
}

// Connect dials the authoring pipeline and starts forwarding panel updates
// into the registry. The given ctx is also the lifetime context for compiles
// triggered by forwarded updates.
func Connect(ctx context.Context, cfg Config, reg *registry.Registry) (*Feed, error) {
	logger := ctxlog.FromContext(ctx).With("feed", cfg.URL)
	logger.Info("Connecting to authoring feed...")

	parsedURL, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed URL: %w", err)
	}

	opts := socket.DefaultOptions()
	opts.SetPath(parsedURL.Path)
	if cfg.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	connectChan := make(chan error, 1)

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(cfg.Namespace, opts)

	io.Once(types.EventName("connect"), func(...any) {
		logger.Info("Authoring feed connected.", "sid", io.Id())
		connectChan <- nil
	})

	io.Once(types.EventName("connect_error"), func(errs ...any) {
		err := errs[0].(error)
		connectChan <- err
	})

	io.On(types.EventName(updateEvent), func(args ...any) {
		update, err := decodeUpdate(args)
		if err != nil {
			logger.Warn("Ignoring malformed panel update from feed.", "error", err)
			return
		}
		logger.Debug("Panel update received from feed.", "panel", update.ID)
		reg.RegisterFromUpdate(ctx, update)
	})

	io.Connect()

	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("authoring feed connection failed: %w", err)
		}
		return &Feed{io: io}, nil
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("context cancelled while waiting for authoring feed connection")
	case <-time.After(connectTimeout):
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %s waiting for authoring feed connection", connectTimeout)
	}
}

// Close tears down the connection.
func (f *Feed) Close() {
	f.io.Disconnect()
}

// decodeUpdate turns a raw socket.io event payload into a PanelUpdate. The
// pipeline may emit either a JSON string or an already-decoded object; both
// round-trip through JSON into the typed struct.
func decodeUpdate(args []any) (model.PanelUpdate, error) {
	var update model.PanelUpdate
	if len(args) == 0 {
		return update, fmt.Errorf("event carried no payload")
	}

	var raw []byte
	switch v := args[0].(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return update, fmt.Errorf("payload not serializable: %w", err)
		}
		raw = encoded
	}

	if err := json.Unmarshal(raw, &update); err != nil {
		return update, fmt.Errorf("payload does not decode to a panel update: %w", err)
	}
	if update.ID == "" {
		return update, fmt.Errorf("panel update is missing an id")
	}
	return update, nil
}
