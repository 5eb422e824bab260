package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/pmos-ai/pmosd/pkg/bus"
	"github.com/pmos-ai/pmosd/pkg/config"
	"github.com/pmos-ai/pmosd/pkg/engine"
	"github.com/pmos-ai/pmosd/pkg/logger"
)

// Gateway exposes the engine to local UI surfaces over a websocket.
// One utterance in, one resolution out, in order, per connection.
type Gateway struct {
	cfg      config.GatewayConfig
	engine   *engine.Engine
	server   *http.Server
	upgrader websocket.Upgrader
}

func New(cfg config.GatewayConfig, eng *engine.Engine) *Gateway {
	return &Gateway{
		cfg:    cfg,
		engine: eng,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Loopback-only service, no cross-origin browser surface.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (g *Gateway) Start(ctx context.Context) error {
	addr := net.JoinHostPort(g.cfg.Host, fmt.Sprintf("%d", g.cfg.Port))

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		g.handleConn(ctx, w, r)
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	g.server = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("gateway listen on %s: %w", addr, err)
	}

	logger.InfoCF("gateway", "Gateway listening", map[string]interface{}{
		"addr": addr,
	})

	go func() {
		if err := g.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			logger.ErrorCF("gateway", "Gateway server stopped", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}()

	return nil
}

func (g *Gateway) Stop(ctx context.Context) error {
	if g.server == nil {
		return nil
	}
	logger.InfoC("gateway", "Stopping gateway...")
	return g.server.Shutdown(ctx)
}

func (g *Gateway) handleConn(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.WarnCF("gateway", "Websocket upgrade failed", map[string]interface{}{
			"remote": r.RemoteAddr,
			"error":  err.Error(),
		})
		return
	}
	defer conn.Close()

	clientID := uuid.NewString()
	logger.InfoCF("gateway", "Client connected", map[string]interface{}{
		"client_id": clientID,
		"remote":    r.RemoteAddr,
	})

	for {
		var utt bus.Utterance
		if err := conn.ReadJSON(&utt); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.WarnCF("gateway", "Client read error", map[string]interface{}{
					"client_id": clientID,
					"error":     err.Error(),
				})
			}
			return
		}

		if utt.CorrelationID == "" {
			utt.CorrelationID = uuid.NewString()
		}

		result := g.engine.Process(ctx, utt.Text)

		res := bus.Resolution{
			Surface:       "websocket",
			ClientID:      clientID,
			CorrelationID: utt.CorrelationID,
			Result:        result,
		}
		if err := conn.WriteJSON(res); err != nil {
			logger.WarnCF("gateway", "Client write error", map[string]interface{}{
				"client_id": clientID,
				"error":     err.Error(),
			})
			return
		}
	}
}
