package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/Govind-619/Clomora/metrics"
	"github.com/Govind-619/Clomora/models"
	"github.com/Govind-619/Clomora/repository"
	"github.com/Govind-619/Clomora/services"
	"github.com/Govind-619/Clomora/utils"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// StreamFrame is one message on a live stream.
type StreamFrame struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// StreamController pushes live address and order lists over websockets.
type StreamController struct {
	addresses *services.AddressService
	orders    *services.OrderQueryService
	metrics   *metrics.Metrics
	upgrader  websocket.Upgrader
}

// NewStreamController accepts upgrades from allowedOrigins, or from anywhere
// when the list contains "*".
func NewStreamController(addresses *services.AddressService, orders *services.OrderQueryService, m *metrics.Metrics, allowedOrigins []string) *StreamController {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return &StreamController{
		addresses: addresses,
		orders:    orders,
		metrics:   m,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowed["*"] || allowed[origin]
			},
		},
	}
}

// StreamAddresses sends the user's address list now and after every change.
func (ctl *StreamController) StreamAddresses(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	ctl.serve(c, "addresses", func(ctx context.Context, push func(interface{})) (func(), error) {
		return ctl.addresses.Watch(ctx, user.UID, func(list []models.Address) { push(list) })
	})
}

// StreamOrders sends the user's order list now and after every change.
func (ctl *StreamController) StreamOrders(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	ctl.serve(c, "orders", func(ctx context.Context, push func(interface{})) (func(), error) {
		filter := repository.OrderFilter{UserID: user.UID}
		return ctl.orders.WatchOrders(ctx, filter, func(list []models.Order) { push(list) })
	})
}

// StreamAllOrders sends every order matching the admin filters.
func (ctl *StreamController) StreamAllOrders(c *gin.Context) {
	filter, ok := orderFilter(c)
	if !ok {
		return
	}
	ctl.serve(c, "orders", func(ctx context.Context, push func(interface{})) (func(), error) {
		return ctl.orders.WatchOrders(ctx, filter, func(list []models.Order) { push(list) })
	})
}

type watchFunc func(ctx context.Context, push func(interface{})) (unsubscribe func(), err error)

// serve upgrades the request and relays snapshots until the client goes
// away. Only the latest snapshot is kept when the client falls behind.
func (ctl *StreamController) serve(c *gin.Context, kind string, watch watchFunc) {
	conn, err := ctl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.LogError("Websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()
	ctl.metrics.StreamOpened()
	defer ctl.metrics.StreamClosed()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	send := make(chan []byte, 1)
	push := func(v interface{}) {
		data, err := json.Marshal(StreamFrame{Type: kind, Data: v})
		if err != nil {
			utils.LogError("Failed to encode %s frame: %v", kind, err)
			return
		}
		for {
			select {
			case send <- data:
				return
			default:
			}
			select {
			case <-send:
			default:
			}
		}
	}

	unsubscribe, err := watch(ctx, push)
	if err != nil {
		utils.LogError("Failed to start %s stream: %v", kind, err)
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "stream unavailable"))
		return
	}
	defer unsubscribe()

	go func() {
		defer cancel()
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					utils.LogWarn("Unexpected %s stream close: %v", kind, err)
				}
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case data := <-send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
