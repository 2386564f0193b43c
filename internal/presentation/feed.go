package presentation

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/norsecards/ragnarok-engine/internal/game/state"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 256
)

// FeedPath is the route prefix the feed serves; the game id follows it.
const FeedPath = "/ws/games/"

// QueueSource looks up the presentation queue of a game.
type QueueSource interface {
	Presentation(gameID string) (*Queue, error)
}

// Feed streams the presentation messages of one game per websocket
// connection as JSON text frames.
type Feed struct {
	source   QueueSource
	logger   *zap.Logger
	limit    rate.Limit
	burst    int
	upgrader websocket.Upgrader
}

// NewFeed creates a feed. eventsPerSecond caps the frames written to each
// client; zero or less disables the cap.
func NewFeed(source QueueSource, eventsPerSecond float64, logger *zap.Logger) *Feed {
	if logger == nil {
		logger = zap.NewNop()
	}
	limit := rate.Inf
	burst := 1
	if eventsPerSecond > 0 {
		limit = rate.Limit(eventsPerSecond)
		burst = max(1, int(eventsPerSecond))
	}
	return &Feed{
		source: source,
		logger: logger,
		limit:  limit,
		burst:  burst,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// ServeHTTP upgrades requests for /ws/games/{id}.
func (f *Feed) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	if gameID == "" {
		gameID = strings.TrimPrefix(r.URL.Path, FeedPath)
	}
	if gameID == "" || strings.Contains(gameID, "/") {
		http.Error(w, "game id required", http.StatusBadRequest)
		return
	}
	q, err := f.source.Presentation(gameID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, state.ErrEntityNotFound) {
			status = http.StatusNotFound
		}
		http.Error(w, err.Error(), status)
		return
	}

	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		f.logger.Warn("websocket upgrade failed", zap.String("game_id", gameID), zap.Error(err))
		return
	}
	msgs, cancel := q.Subscribe(sendBuffer)
	logger := f.logger.With(zap.String("game_id", gameID), zap.String("remote", r.RemoteAddr))
	logger.Info("presentation client connected")

	ctx, stop := context.WithCancel(context.Background())
	go f.readPump(conn, stop, logger)
	f.writePump(ctx, conn, msgs, logger)
	cancel()
	stop()
	logger.Info("presentation client disconnected")
}

// readPump keeps the read deadline alive and notices a closed peer.
// Client frames are ignored.
func (f *Feed) readPump(conn *websocket.Conn, stop context.CancelFunc, logger *zap.Logger) {
	defer stop()
	conn.SetReadLimit(maxMessageSize)
	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Debug("websocket read error", zap.Error(err))
			}
			return
		}
	}
}

func (f *Feed) writePump(ctx context.Context, conn *websocket.Conn, msgs <-chan Message, logger *zap.Logger) {
	limiter := rate.NewLimiter(f.limit, f.burst)
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		if err := conn.Close(); err != nil {
			logger.Debug("websocket close", zap.Error(err))
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "game closed"))
				return
			}
			if err := limiter.Wait(ctx); err != nil {
				return
			}
			payload, err := json.Marshal(msg)
			if err != nil {
				logger.Warn("presentation message not encodable", zap.String("type", string(msg.Type)), zap.Error(err))
				continue
			}
			if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				logger.Debug("websocket write failed", zap.Error(err))
				return
			}
		case <-ticker.C:
			if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
