package feeds

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// ═══════════════════════════════════════════════════════════════════════════════
// LIVE TICK FEED - WebSocket tick subscriptions
// ═══════════════════════════════════════════════════════════════════════════════
//
// Subscribes with {"ticks": "<symbol>", "subscribe": 1} per symbol and reads
// {"msg_type": "tick", "tick": {"symbol", "quote", "epoch"}} updates.
// Dropped connections are redialed; an API error reply ends the stream.
//
// ═══════════════════════════════════════════════════════════════════════════════

const (
	DerivWSURL     = "wss://ws.derivws.com/websockets/v3?app_id=1089"
	reconnectDelay = 5 * time.Second
	pingInterval   = 30 * time.Second
	writeWait      = 10 * time.Second
)

// ErrFeedRejected wraps error replies from the tick API
var ErrFeedRejected = errors.New("feed rejected request")

// LiveFeed manages the WebSocket connection and tick distribution
type LiveFeed struct {
	url     string
	symbols []string
	dialer  *websocket.Dialer
	backoff time.Duration

	mu          sync.Mutex
	connects    int
	received    int
	unparseable int
}

// NewLiveFeed creates a feed for the given symbols
func NewLiveFeed(url string, symbols ...string) *LiveFeed {
	if url == "" {
		url = DerivWSURL
	}
	return &LiveFeed{
		url:     url,
		symbols: symbols,
		dialer:  websocket.DefaultDialer,
		backoff: reconnectDelay,
	}
}

// liveMessage is the subset of the tick API reply we read
type liveMessage struct {
	MsgType string `json:"msg_type"`
	Tick    *struct {
		Symbol string  `json:"symbol"`
		Quote  float64 `json:"quote"`
		Epoch  int64   `json:"epoch"`
	} `json:"tick"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// ParseLiveMessage decodes one API message. ok is false for messages that
// are not ticks (subscription acks, pongs).
func ParseLiveMessage(data []byte) (tick Tick, ok bool, err error) {
	var msg liveMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return Tick{}, false, fmt.Errorf("%w: %v", ErrBadTick, err)
	}

	if msg.Error != nil {
		return Tick{}, false, fmt.Errorf("%w: %s: %s", ErrFeedRejected, msg.Error.Code, msg.Error.Message)
	}

	if msg.MsgType != "tick" || msg.Tick == nil {
		return Tick{}, false, nil
	}

	return Tick{
		Symbol: msg.Tick.Symbol,
		Price:  msg.Tick.Quote,
		Time:   time.Unix(msg.Tick.Epoch, 0).UTC(),
	}, true, nil
}

// Stream connects and delivers ticks until ctx is cancelled or the API
// rejects a subscription. Both channels are closed on return.
func (f *LiveFeed) Stream(ctx context.Context) (<-chan Tick, <-chan error) {
	ticks := make(chan Tick, 1000)
	errCh := make(chan error, 1)

	go func() {
		defer close(ticks)
		defer close(errCh)

		for {
			if ctx.Err() != nil {
				return
			}

			conn, err := f.connect(ctx)
			if err != nil {
				log.Error().Err(err).Msg("Connection failed, retrying...")
			} else {
				err = f.readLoop(ctx, conn, ticks)
				conn.Close()
				if errors.Is(err, ErrFeedRejected) {
					errCh <- err
					return
				}
			}

			select {
			case <-ctx.Done():
				return
			case <-time.After(f.backoff):
			}
		}
	}()

	return ticks, errCh
}

// connect establishes the connection and sends the subscriptions
func (f *LiveFeed) connect(ctx context.Context) (*websocket.Conn, error) {
	conn, _, err := f.dialer.DialContext(ctx, f.url, nil)
	if err != nil {
		return nil, err
	}

	for _, symbol := range f.symbols {
		req := map[string]interface{}{
			"ticks":     symbol,
			"subscribe": 1,
		}
		if err := conn.WriteJSON(req); err != nil {
			conn.Close()
			return nil, fmt.Errorf("subscribe %s: %w", symbol, err)
		}
	}

	f.mu.Lock()
	f.connects++
	f.mu.Unlock()

	log.Info().Strs("symbols", f.symbols).Msg("🔌 WebSocket connected")
	return conn, nil
}

// readLoop reads messages until the connection drops or ctx is cancelled
func (f *LiveFeed) readLoop(ctx context.Context, conn *websocket.Conn, ticks chan<- Tick) error {
	done := make(chan struct{})
	defer close(done)

	go func() {
		ticker := time.NewTicker(pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				// unblocks ReadMessage
				conn.Close()
				return
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
					log.Debug().Err(err).Msg("Ping failed")
				}
			}
		}
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				log.Warn().Err(err).Msg("Read error")
			}
			return err
		}

		tick, ok, err := ParseLiveMessage(message)
		switch {
		case errors.Is(err, ErrFeedRejected):
			return err
		case err != nil:
			f.mu.Lock()
			f.unparseable++
			f.mu.Unlock()
			log.Debug().Err(err).Msg("Skipping feed message")
			continue
		case !ok:
			continue
		}

		f.mu.Lock()
		f.received++
		f.mu.Unlock()

		select {
		case ticks <- tick:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// LiveStats are connection counters
type LiveStats struct {
	Connects    int
	Received    int
	Unparseable int
}

// Stats returns connection counters
func (f *LiveFeed) Stats() LiveStats {
	f.mu.Lock()
	defer f.mu.Unlock()
	return LiveStats{
		Connects:    f.connects,
		Received:    f.received,
		Unparseable: f.unparseable,
	}
}
