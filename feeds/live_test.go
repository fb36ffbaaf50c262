package feeds

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLiveMessage(t *testing.T) {
	type test struct {
		msg   string
		tick  Tick
		ok    bool
		isErr error
	}

	tests := map[string]test{
		"tick": {
			msg:  `{"msg_type":"tick","tick":{"symbol":"R_100","quote":1234.57,"epoch":1700000000}}`,
			tick: Tick{Symbol: "R_100", Price: 1234.57, Time: time.Unix(1700000000, 0).UTC()},
			ok:   true,
		},
		"ack": {
			msg: `{"msg_type":"ticks","echo_req":{"ticks":"R_100"}}`,
		},
		"api-error": {
			msg:   `{"msg_type":"tick","error":{"code":"InvalidSymbol","message":"Symbol X is invalid"}}`,
			isErr: ErrFeedRejected,
		},
		"garbage": {
			msg:   `not json`,
			isErr: ErrBadTick,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			tick, ok, err := ParseLiveMessage([]byte(tt.msg))
			if tt.isErr != nil {
				assert.ErrorIs(t, err, tt.isErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.tick, tick)
		})
	}
}

// tickServer answers each connection with the given messages after the
// subscription request arrives
func tickServer(t *testing.T, handle func(conn *websocket.Conn, n int)) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	var connections int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		var req map[string]interface{}
		if err := conn.ReadJSON(&req); err != nil {
			return
		}
		if req["ticks"] != "R_100" {
			return
		}
		handle(conn, int(atomic.AddInt32(&connections, 1)))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func tickMessage(quote string) []byte {
	return []byte(`{"msg_type":"tick","tick":{"symbol":"R_100","quote":` + quote + `,"epoch":1700000000}}`)
}

func TestLiveFeed_Stream(t *testing.T) {
	srv := tickServer(t, func(conn *websocket.Conn, _ int) {
		conn.WriteMessage(websocket.TextMessage, []byte(`{"msg_type":"ticks"}`))
		for _, q := range []string{"100.01", "100.02", "100.03"} {
			conn.WriteMessage(websocket.TextMessage, tickMessage(q))
		}
		// hold the connection until the client leaves
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	feed := NewLiveFeed(wsURL(srv), "R_100")
	ticks, errs := feed.Stream(ctx)

	var digits []int
	for len(digits) < 3 {
		tick, ok := <-ticks
		require.True(t, ok)
		assert.Equal(t, "R_100", tick.Symbol)
		digits = append(digits, tick.Digit())
	}
	assert.Equal(t, []int{1, 2, 3}, digits)

	cancel()
	for range ticks {
	}
	for err := range errs {
		assert.NoError(t, err)
	}

	stats := feed.Stats()
	assert.Equal(t, 1, stats.Connects)
	assert.Equal(t, 3, stats.Received)
}

func TestLiveFeed_Reconnects(t *testing.T) {
	srv := tickServer(t, func(conn *websocket.Conn, n int) {
		conn.WriteMessage(websocket.TextMessage, tickMessage("100.0"+string(rune('0'+n))))
		if n > 1 {
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}
		// first connection drops right away
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	feed := NewLiveFeed(wsURL(srv), "R_100")
	feed.backoff = 10 * time.Millisecond
	ticks, _ := feed.Stream(ctx)

	first := <-ticks
	second := <-ticks
	assert.Equal(t, 1, first.Digit())
	assert.Equal(t, 2, second.Digit())
	assert.Equal(t, 2, feed.Stats().Connects)
}

func TestLiveFeed_Rejected(t *testing.T) {
	srv := tickServer(t, func(conn *websocket.Conn, _ int) {
		conn.WriteMessage(websocket.TextMessage,
			[]byte(`{"msg_type":"tick","error":{"code":"MarketIsClosed","message":"This market is presently closed."}}`))
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ticks, errs := NewLiveFeed(wsURL(srv), "R_100").Stream(ctx)

	err := <-errs
	assert.ErrorIs(t, err, ErrFeedRejected)
	assert.ErrorContains(t, err, "MarketIsClosed")

	_, ok := <-ticks
	assert.False(t, ok)
}
