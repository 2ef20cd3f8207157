package pushgateway

import (
	"context"
	"fmt"
	"sync"

	"github.com/wanderlist-app/reminder-api/internal/ports/out/pushgateway"
)

// Gateway is an in-memory implementation of pushgateway.Gateway. It records
// every send and lets tests script per-token failures. The memory storage
// backend also uses it so local development works without FCM credentials.
type Gateway struct {
	mu         sync.Mutex
	sent       []pushgateway.Message
	failTokens map[string]error
	nextID     int
}

func NewGateway() *Gateway {
	return &Gateway{
		failTokens: make(map[string]error),
	}
}

// FailToken makes every send to token fail with err until cleared.
func (g *Gateway) FailToken(token string, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err == nil {
		delete(g.failTokens, token)
		return
	}
	g.failTokens[token] = err
}

func (g *Gateway) Send(ctx context.Context, msg pushgateway.Message) (string, error) {
	_ = ctx
	g.mu.Lock()
	defer g.mu.Unlock()
	if err, ok := g.failTokens[msg.Token]; ok {
		return "", err
	}
	g.nextID++
	g.sent = append(g.sent, cloneMessage(msg))
	return fmt.Sprintf("mem-msg-%d", g.nextID), nil
}

// Sent returns a copy of every successfully delivered message, in send order.
func (g *Gateway) Sent() []pushgateway.Message {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]pushgateway.Message, 0, len(g.sent))
	for _, m := range g.sent {
		out = append(out, cloneMessage(m))
	}
	return out
}

func cloneMessage(m pushgateway.Message) pushgateway.Message {
	cp := m
	if m.Data != nil {
		d := make(map[string]string, len(m.Data))
		for k, v := range m.Data {
			d[k] = v
		}
		cp.Data = d
	}
	return cp
}
