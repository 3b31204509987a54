package testutil

import (
	"context"
	"sync"

	"nestmart/services/gateway"
)

// StubGateway records session requests and answers with canned results.
type StubGateway struct {
	mu       sync.Mutex
	Requests []gateway.SessionRequest

	InitErr       error
	Outcome       gateway.Outcome
	ValidateErr   error
	Notifications []gateway.Notification
}

func (g *StubGateway) InitSession(_ context.Context, req gateway.SessionRequest) (*gateway.Session, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Requests = append(g.Requests, req)
	if g.InitErr != nil {
		return nil, g.InitErr
	}
	return &gateway.Session{URL: "https://pay.example.com/checkout/" + req.TranID, SessionKey: "sess-" + req.TranID}, nil
}

func (g *StubGateway) Validate(_ context.Context, n gateway.Notification) (gateway.Outcome, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Notifications = append(g.Notifications, n)
	if g.ValidateErr != nil {
		return gateway.OutcomeUnknown, g.ValidateErr
	}
	if g.Outcome == "" {
		return gateway.OutcomeUnknown, nil
	}
	return g.Outcome, nil
}

// LastRequest returns the most recent session request.
func (g *StubGateway) LastRequest() gateway.SessionRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.Requests) == 0 {
		return gateway.SessionRequest{}
	}
	return g.Requests[len(g.Requests)-1]
}
