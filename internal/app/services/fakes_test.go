package services

import (
	"context"
	"errors"
	"sync"

	"github.com/faeln1/go-guild-notifier/internal/domain/membership"
)

type recordingDispatcher struct {
	mu   sync.Mutex
	sent []membership.Notification
	err  error
}

func (d *recordingDispatcher) Dispatch(ctx context.Context, n membership.Notification) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sent = append(d.sent, n)
	return d.err
}

func (d *recordingDispatcher) Sent() []membership.Notification {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]membership.Notification(nil), d.sent...)
}

type fakeResolver struct {
	mu       sync.Mutex
	profiles map[membership.UserID]membership.UserProfile
	calls    int
}

var errFakeLookup = errors.New("lookup failed")

func (r *fakeResolver) ResolveUser(ctx context.Context, id membership.UserID) (membership.UserProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	p, ok := r.profiles[id]
	if !ok {
		return membership.UserProfile{}, errFakeLookup
	}
	return p, nil
}

func (r *fakeResolver) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

type fakeSender struct {
	mu       sync.Mutex
	channels []string
	err      error
}

func (s *fakeSender) SendEmbed(ctx context.Context, channelID string, n membership.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.channels = append(s.channels, channelID)
	return s.err
}

func fieldValue(n membership.Notification, name string) (string, bool) {
	for _, f := range n.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}
