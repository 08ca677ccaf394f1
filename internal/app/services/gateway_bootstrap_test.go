package services

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/faeln1/go-guild-notifier/internal/domain/membership"
)

type capturingRegistrar struct {
	handlers []interface{}
}

func (r *capturingRegistrar) AddHandler(handler interface{}) func() {
	r.handlers = append(r.handlers, handler)
	return func() {}
}

func (r *capturingRegistrar) emit(evt interface{}) {
	for _, h := range r.handlers {
		switch fn := h.(type) {
		case func(*discordgo.Session, *discordgo.GuildMemberAdd):
			if e, ok := evt.(*discordgo.GuildMemberAdd); ok {
				fn(nil, e)
			}
		case func(*discordgo.Session, *discordgo.GuildMemberRemove):
			if e, ok := evt.(*discordgo.GuildMemberRemove); ok {
				fn(nil, e)
			}
		case func(*discordgo.Session, *discordgo.GuildAuditLogEntryCreate):
			if e, ok := evt.(*discordgo.GuildAuditLogEntryCreate); ok {
				fn(nil, e)
			}
		}
	}
}

type listenerCall struct {
	kind  string
	guild membership.GuildID
	user  membership.UserProfile
	entry membership.ModerationEntry
}

type channelListener struct {
	calls   chan listenerCall
	release chan struct{}
}

func newChannelListener() *channelListener {
	return &channelListener{calls: make(chan listenerCall, 8)}
}

func (l *channelListener) HandleMemberAdded(ctx context.Context, guild membership.GuildID, user membership.UserProfile) error {
	l.calls <- listenerCall{kind: "add", guild: guild, user: user}
	return nil
}

func (l *channelListener) HandleMemberRemoved(ctx context.Context, evt membership.DepartureEvent) (membership.DepartureCause, error) {
	if l.release != nil {
		<-l.release
	}
	l.calls <- listenerCall{kind: "remove", guild: evt.GuildID, user: evt.User}
	return membership.CauseVoluntary, nil
}

func (l *channelListener) HandleModerationEntry(ctx context.Context, guild membership.GuildID, entry membership.ModerationEntry) error {
	l.calls <- listenerCall{kind: "audit", guild: guild, entry: entry}
	return nil
}

func (l *channelListener) next(t *testing.T) listenerCall {
	t.Helper()
	select {
	case call := <-l.calls:
		return call
	case <-time.After(time.Second):
		t.Fatalf("listener was not called")
		return listenerCall{}
	}
}

func TestGatewayBootstrapTranslatesEvents(t *testing.T) {
	listener := newChannelListener()
	registrar := &capturingRegistrar{}
	NewGatewayBootstrap(nil, listener, listener, nil).Attach(registrar)

	if len(registrar.handlers) != 3 {
		t.Fatalf("expected 3 handlers, got %d", len(registrar.handlers))
	}

	registrar.emit(&discordgo.GuildMemberAdd{Member: &discordgo.Member{
		GuildID: "g1",
		Nick:    "Ally",
		User:    &discordgo.User{ID: "u1", Username: "alice"},
	}})
	call := listener.next(t)
	if call.kind != "add" || call.guild != "g1" || call.user.ID != "u1" || call.user.DisplayName != "Ally" {
		t.Fatalf("unexpected add call %+v", call)
	}

	registrar.emit(&discordgo.GuildMemberRemove{Member: &discordgo.Member{
		GuildID: "g1",
		User:    &discordgo.User{ID: "u2", Username: "bob"},
	}})
	call = listener.next(t)
	if call.kind != "remove" || call.user.Username != "bob" {
		t.Fatalf("unexpected remove call %+v", call)
	}

	kick := discordgo.AuditLogActionMemberKick
	registrar.emit(&discordgo.GuildAuditLogEntryCreate{
		GuildID:       "g1",
		AuditLogEntry: &discordgo.AuditLogEntry{ActionType: &kick, TargetID: "u2", Reason: " spam "},
	})
	call = listener.next(t)
	if call.kind != "audit" || call.guild != "g1" || call.entry.Kind != membership.ModerationKick || call.entry.TargetID != "u2" || call.entry.Reason != "spam" {
		t.Fatalf("unexpected audit call %+v", call)
	}
}

func TestGatewayBootstrapIgnoresUntrackedAuditEntries(t *testing.T) {
	listener := newChannelListener()
	registrar := &capturingRegistrar{}
	NewGatewayBootstrap(nil, listener, listener, nil).Attach(registrar)

	update := discordgo.AuditLogActionChannelUpdate
	registrar.emit(&discordgo.GuildAuditLogEntryCreate{
		GuildID:       "g1",
		AuditLogEntry: &discordgo.AuditLogEntry{ActionType: &update, TargetID: "c1"},
	})
	registrar.emit(&discordgo.GuildAuditLogEntryCreate{GuildID: "g1"})

	select {
	case call := <-listener.calls:
		t.Fatalf("unexpected listener call %+v", call)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestGatewayBootstrapDoesNotBlockOnSlowDepartures(t *testing.T) {
	listener := newChannelListener()
	listener.release = make(chan struct{})
	bootstrap := NewGatewayBootstrap(nil, listener, listener, nil)

	done := make(chan struct{})
	go func() {
		bootstrap.OnMemberRemoved("g1", membership.UserProfile{ID: "u1"})
		bootstrap.OnMemberAdded("g1", membership.UserProfile{ID: "u2"})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("event delivery blocked behind a pending departure")
	}
	if call := listener.next(t); call.kind != "add" {
		t.Fatalf("expected the join to be handled first, got %+v", call)
	}
	close(listener.release)
	if call := listener.next(t); call.kind != "remove" {
		t.Fatalf("expected the departure, got %+v", call)
	}
}

func TestGatewayBootstrapIgnoresMembersWithoutUser(t *testing.T) {
	listener := newChannelListener()
	registrar := &capturingRegistrar{}
	NewGatewayBootstrap(nil, listener, listener, nil).Attach(registrar)

	registrar.emit(&discordgo.GuildMemberAdd{Member: &discordgo.Member{GuildID: "g1"}})
	registrar.emit(&discordgo.GuildMemberRemove{Member: &discordgo.Member{GuildID: "g1"}})
	registrar.emit(&discordgo.GuildMemberAdd{})
	registrar.emit(&discordgo.GuildMemberRemove{})

	select {
	case call := <-listener.calls:
		t.Fatalf("unexpected listener call %+v", call)
	case <-time.After(50 * time.Millisecond):
	}
}

type causeRecorder struct {
	*ReconciliationEngine
	causes chan membership.DepartureCause
}

func (r *causeRecorder) HandleMemberRemoved(ctx context.Context, evt membership.DepartureEvent) (membership.DepartureCause, error) {
	cause, err := r.ReconciliationEngine.HandleMemberRemoved(ctx, evt)
	r.causes <- cause
	return cause, err
}

func TestGatewayBootstrapCorrelatesAuditKickWithRemoval(t *testing.T) {
	dispatcher := &recordingDispatcher{}
	engine := NewReconciliationEngine(NewCacheRegistry(), nil, dispatcher, nil, ReconcileConfig{GraceInterval: 100 * time.Millisecond}, nil)
	recorder := &causeRecorder{ReconciliationEngine: engine, causes: make(chan membership.DepartureCause, 1)}
	registrar := &capturingRegistrar{}
	NewGatewayBootstrap(nil, recorder, engine, nil).Attach(registrar)

	kick := discordgo.AuditLogActionMemberKick
	registrar.emit(&discordgo.GuildAuditLogEntryCreate{
		GuildID:       "g1",
		AuditLogEntry: &discordgo.AuditLogEntry{ActionType: &kick, TargetID: "u1", Reason: "spam"},
	})
	time.Sleep(20 * time.Millisecond)
	registrar.emit(&discordgo.GuildMemberRemove{Member: &discordgo.Member{
		GuildID: "g1",
		User:    &discordgo.User{ID: "u1", Username: "alice"},
	}})

	select {
	case cause := <-recorder.causes:
		if cause != membership.CauseKicked {
			t.Fatalf("expected kicked, got %v", cause)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("departure was not classified")
	}
}
