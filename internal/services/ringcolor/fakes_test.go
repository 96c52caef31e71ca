package ringcolor

import (
	"context"
	"io"
	"log"
	"sync"

	"github.com/louisbranch/ringcolor/internal/services/scene/domain"
	"github.com/louisbranch/ringcolor/internal/services/scene/storage"
)

type fakeSceneSource struct {
	scene storage.SceneHandle
	err   error
	calls int
}

func (f *fakeSceneSource) ActiveScene(context.Context) (storage.SceneHandle, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.scene, nil
}

type fakeScene struct {
	id     string
	name   string
	tokens []*fakeToken
}

func (s *fakeScene) ID() string   { return s.id }
func (s *fakeScene) Name() string { return s.name }

func (s *fakeScene) Tokens() []storage.TokenHandle {
	handles := make([]storage.TokenHandle, 0, len(s.tokens))
	for _, token := range s.tokens {
		handles = append(handles, token)
	}
	return handles
}

type fakeToken struct {
	id        string
	name      string
	actor     *domain.Actor
	ring      domain.RingConfig
	updateErr error
	panicMsg  string
	patches   []domain.Patch
}

func (t *fakeToken) ID() string              { return t.id }
func (t *fakeToken) Name() string            { return t.name }
func (t *fakeToken) Ring() domain.RingConfig { return t.ring }

func (t *fakeToken) Actor() (domain.Actor, bool) {
	if t.actor == nil {
		return domain.Actor{}, false
	}
	return *t.actor, true
}

func (t *fakeToken) Update(_ context.Context, patch domain.Patch) error {
	if t.panicMsg != "" {
		panic(t.panicMsg)
	}
	t.patches = append(t.patches, patch)
	if t.updateErr != nil {
		return t.updateErr
	}
	next, err := patch.Apply(domain.Token{ID: t.id, Name: t.name, Ring: t.ring})
	if err != nil {
		return err
	}
	t.ring = next.Ring
	return nil
}

type notification struct {
	severity Severity
	message  string
}

type recordingNotifier struct {
	mu            sync.Mutex
	notifications []notification
}

func (n *recordingNotifier) Notify(_ context.Context, severity Severity, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notifications = append(n.notifications, notification{severity: severity, message: message})
}

// panickingNotifier panics on every call.
type panickingNotifier struct {
	calls int
}

func (n *panickingNotifier) Notify(context.Context, Severity, string) {
	n.calls++
	panic("sink closed")
}

func npc(id, name string) *fakeToken {
	return &fakeToken{id: id, name: name, actor: &domain.Actor{ID: "actor-" + id, Name: name, Type: domain.ActorTypeNPC}}
}

func pc(id, name string) *fakeToken {
	return &fakeToken{id: id, name: name, actor: &domain.Actor{ID: "actor-" + id, Name: name, Type: domain.ActorTypeCharacter}}
}

func bare(id, name string) *fakeToken {
	return &fakeToken{id: id, name: name}
}

func discardLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}
