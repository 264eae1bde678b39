// Package session holds the dashboard's admin key and whether the backend
// accepted it.
//
// The session moves between three states:
//
//	anonymous --validate--> validating --accept--> authenticated
//	                                   --reject--> anonymous
//	authenticated --logout--> anonymous
//
// Validation never returns an error: any failure counts as an invalid key.
package session

import (
	"context"
	"sync"

	"github.com/looplab/fsm"
	"github.com/mbolis/survey-admin/httpx"
	"github.com/mbolis/survey-admin/log"
	"go.uber.org/atomic"
)

const (
	StateAnonymous     = "anonymous"
	StateValidating    = "validating"
	StateAuthenticated = "authenticated"

	eventValidate = "validate"
	eventAccept   = "accept"
	eventReject   = "reject"
	eventLogout   = "logout"
)

const (
	ValidatePath = "/api/admin/keys/validate"

	// StorageKey names the persisted credential.
	StorageKey = "dashboardKey"
)

// Poster is the part of the HTTP client the session needs.
type Poster interface {
	Post(ctx context.Context, path string, body any) (httpx.Payload, error)
}

// Store persists the admin key between runs.
type Store interface {
	Load(ctx context.Context) (key string, ok bool, err error)
	Save(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

type Snapshot struct {
	IsAuthed    bool   `json:"isAuthed"`
	Key         string `json:"-"`
	HasKey      bool   `json:"hasKey"`
	Initialized bool   `json:"initialized"`
	State       string `json:"state"`
}

type Manager struct {
	api   Poster
	store Store

	mu          sync.Mutex
	machine     *fsm.FSM
	key         string
	hasKey      bool
	once        sync.Once
	initialized *atomic.Bool
}

func New(api Poster, store Store) *Manager {
	return &Manager{
		api:         api,
		store:       store,
		machine:     newMachine(),
		initialized: atomic.NewBool(false),
	}
}

func newMachine() *fsm.FSM {
	return fsm.NewFSM(
		StateAnonymous,
		fsm.Events{
			{Name: eventValidate, Src: []string{StateAnonymous, StateAuthenticated}, Dst: StateValidating},
			{Name: eventAccept, Src: []string{StateValidating, StateAnonymous}, Dst: StateAuthenticated},
			{Name: eventReject, Src: []string{StateValidating}, Dst: StateAnonymous},
			{Name: eventLogout, Src: []string{StateAuthenticated, StateValidating}, Dst: StateAnonymous},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				log.Debugf("session: %s -> %s (%s)", e.Src, e.Dst, e.Event)
			},
		},
	)
}

// fire runs a transition. Callers hold m.mu.
func (m *Manager) fire(ctx context.Context, event string) {
	if m.machine.Cannot(event) {
		return
	}
	if err := m.machine.Event(ctx, event); err != nil {
		log.Errorf("session.%s: %s", event, err)
	}
}

// ValidateKey asks the backend whether key is a valid admin key.
func (m *Manager) ValidateKey(ctx context.Context, key string) bool {
	res, err := m.api.Post(ctx, ValidatePath, map[string]any{"key": key})
	if err != nil {
		log.Debugf("session.validate: %s", err)
		return false
	}
	data, ok := res.Data().(map[string]any)
	return res.Status() == "success" && ok && data["valid"] == true
}

// Bootstrap revalidates the persisted key, if any. Only the first call does
// any work; later and concurrent calls wait for it to finish.
func (m *Manager) Bootstrap(ctx context.Context) {
	m.once.Do(func() {
		m.bootstrap(ctx)
		m.initialized.Store(true)
	})
}

// EnsureBootstrapped is the route guard entry point.
func (m *Manager) EnsureBootstrapped(ctx context.Context) {
	if !m.initialized.Load() {
		m.Bootstrap(ctx)
	}
}

func (m *Manager) bootstrap(ctx context.Context) {
	stored, ok, err := m.store.Load(ctx)
	if err != nil {
		log.Warnf("session.bootstrap.load: %s", err)
		ok = false
	}
	if !ok || stored == "" {
		return
	}

	m.mu.Lock()
	m.key, m.hasKey = stored, true
	m.fire(ctx, eventValidate)
	m.mu.Unlock()

	valid := m.ValidateKey(ctx, stored)

	m.mu.Lock()
	defer m.mu.Unlock()
	if valid {
		m.fire(ctx, eventAccept)
	} else {
		m.fire(ctx, eventReject)
	}
}

// LoginWithKey validates key and, if the backend accepts it, authenticates
// the session and persists the key. A rejected key leaves the session as it was.
func (m *Manager) LoginWithKey(ctx context.Context, key string) bool {
	if !m.ValidateKey(ctx, key) {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.fire(ctx, eventAccept)
	m.key, m.hasKey = key, true
	if err := m.store.Save(ctx, key); err != nil {
		log.Errorf("session.login.save: %s", err)
	}
	return true
}

// Logout forgets the key in memory and in the store.
func (m *Manager) Logout(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fire(ctx, eventLogout)
	m.key, m.hasKey = "", false
	if err := m.store.Clear(ctx); err != nil {
		log.Errorf("session.logout.clear: %s", err)
	}
}

func (m *Manager) IsAuthed() bool {
	return m.machine.Is(StateAuthenticated)
}

func (m *Manager) Initialized() bool {
	return m.initialized.Load()
}

func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{
		IsAuthed:    m.machine.Is(StateAuthenticated),
		Key:         m.key,
		HasKey:      m.hasKey,
		Initialized: m.initialized.Load(),
		State:       m.machine.Current(),
	}
}
