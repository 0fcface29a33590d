package services

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/simgebenzerr/planner-core/internal/domain/entities"
	"github.com/simgebenzerr/planner-core/internal/ports"
)

// fakeTaskRepo is an in-memory TaskRepository for service tests.
type fakeTaskRepo struct {
	mu      sync.Mutex
	tasks   map[uuid.UUID]*entities.Task
	listErr error
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{tasks: make(map[uuid.UUID]*entities.Task)}
}

func (r *fakeTaskRepo) Create(ctx context.Context, task *entities.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *task
	r.tasks[task.ID] = &copied
	return nil
}

func (r *fakeTaskRepo) GetByID(ctx context.Context, id uuid.UUID) (*entities.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	task, ok := r.tasks[id]
	if !ok {
		return nil, entities.ErrTaskNotFound
	}
	copied := *task
	return &copied, nil
}

func (r *fakeTaskRepo) Update(ctx context.Context, task *entities.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[task.ID]; !ok {
		return entities.ErrTaskNotFound
	}
	copied := *task
	r.tasks[task.ID] = &copied
	return nil
}

func (r *fakeTaskRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[id]; !ok {
		return entities.ErrTaskNotFound
	}
	delete(r.tasks, id)
	return nil
}

func (r *fakeTaskRepo) ListByDue(ctx context.Context) ([]*entities.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]*entities.Task, 0, len(r.tasks))
	for _, task := range r.tasks {
		copied := *task
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Due.Before(out[j].Due) })
	return out, nil
}

func (r *fakeTaskRepo) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.tasks)), nil
}

// fakeSettingsRepo is an in-memory SettingsRepository.
type fakeSettingsRepo struct {
	mu     sync.Mutex
	values map[string]int
	setErr error
}

func newFakeSettingsRepo() *fakeSettingsRepo {
	return &fakeSettingsRepo{values: make(map[string]int)}
}

func (r *fakeSettingsRepo) GetInt(ctx context.Context, key string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.values[key], nil
}

func (r *fakeSettingsRepo) SetInt(ctx context.Context, key string, value int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.setErr != nil {
		return r.setErr
	}
	r.values[key] = value
	return nil
}

// fakeDocStore is an in-memory DocumentStore.
type fakeDocStore struct {
	mu        sync.Mutex
	docs      map[string]map[string]any
	getErr    error
	setErr    error
	updateErr error
}

func newFakeDocStore() *fakeDocStore {
	return &fakeDocStore{docs: make(map[string]map[string]any)}
}

func docKey(collection, id string) string { return collection + "/" + id }

func (s *fakeDocStore) Get(ctx context.Context, collection, id string) (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	doc, ok := s.docs[docKey(collection, id)]
	if !ok {
		return nil, entities.ErrDocumentNotFound
	}
	out := make(map[string]any, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out, nil
}

func (s *fakeDocStore) Set(ctx context.Context, collection, id string, fields map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.setErr != nil {
		return s.setErr
	}
	doc := make(map[string]any, len(fields))
	for k, v := range fields {
		doc[k] = v
	}
	s.docs[docKey(collection, id)] = doc
	return nil
}

func (s *fakeDocStore) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updateErr != nil {
		return s.updateErr
	}
	doc, ok := s.docs[docKey(collection, id)]
	if !ok {
		return entities.ErrDocumentNotFound
	}
	for k, v := range fields {
		doc[k] = v
	}
	return nil
}

// fakeProvider is a scriptable IdentityProvider.
type fakeProvider struct {
	mu          sync.Mutex
	current     entities.Session
	reloadErr   error
	reloadWith  *entities.Session
	subscribers map[int]func(entities.Session)
	nextSubID   int
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{subscribers: make(map[int]func(entities.Session))}
}

func (p *fakeProvider) SignIn(ctx context.Context, email, password string) (entities.Session, error) {
	session := entities.Session{User: &entities.UserHandle{ID: "u1", Email: email}, Verified: true}
	p.push(session)
	return session, nil
}

func (p *fakeProvider) CreateAccount(ctx context.Context, email, password string) (entities.Session, error) {
	session := entities.Session{User: &entities.UserHandle{ID: "u1", Email: email}}
	p.push(session)
	return session, nil
}

func (p *fakeProvider) SignOut(ctx context.Context) error {
	p.push(entities.Session{})
	return nil
}

func (p *fakeProvider) SendVerificationEmail(ctx context.Context, userID string) error {
	return nil
}

func (p *fakeProvider) Reload(ctx context.Context) (entities.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.reloadErr != nil {
		return entities.Session{}, p.reloadErr
	}
	if p.reloadWith != nil {
		return *p.reloadWith, nil
	}
	return p.current, nil
}

func (p *fakeProvider) CurrentSession() entities.Session {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

func (p *fakeProvider) Subscribe(fn func(entities.Session)) func() {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.nextSubID
	p.nextSubID++
	p.subscribers[id] = fn
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.subscribers, id)
	}
}

// push simulates a provider-originated session change.
func (p *fakeProvider) push(session entities.Session) {
	p.mu.Lock()
	p.current = session
	fns := make([]func(entities.Session), 0, len(p.subscribers))
	for _, fn := range p.subscribers {
		fns = append(fns, fn)
	}
	p.mu.Unlock()

	for _, fn := range fns {
		fn(session)
	}
}

// fakeCenter records notification center calls.
type fakeCenter struct {
	mu         sync.Mutex
	authCalls  int
	authOpts   ports.AuthorizationOptions
	added      []ports.NotificationRequest
	removed    []string
	addErr     error
	authErr    error
	removeErr  error
}

func newFakeCenter() *fakeCenter {
	return &fakeCenter{}
}

func (c *fakeCenter) RequestAuthorization(ctx context.Context, opts ports.AuthorizationOptions) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.authCalls++
	c.authOpts = opts
	return c.authErr
}

func (c *fakeCenter) AddRequest(ctx context.Context, req ports.NotificationRequest) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.addErr != nil {
		return c.addErr
	}
	c.added = append(c.added, req)
	return nil
}

func (c *fakeCenter) RemoveRequest(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.removeErr != nil {
		return c.removeErr
	}
	c.removed = append(c.removed, id)
	return nil
}
