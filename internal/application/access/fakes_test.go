package access_test

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jhoicas/crm-portal-api/internal/application/access"
	"github.com/jhoicas/crm-portal-api/internal/domain/entity"
	"github.com/jhoicas/crm-portal-api/internal/domain/repository"
)

// store base de datos en memoria compartida por los repositorios falsos.
type store struct {
	mu          sync.Mutex
	companies   map[string]*entity.Company
	projects    map[string]*entity.Project
	users       map[string]*entity.User
	grants      map[string]*entity.AccessGrant
	memberships map[string]*entity.ProjectMembership
}

func newStore() *store {
	return &store{
		companies:   map[string]*entity.Company{},
		projects:    map[string]*entity.Project{},
		users:       map[string]*entity.User{},
		grants:      map[string]*entity.AccessGrant{},
		memberships: map[string]*entity.ProjectMembership{},
	}
}

type companyRepo struct{ s *store }

func (r companyRepo) Create(_ context.Context, c *entity.Company) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *c
	r.s.companies[c.ID] = &cp
	return nil
}

func (r companyRepo) GetByID(_ context.Context, id string) (*entity.Company, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if c, ok := r.s.companies[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (r companyRepo) GetByTaxID(context.Context, string) (*entity.Company, error) { return nil, nil }

func (r companyRepo) Update(ctx context.Context, c *entity.Company) error { return r.Create(ctx, c) }

func (r companyRepo) List(context.Context, string, int, int) ([]*entity.Company, error) {
	return nil, nil
}

type projectRepo struct{ s *store }

func (r projectRepo) Create(_ context.Context, p *entity.Project) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *p
	r.s.projects[p.ID] = &cp
	return nil
}

func (r projectRepo) GetByID(_ context.Context, id string) (*entity.Project, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p, ok := r.s.projects[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (r projectRepo) GetBySlug(context.Context, string) (*entity.Project, error) { return nil, nil }

func (r projectRepo) Update(ctx context.Context, p *entity.Project) error { return r.Create(ctx, p) }

func (r projectRepo) List(context.Context) ([]*entity.Project, error) { return nil, nil }

type userRepo struct{ s *store }

func (r userRepo) Create(_ context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *u
	r.s.users[u.ID] = &cp
	return nil
}

func (r userRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if u, ok := r.s.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (r userRepo) GetByEmail(context.Context, string) (*entity.User, error) { return nil, nil }

func (r userRepo) Update(ctx context.Context, u *entity.User) error { return r.Create(ctx, u) }

func (r userRepo) ListByCompany(ctx context.Context, companyID string, _, _ int) ([]*entity.User, error) {
	return r.list(companyID, false), nil
}

func (r userRepo) ListActiveByCompany(_ context.Context, companyID string) ([]*entity.User, error) {
	return r.list(companyID, true), nil
}

func (r userRepo) list(companyID string, onlyActive bool) []*entity.User {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.User
	for _, u := range r.s.users {
		if u.CompanyID != companyID || (onlyActive && u.Status != entity.UserStatusActive) {
			continue
		}
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type grantRepo struct{ s *store }

func (r grantRepo) GetByCompanyAndProject(_ context.Context, companyID, projectID string) (*entity.AccessGrant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, g := range r.s.grants {
		if g.CompanyID == companyID && g.ProjectID == projectID {
			cp := *g
			return &cp, nil
		}
	}
	return nil, nil
}

func (r grantRepo) GetByID(_ context.Context, id string) (*entity.AccessGrant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if g, ok := r.s.grants[id]; ok {
		cp := *g
		return &cp, nil
	}
	return nil, nil
}

func (r grantRepo) Create(_ context.Context, g *entity.AccessGrant) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *g
	r.s.grants[g.ID] = &cp
	return nil
}

func (r grantRepo) Update(ctx context.Context, g *entity.AccessGrant) error { return r.Create(ctx, g) }

func (r grantRepo) ListByCompany(_ context.Context, companyID string) ([]*entity.AccessGrant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.AccessGrant
	for _, g := range r.s.grants {
		if g.CompanyID == companyID {
			cp := *g
			out = append(out, &cp)
		}
	}
	return out, nil
}

type membershipRepo struct{ s *store }

func (r membershipRepo) GetByGrantAndUser(_ context.Context, grantID, userID string) (*entity.ProjectMembership, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, m := range r.s.memberships {
		if m.GrantID == grantID && m.UserID == userID {
			cp := *m
			return &cp, nil
		}
	}
	return nil, nil
}

func (r membershipRepo) CreateIfAbsent(_ context.Context, m *entity.ProjectMembership) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.memberships {
		if existing.GrantID == m.GrantID && existing.UserID == m.UserID {
			return false, nil
		}
	}
	cp := *m
	r.s.memberships[m.ID] = &cp
	return true, nil
}

func (r membershipRepo) Update(_ context.Context, m *entity.ProjectMembership) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *m
	r.s.memberships[m.ID] = &cp
	return nil
}

// brokenMemberships falla al guardar, como una base de datos caída.
type brokenMemberships struct{ membershipRepo }

func (brokenMemberships) Update(context.Context, *entity.ProjectMembership) error {
	return errors.New("db down")
}

func (r membershipRepo) ListByGrant(_ context.Context, grantID string) ([]*entity.ProjectMembership, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.ProjectMembership
	for _, m := range r.s.memberships {
		if m.GrantID == grantID {
			cp := *m
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (s *store) membershipCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.memberships)
}

func (s *store) grantCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.grants)
}

// txRunner ejecuta fn con los mismos repositorios en memoria.
type txRunner struct{ s *store }

func (t txRunner) RunAccess(_ context.Context, fn func(repository.AccessGrantRepository, repository.ProjectMembershipRepository, repository.UserRepository) error) error {
	return fn(grantRepo{t.s}, membershipRepo{t.s}, userRepo{t.s})
}

// prefixCipher cifrado reversible trivial para pruebas.
type prefixCipher struct{}

func (prefixCipher) Encrypt(p string) (string, error) {
	if p == "" {
		return "", nil
	}
	return "enc:" + p, nil
}

func (prefixCipher) Decrypt(c string) (string, error) {
	if !strings.HasPrefix(c, "enc:") {
		return "", errors.New("texto cifrado inválido")
	}
	return strings.TrimPrefix(c, "enc:"), nil
}

// fakeProvider proveedor externo programable.
type fakeProvider struct {
	slug      string
	failFor   map[string]error
	delay     time.Duration
	openErr   error
	loginTok  string
	loginExp  time.Time
	regToken  string
	opened    atomic.Int32
	calls     atomic.Int32
	logins    atomic.Int32
	inFlight  atomic.Int32
	maxFlight atomic.Int32
	lastCreds *entity.GrantCredentials
	mu        sync.Mutex
}

func (p *fakeProvider) Slug() string { return p.slug }

func (p *fakeProvider) OpenBatch(_ context.Context, t access.Target) (access.ProviderBatch, error) {
	p.opened.Add(1)
	p.mu.Lock()
	p.lastCreds = t.ServiceCredentials
	p.mu.Unlock()
	if p.openErr != nil {
		return nil, p.openErr
	}
	return p, nil
}

func (p *fakeProvider) Register(ctx context.Context, u access.ExternalUser) (*access.ExternalAccount, error) {
	p.calls.Add(1)
	n := p.inFlight.Add(1)
	defer p.inFlight.Add(-1)
	for {
		m := p.maxFlight.Load()
		if n <= m || p.maxFlight.CompareAndSwap(m, n) {
			break
		}
	}
	if p.delay > 0 {
		select {
		case <-time.After(p.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err, ok := p.failFor[u.Email]; ok {
		return nil, err
	}
	id := "ext-" + u.UserID
	return &access.ExternalAccount{ExternalUserID: &id, Username: u.Email, Role: "doctor", SessionToken: p.regToken}, nil
}

func (p *fakeProvider) Login(context.Context, access.Target, string, string) (*access.ExternalSession, error) {
	p.logins.Add(1)
	return &access.ExternalSession{Token: p.loginTok, ExpiresAt: p.loginExp}, nil
}

func (p *fakeProvider) credentials() *entity.GrantCredentials {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastCreds
}
