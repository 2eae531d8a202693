package usecase_test

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/jhoicas/crm-portal-api/internal/domain"
	"github.com/jhoicas/crm-portal-api/internal/domain/entity"
	"github.com/jhoicas/crm-portal-api/internal/domain/repository"
)

type memCompanies struct {
	mu   sync.Mutex
	rows map[string]*entity.Company
}

func newMemCompanies() *memCompanies { return &memCompanies{rows: map[string]*entity.Company{}} }

func (r *memCompanies) Create(_ context.Context, c *entity.Company) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *c
	r.rows[c.ID] = &cp
	return nil
}

func (r *memCompanies) GetByID(_ context.Context, id string) (*entity.Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.rows[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (r *memCompanies) GetByTaxID(_ context.Context, taxID string) (*entity.Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.rows {
		if c.TaxID == taxID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memCompanies) Update(ctx context.Context, c *entity.Company) error { return r.Create(ctx, c) }

func (r *memCompanies) List(_ context.Context, status string, _, _ int) ([]*entity.Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Company
	for _, c := range r.rows {
		if status == "" || c.Status == status {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

type memUsers struct {
	mu   sync.Mutex
	rows map[string]*entity.User
}

func newMemUsers() *memUsers { return &memUsers{rows: map[string]*entity.User{}} }

func (r *memUsers) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *u
	r.rows[u.ID] = &cp
	return nil
}

func (r *memUsers) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.rows[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (r *memUsers) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.rows {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memUsers) Update(ctx context.Context, u *entity.User) error { return r.Create(ctx, u) }

func (r *memUsers) ListByCompany(_ context.Context, companyID string, _, _ int) ([]*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.User
	for _, u := range r.rows {
		if u.CompanyID == companyID {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memUsers) ListActiveByCompany(ctx context.Context, companyID string) ([]*entity.User, error) {
	all, _ := r.ListByCompany(ctx, companyID, 0, 0)
	out := all[:0]
	for _, u := range all {
		if u.Status == entity.UserStatusActive {
			out = append(out, u)
		}
	}
	return out, nil
}

type memProjects struct {
	mu   sync.Mutex
	rows map[string]*entity.Project
}

func newMemProjects() *memProjects { return &memProjects{rows: map[string]*entity.Project{}} }

func (r *memProjects) Create(_ context.Context, p *entity.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.rows[p.ID] = &cp
	return nil
}

func (r *memProjects) GetByID(_ context.Context, id string) (*entity.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.rows[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (r *memProjects) GetBySlug(_ context.Context, slug string) (*entity.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.rows {
		if p.Slug == slug {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memProjects) Update(ctx context.Context, p *entity.Project) error { return r.Create(ctx, p) }

func (r *memProjects) List(context.Context) ([]*entity.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*entity.Project, 0, len(r.rows))
	for _, p := range r.rows {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

type revCipher struct{}

func (revCipher) Encrypt(p string) (string, error) { return "enc:" + p, nil }

func (revCipher) Decrypt(c string) (string, error) { return strings.TrimPrefix(c, "enc:"), nil }

// memTx aplica las empresas creadas dentro de fn solo si fn termina sin error.
type memTx struct {
	companies *memCompanies
	users     repository.UserRepository
}

func (t memTx) RunOnboarding(ctx context.Context, fn func(repository.CompanyRepository, repository.UserRepository) error) error {
	staged := &stagedCompanies{CompanyRepository: t.companies}
	if err := fn(staged, t.users); err != nil {
		return err
	}
	for _, c := range staged.created {
		if err := t.companies.Create(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

type stagedCompanies struct {
	repository.CompanyRepository
	created []*entity.Company
}

func (s *stagedCompanies) Create(_ context.Context, c *entity.Company) error {
	cp := *c
	s.created = append(s.created, &cp)
	return nil
}

// takenEmailUsers simula otro alta que tomó el email entre la validación y el insert.
type takenEmailUsers struct{ *memUsers }

func (takenEmailUsers) Create(context.Context, *entity.User) error {
	return fmt.Errorf("insert user: %w", domain.ErrDuplicate)
}
