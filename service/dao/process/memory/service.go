// Package memory implements an in-memory process store: the default backend
// for tests and single-node deployments that accept losing state on restart.
package memory

import (
	"context"

	"github.com/talentops/onboard/model"
	"github.com/talentops/onboard/service/dao"
	"github.com/talentops/onboard/service/dao/store"
)

// Service wraps the generic memory store with process-specific validation
// and status filtering.
type Service struct {
	store *store.MemoryStore[string, model.Process]
}

var _ dao.Service[string, model.Process] = (*Service)(nil)

// New creates an empty in-memory process store.
func New() *Service {
	return &Service{
		store: store.NewMemoryStore[string, model.Process](func(p *model.Process) string {
			return p.ID
		}),
	}
}

func (s *Service) Save(ctx context.Context, p *model.Process) error {
	if p == nil {
		return dao.ErrNilEntity
	}
	if p.ID == "" {
		return dao.ErrInvalidID
	}
	return s.store.Save(ctx, p)
}

func (s *Service) Load(ctx context.Context, id string) (*model.Process, error) {
	if id == "" {
		return nil, dao.ErrInvalidID
	}
	return s.store.Load(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return dao.ErrInvalidID
	}
	if _, err := s.store.Load(ctx, id); err != nil {
		return err
	}
	return s.store.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, parameters ...*dao.Parameter) ([]*model.Process, error) {
	all, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*model.Process, 0, len(all))
	for _, p := range all {
		if !dao.FilterByStatus(string(p.GetStatus()), parameters) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}
