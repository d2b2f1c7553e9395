// Package store shares remote reads between views.
package store

import (
	"context"

	"golang.org/x/sync/singleflight"

	"github.com/idilsaglam/taskmgr/internal/model"
	"github.com/idilsaglam/taskmgr/internal/service"
)

// Shared wraps a service so that concurrent ListProjects calls for the same
// credential share one request. Callers still get their own copy of the
// result. Every other call passes straight through.
type Shared struct {
	service.Service
	group singleflight.Group
}

// NewShared wraps svc.
func NewShared(svc service.Service) *Shared {
	return &Shared{Service: svc}
}

// ListProjects joins an in-flight load for token, or starts one.
func (s *Shared) ListProjects(ctx context.Context, token string) ([]model.Project, error) {
	// The shared call runs detached from any single caller so one view
	// going away does not fail the other view's load.
	ch := s.group.DoChan("projects\x00"+token, func() (any, error) {
		return s.Service.ListProjects(context.WithoutCancel(ctx), token)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		shared := res.Val.([]model.Project)
		out := make([]model.Project, len(shared))
		copy(out, shared)
		return out, nil
	}
}
