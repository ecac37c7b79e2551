package service

import (
	"context"
	"fmt"

	"github.com/dk2904/aircraft-factory/internal/core/domain"
	"github.com/dk2904/aircraft-factory/internal/port"
)

type DepartmentService struct {
	store port.Store
}

func NewDepartmentService(store port.Store) *DepartmentService {
	return &DepartmentService{store: store}
}

type DepartmentAccess struct {
	DepartmentID   int64
	DepartmentName string
	IsAccess       bool
}

type DepartmentDirectory struct {
	IsAssemblyTeam bool
	Username       string
	Departments    []DepartmentAccess
}

// Directory returns the department list for the requesting user with
// the reserved assembly department filtered out. Each entry is flagged
// with whether it is the user's own department; assembly-team users
// match none of the filtered entries.
func (s *DepartmentService) Directory(ctx context.Context, user *domain.User) (*DepartmentDirectory, error) {
	if err := Authorize(user, ActionViewDepartments, 0); err != nil {
		return nil, err
	}

	departments, err := s.store.ListDepartments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list departments: %w", err)
	}

	isAssembly := user.IsAssemblyTeam()
	out := make([]DepartmentAccess, 0, len(departments))
	for _, dept := range departments {
		if dept.IsAssemblyTeam() {
			continue
		}
		out = append(out, DepartmentAccess{
			DepartmentID:   dept.ID,
			DepartmentName: dept.Name,
			IsAccess:       !isAssembly && dept.ID == *user.DepartmentID,
		})
	}

	return &DepartmentDirectory{
		IsAssemblyTeam: isAssembly,
		Username:       user.Username,
		Departments:    out,
	}, nil
}
