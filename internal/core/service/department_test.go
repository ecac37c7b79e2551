package service

import (
	"context"
	"errors"
	"testing"

	"github.com/dk2904/aircraft-factory/internal/core/domain"
)

func TestDirectory_Producer(t *testing.T) {
	store, users := newFixture()
	svc := NewDepartmentService(store)

	dir, err := svc.Directory(context.Background(), users["machinist"])
	if err != nil {
		t.Fatalf("expected success, got: %v", err)
	}
	if dir.IsAssemblyTeam {
		t.Error("producer flagged as assembly team")
	}
	if dir.Username != "machinist" {
		t.Errorf("unexpected username %q", dir.Username)
	}
	if len(dir.Departments) != 2 {
		t.Fatalf("expected 2 departments, got %d", len(dir.Departments))
	}
	for _, d := range dir.Departments {
		if d.DepartmentName == domain.AssemblyTeamName {
			t.Error("reserved department leaked into the directory")
		}
		wantAccess := d.DepartmentID == 2
		if d.IsAccess != wantAccess {
			t.Errorf("department %d: IsAccess = %v, want %v", d.DepartmentID, d.IsAccess, wantAccess)
		}
	}
}

func TestDirectory_AssemblyTeam(t *testing.T) {
	store, users := newFixture()
	svc := NewDepartmentService(store)

	dir, err := svc.Directory(context.Background(), users["assembler"])
	if err != nil {
		t.Fatalf("expected success, got: %v", err)
	}
	if !dir.IsAssemblyTeam {
		t.Error("assembly team member not flagged")
	}
	for _, d := range dir.Departments {
		if d.IsAccess {
			t.Errorf("assembly team must match no entry, got access to %d", d.DepartmentID)
		}
	}
}

func TestDirectory_NoDepartment(t *testing.T) {
	store, users := newFixture()
	svc := NewDepartmentService(store)

	_, err := svc.Directory(context.Background(), users["drifter"])
	if !errors.Is(err, ErrForbidden) {
		t.Errorf("expected ErrForbidden, got: %v", err)
	}
}
