package port

import (
	"context"
	"time"

	"github.com/dk2904/aircraft-factory/internal/core/domain"
)

// Store is the repository the core operates against. Read methods that
// look up a single record return (nil, nil) when the record is absent;
// the service layer classifies that into its own not-found error.
type Store interface {
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)

	ListDepartments(ctx context.Context) ([]domain.Department, error)

	GetPlane(ctx context.Context, id int64) (*domain.Plane, error)
	ListPlanes(ctx context.Context) ([]domain.Plane, error)

	GetPart(ctx context.Context, id int64) (*domain.Part, error)
	ListPartsByIDs(ctx context.Context, ids []int64) ([]domain.Part, error)
	FirstPartByDepartment(ctx context.Context, departmentID int64) (*domain.Part, error)

	ListPlaneInventory(ctx context.Context) ([]domain.PlaneStock, error)

	// SumPartInventory pools part_inventory counts for one plane,
	// restricted to parts in partIDs owned by departmentID.
	SumPartInventory(ctx context.Context, planeID int64, partIDs []int64, departmentID int64) (int, error)

	ListAssemblyHistory(ctx context.Context) ([]domain.AssemblyHistory, error)

	// ExecTx runs fn inside one store transaction. Every mutation fn
	// performs commits atomically or not at all; fn returning an error
	// rolls everything back. Rows read through the InventoryTx are
	// locked until the transaction ends, which serializes concurrent
	// operations on the same inventory keys.
	ExecTx(ctx context.Context, fn func(InventoryTx) error) error
}

// InventoryTx is the mutable view of inventory inside one transaction.
type InventoryTx interface {
	// PartInventoryForUpdate returns all rows for (plane, part) in
	// ascending id order, locked for the remainder of the transaction.
	PartInventoryForUpdate(ctx context.Context, planeID, partID int64) ([]domain.PartInventory, error)

	// DecrementPartInventory decrements one row by exactly 1 and fails
	// if the row no longer has stock; it never drives a count negative.
	DecrementPartInventory(ctx context.Context, rowID int64) error
	IncrementPartInventory(ctx context.Context, rowID int64) error
	InsertPartInventory(ctx context.Context, planeID, partID int64, count int) error

	// PlaneInventoryForUpdate returns the plane's single inventory row
	// locked, or nil when no row exists yet.
	PlaneInventoryForUpdate(ctx context.Context, planeID int64) (*domain.PlaneInventory, error)
	InsertPlaneInventory(ctx context.Context, planeID int64, count int) error
	IncrementPlaneInventory(ctx context.Context, rowID int64) error
	DecrementPlaneInventory(ctx context.Context, rowID int64) error

	InsertAssemblyHistory(ctx context.Context, planeID int64, usedParts string, createdAt time.Time) error
}
