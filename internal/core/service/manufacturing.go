package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dk2904/aircraft-factory/internal/core/domain"
	"github.com/dk2904/aircraft-factory/internal/port"
)

const planeCacheTTL = time.Hour

// ManufacturingService is the inventory transaction engine. All stock
// mutations go through Store.ExecTx so that the read-check-mutate
// sequence for a plane commits atomically; catalog reads are served
// from the cache when possible.
type ManufacturingService struct {
	store port.Store
	cache port.Cache
}

func NewManufacturingService(store port.Store, cache port.Cache) *ManufacturingService {
	return &ManufacturingService{store: store, cache: cache}
}

type ManufacturePlaneResult struct {
	PlaneID      int64
	PlaneName    string
	NewInventory int
	UsedParts    []int64
}

type RecyclePlaneResult struct {
	PlaneID      int64
	PlaneName    string
	NewInventory int
}

type PartInventoryResult struct {
	PlaneID      int64
	PartID       int64
	PlaneName    string
	PartName     string
	NewInventory int
}

type PartSummaryRow struct {
	PlaneID   int64
	PlaneName string
	PartCount int
}

type PartSummary struct {
	DepartmentName string
	PartID         *int64
	Rows           []PartSummaryRow
}

type HistoryEntry struct {
	PlaneName string
	UsedParts string
	Date      time.Time
}

// ManufacturePlane consumes one unit of every part occurrence in the
// plane's requirement list, increments the plane's inventory and
// appends a history entry, all in one transaction. A part id repeated
// N times in the requirement list needs pooled stock of at least N;
// if any part falls short the call fails naming every short part and
// mutates nothing.
func (s *ManufacturingService) ManufacturePlane(ctx context.Context, user *domain.User, planeID int64) (*ManufacturePlaneResult, error) {
	if planeID <= 0 {
		return nil, newError(ErrValidation, "plane_id is required.")
	}
	if err := Authorize(user, ActionManufacturePlane, 0); err != nil {
		return nil, err
	}

	plane, err := s.resolvePlane(ctx, planeID)
	if err != nil {
		return nil, err
	}
	if plane == nil {
		return nil, newError(ErrNotFound, "Plane not found.")
	}

	required, err := domain.DecodePartIDs(plane.RequiredParts)
	if err != nil {
		return nil, newError(ErrInvalidState, "Failed to parse required parts.")
	}

	// Multiplicity per distinct part id, in first-appearance order.
	needed := make(map[int64]int, len(required))
	distinct := make([]int64, 0, len(required))
	for _, id := range required {
		if needed[id] == 0 {
			distinct = append(distinct, id)
		}
		needed[id]++
	}

	var result *ManufacturePlaneResult
	err = s.store.ExecTx(ctx, func(tx port.InventoryTx) error {
		rowsByPart := make(map[int64][]domain.PartInventory, len(distinct))
		var insufficient []int64
		for _, partID := range distinct {
			rows, err := tx.PartInventoryForUpdate(ctx, planeID, partID)
			if err != nil {
				return fmt.Errorf("lock part inventory: %w", err)
			}
			pooled := 0
			for _, row := range rows {
				pooled += row.Count
			}
			if pooled < needed[partID] {
				insufficient = append(insufficient, partID)
				continue
			}
			rowsByPart[partID] = rows
		}
		if len(insufficient) > 0 {
			names, err := s.partNames(ctx, insufficient)
			if err != nil {
				return err
			}
			return &InsufficientPartsError{PlaneName: plane.Name, PartNames: names}
		}

		// One row decremented per consumed unit: first row with stock,
		// in ascending row-id order.
		used := make([]int64, 0, len(required))
		for _, partID := range required {
			rows := rowsByPart[partID]
			for i := range rows {
				if rows[i].Count > 0 {
					if err := tx.DecrementPartInventory(ctx, rows[i].ID); err != nil {
						return fmt.Errorf("decrement part inventory: %w", err)
					}
					rows[i].Count--
					used = append(used, partID)
					break
				}
			}
		}

		inv, err := tx.PlaneInventoryForUpdate(ctx, planeID)
		if err != nil {
			return fmt.Errorf("lock plane inventory: %w", err)
		}
		newCount := 1
		if inv == nil {
			if err := tx.InsertPlaneInventory(ctx, planeID, 1); err != nil {
				return fmt.Errorf("insert plane inventory: %w", err)
			}
		} else {
			if err := tx.IncrementPlaneInventory(ctx, inv.ID); err != nil {
				return fmt.Errorf("increment plane inventory: %w", err)
			}
			newCount = inv.Count + 1
		}

		if err := tx.InsertAssemblyHistory(ctx, planeID, domain.EncodePartIDs(used), time.Now().UTC()); err != nil {
			return fmt.Errorf("insert assembly history: %w", err)
		}

		result = &ManufacturePlaneResult{
			PlaneID:      planeID,
			PlaneName:    plane.Name,
			NewInventory: newCount,
			UsedParts:    used,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RecyclePlane removes one assembled plane from inventory. No history
// record is written; only manufacture is audited.
func (s *ManufacturingService) RecyclePlane(ctx context.Context, user *domain.User, planeID int64) (*RecyclePlaneResult, error) {
	if planeID <= 0 {
		return nil, newError(ErrValidation, "plane_id is required.")
	}
	if err := Authorize(user, ActionRecyclePlane, 0); err != nil {
		return nil, err
	}

	plane, err := s.resolvePlane(ctx, planeID)
	if err != nil {
		return nil, err
	}
	if plane == nil {
		return nil, newError(ErrNotFound, "Plane with ID %d does not exist.", planeID)
	}

	var result *RecyclePlaneResult
	err = s.store.ExecTx(ctx, func(tx port.InventoryTx) error {
		inv, err := tx.PlaneInventoryForUpdate(ctx, planeID)
		if err != nil {
			return fmt.Errorf("lock plane inventory: %w", err)
		}
		if inv == nil {
			return newError(ErrNotFound, "%s not found in inventory.", plane.Name)
		}
		if inv.Count <= 0 {
			return newError(ErrInsufficientStock, "No %s to recycle.", plane.Name)
		}
		if err := tx.DecrementPlaneInventory(ctx, inv.ID); err != nil {
			return fmt.Errorf("decrement plane inventory: %w", err)
		}
		result = &RecyclePlaneResult{
			PlaneID:      planeID,
			PlaneName:    plane.Name,
			NewInventory: inv.Count - 1,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ManufacturePart stages one unit of a part for a plane. The row for
// (plane, part) is created on first manufacture; when duplicate rows
// exist the lowest-id row takes the increment.
func (s *ManufacturingService) ManufacturePart(ctx context.Context, user *domain.User, planeID, partID int64) (*PartInventoryResult, error) {
	if planeID <= 0 {
		return nil, newError(ErrValidation, "plane_id is required.")
	}
	if partID <= 0 {
		return nil, newError(ErrValidation, "part_id is required.")
	}

	part, err := s.store.GetPart(ctx, partID)
	if err != nil {
		return nil, fmt.Errorf("get part: %w", err)
	}
	if part == nil {
		return nil, newError(ErrNotFound, "Part not found.")
	}
	plane, err := s.resolvePlane(ctx, planeID)
	if err != nil {
		return nil, err
	}
	if plane == nil {
		return nil, newError(ErrNotFound, "Plane not found.")
	}
	if err := Authorize(user, ActionManufacturePart, part.DepartmentID); err != nil {
		return nil, err
	}

	var result *PartInventoryResult
	err = s.store.ExecTx(ctx, func(tx port.InventoryTx) error {
		rows, err := tx.PartInventoryForUpdate(ctx, planeID, partID)
		if err != nil {
			return fmt.Errorf("lock part inventory: %w", err)
		}
		newCount := 1
		if len(rows) == 0 {
			if err := tx.InsertPartInventory(ctx, planeID, partID, 1); err != nil {
				return fmt.Errorf("insert part inventory: %w", err)
			}
		} else {
			if err := tx.IncrementPartInventory(ctx, rows[0].ID); err != nil {
				return fmt.Errorf("increment part inventory: %w", err)
			}
			newCount = rows[0].Count + 1
		}
		result = &PartInventoryResult{
			PlaneID:      planeID,
			PartID:       partID,
			PlaneName:    plane.Name,
			PartName:     part.Name,
			NewInventory: newCount,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RecyclePart removes one staged unit of a part. The inventory row is
// resolved before the permission check, matching the operation's
// contract: a missing row reports not-found even to outsiders.
func (s *ManufacturingService) RecyclePart(ctx context.Context, user *domain.User, planeID, partID int64) (*PartInventoryResult, error) {
	if planeID <= 0 {
		return nil, newError(ErrValidation, "plane_id is required.")
	}
	if partID <= 0 {
		return nil, newError(ErrValidation, "part_id is required.")
	}

	part, err := s.store.GetPart(ctx, partID)
	if err != nil {
		return nil, fmt.Errorf("get part: %w", err)
	}
	plane, err := s.resolvePlane(ctx, planeID)
	if err != nil {
		return nil, err
	}
	if part == nil || plane == nil {
		return nil, newError(ErrNotFound, "Part not found in inventory for the specified plane.")
	}

	var result *PartInventoryResult
	err = s.store.ExecTx(ctx, func(tx port.InventoryTx) error {
		rows, err := tx.PartInventoryForUpdate(ctx, planeID, partID)
		if err != nil {
			return fmt.Errorf("lock part inventory: %w", err)
		}
		if len(rows) == 0 {
			return newError(ErrNotFound, "Part not found in inventory for the specified plane.")
		}
		if err := Authorize(user, ActionRecyclePart, part.DepartmentID); err != nil {
			return err
		}
		row := rows[0]
		if row.Count <= 0 {
			return newError(ErrInsufficientStock, "There is no part you can recycle.")
		}
		if err := tx.DecrementPartInventory(ctx, row.ID); err != nil {
			return fmt.Errorf("decrement part inventory: %w", err)
		}
		result = &PartInventoryResult{
			PlaneID:      planeID,
			PartID:       partID,
			PlaneName:    plane.Name,
			PartName:     part.Name,
			NewInventory: row.Count - 1,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ListPlaneInventory returns every assembled-plane counter. Assembly
// team only.
func (s *ManufacturingService) ListPlaneInventory(ctx context.Context, user *domain.User) ([]domain.PlaneStock, error) {
	if err := Authorize(user, ActionViewPlaneInventory, 0); err != nil {
		return nil, err
	}
	stocks, err := s.store.ListPlaneInventory(ctx)
	if err != nil {
		return nil, fmt.Errorf("list plane inventory: %w", err)
	}
	return stocks, nil
}

// PartSummary reports, per plane, the pooled stock of parts owned by
// the user's department that appear in the plane's requirement list.
// Planes with no such stock are omitted; planes whose requirement list
// does not decode are skipped.
func (s *ManufacturingService) PartSummary(ctx context.Context, user *domain.User) (*PartSummary, error) {
	if err := Authorize(user, ActionViewPartSummary, 0); err != nil {
		return nil, err
	}

	first, err := s.store.FirstPartByDepartment(ctx, *user.DepartmentID)
	if err != nil {
		return nil, fmt.Errorf("first part by department: %w", err)
	}
	var partID *int64
	if first != nil {
		partID = &first.ID
	}

	planes, err := s.store.ListPlanes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list planes: %w", err)
	}

	rows := make([]PartSummaryRow, 0, len(planes))
	for _, plane := range planes {
		ids, err := domain.DecodePartIDs(plane.RequiredParts)
		if err != nil || len(ids) == 0 {
			continue
		}
		total, err := s.store.SumPartInventory(ctx, plane.ID, ids, *user.DepartmentID)
		if err != nil {
			return nil, fmt.Errorf("sum part inventory: %w", err)
		}
		if total > 0 {
			rows = append(rows, PartSummaryRow{PlaneID: plane.ID, PlaneName: plane.Name, PartCount: total})
		}
	}

	return &PartSummary{DepartmentName: user.DepartmentName, PartID: partID, Rows: rows}, nil
}

// AssemblyHistory lists every assembly event with the consumed part
// names resolved best-effort: an unparsable stored list yields an
// empty name list instead of failing the listing.
func (s *ManufacturingService) AssemblyHistory(ctx context.Context, user *domain.User) ([]HistoryEntry, error) {
	if err := Authorize(user, ActionViewAssemblyHistory, 0); err != nil {
		return nil, err
	}

	entries, err := s.store.ListAssemblyHistory(ctx)
	if err != nil {
		return nil, fmt.Errorf("list assembly history: %w", err)
	}

	out := make([]HistoryEntry, 0, len(entries))
	for _, h := range entries {
		names, err := s.resolveUsedPartNames(ctx, h.UsedParts)
		if err != nil {
			return nil, err
		}
		out = append(out, HistoryEntry{
			PlaneName: h.PlaneName,
			UsedParts: strings.Join(names, ", "),
			Date:      h.CreatedAt,
		})
	}
	return out, nil
}

func (s *ManufacturingService) resolvePlane(ctx context.Context, id int64) (*domain.Plane, error) {
	if s.cache != nil {
		if plane, ok, err := s.cache.GetPlane(ctx, id); err == nil && ok {
			return plane, nil
		}
	}
	plane, err := s.store.GetPlane(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get plane: %w", err)
	}
	if plane != nil && s.cache != nil {
		// Best effort; a failed cache write only costs the next read.
		s.cache.SetPlane(ctx, plane, planeCacheTTL)
	}
	return plane, nil
}

func (s *ManufacturingService) partNames(ctx context.Context, ids []int64) ([]string, error) {
	parts, err := s.store.ListPartsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list parts: %w", err)
	}
	byID := make(map[int64]string, len(parts))
	for _, p := range parts {
		byID[p.ID] = p.Name
	}
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if name, ok := byID[id]; ok {
			names = append(names, name)
		} else {
			names = append(names, fmt.Sprintf("part %d", id))
		}
	}
	return names, nil
}

func (s *ManufacturingService) resolveUsedPartNames(ctx context.Context, encoded string) ([]string, error) {
	ids, err := domain.DecodePartIDs(encoded)
	if err != nil || len(ids) == 0 {
		return nil, nil
	}
	parts, err := s.store.ListPartsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list parts: %w", err)
	}
	byID := make(map[int64]string, len(parts))
	for _, p := range parts {
		byID[p.ID] = p.Name
	}
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if name, ok := byID[id]; ok {
			names = append(names, name)
		}
	}
	return names, nil
}
