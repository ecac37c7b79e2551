package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dk2904/aircraft-factory/internal/core/domain"
	"github.com/dk2904/aircraft-factory/internal/port"
)

// ErrRowConflict is returned when a guarded decrement matched no row.
// Under FOR UPDATE locking this means the caller's snapshot was wrong.
var ErrRowConflict = errors.New("row conflict")

type MySQLStore struct {
	db *sql.DB
}

func NewMySQLStore(db *sql.DB) *MySQLStore {
	return &MySQLStore{db: db}
}

func (m *MySQLStore) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	var u domain.User
	var deptID sql.NullInt64
	var deptName sql.NullString
	err := m.db.QueryRowContext(ctx, `
		SELECT u.id, u.username, u.password_hash, u.department_id, d.name
		FROM users u
		LEFT JOIN departments d ON d.id = u.department_id
		WHERE u.username = ?`, username,
	).Scan(&u.ID, &u.Username, &u.PasswordHash, &deptID, &deptName)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	if deptID.Valid {
		u.DepartmentID = &deptID.Int64
		u.DepartmentName = deptName.String
	}
	return &u, nil
}

func (m *MySQLStore) ListDepartments(ctx context.Context) ([]domain.Department, error) {
	rows, err := m.db.QueryContext(ctx, `SELECT id, name FROM departments ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query departments: %w", err)
	}
	defer rows.Close()

	var out []domain.Department
	for rows.Next() {
		var d domain.Department
		if err := rows.Scan(&d.ID, &d.Name); err != nil {
			return nil, fmt.Errorf("scan department: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (m *MySQLStore) GetPlane(ctx context.Context, id int64) (*domain.Plane, error) {
	var p domain.Plane
	err := m.db.QueryRowContext(ctx, `
		SELECT id, name, required_parts FROM planes WHERE id = ?`, id,
	).Scan(&p.ID, &p.Name, &p.RequiredParts)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query plane: %w", err)
	}
	return &p, nil
}

func (m *MySQLStore) ListPlanes(ctx context.Context) ([]domain.Plane, error) {
	rows, err := m.db.QueryContext(ctx, `SELECT id, name, required_parts FROM planes ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query planes: %w", err)
	}
	defer rows.Close()

	var out []domain.Plane
	for rows.Next() {
		var p domain.Plane
		if err := rows.Scan(&p.ID, &p.Name, &p.RequiredParts); err != nil {
			return nil, fmt.Errorf("scan plane: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (m *MySQLStore) GetPart(ctx context.Context, id int64) (*domain.Part, error) {
	var p domain.Part
	err := m.db.QueryRowContext(ctx, `
		SELECT id, name, department_id FROM parts WHERE id = ?`, id,
	).Scan(&p.ID, &p.Name, &p.DepartmentID)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query part: %w", err)
	}
	return &p, nil
}

func (m *MySQLStore) ListPartsByIDs(ctx context.Context, ids []int64) ([]domain.Part, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `SELECT id, name, department_id FROM parts WHERE id IN (` + placeholders(len(ids)) + `)`
	rows, err := m.db.QueryContext(ctx, query, int64Args(ids)...)
	if err != nil {
		return nil, fmt.Errorf("query parts: %w", err)
	}
	defer rows.Close()

	var out []domain.Part
	for rows.Next() {
		var p domain.Part
		if err := rows.Scan(&p.ID, &p.Name, &p.DepartmentID); err != nil {
			return nil, fmt.Errorf("scan part: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (m *MySQLStore) FirstPartByDepartment(ctx context.Context, departmentID int64) (*domain.Part, error) {
	var p domain.Part
	err := m.db.QueryRowContext(ctx, `
		SELECT id, name, department_id FROM parts
		WHERE department_id = ? ORDER BY id LIMIT 1`, departmentID,
	).Scan(&p.ID, &p.Name, &p.DepartmentID)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query first part: %w", err)
	}
	return &p, nil
}

func (m *MySQLStore) ListPlaneInventory(ctx context.Context) ([]domain.PlaneStock, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT pi.plane_id, p.name, pi.count
		FROM plane_inventory pi
		JOIN planes p ON p.id = pi.plane_id
		ORDER BY pi.id`)
	if err != nil {
		return nil, fmt.Errorf("query plane inventory: %w", err)
	}
	defer rows.Close()

	var out []domain.PlaneStock
	for rows.Next() {
		var s domain.PlaneStock
		if err := rows.Scan(&s.PlaneID, &s.PlaneName, &s.Count); err != nil {
			return nil, fmt.Errorf("scan plane inventory: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (m *MySQLStore) SumPartInventory(ctx context.Context, planeID int64, partIDs []int64, departmentID int64) (int, error) {
	if len(partIDs) == 0 {
		return 0, nil
	}

	query := `
		SELECT COALESCE(SUM(pi.count), 0)
		FROM part_inventory pi
		JOIN parts p ON p.id = pi.part_id
		WHERE pi.plane_id = ? AND p.department_id = ? AND pi.part_id IN (` + placeholders(len(partIDs)) + `)`
	args := append([]interface{}{planeID, departmentID}, int64Args(partIDs)...)

	var total int
	if err := m.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("sum part inventory: %w", err)
	}
	return total, nil
}

func (m *MySQLStore) ListAssemblyHistory(ctx context.Context) ([]domain.AssemblyHistory, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT h.id, h.plane_id, p.name, h.used_parts, h.created_at
		FROM assembly_history h
		JOIN planes p ON p.id = h.plane_id
		ORDER BY h.id`)
	if err != nil {
		return nil, fmt.Errorf("query assembly history: %w", err)
	}
	defer rows.Close()

	var out []domain.AssemblyHistory
	for rows.Next() {
		var h domain.AssemblyHistory
		if err := rows.Scan(&h.ID, &h.PlaneID, &h.PlaneName, &h.UsedParts, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan assembly history: %w", err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (m *MySQLStore) ExecTx(ctx context.Context, fn func(port.InventoryTx) error) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&mysqlTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

type mysqlTx struct {
	tx *sql.Tx
}

func (t *mysqlTx) PartInventoryForUpdate(ctx context.Context, planeID, partID int64) ([]domain.PartInventory, error) {
	rows, err := t.tx.QueryContext(ctx, `
		SELECT id, plane_id, part_id, count
		FROM part_inventory
		WHERE plane_id = ? AND part_id = ?
		ORDER BY id
		FOR UPDATE`, planeID, partID)
	if err != nil {
		return nil, fmt.Errorf("lock part inventory: %w", err)
	}
	defer rows.Close()

	var out []domain.PartInventory
	for rows.Next() {
		var r domain.PartInventory
		if err := rows.Scan(&r.ID, &r.PlaneID, &r.PartID, &r.Count); err != nil {
			return nil, fmt.Errorf("scan part inventory: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (t *mysqlTx) DecrementPartInventory(ctx context.Context, rowID int64) error {
	result, err := t.tx.ExecContext(ctx, `
		UPDATE part_inventory SET count = count - 1 WHERE id = ? AND count > 0`, rowID)
	if err != nil {
		return fmt.Errorf("decrement part inventory: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrRowConflict
	}
	return nil
}

func (t *mysqlTx) IncrementPartInventory(ctx context.Context, rowID int64) error {
	_, err := t.tx.ExecContext(ctx, `
		UPDATE part_inventory SET count = count + 1 WHERE id = ?`, rowID)
	if err != nil {
		return fmt.Errorf("increment part inventory: %w", err)
	}
	return nil
}

func (t *mysqlTx) InsertPartInventory(ctx context.Context, planeID, partID int64, count int) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO part_inventory (plane_id, part_id, count) VALUES (?, ?, ?)`,
		planeID, partID, count)
	if err != nil {
		return fmt.Errorf("insert part inventory: %w", err)
	}
	return nil
}

func (t *mysqlTx) PlaneInventoryForUpdate(ctx context.Context, planeID int64) (*domain.PlaneInventory, error) {
	var r domain.PlaneInventory
	err := t.tx.QueryRowContext(ctx, `
		SELECT id, plane_id, count FROM plane_inventory
		WHERE plane_id = ?
		FOR UPDATE`, planeID,
	).Scan(&r.ID, &r.PlaneID, &r.Count)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lock plane inventory: %w", err)
	}
	return &r, nil
}

func (t *mysqlTx) InsertPlaneInventory(ctx context.Context, planeID int64, count int) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO plane_inventory (plane_id, count) VALUES (?, ?)`, planeID, count)
	if err != nil {
		return fmt.Errorf("insert plane inventory: %w", err)
	}
	return nil
}

func (t *mysqlTx) IncrementPlaneInventory(ctx context.Context, rowID int64) error {
	_, err := t.tx.ExecContext(ctx, `
		UPDATE plane_inventory SET count = count + 1 WHERE id = ?`, rowID)
	if err != nil {
		return fmt.Errorf("increment plane inventory: %w", err)
	}
	return nil
}

func (t *mysqlTx) DecrementPlaneInventory(ctx context.Context, rowID int64) error {
	result, err := t.tx.ExecContext(ctx, `
		UPDATE plane_inventory SET count = count - 1 WHERE id = ? AND count > 0`, rowID)
	if err != nil {
		return fmt.Errorf("decrement plane inventory: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrRowConflict
	}
	return nil
}

func (t *mysqlTx) InsertAssemblyHistory(ctx context.Context, planeID int64, usedParts string, createdAt time.Time) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO assembly_history (plane_id, used_parts, created_at) VALUES (?, ?, ?)`,
		planeID, usedParts, createdAt)
	if err != nil {
		return fmt.Errorf("insert assembly history: %w", err)
	}
	return nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func int64Args(ids []int64) []interface{} {
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}
