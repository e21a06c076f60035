/*
Package sqlite provides the SQLite-backed implementation of the leave
storage ports.

PURPOSE:
  Implements leave.Store (requests, approvals, people, medical leaves,
  balances) on database/sql. The same patterns apply to PostgreSQL; only
  minor SQL dialect differences.

APPEND-ONLY APPROVALS:
  The approvals table has no UPDATE or DELETE statements anywhere in this
  package. One row per decision, forever.

OPTIMISTIC CONCURRENCY:
  Requests carry a version column. Transition updates with
  `WHERE id = ? AND version = ?`; zero rows affected means another writer
  got there first and the caller receives StaleStateError. The status
  update and the approval insert share one database transaction, so a
  failure of either persists neither.

WAL MODE:
  Opened with WAL for better concurrency: readers don't block, single
  writer at a time, better crash recovery.

USAGE:
  store, err := sqlite.New("./data/leave.db")   // ":memory:" for tests
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a versioned
  migration tool instead.

SEE ALSO:
  - leave/store.go: port definitions and the Transition contract
  - leave/store/memory.go: in-memory implementation for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/leave-engine/leave"
)

// Store implements leave.Store using SQLite.
type Store struct {
	db *sql.DB
}

var _ leave.Store = (*Store)(nil)

// New creates a SQLite store at dbPath (":memory:" for in-memory).
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS people (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT,
		contract_start TEXT,
		birth_date TEXT,
		contract_model TEXT NOT NULL,
		role TEXT NOT NULL,
		manager_id TEXT,
		active INTEGER NOT NULL DEFAULT 1
	);

	CREATE INDEX IF NOT EXISTS idx_people_manager ON people(manager_id);

	CREATE TABLE IF NOT EXISTS requests (
		id TEXT PRIMARY KEY,
		requester_id TEXT NOT NULL,
		leave_type TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		status TEXT NOT NULL,
		version INTEGER NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_requests_requester ON requests(requester_id, created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_requests_status ON requests(status);
	CREATE INDEX IF NOT EXISTS idx_requests_range ON requests(requester_id, start_date, end_date);

	-- Append-only decision audit trail. No updates, no deletes.
	CREATE TABLE IF NOT EXISTS approvals (
		id TEXT PRIMARY KEY,
		request_id TEXT NOT NULL,
		approver_id TEXT NOT NULL,
		level TEXT NOT NULL,
		action TEXT NOT NULL,
		comment TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_approvals_request ON approvals(request_id, created_at);

	CREATE TABLE IF NOT EXISTS medical_leaves (
		id TEXT PRIMARY KEY,
		person_id TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		status TEXT NOT NULL,
		affects_team_capacity INTEGER NOT NULL,
		justification TEXT,
		created_by TEXT NOT NULL,
		created_at TEXT NOT NULL,
		ended_at TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_medical_person ON medical_leaves(person_id);
	CREATE INDEX IF NOT EXISTS idx_medical_status ON medical_leaves(status);

	CREATE TABLE IF NOT EXISTS balances (
		person_id TEXT NOT NULL,
		year INTEGER NOT NULL,
		accrued_days TEXT NOT NULL,
		used_days TEXT NOT NULL,
		balance_days TEXT NOT NULL,
		is_manual INTEGER NOT NULL DEFAULT 0,
		manual_justification TEXT,
		contract_anniversary TEXT,
		accumulation_warning INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (person_id, year)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// HELPERS
// =============================================================================

func encodeDate(d leave.LocalDate) string { return d.String() }

func decodeDate(s string) (leave.LocalDate, error) { return leave.ParseLocalDate(s) }

func encodeDatePtr(d *leave.LocalDate) any {
	if d == nil {
		return nil
	}
	return d.String()
}

func decodeDatePtr(ns sql.NullString) (*leave.LocalDate, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	d, err := decodeDate(ns.String)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func encodeTime(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }

func decodeTime(s string) (time.Time, error) { return time.Parse(time.RFC3339Nano, s) }

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

type rowScanner interface {
	Scan(dest ...any) error
}

// =============================================================================
// REQUESTS
// =============================================================================

func (s *Store) CreateRequest(ctx context.Context, req *leave.LeaveRequest) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO requests (id, requester_id, leave_type, start_date, end_date, status, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		req.ID, req.RequesterID, string(req.Type),
		encodeDate(req.StartDate), encodeDate(req.EndDate),
		string(req.Status), req.Version,
		encodeTime(req.CreatedAt), encodeTime(req.UpdatedAt),
	)
	return err
}

func (s *Store) GetRequest(ctx context.Context, id string) (*leave.LeaveRequest, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, requester_id, leave_type, start_date, end_date, status, version, created_at, updated_at
		FROM requests WHERE id = ?`, id)
	req, err := scanRequest(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, leave.ErrRequestNotFound
	}
	return req, err
}

func (s *Store) ListRequestsByPerson(ctx context.Context, personID string) ([]leave.LeaveRequest, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, requester_id, leave_type, start_date, end_date, status, version, created_at, updated_at
		FROM requests WHERE requester_id = ? ORDER BY created_at DESC`, personID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRequests(rows)
}

func (s *Store) ListRequestsByStatus(ctx context.Context, statuses ...leave.RequestStatus) ([]leave.LeaveRequest, error) {
	if len(statuses) == 0 {
		return nil, nil
	}
	query := `
		SELECT id, requester_id, leave_type, start_date, end_date, status, version, created_at, updated_at
		FROM requests WHERE status IN (?` + placeholders(len(statuses)-1) + `) ORDER BY created_at`
	args := make([]any, len(statuses))
	for i, st := range statuses {
		args[i] = string(st)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRequests(rows)
}

func placeholders(n int) string {
	out := ""
	for i := 0; i < n; i++ {
		out += ",?"
	}
	return out
}

// Transition performs the version-guarded status update and the approval
// insert in one database transaction.
func (s *Store) Transition(ctx context.Context, req *leave.LeaveRequest, expectedVersion int64, approval *leave.Approval) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE requests SET status = ?, version = ?, updated_at = ?
		WHERE id = ? AND version = ?`,
		string(req.Status), req.Version, encodeTime(req.UpdatedAt),
		req.ID, expectedVersion,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		// Distinguish a missing request from a lost race.
		var exists int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM requests WHERE id = ?`, req.ID).Scan(&exists); err != nil {
			return err
		}
		if exists == 0 {
			return leave.ErrRequestNotFound
		}
		return &leave.StaleStateError{RequestID: req.ID, ExpectedVersion: expectedVersion}
	}

	if approval != nil {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO approvals (id, request_id, approver_id, level, action, comment, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			approval.ID, approval.RequestID, approval.ApproverID,
			string(approval.Level), string(approval.Action),
			approval.Comment, encodeTime(approval.CreatedAt),
		)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *Store) ListApprovals(ctx context.Context, requestID string) ([]leave.Approval, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, request_id, approver_id, level, action, comment, created_at
		FROM approvals WHERE request_id = ? ORDER BY created_at`, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []leave.Approval
	for rows.Next() {
		var a leave.Approval
		var level, action, createdAt string
		var comment sql.NullString
		if err := rows.Scan(&a.ID, &a.RequestID, &a.ApproverID, &level, &action, &comment, &createdAt); err != nil {
			return nil, err
		}
		a.Level = leave.ApprovalLevel(level)
		a.Action = leave.ApprovalAction(action)
		a.Comment = comment.String
		if a.CreatedAt, err = decodeTime(createdAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanRequest(row rowScanner) (*leave.LeaveRequest, error) {
	var r leave.LeaveRequest
	var leaveType, start, end, status, createdAt, updatedAt string
	if err := row.Scan(&r.ID, &r.RequesterID, &leaveType, &start, &end, &status, &r.Version, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	r.Type = leave.LeaveType(leaveType)
	r.Status = leave.RequestStatus(status)

	var err error
	if r.StartDate, err = decodeDate(start); err != nil {
		return nil, err
	}
	if r.EndDate, err = decodeDate(end); err != nil {
		return nil, err
	}
	if r.CreatedAt, err = decodeTime(createdAt); err != nil {
		return nil, err
	}
	if r.UpdatedAt, err = decodeTime(updatedAt); err != nil {
		return nil, err
	}
	return &r, nil
}

func scanRequests(rows *sql.Rows) ([]leave.LeaveRequest, error) {
	var out []leave.LeaveRequest
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

// =============================================================================
// PEOPLE
// =============================================================================

func (s *Store) SavePerson(ctx context.Context, p *leave.Person) error {
	var managerID any
	if p.ManagerID != nil {
		managerID = *p.ManagerID
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO people (id, name, email, contract_start, birth_date, contract_model, role, manager_id, active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			contract_start = excluded.contract_start,
			birth_date = excluded.birth_date,
			contract_model = excluded.contract_model,
			role = excluded.role,
			manager_id = excluded.manager_id,
			active = excluded.active`,
		p.ID, p.Name, p.Email,
		encodeDatePtr(p.ContractStart), encodeDatePtr(p.BirthDate),
		string(p.ContractModel), string(p.Role), managerID, boolToInt(p.Active),
	)
	return err
}

func (s *Store) GetPerson(ctx context.Context, id string) (*leave.Person, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, email, contract_start, birth_date, contract_model, role, manager_id, active
		FROM people WHERE id = ?`, id)
	p, err := scanPerson(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, leave.ErrPersonNotFound
	}
	return p, err
}

func (s *Store) ListPeople(ctx context.Context) ([]leave.Person, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, email, contract_start, birth_date, contract_model, role, manager_id, active
		FROM people ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPeople(rows)
}

func (s *Store) ListTeam(ctx context.Context, managerID string) ([]leave.Person, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, email, contract_start, birth_date, contract_model, role, manager_id, active
		FROM people WHERE manager_id = ? AND active = 1 ORDER BY id`, managerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPeople(rows)
}

func scanPerson(row rowScanner) (*leave.Person, error) {
	var p leave.Person
	var email, contractStart, birthDate, managerID sql.NullString
	var model, role string
	var active int
	if err := row.Scan(&p.ID, &p.Name, &email, &contractStart, &birthDate, &model, &role, &managerID, &active); err != nil {
		return nil, err
	}
	p.Email = email.String
	p.ContractModel = leave.ContractModel(model)
	p.Role = leave.Role(role)
	p.Active = active != 0
	if managerID.Valid {
		v := managerID.String
		p.ManagerID = &v
	}

	var err error
	if p.ContractStart, err = decodeDatePtr(contractStart); err != nil {
		return nil, err
	}
	if p.BirthDate, err = decodeDatePtr(birthDate); err != nil {
		return nil, err
	}
	return &p, nil
}

func scanPeople(rows *sql.Rows) ([]leave.Person, error) {
	var out []leave.Person
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// =============================================================================
// MEDICAL LEAVES
// =============================================================================

func (s *Store) CreateMedicalLeave(ctx context.Context, m *leave.MedicalLeave) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO medical_leaves (id, person_id, start_date, end_date, status, affects_team_capacity, justification, created_by, created_at, ended_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, NULL)`,
		m.ID, m.PersonID, encodeDate(m.StartDate), encodeDate(m.EndDate),
		string(m.Status), boolToInt(m.AffectsTeamCapacity),
		m.Justification, m.CreatedBy, encodeTime(m.CreatedAt),
	)
	return err
}

func (s *Store) GetMedicalLeave(ctx context.Context, id string) (*leave.MedicalLeave, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, person_id, start_date, end_date, status, affects_team_capacity, justification, created_by, created_at, ended_at
		FROM medical_leaves WHERE id = ?`, id)
	m, err := scanMedicalLeave(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, leave.ErrMedicalLeaveNotFound
	}
	return m, err
}

func (s *Store) EndMedicalLeave(ctx context.Context, id string, endedAt time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE medical_leaves SET status = ?, ended_at = ? WHERE id = ?`,
		string(leave.MedicalEnded), encodeTime(endedAt), id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return leave.ErrMedicalLeaveNotFound
	}
	return nil
}

func (s *Store) ListMedicalLeavesByPerson(ctx context.Context, personID string) ([]leave.MedicalLeave, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, person_id, start_date, end_date, status, affects_team_capacity, justification, created_by, created_at, ended_at
		FROM medical_leaves WHERE person_id = ? ORDER BY created_at`, personID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMedicalLeaves(rows)
}

func (s *Store) ListActiveMedicalLeaves(ctx context.Context) ([]leave.MedicalLeave, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, person_id, start_date, end_date, status, affects_team_capacity, justification, created_by, created_at, ended_at
		FROM medical_leaves WHERE status = ? ORDER BY created_at`, string(leave.MedicalActive))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMedicalLeaves(rows)
}

func scanMedicalLeave(row rowScanner) (*leave.MedicalLeave, error) {
	var m leave.MedicalLeave
	var start, end, status, createdAt string
	var justification, endedAt sql.NullString
	var affects int
	if err := row.Scan(&m.ID, &m.PersonID, &start, &end, &status, &affects, &justification, &m.CreatedBy, &createdAt, &endedAt); err != nil {
		return nil, err
	}
	m.Status = leave.MedicalLeaveStatus(status)
	m.AffectsTeamCapacity = affects != 0
	m.Justification = justification.String

	var err error
	if m.StartDate, err = decodeDate(start); err != nil {
		return nil, err
	}
	if m.EndDate, err = decodeDate(end); err != nil {
		return nil, err
	}
	if m.CreatedAt, err = decodeTime(createdAt); err != nil {
		return nil, err
	}
	if endedAt.Valid {
		t, err := decodeTime(endedAt.String)
		if err != nil {
			return nil, err
		}
		m.EndedAt = &t
	}
	return &m, nil
}

func scanMedicalLeaves(rows *sql.Rows) ([]leave.MedicalLeave, error) {
	var out []leave.MedicalLeave
	for rows.Next() {
		m, err := scanMedicalLeave(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

// =============================================================================
// BALANCES
// =============================================================================

func (s *Store) SaveBalance(ctx context.Context, b *leave.VacationBalance) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO balances (person_id, year, accrued_days, used_days, balance_days, is_manual, manual_justification, contract_anniversary, accumulation_warning)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(person_id, year) DO UPDATE SET
			accrued_days = excluded.accrued_days,
			used_days = excluded.used_days,
			balance_days = excluded.balance_days,
			is_manual = excluded.is_manual,
			manual_justification = excluded.manual_justification,
			contract_anniversary = excluded.contract_anniversary,
			accumulation_warning = excluded.accumulation_warning`,
		b.PersonID, b.Year,
		b.AccruedDays.String(), b.UsedDays.String(), b.BalanceDays.String(),
		boolToInt(b.IsManual), b.ManualJustification,
		anniversaryOrNil(b.ContractAnniversary), boolToInt(b.AccumulationWarning),
	)
	return err
}

func anniversaryOrNil(d leave.LocalDate) any {
	if d.IsZero() {
		return nil
	}
	return d.String()
}

func (s *Store) GetBalance(ctx context.Context, personID string, year int) (*leave.VacationBalance, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT person_id, year, accrued_days, used_days, balance_days, is_manual, manual_justification, contract_anniversary, accumulation_warning
		FROM balances WHERE person_id = ? AND year = ?`, personID, year)
	b, err := scanBalance(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return b, err
}

func (s *Store) ListBalances(ctx context.Context, year int) ([]leave.VacationBalance, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT person_id, year, accrued_days, used_days, balance_days, is_manual, manual_justification, contract_anniversary, accumulation_warning
		FROM balances WHERE year = ? ORDER BY person_id`, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []leave.VacationBalance
	for rows.Next() {
		b, err := scanBalance(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

func scanBalance(row rowScanner) (*leave.VacationBalance, error) {
	var b leave.VacationBalance
	var accrued, used, balance string
	var justification, anniversary sql.NullString
	var isManual, warning int
	if err := row.Scan(&b.PersonID, &b.Year, &accrued, &used, &balance, &isManual, &justification, &anniversary, &warning); err != nil {
		return nil, err
	}
	b.IsManual = isManual != 0
	b.AccumulationWarning = warning != 0
	b.ManualJustification = justification.String

	var err error
	if b.AccruedDays, err = decimal.NewFromString(accrued); err != nil {
		return nil, err
	}
	if b.UsedDays, err = decimal.NewFromString(used); err != nil {
		return nil, err
	}
	if b.BalanceDays, err = decimal.NewFromString(balance); err != nil {
		return nil, err
	}
	if anniversary.Valid {
		if b.ContractAnniversary, err = decodeDate(anniversary.String); err != nil {
			return nil, err
		}
	}
	return &b, nil
}
