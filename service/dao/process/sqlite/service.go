// Package sqlite persists onboarding processes in a SQLite database using
// the pure-Go modernc.org/sqlite driver, so deployments get durable storage
// without cgo or an external server.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/talentops/onboard/model"
	"github.com/talentops/onboard/service/dao"
)

// Service implements dao.Service backed by a SQLite database.
type Service struct {
	db *sql.DB
}

var _ dao.Service[string, model.Process] = (*Service)(nil)

// New opens (or creates) the database at dbPath and runs the schema
// migration.
func New(dbPath string) (*Service, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	s := &Service{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the underlying database handle.
func (s *Service) Close() error {
	return s.db.Close()
}

func (s *Service) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS processes (
		id TEXT PRIMARY KEY,
		current_step TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		email TEXT NOT NULL,
		phone TEXT NOT NULL,
		position_title TEXT NOT NULL,
		department TEXT NOT NULL,
		start_date TEXT NOT NULL,
		offer_letter_ref TEXT,
		signed_contract_ref TEXT,
		doc_submission_id TEXT,
		account_user_id TEXT,
		training_enrollment_id TEXT,
		training_completed INTEGER NOT NULL DEFAULT 0,
		last_error TEXT,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		finished_at TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_processes_status ON processes(status);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Save upserts a process row.
func (s *Service) Save(ctx context.Context, p *model.Process) error {
	if p == nil {
		return dao.ErrNilEntity
	}
	if p.ID == "" {
		return dao.ErrInvalidID
	}
	snapshot := p.Clone()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO processes (
			id, current_step, status,
			first_name, last_name, email, phone, position_title, department, start_date,
			offer_letter_ref, signed_contract_ref,
			doc_submission_id, account_user_id, training_enrollment_id, training_completed,
			last_error, created_at, updated_at, finished_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			current_step = excluded.current_step,
			status = excluded.status,
			first_name = excluded.first_name,
			last_name = excluded.last_name,
			email = excluded.email,
			phone = excluded.phone,
			position_title = excluded.position_title,
			department = excluded.department,
			start_date = excluded.start_date,
			offer_letter_ref = excluded.offer_letter_ref,
			signed_contract_ref = excluded.signed_contract_ref,
			doc_submission_id = excluded.doc_submission_id,
			account_user_id = excluded.account_user_id,
			training_enrollment_id = excluded.training_enrollment_id,
			training_completed = excluded.training_completed,
			last_error = excluded.last_error,
			updated_at = excluded.updated_at,
			finished_at = excluded.finished_at`,
		snapshot.ID, snapshot.CurrentStep, string(snapshot.Status),
		snapshot.Intake.FirstName, snapshot.Intake.LastName, snapshot.Intake.Email,
		snapshot.Intake.Phone, snapshot.Intake.PositionTitle, snapshot.Intake.Department,
		snapshot.Intake.StartDate,
		snapshot.OfferLetterRef, snapshot.SignedContractRef,
		snapshot.DocSubmissionID, snapshot.AccountUserID, snapshot.TrainingEnrollmentID,
		snapshot.TrainingCompleted,
		snapshot.LastError, snapshot.CreatedAt, snapshot.UpdatedAt, snapshot.FinishedAt,
	)
	return err
}

// Load retrieves a process row by id.
func (s *Service) Load(ctx context.Context, id string) (*model.Process, error) {
	if id == "" {
		return nil, dao.ErrInvalidID
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT id, current_step, status,
			first_name, last_name, email, phone, position_title, department, start_date,
			offer_letter_ref, signed_contract_ref,
			doc_submission_id, account_user_id, training_enrollment_id, training_completed,
			last_error, created_at, updated_at, finished_at
		 FROM processes WHERE id = ?`, id)
	p, err := scanProcess(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("process %s: %w", id, dao.ErrNotFound)
	}
	return p, err
}

// Delete removes a process row.
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return dao.ErrInvalidID
	}
	result, err := s.db.ExecContext(ctx, `DELETE FROM processes WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return fmt.Errorf("process %s: %w", id, dao.ErrNotFound)
	}
	return nil
}

// List returns all process rows matching the optional status filter.
func (s *Service) List(ctx context.Context, parameters ...*dao.Parameter) ([]*model.Process, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, current_step, status,
			first_name, last_name, email, phone, position_title, department, start_date,
			offer_letter_ref, signed_contract_ref,
			doc_submission_id, account_user_id, training_enrollment_id, training_completed,
			last_error, created_at, updated_at, finished_at
		 FROM processes ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var processes []*model.Process
	for rows.Next() {
		p, err := scanProcess(rows)
		if err != nil {
			return nil, err
		}
		if !dao.FilterByStatus(string(p.Status), parameters) {
			continue
		}
		processes = append(processes, p)
	}
	return processes, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanProcess(row scanner) (*model.Process, error) {
	var p model.Process
	var status string
	var offerLetter, signedContract sql.NullString
	var docSubmission, accountUser, trainingEnrollment sql.NullString
	var lastError sql.NullString
	var createdAt, updatedAt time.Time
	var finishedAt sql.NullTime

	err := row.Scan(
		&p.ID, &p.CurrentStep, &status,
		&p.Intake.FirstName, &p.Intake.LastName, &p.Intake.Email,
		&p.Intake.Phone, &p.Intake.PositionTitle, &p.Intake.Department,
		&p.Intake.StartDate,
		&offerLetter, &signedContract,
		&docSubmission, &accountUser, &trainingEnrollment, &p.TrainingCompleted,
		&lastError, &createdAt, &updatedAt, &finishedAt,
	)
	if err != nil {
		return nil, err
	}

	p.Status = model.Status(status)
	p.OfferLetterRef = offerLetter.String
	p.SignedContractRef = signedContract.String
	p.DocSubmissionID = docSubmission.String
	p.AccountUserID = accountUser.String
	p.TrainingEnrollmentID = trainingEnrollment.String
	p.LastError = lastError.String
	p.CreatedAt = createdAt
	p.UpdatedAt = updatedAt
	if finishedAt.Valid {
		t := finishedAt.Time
		p.FinishedAt = &t
	}
	return &p, nil
}
