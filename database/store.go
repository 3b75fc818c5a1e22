package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"notes-app/models"

	"github.com/jmoiron/sqlx"
)

var (
	// ErrNotFound is returned when a row is missing or owned by another user
	ErrNotFound = errors.New("not found")
	// ErrEmailTaken is returned by InsertUser when the email is already registered
	ErrEmailTaken = errors.New("email already exists")
)

// ownedSubjects restricts a subject_id column to subjects of one user
const ownedSubjects = "subject_id IN (SELECT id FROM subjects WHERE user_id = ?)"

// Store runs parameterized queries against users, subjects and notes.
// Every subject/note query is filtered by the acting user's id.
type Store struct {
	db *sqlx.DB
}

// NewStore wraps an open connection pool
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Ping checks the database is reachable
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) q(query string) string {
	return s.db.Rebind(query)
}

// FindUserByEmail returns ErrNotFound if no user has email
func (s *Store) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user, s.q("SELECT id, name, email, password FROM users WHERE email = ?"), email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &user, nil
}

// GetUserByID loads the identity bound to a session
func (s *Store) GetUserByID(ctx context.Context, id int) (*models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user, s.q("SELECT id, name, email, password FROM users WHERE id = ?"), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &user, nil
}

// InsertUser creates a user after checking the email is free.
// passwordHash must already be hashed.
func (s *Store) InsertUser(ctx context.Context, name, email, passwordHash string) (*models.User, error) {
	_, err := s.FindUserByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, ErrEmailTaken
	case !errors.Is(err, ErrNotFound):
		return nil, err
	}

	result, err := s.db.ExecContext(ctx, s.q("INSERT INTO users (name, email, password) VALUES (?, ?, ?)"),
		name, email, passwordHash)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}

	return &models.User{ID: int(id), Name: name, Email: email, Password: passwordHash}, nil
}

// ListSubjects returns the user's subjects in creation order
func (s *Store) ListSubjects(ctx context.Context, userID int) ([]models.Subject, error) {
	subjects := []models.Subject{}
	err := s.db.SelectContext(ctx, &subjects, s.q("SELECT id, user_id, name FROM subjects WHERE user_id = ? ORDER BY id"), userID)
	if err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	return subjects, nil
}

// ListNotes returns the notes of one subject in creation order.
// Callers pass a subject id already scoped to the acting user.
func (s *Store) ListNotes(ctx context.Context, subjectID int) ([]models.Note, error) {
	notes := []models.Note{}
	err := s.db.SelectContext(ctx, &notes, s.q("SELECT id, subject_id, title, content FROM notes WHERE subject_id = ? ORDER BY id"), subjectID)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	return notes, nil
}

// GetSubject returns ErrNotFound unless subjectID belongs to userID
func (s *Store) GetSubject(ctx context.Context, subjectID, userID int) (*models.Subject, error) {
	var subject models.Subject
	err := s.db.GetContext(ctx, &subject, s.q("SELECT id, user_id, name FROM subjects WHERE id = ? AND user_id = ?"), subjectID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get subject: %w", err)
	}
	return &subject, nil
}

// GetNote returns ErrNotFound unless the note's subject belongs to userID
func (s *Store) GetNote(ctx context.Context, noteID, userID int) (*models.Note, error) {
	var note models.Note
	err := s.db.GetContext(ctx, &note, s.q("SELECT id, subject_id, title, content FROM notes WHERE id = ? AND "+ownedSubjects), noteID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get note: %w", err)
	}
	return &note, nil
}

// InsertSubject creates a subject owned by userID
func (s *Store) InsertSubject(ctx context.Context, userID int, name string) (*models.Subject, error) {
	result, err := s.db.ExecContext(ctx, s.q("INSERT INTO subjects (user_id, name) VALUES (?, ?)"), userID, name)
	if err != nil {
		return nil, fmt.Errorf("insert subject: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert subject: %w", err)
	}
	return &models.Subject{ID: int(id), UserID: userID, Name: name}, nil
}

// InsertNote creates a note under subjectID.
// Ownership of subjectID is checked by the caller (see GetSubject).
func (s *Store) InsertNote(ctx context.Context, subjectID int, title, content string) (*models.Note, error) {
	result, err := s.db.ExecContext(ctx, s.q("INSERT INTO notes (subject_id, title, content) VALUES (?, ?, ?)"),
		subjectID, title, content)
	if err != nil {
		return nil, fmt.Errorf("insert note: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert note: %w", err)
	}
	return &models.Note{ID: int(id), SubjectID: subjectID, Title: title, Content: content}, nil
}

// UpdateSubjectName renames a subject; ErrNotFound if userID does not own it
func (s *Store) UpdateSubjectName(ctx context.Context, subjectID, userID int, newName string) error {
	result, err := s.db.ExecContext(ctx, s.q("UPDATE subjects SET name = ? WHERE id = ? AND user_id = ?"),
		newName, subjectID, userID)
	if err != nil {
		return fmt.Errorf("update subject: %w", err)
	}
	return expectRows(result, "update subject")
}

// UpdateNote rewrites title and content; ErrNotFound if userID does not own the note
func (s *Store) UpdateNote(ctx context.Context, noteID, userID int, title, content string) error {
	result, err := s.db.ExecContext(ctx, s.q("UPDATE notes SET title = ?, content = ? WHERE id = ? AND "+ownedSubjects),
		title, content, noteID, userID)
	if err != nil {
		return fmt.Errorf("update note: %w", err)
	}
	return expectRows(result, "update note")
}

// DeleteSubject removes the subject and all of its notes in one transaction
func (s *Store) DeleteSubject(ctx context.Context, subjectID, userID int) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("delete subject: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM notes WHERE subject_id = ? AND "+ownedSubjects),
		subjectID, userID); err != nil {
		return fmt.Errorf("delete subject notes: %w", err)
	}

	result, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM subjects WHERE id = ? AND user_id = ?"), subjectID, userID)
	if err != nil {
		return fmt.Errorf("delete subject: %w", err)
	}
	if err := expectRows(result, "delete subject"); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("delete subject: %w", err)
	}
	return nil
}

// DeleteNote removes a note; ErrNotFound if userID does not own it
func (s *Store) DeleteNote(ctx context.Context, noteID, userID int) error {
	result, err := s.db.ExecContext(ctx, s.q("DELETE FROM notes WHERE id = ? AND "+ownedSubjects), noteID, userID)
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	return expectRows(result, "delete note")
}

func expectRows(result sql.Result, op string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
