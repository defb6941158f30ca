package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"Despiece/internal/calc/despiece"
)

// ErrNotFound is returned when a row does not exist or belongs to another
// user. Handlers translate it to 404.
var ErrNotFound = errors.New("not found")

type Profile struct {
	ID          int       `json:"id"`
	Login       string    `json:"login"`
	Email       string    `json:"email"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// DesignRecord is one saved beam design. The configuration is stored as a
// single JSONB column, its shape is already a stable contract.
type DesignRecord struct {
	ID          int                        `json:"id"`
	UserID      int                        `json:"user_id"`
	Title       string                     `json:"title"`
	Description string                     `json:"description"`
	DesignType  string                     `json:"design_type"`
	Config      despiece.BeamConfiguration `json:"config"`
	CreatedAt   time.Time                  `json:"created_at"`
	UpdatedAt   time.Time                  `json:"updated_at"`
}

// ExportRecord is one generated report file, kept for traceability.
type ExportRecord struct {
	ID        string    `json:"id"`
	DesignID  int       `json:"design_id"`
	UserID    int       `json:"user_id"`
	Format    string    `json:"format"`
	Filename  string    `json:"filename"`
	CreatedAt time.Time `json:"created_at"`
}

type Repository interface {
	CreateUser(ctx context.Context, login, email, password string) (int, error)
	GetBylogin(ctx context.Context, login string) (int, string, error)
	GetProfileByID(ctx context.Context, id int) (Profile, error)
	UpdateProfile(ctx context.Context, id int, login, description string) (int64, error)

	CreateDesign(ctx context.Context, rec DesignRecord) (int, error)
	GetDesign(ctx context.Context, userID, designID int) (DesignRecord, error)
	ListDesigns(ctx context.Context, userID int) ([]DesignRecord, error)
	UpdateDesign(ctx context.Context, rec DesignRecord) (int64, error)
	DeleteDesign(ctx context.Context, userID, designID int) (int64, error)

	RecordExport(ctx context.Context, rec ExportRecord) error
	ListExports(ctx context.Context, userID, designID int) ([]ExportRecord, error)
}

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresDB(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) CreateUser(ctx context.Context, login, email, password string) (int, error) {
	var id int
	query := "INSERT INTO users (login, email, password) VALUES ($1, $2, $3) RETURNING id"
	err := r.db.QueryRowContext(ctx, query, login, email, password).Scan(&id)
	return id, err
}

func (r *PostgresRepository) GetBylogin(ctx context.Context, login string) (int, string, error) {
	var id int
	var hash string

	query := "SELECT id, password FROM users WHERE login=$1"

	err := r.db.QueryRowContext(ctx, query, login).Scan(&id, &hash)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, "", nil
		}
		return 0, "", err
	}
	return id, hash, nil
}

func (r *PostgresRepository) GetProfileByID(ctx context.Context, id int) (Profile, error) {
	var p Profile
	var description sql.NullString

	query := "SELECT id, login, email, COALESCE(description, ''), created_at FROM users WHERE id=$1"

	err := r.db.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.Login, &p.Email, &description, &p.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return Profile{}, ErrNotFound
		}
		return Profile{}, err
	}
	p.Description = description.String
	return p, nil
}

func (r *PostgresRepository) UpdateProfile(ctx context.Context, id int, login, description string) (int64, error) {
	query := "UPDATE users SET login=$2, description=$3 WHERE id=$1"
	res, err := r.db.ExecContext(ctx, query, id, login, description)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *PostgresRepository) CreateDesign(ctx context.Context, rec DesignRecord) (int, error) {
	raw, err := json.Marshal(rec.Config)
	if err != nil {
		return 0, err
	}
	var id int
	query := `INSERT INTO designs (user_id, title, description, design_type, config, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, NOW(), NOW()) RETURNING id`
	err = r.db.QueryRowContext(ctx, query, rec.UserID, rec.Title, rec.Description, rec.DesignType, raw).Scan(&id)
	return id, err
}

func (r *PostgresRepository) GetDesign(ctx context.Context, userID, designID int) (DesignRecord, error) {
	var rec DesignRecord
	var raw []byte

	query := `SELECT id, user_id, title, COALESCE(description, ''), design_type, config, created_at, updated_at
	          FROM designs WHERE id=$2 AND user_id=$1`

	err := r.db.QueryRowContext(ctx, query, userID, designID).Scan(
		&rec.ID, &rec.UserID, &rec.Title, &rec.Description, &rec.DesignType, &raw, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return DesignRecord{}, ErrNotFound
		}
		return DesignRecord{}, err
	}
	if err := json.Unmarshal(raw, &rec.Config); err != nil {
		return DesignRecord{}, err
	}
	return rec, nil
}

func (r *PostgresRepository) ListDesigns(ctx context.Context, userID int) ([]DesignRecord, error) {
	query := `SELECT id, user_id, title, COALESCE(description, ''), design_type, config, created_at, updated_at
	          FROM designs WHERE user_id=$1 ORDER BY updated_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	designs := make([]DesignRecord, 0)
	for rows.Next() {
		var rec DesignRecord
		var raw []byte
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Title, &rec.Description, &rec.DesignType,
			&raw, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &rec.Config); err != nil {
			return nil, err
		}
		designs = append(designs, rec)
	}
	return designs, rows.Err()
}

func (r *PostgresRepository) UpdateDesign(ctx context.Context, rec DesignRecord) (int64, error) {
	raw, err := json.Marshal(rec.Config)
	if err != nil {
		return 0, err
	}
	query := `UPDATE designs SET title=$3, description=$4, config=$5, updated_at=NOW()
	          WHERE id=$2 AND user_id=$1`
	res, err := r.db.ExecContext(ctx, query, rec.UserID, rec.ID, rec.Title, rec.Description, raw)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *PostgresRepository) DeleteDesign(ctx context.Context, userID, designID int) (int64, error) {
	query := "DELETE FROM designs WHERE id=$2 AND user_id=$1"
	res, err := r.db.ExecContext(ctx, query, userID, designID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *PostgresRepository) RecordExport(ctx context.Context, rec ExportRecord) error {
	query := `INSERT INTO design_exports (id, design_id, user_id, format, filename, created_at)
	          VALUES ($1, $2, $3, $4, $5, NOW())`
	_, err := r.db.ExecContext(ctx, query, rec.ID, rec.DesignID, rec.UserID, rec.Format, rec.Filename)
	return err
}

func (r *PostgresRepository) ListExports(ctx context.Context, userID, designID int) ([]ExportRecord, error) {
	query := `SELECT id, design_id, user_id, format, filename, created_at
	          FROM design_exports WHERE user_id=$1 AND design_id=$2 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID, designID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	exports := make([]ExportRecord, 0)
	for rows.Next() {
		var rec ExportRecord
		if err := rows.Scan(&rec.ID, &rec.DesignID, &rec.UserID, &rec.Format, &rec.Filename, &rec.CreatedAt); err != nil {
			return nil, err
		}
		exports = append(exports, rec)
	}
	return exports, rows.Err()
}
