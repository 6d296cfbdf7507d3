package postgres

import (
	"context"
	"fmt"

	"CivicLearn/internal/app_errors"
	"CivicLearn/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type DirectoryPostgres struct {
	db *pgxpool.Pool
}

func NewDirectoryPostgres(db *pgxpool.Pool) *DirectoryPostgres {
	return &DirectoryPostgres{db: db}
}

func (r *DirectoryPostgres) Counties(ctx context.Context) ([]models.County, error) {
	query := `
		SELECT co.id, co.name, co.code, cn.id, cn.name
		FROM counties co
		LEFT JOIN constituencies cn ON cn.county_id = co.id
		ORDER BY co.code, cn.name
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counties := make([]models.County, 0)
	for rows.Next() {
		var c models.County
		var cnID *uuid.UUID
		var cnName *string
		if err := rows.Scan(&c.ID, &c.Name, &c.Code, &cnID, &cnName); err != nil {
			return nil, err
		}
		if n := len(counties); n == 0 || counties[n-1].ID != c.ID {
			c.Constituencies = []models.Constituency{}
			counties = append(counties, c)
		}
		if cnID != nil {
			cur := &counties[len(counties)-1]
			cur.Constituencies = append(cur.Constituencies, models.Constituency{ID: *cnID, CountyID: cur.ID, Name: *cnName})
		}
	}
	return counties, rows.Err()
}

func (r *DirectoryPostgres) CreateCounty(ctx context.Context, c *models.County) error {
	err := r.db.QueryRow(ctx, `INSERT INTO counties (name, code) VALUES ($1, $2) RETURNING id`, c.Name, c.Code).Scan(&c.ID)
	if err != nil && isUniqueViolation(err) {
		return app_errors.ErrCountyExists
	}
	return err
}

func (r *DirectoryPostgres) Constituencies(ctx context.Context, countyID uuid.UUID) ([]models.Constituency, error) {
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM counties WHERE id = $1)`, countyID).Scan(&exists); err != nil {
		return nil, err
	}
	if !exists {
		return nil, app_errors.ErrCountyNotFound
	}
	rows, err := r.db.Query(ctx, `SELECT id, county_id, name FROM constituencies WHERE county_id = $1 ORDER BY name`, countyID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByPos[models.Constituency])
}

func (r *DirectoryPostgres) CreateConstituency(ctx context.Context, c *models.Constituency) error {
	err := r.db.QueryRow(ctx, `INSERT INTO constituencies (county_id, name) VALUES ($1, $2) RETURNING id`, c.CountyID, c.Name).Scan(&c.ID)
	if pgErr := UnwrapPgError(err); pgErr != nil && pgErr.Code == "23503" {
		return app_errors.ErrCountyNotFound
	}
	return err
}

func (r *DirectoryPostgres) Positions(ctx context.Context) ([]models.Position, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, description FROM positions ORDER BY name`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByPos[models.Position])
}

func (r *DirectoryPostgres) CreatePosition(ctx context.Context, p *models.Position) error {
	err := r.db.QueryRow(ctx, `INSERT INTO positions (name, description) VALUES ($1, $2) RETURNING id`, p.Name, p.Description).Scan(&p.ID)
	if err != nil && isUniqueViolation(err) {
		return app_errors.ErrPositionExists
	}
	return err
}

func (r *DirectoryPostgres) Leaders(ctx context.Context, f models.LeaderFilter) ([]models.Leader, error) {
	query := `
		SELECT l.id, l.name, l.party, l.bio, l.position_id, p.name, l.county_id, l.constituency_id
		FROM leaders l
		JOIN positions p ON p.id = l.position_id
		WHERE ($1::uuid IS NULL OR l.county_id = $1)
		  AND ($2::uuid IS NULL OR l.position_id = $2)
		ORDER BY l.name
	`
	return r.queryLeaders(ctx, query, f.CountyID, f.PositionID)
}

func (r *DirectoryPostgres) queryLeaders(ctx context.Context, query string, args ...any) ([]models.Leader, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByPos[models.Leader])
}

func (r *DirectoryPostgres) CreateLeader(ctx context.Context, l *models.Leader) error {
	query := `
		INSERT INTO leaders (name, party, bio, position_id, county_id, constituency_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	err := r.db.QueryRow(ctx, query, l.Name, l.Party, l.Bio, l.PositionID, l.CountyID, l.ConstituencyID).Scan(&l.ID)
	if pgErr := UnwrapPgError(err); pgErr != nil && pgErr.Code == "23503" {
		return fmt.Errorf("leader references: %w", app_errors.ErrPositionNotFound)
	}
	return err
}

func (r *DirectoryPostgres) Elections(ctx context.Context, f models.ElectionFilter) ([]models.Election, error) {
	query := `
		SELECT id, title, location_name, location_type, position, election_date, description
		FROM elections
		WHERE ($1 = '' OR location_type = $1)
		  AND ($2 = '' OR position = $2)
		ORDER BY election_date DESC
	`
	rows, err := r.db.Query(ctx, query, f.LocationType, f.Position)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByPos[models.Election])
}

func (r *DirectoryPostgres) CreateElection(ctx context.Context, e *models.Election) error {
	query := `
		INSERT INTO elections (title, location_name, location_type, position, election_date, description)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	return r.db.QueryRow(ctx, query, e.Title, e.LocationName, e.LocationType, e.Position, e.ElectionDate, e.Description).Scan(&e.ID)
}

func (r *DirectoryPostgres) Candidates(ctx context.Context, electionID uuid.UUID) ([]models.Candidate, error) {
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM elections WHERE id = $1)`, electionID).Scan(&exists); err != nil {
		return nil, err
	}
	if !exists {
		return nil, app_errors.ErrElectionNotFound
	}
	rows, err := r.db.Query(ctx,
		`SELECT id, election_id, name, party, manifesto FROM candidates WHERE election_id = $1 ORDER BY name`, electionID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByPos[models.Candidate])
}

func (r *DirectoryPostgres) CreateCandidate(ctx context.Context, c *models.Candidate) error {
	query := `INSERT INTO candidates (election_id, name, party, manifesto) VALUES ($1, $2, $3, $4) RETURNING id`
	err := r.db.QueryRow(ctx, query, c.ElectionID, c.Name, c.Party, c.Manifesto).Scan(&c.ID)
	if pgErr := UnwrapPgError(err); pgErr != nil && pgErr.Code == "23503" {
		return app_errors.ErrElectionNotFound
	}
	return err
}

func (r *DirectoryPostgres) SearchCounties(ctx context.Context, q string) ([]models.County, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, name, code FROM counties WHERE name ILIKE '%' || $1 || '%' ORDER BY code`, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.County
	for rows.Next() {
		var c models.County
		if err := rows.Scan(&c.ID, &c.Name, &c.Code); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *DirectoryPostgres) SearchConstituencies(ctx context.Context, q string) ([]models.Constituency, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, county_id, name FROM constituencies WHERE name ILIKE '%' || $1 || '%' ORDER BY name`, q)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByPos[models.Constituency])
}

func (r *DirectoryPostgres) SearchLeaders(ctx context.Context, q string) ([]models.Leader, error) {
	query := `
		SELECT l.id, l.name, l.party, l.bio, l.position_id, p.name, l.county_id, l.constituency_id
		FROM leaders l
		JOIN positions p ON p.id = l.position_id
		WHERE l.name ILIKE '%' || $1 || '%' OR l.party ILIKE '%' || $1 || '%'
		ORDER BY l.name
	`
	return r.queryLeaders(ctx, query, q)
}
