package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/paperbark/kindwords/internal/model"
)

type ThingStore struct {
	db *sql.DB
}

func NewThingStore(db *sql.DB) *ThingStore {
	return &ThingStore{db: db}
}

func scanThing(scanner interface{ Scan(...any) error }) (*model.Thing, error) {
	var t model.Thing
	var why sql.NullString

	err := scanner.Scan(&t.ID, &t.UserID, &t.Thing, &t.Who, &why, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if why.Valid {
		t.Why = &why.String
	}
	return &t, nil
}

const thingCols = `id, user_id, thing, who, why, created_at, updated_at`

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func (s *ThingStore) Create(userID, thing, who string, why *string) (*model.Thing, error) {
	id := uuid.NewString()
	now := time.Now().UTC()
	_, err := s.db.Exec(
		`INSERT INTO things (id, user_id, thing, who, why, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, userID, thing, who, nullString(why), now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert thing: %w", err)
	}
	return s.GetByID(userID, id)
}

// GetByID looks up a thing by id scoped to its owner in a single
// query, so a foreign id and a nonexistent id are indistinguishable.
func (s *ThingStore) GetByID(userID, id string) (*model.Thing, error) {
	row := s.db.QueryRow(`SELECT `+thingCols+` FROM things WHERE id = ? AND user_id = ?`, id, userID)
	t, err := scanThing(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get thing: %w", err)
	}
	return t, nil
}

// ListByOwner returns the owner's things newest-first.
func (s *ThingStore) ListByOwner(userID string) ([]model.Thing, error) {
	return s.listByOwner(userID, "DESC")
}

// ListByOwnerOldest returns the owner's things in creation order, the
// ordering exports use.
func (s *ThingStore) ListByOwnerOldest(userID string) ([]model.Thing, error) {
	return s.listByOwner(userID, "ASC")
}

func (s *ThingStore) listByOwner(userID, direction string) ([]model.Thing, error) {
	rows, err := s.db.Query(
		`SELECT `+thingCols+` FROM things WHERE user_id = ? ORDER BY created_at `+direction,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list things: %w", err)
	}
	defer rows.Close()

	var things []model.Thing
	for rows.Next() {
		t, err := scanThing(rows)
		if err != nil {
			return nil, fmt.Errorf("scan thing: %w", err)
		}
		things = append(things, *t)
	}
	return things, rows.Err()
}

// Update replaces the mutable fields of an owned thing and refreshes
// updated_at. Returns nil when the id does not exist for this owner.
func (s *ThingStore) Update(userID, id, thing, who string, why *string) (*model.Thing, error) {
	result, err := s.db.Exec(
		`UPDATE things SET thing = ?, who = ?, why = ?, updated_at = ? WHERE id = ? AND user_id = ?`,
		thing, who, nullString(why), time.Now().UTC(), id, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("update thing: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return nil, nil
	}
	return s.GetByID(userID, id)
}

// Delete removes an owned thing. Returns false when no row matched.
func (s *ThingStore) Delete(userID, id string) (bool, error) {
	result, err := s.db.Exec(`DELETE FROM things WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return false, fmt.Errorf("delete thing: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// DeleteAll removes every thing the owner has and returns the count.
// Deleting an empty collection succeeds with count zero.
func (s *ThingStore) DeleteAll(userID string) (int64, error) {
	result, err := s.db.Exec(`DELETE FROM things WHERE user_id = ?`, userID)
	if err != nil {
		return 0, fmt.Errorf("delete all things: %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return count, nil
}
