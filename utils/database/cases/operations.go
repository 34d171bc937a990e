package cases

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"modbot/model"

	"github.com/jmoiron/sqlx"
)

// CreateCase inserts a new case record and returns the new case's ID.
// CreatedAt is assigned here at insertion time; any value on the passed
// record is ignored.
func CreateCase(db *sqlx.DB, c model.Case) (int64, error) {
	c.CreatedAt = time.Now().Unix()

	query := `INSERT INTO cases (guild_id, type, subject_id, subject_tag, actor_id, actor_tag, reason, duration_seconds, category, expires_at, threshold_triggered, created_at)
			  VALUES (:guild_id, :type, :subject_id, :subject_tag, :actor_id, :actor_tag, :reason, :duration_seconds, :category, :expires_at, :threshold_triggered, :created_at)`

	result, err := db.NamedExec(query, c)
	if err != nil {
		return 0, fmt.Errorf("failed to insert case record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID: %w", err)
	}
	return id, nil
}

// GetCaseByID retrieves a single case by its primary key. A missing case is
// reported as (nil, nil), not an error.
func GetCaseByID(db *sqlx.DB, id int64) (*model.Case, error) {
	var c model.Case
	err := db.Get(&c, "SELECT * FROM cases WHERE case_id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get case by id %d: %w", id, err)
	}
	return &c, nil
}

// GetCasesByUser retrieves all cases for a subject, newest first.
func GetCasesByUser(db *sqlx.DB, subjectID string) ([]model.Case, error) {
	var records []model.Case
	query := "SELECT * FROM cases WHERE subject_id = ? ORDER BY case_id DESC"
	if err := db.Select(&records, query, subjectID); err != nil {
		return nil, fmt.Errorf("failed to get cases for user %s: %w", subjectID, err)
	}
	return records, nil
}

// GetActiveWarnings retrieves warn cases for a subject. With decayDays > 0
// only warnings created within the last decayDays count; decayDays = 0
// means no time restriction. A non-empty category restricts further.
func GetActiveWarnings(db *sqlx.DB, subjectID string, decayDays int, category string) ([]model.Case, error) {
	query := "SELECT * FROM cases WHERE subject_id = ? AND type = ?"
	args := []interface{}{subjectID, model.CaseTypeWarn}

	if decayDays > 0 {
		cutoff := time.Now().AddDate(0, 0, -decayDays).Unix()
		query += " AND created_at >= ?"
		args = append(args, cutoff)
	}
	if category != "" {
		query += " AND category = ?"
		args = append(args, category)
	}
	query += " ORDER BY case_id DESC"

	var records []model.Case
	if err := db.Select(&records, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get active warnings for user %s: %w", subjectID, err)
	}
	return records, nil
}

// GetPunishmentCases retrieves all cases for a subject excluding the
// utility types (purge, lock, unlock), newest first.
func GetPunishmentCases(db *sqlx.DB, subjectID string) ([]model.Case, error) {
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(model.UtilityCaseTypes)), ",")
	query := fmt.Sprintf("SELECT * FROM cases WHERE subject_id = ? AND type NOT IN (%s) ORDER BY case_id DESC", placeholders)

	args := []interface{}{subjectID}
	for _, t := range model.UtilityCaseTypes {
		args = append(args, t)
	}

	var records []model.Case
	if err := db.Select(&records, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get punishment cases for user %s: %w", subjectID, err)
	}
	return records, nil
}

// GetUtilityActions retrieves purge/lock/unlock cases, optionally filtered
// by the acting moderator.
func GetUtilityActions(db *sqlx.DB, actorID string) ([]model.Case, error) {
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(model.UtilityCaseTypes)), ",")
	query := fmt.Sprintf("SELECT * FROM cases WHERE type IN (%s)", placeholders)

	var args []interface{}
	for _, t := range model.UtilityCaseTypes {
		args = append(args, t)
	}
	if actorID != "" {
		query += " AND actor_id = ?"
		args = append(args, actorID)
	}
	query += " ORDER BY case_id DESC"

	var records []model.Case
	if err := db.Select(&records, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get utility actions: %w", err)
	}
	return records, nil
}

// GetExpiredTempbans retrieves all tempban cases whose expiry has passed
// and has not been processed yet.
func GetExpiredTempbans(db *sqlx.DB, now time.Time) ([]model.Case, error) {
	var records []model.Case
	query := "SELECT * FROM cases WHERE type = ? AND expires_at > 0 AND expires_at <= ?"
	if err := db.Select(&records, query, model.CaseTypeTempban, now.Unix()); err != nil {
		return nil, fmt.Errorf("failed to get expired tempbans: %w", err)
	}
	return records, nil
}

// ClearTempbanExpiry marks a tempban case as processed so expiry polling
// never returns it again.
func ClearTempbanExpiry(db *sqlx.DB, id int64) error {
	result, err := db.Exec("UPDATE cases SET expires_at = 0 WHERE case_id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to clear tempban expiry for case %d: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected for case %d: %w", id, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("no case found with id %d", id)
	}
	return nil
}

// UpdateReason overwrites the reason of an existing case. It returns false
// when the case does not exist.
func UpdateReason(db *sqlx.DB, id int64, newReason string) (bool, error) {
	result, err := db.Exec("UPDATE cases SET reason = ? WHERE case_id = ?", newReason, id)
	if err != nil {
		return false, fmt.Errorf("failed to update reason for case %d: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check rows affected for case %d: %w", id, err)
	}
	return rowsAffected > 0, nil
}

// CountCases returns the total number of case records.
func CountCases(db *sqlx.DB) (int, error) {
	var count int
	if err := db.Get(&count, "SELECT COUNT(*) FROM cases"); err != nil {
		return 0, fmt.Errorf("failed to count cases: %w", err)
	}
	return count, nil
}
