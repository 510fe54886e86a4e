package db

import (
	"database/sql"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/mspaans/vocabsync/internal/entry"
	"github.com/mspaans/vocabsync/internal/errors"
)

// entryColumns is the select list for words rows, in scan order.
const entryColumns = `id, term, translation, definition_target, definition_native,
	pronunciation, grammar, collocations, synonyms, examples_target,
	examples_native, etymology, related, level, tags, score,
	created_at, updated_at`

// syncColumns is the select list for sync_records rows, in scan order.
const syncColumns = `id, entry_id, note_id, deck, synced_at, last_updated_at,
	sync_count, reviews, lapses, ease_factor, "interval", due`

// SaveEntry upserts an entry keyed on its normalized term and returns the
// row id. The entry must already be sanitized, so Term is in normalized
// form. If multiple legacy rows match case/whitespace-insensitively, the
// exact-case match wins, else the oldest row.
func SaveEntry(database *sql.DB, e *entry.Entry) (int64, error) {
	now := time.Now().Unix()

	existingID, err := findIDByTerm(database, e.Term, e.Term)
	if err != nil {
		return 0, err
	}

	values := entryValues(e)

	if existingID != 0 {
		values["term"] = e.Term // reconcile legacy casing in place
		values["updated_at"] = now
		query, args, err := sq.Update("words").
			SetMap(values).
			Where(sq.Eq{"id": existingID}).
			ToSql()
		if err != nil {
			return 0, errors.NewInternal(err)
		}
		if _, err := database.Exec(query, args...); err != nil {
			return 0, saveError(err, e.Term)
		}
		e.ID = existingID
		e.UpdatedAt = now
		return existingID, nil
	}

	values["term"] = e.Term
	values["created_at"] = now
	values["updated_at"] = now
	query, args, err := sq.Insert("words").SetMap(values).ToSql()
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	result, err := database.Exec(query, args...)
	if err != nil {
		return 0, saveError(err, e.Term)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	e.ID = id
	e.CreatedAt = now
	e.UpdatedAt = now
	return id, nil
}

// entryValues maps the mutable columns of an entry for insert/update.
func entryValues(e *entry.Entry) map[string]any {
	return map[string]any{
		"translation":       e.Translation,
		"definition_target": e.DefinitionTarget,
		"definition_native": e.DefinitionNative,
		"pronunciation":     e.Pronunciation,
		"grammar":           e.Grammar,
		"collocations":      marshalList(e.Collocations),
		"synonyms":          marshalList(e.Synonyms),
		"examples_target":   marshalList(e.ExamplesTarget),
		"examples_native":   marshalList(e.ExamplesNative),
		"etymology":         e.Etymology,
		"related":           marshalList(e.Related),
		"level":             e.Level,
		"tags":              marshalList(e.Tags),
		"score":             e.Score,
	}
}

func saveError(err error, term string) error {
	if isUniqueConstraintError(err) {
		return errors.NewPersistenceConflict(term)
	}
	return errors.NewInternal(err)
}

// isUniqueConstraintError checks if the error is a SQLite UNIQUE constraint
// violation. SQLite reports these as "UNIQUE constraint failed: ...".
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// findIDByTerm resolves a term to a row id, matching
// case/whitespace-insensitively. exact is the spelling preferred as
// tie-break when several legacy rows collide. Returns 0 when not found.
func findIDByTerm(database *sql.DB, term, exact string) (int64, error) {
	norm := entry.Normalize(term)
	var id int64
	err := database.QueryRow(`
		SELECT id FROM words
		WHERE lower(trim(term)) = ?
		ORDER BY (term = ?) DESC, id ASC
		LIMIT 1
	`, norm, exact).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	return id, nil
}

// GetEntryByID retrieves an entry by row id.
func GetEntryByID(database *sql.DB, id int64) (*entry.Entry, error) {
	row := database.QueryRow(`SELECT `+entryColumns+` FROM words WHERE id = ?`, id)
	e, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(strconv.FormatInt(id, 10))
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return e, nil
}

// GetEntryByTerm retrieves an entry by term, matching
// case/whitespace-insensitively with exact-case preference.
func GetEntryByTerm(database *sql.DB, term string) (*entry.Entry, error) {
	norm := entry.Normalize(term)
	row := database.QueryRow(`
		SELECT `+entryColumns+` FROM words
		WHERE lower(trim(term)) = ?
		ORDER BY (term = ?) DESC, id ASC
		LIMIT 1
	`, norm, strings.TrimSpace(term))
	e, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(term)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return e, nil
}

// ListEntries returns all entries, newest created first.
func ListEntries(database *sql.DB) ([]*entry.Entry, error) {
	rows, err := database.Query(`SELECT ` + entryColumns + ` FROM words ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()
	return collectEntries(rows)
}

// SearchEntries matches a substring case-insensitively across term,
// translation and both definitions, newest created first.
func SearchEntries(database *sql.DB, substr string) ([]*entry.Entry, error) {
	pattern := "%" + strings.ToLower(substr) + "%"
	like := func(col string) sq.Sqlizer {
		return sq.Expr("lower("+col+") LIKE ?", pattern)
	}
	query, args, err := sq.Select(entryColumns).
		From("words").
		Where(sq.Or{
			like("term"),
			like("translation"),
			like("definition_target"),
			like("definition_native"),
		}).
		OrderBy("created_at DESC", "id DESC").
		ToSql()
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	rows, err := database.Query(query, args...)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()
	return collectEntries(rows)
}

// GetUnsynced returns entries with no sync record or a null synced_at,
// newest created first.
func GetUnsynced(database *sql.DB) ([]*entry.Entry, error) {
	rows, err := database.Query(`
		SELECT ` + prefixColumns("w", entryColumns) + `
		FROM words w
		LEFT JOIN sync_records s ON w.id = s.entry_id
		WHERE s.synced_at IS NULL OR s.entry_id IS NULL
		ORDER BY w.created_at DESC, w.id DESC
	`)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()
	return collectEntries(rows)
}

// DeleteEntryByTerm hard-deletes an entry; the sync record goes with it via
// cascade. Returns false (not an error) when nothing matched.
func DeleteEntryByTerm(database *sql.DB, term string) (bool, error) {
	id, err := findIDByTerm(database, term, strings.TrimSpace(term))
	if err != nil {
		return false, err
	}
	if id == 0 {
		return false, nil
	}
	return DeleteEntryByID(database, id)
}

// DeleteEntryByID hard-deletes an entry by row id.
func DeleteEntryByID(database *sql.DB, id int64) (bool, error) {
	result, err := database.Exec(`DELETE FROM words WHERE id = ?`, id)
	if err != nil {
		return false, errors.NewInternal(err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, errors.NewInternal(err)
	}
	return n > 0, nil
}

// MarkSynced upserts the sync record for a term after a successful push:
// note id and deck are refreshed, sync_count increments, timestamps move.
func MarkSynced(database *sql.DB, term string, noteID int64, deck string) error {
	id, err := findIDByTerm(database, term, strings.TrimSpace(term))
	if err != nil {
		return err
	}
	if id == 0 {
		return errors.NewNotFound(term)
	}
	return MarkSyncedByID(database, id, noteID, deck)
}

// MarkSyncedByID is MarkSynced addressed by row id.
func MarkSyncedByID(database *sql.DB, entryID, noteID int64, deck string) error {
	now := time.Now().Unix()
	_, err := database.Exec(`
		INSERT INTO sync_records (entry_id, note_id, deck, synced_at, last_updated_at, sync_count)
		VALUES (?, ?, ?, ?, ?, 1)
		ON CONFLICT(entry_id) DO UPDATE SET
			note_id = excluded.note_id,
			deck = excluded.deck,
			synced_at = excluded.synced_at,
			last_updated_at = excluded.last_updated_at,
			sync_count = sync_count + 1
	`, entryID, noteID, deck, now, now)
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// UpdateReviewStats refreshes the read-only telemetry snapshot on an
// existing sync record. A missing record is left alone.
func UpdateReviewStats(database *sql.DB, entryID int64, stats entry.ReviewStats) error {
	_, err := database.Exec(`
		UPDATE sync_records
		SET reviews = ?, lapses = ?, ease_factor = ?, "interval" = ?, due = ?
		WHERE entry_id = ?
	`, stats.Reviews, stats.Lapses, stats.EaseFactor, stats.Interval, stats.Due, entryID)
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// SyncInfo pairs a sync record with its owning term.
type SyncInfo struct {
	Term   string
	Record entry.SyncRecord
}

// GetSyncRecord returns the sync record for a term, or nil when the entry
// was never synced. A missing entry is also reported as nil.
func GetSyncRecord(database *sql.DB, term string) (*entry.SyncRecord, error) {
	norm := entry.Normalize(term)
	row := database.QueryRow(`
		SELECT `+prefixColumns("s", syncColumns)+`
		FROM sync_records s
		INNER JOIN words w ON s.entry_id = w.id
		WHERE lower(trim(w.term)) = ?
	`, norm)
	rec, err := scanSyncRecord(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return rec, nil
}

// ListSyncInfo returns sync records for all synced entries, most recently
// synced first.
func ListSyncInfo(database *sql.DB) ([]SyncInfo, error) {
	rows, err := database.Query(`
		SELECT w.term, ` + prefixColumns("s", syncColumns) + `
		FROM sync_records s
		INNER JOIN words w ON s.entry_id = w.id
		WHERE s.synced_at IS NOT NULL
		ORDER BY s.synced_at DESC
	`)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var infos []SyncInfo
	for rows.Next() {
		var term string
		rec, err := scanSyncRecordWith(rows, &term)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		infos = append(infos, SyncInfo{Term: term, Record: *rec})
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return infos, nil
}

// Stats summarizes the local store against its sync state.
type Stats struct {
	Total    int `json:"total"`
	Synced   int `json:"synced"`
	Unsynced int `json:"unsynced"`
}

// GetStats counts entries by sync state.
func GetStats(database *sql.DB) (*Stats, error) {
	stats := &Stats{}

	err := database.QueryRow(`SELECT COUNT(*) FROM words`).Scan(&stats.Total)
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	err = database.QueryRow(`
		SELECT COUNT(*)
		FROM words w
		INNER JOIN sync_records s ON w.id = s.entry_id
		WHERE s.synced_at IS NOT NULL
	`).Scan(&stats.Synced)
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	stats.Unsynced = stats.Total - stats.Synced
	return stats, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanEntry scans one words row.
func scanEntry(row scanner) (*entry.Entry, error) {
	var (
		e            entry.Entry
		collocations string
		synonyms     string
		examplesT    string
		examplesN    string
		related      string
		tags         string
	)

	err := row.Scan(
		&e.ID, &e.Term, &e.Translation, &e.DefinitionTarget, &e.DefinitionNative,
		&e.Pronunciation, &e.Grammar, &collocations, &synonyms, &examplesT,
		&examplesN, &e.Etymology, &related, &e.Level, &tags, &e.Score,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	e.Collocations = unmarshalList(collocations)
	e.Synonyms = unmarshalList(synonyms)
	e.ExamplesTarget = unmarshalList(examplesT)
	e.ExamplesNative = unmarshalList(examplesN)
	e.Related = unmarshalList(related)
	e.Tags = unmarshalList(tags)

	return &e, nil
}

func collectEntries(rows *sql.Rows) ([]*entry.Entry, error) {
	var list []*entry.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		list = append(list, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return list, nil
}

// scanSyncRecord scans one sync_records row.
func scanSyncRecord(row scanner) (*entry.SyncRecord, error) {
	return scanSyncRecordWith(row)
}

// scanSyncRecordWith scans a sync_records row, optionally preceded by extra
// leading columns (e.g. the joined term).
func scanSyncRecordWith(row scanner, leading ...any) (*entry.SyncRecord, error) {
	var (
		rec        entry.SyncRecord
		syncedAt   sql.NullInt64
		updatedAt  sql.NullInt64
		reviews    sql.NullInt64
		lapses     sql.NullInt64
		easeFactor sql.NullInt64
		interval   sql.NullInt64
		due        sql.NullInt64
	)

	dest := append(leading,
		&rec.ID, &rec.EntryID, &rec.NoteID, &rec.Deck, &syncedAt, &updatedAt,
		&rec.SyncCount, &reviews, &lapses, &easeFactor, &interval, &due,
	)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	rec.SyncedAt = fromNullInt64(syncedAt)
	rec.LastUpdatedAt = fromNullInt64(updatedAt)
	rec.Reviews = fromNullInt64(reviews)
	rec.Lapses = fromNullInt64(lapses)
	rec.EaseFactor = fromNullInt64(easeFactor)
	rec.Interval = fromNullInt64(interval)
	rec.Due = fromNullInt64(due)

	return &rec, nil
}

func fromNullInt64(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	return &n.Int64
}

// marshalList serializes a string list for a JSON column. Empty lists are
// stored as "[]" so old rows and new rows read back the same way.
func marshalList(items []string) string {
	if len(items) == 0 {
		return "[]"
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "[]"
	}
	return string(data)
}

// unmarshalList deserializes a JSON list column; malformed content reads
// back as empty rather than failing the whole row.
func unmarshalList(data string) []string {
	if data == "" || data == "[]" {
		return nil
	}
	var items []string
	if err := json.Unmarshal([]byte(data), &items); err != nil {
		return nil
	}
	return items
}

// prefixColumns qualifies a comma-separated column list with a table alias.
func prefixColumns(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}
