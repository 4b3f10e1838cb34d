package audit

import "database/sql"

// runRow/eventRow mirror RunRecord/ComponentEvent with sqlx `db` tags and
// nullable columns, kept separate from the exported types so the public
// API isn't tied to the SQL schema's column names.
type runRow struct {
	RunID      string         `db:"run_id"`
	Cluster    string         `db:"cluster"`
	Mode       string         `db:"mode"`
	StartedAt  sql.NullTime   `db:"started_at"`
	FinishedAt sql.NullTime   `db:"finished_at"`
	Err        sql.NullString `db:"err"`
}

func runRecordRow(r *RunRecord) runRow {
	row := runRow{
		RunID:     r.RunID,
		Cluster:   r.Cluster,
		Mode:      r.Mode,
		StartedAt: sql.NullTime{Time: r.StartedAt, Valid: !r.StartedAt.IsZero()},
		Err:       sql.NullString{String: r.Err, Valid: true},
	}
	if !r.FinishedAt.IsZero() {
		row.FinishedAt = sql.NullTime{Time: r.FinishedAt, Valid: true}
	}
	return row
}

func (row runRow) toRunRecord() *RunRecord {
	r := &RunRecord{
		RunID:     row.RunID,
		Cluster:   row.Cluster,
		Mode:      row.Mode,
		StartedAt: row.StartedAt.Time,
		Err:       row.Err.String,
	}
	if row.FinishedAt.Valid {
		r.FinishedAt = row.FinishedAt.Time
	}
	return r
}

type eventRow struct {
	RunID     string       `db:"run_id"`
	Cluster   string       `db:"cluster"`
	Component string       `db:"component"`
	State     string       `db:"state"`
	At        sql.NullTime `db:"at"`
}

func componentEventRow(e *ComponentEvent) eventRow {
	return eventRow{
		RunID:     e.RunID,
		Cluster:   e.Cluster,
		Component: e.Component,
		State:     e.State,
		At:        sql.NullTime{Time: e.At, Valid: !e.At.IsZero()},
	}
}

func (row eventRow) toComponentEvent() *ComponentEvent {
	return &ComponentEvent{
		RunID:     row.RunID,
		Cluster:   row.Cluster,
		Component: row.Component,
		State:     row.State,
		At:        row.At.Time,
	}
}
