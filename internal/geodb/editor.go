package geodb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// EditState is the position of an Editor in its session lifecycle:
// Idle → Editing → OperationOpen → Editing → Committed | RolledBack.
type EditState int

const (
	EditIdle EditState = iota
	EditEditing
	EditOperationOpen
	EditCommitted
	EditRolledBack
)

func (s EditState) String() string {
	switch s {
	case EditIdle:
		return "idle"
	case EditEditing:
		return "editing"
	case EditOperationOpen:
		return "operation-open"
	case EditCommitted:
		return "committed"
	case EditRolledBack:
		return "rolled-back"
	default:
		return fmt.Sprintf("EditState(%d)", int(s))
	}
}

const operationSavepoint = "idmend_operation"

// UpdateFunc overwrites the identifier field of the cursor's current row.
type UpdateFunc func(value string) error

// Editor is a single edit session against one workspace. The session is a
// database transaction; the operation inside it is a savepoint.
type Editor struct {
	store *Store
	tx    *sql.Tx
	state EditState
}

// NewEditor returns an idle edit session bound to the store.
func (s *Store) NewEditor() *Editor {
	return &Editor{store: s}
}

// State reports the current session state.
func (e *Editor) State() EditState {
	return e.state
}

func (e *Editor) transition(op string, from ...EditState) error {
	for _, s := range from {
		if e.state == s {
			return nil
		}
	}
	return fmt.Errorf("%w: cannot %s while %s", ErrEditState, op, e.state)
}

// StartEditing opens the session transaction.
func (e *Editor) StartEditing(ctx context.Context) error {
	if err := e.transition("start editing", EditIdle); err != nil {
		return err
	}
	var tx *sql.Tx
	if err := retryOnBusy(ctx, func() error {
		var err error
		tx, err = e.store.db.BeginTx(ctx, nil)
		return err
	}); err != nil {
		return fmt.Errorf("begin edit session: %w", err)
	}
	e.tx = tx
	e.state = EditEditing
	return nil
}

// StartOperation opens the operation that groups the session's row updates.
func (e *Editor) StartOperation(ctx context.Context) error {
	if err := e.transition("start operation", EditEditing); err != nil {
		return err
	}
	if _, err := e.tx.ExecContext(ctx, "SAVEPOINT "+operationSavepoint); err != nil {
		return fmt.Errorf("begin edit operation: %w", err)
	}
	e.state = EditOperationOpen
	return nil
}

// StopOperation closes the open operation, keeping its updates when save is
// true and discarding them otherwise. The session stays open either way.
func (e *Editor) StopOperation(ctx context.Context, save bool) error {
	if err := e.transition("stop operation", EditOperationOpen); err != nil {
		return err
	}
	stmt := "RELEASE SAVEPOINT " + operationSavepoint
	if !save {
		stmt = "ROLLBACK TO SAVEPOINT " + operationSavepoint
	}
	if _, err := e.tx.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("stop edit operation: %w", err)
	}
	e.state = EditEditing
	return nil
}

// StopEditing ends the session. With save the transaction commits; an
// operation must not be open. Without save everything since StartEditing is
// rolled back, including an operation still open.
func (e *Editor) StopEditing(save bool) error {
	if save {
		if err := e.transition("save edits", EditEditing); err != nil {
			return err
		}
		if err := e.tx.Commit(); err != nil {
			e.state = EditRolledBack
			return fmt.Errorf("commit edit session: %w", err)
		}
		e.state = EditCommitted
		return nil
	}

	if err := e.transition("discard edits", EditEditing, EditOperationOpen); err != nil {
		return err
	}
	e.state = EditRolledBack
	if err := e.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("roll back edit session: %w", err)
	}
	return nil
}

// UpdateCursor walks fc in row-id order inside the open operation and calls
// fn with each row and a function that overwrites its identifier field. Rows
// are read in full before the first callback so updates never share the
// connection with an open result set.
func (e *Editor) UpdateCursor(ctx context.Context, fc *FeatureClass, fn func(Row, UpdateFunc) error) error {
	if err := e.transition("open update cursor", EditOperationOpen); err != nil {
		return err
	}

	rows, err := e.readRows(ctx, fc)
	if err != nil {
		return err
	}

	stmt, err := e.tx.PrepareContext(ctx, fc.updateSQL)
	if err != nil {
		return fmt.Errorf("prepare update %s: %w", fc.Name(), err)
	}
	defer stmt.Close()

	for _, row := range rows {
		oid := row.OID
		update := func(value string) error {
			arg, err := fc.fieldArg(value)
			if err != nil {
				return err
			}
			res, err := stmt.ExecContext(ctx, arg, oid)
			if err != nil {
				return fmt.Errorf("update %s %s=%d: %w", fc.Name(), fc.oid.Name, oid, err)
			}
			if n, err := res.RowsAffected(); err == nil && n != 1 {
				return fmt.Errorf("update %s %s=%d: %d rows affected", fc.Name(), fc.oid.Name, oid, n)
			}
			return nil
		}
		if err := fn(row, update); err != nil {
			return err
		}
	}
	return nil
}

func (e *Editor) readRows(ctx context.Context, fc *FeatureClass) ([]Row, error) {
	rows, err := e.tx.QueryContext(ctx, fc.selectSQL)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", fc.Name(), err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		row, err := scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", fc.Name(), err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("search %s: %w", fc.Name(), err)
	}
	return out, nil
}
