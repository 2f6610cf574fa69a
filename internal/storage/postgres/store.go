package postgres

import (
	"context"
	"database/sql"
	"fmt"

	interfaces "github.com/sheikh-saqib/timelocked-savings-ledger/internal/interfaces"
	"github.com/sheikh-saqib/timelocked-savings-ledger/internal/models"
)

// PostgresDepositStore persists deposits in a deposits table keyed by
// (owner, deposit_index). Expects the schema:
//
//	CREATE TABLE deposits (
//	    owner         TEXT        NOT NULL,
//	    deposit_index BIGINT      NOT NULL,
//	    amount        NUMERIC     NOT NULL,
//	    start_time    TIMESTAMPTZ NOT NULL,
//	    state         TEXT        NOT NULL,
//	    PRIMARY KEY (owner, deposit_index)
//	);
type PostgresDepositStore struct {
	db *sql.DB
}

func NewPostgresDepositStore(db *sql.DB) *PostgresDepositStore {
	return &PostgresDepositStore{
		db: db,
	}
}

// AppendDeposit assigns the owner's next index inside one transaction so
// concurrent appends for the same owner cannot collide.
func (p *PostgresDepositStore) AppendDeposit(ctx context.Context, d models.Deposit) (uint64, error) {
	dbTx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			dbTx.Rollback()
		}
	}()

	const nextIndexQuery = `SELECT COALESCE(MAX(deposit_index) + 1, 0) FROM deposits WHERE owner = $1`
	var index uint64
	if err = dbTx.QueryRowContext(ctx, nextIndexQuery, d.Owner).Scan(&index); err != nil {
		return 0, err
	}

	const insertQuery = `INSERT INTO deposits (owner, deposit_index, amount, start_time, state)
	VALUES ($1,$2,$3,$4,$5)`
	if _, err = dbTx.ExecContext(ctx, insertQuery, d.Owner, index, d.Amount, d.StartTime, d.State); err != nil {
		return 0, err
	}

	if err = dbTx.Commit(); err != nil {
		return 0, err
	}
	return index, nil
}

func (p *PostgresDepositStore) GetDeposit(ctx context.Context, owner string, index uint64) (models.Deposit, error) {
	const query = `SELECT owner, deposit_index, amount, start_time, state FROM deposits
	WHERE owner = $1 AND deposit_index = $2`

	var d models.Deposit
	err := p.db.QueryRowContext(ctx, query, owner, index).Scan(
		&d.Owner,
		&d.Index,
		&d.Amount,
		&d.StartTime,
		&d.State,
	)
	if err == sql.ErrNoRows {
		return models.Deposit{}, fmt.Errorf("%w: %s/%d", models.ErrDepositNotFound, owner, index)
	}
	if err != nil {
		return models.Deposit{}, err
	}
	return d, nil
}

func (p *PostgresDepositStore) SetDepositState(ctx context.Context, owner string, index uint64, state models.DepositState) error {
	const query = `UPDATE deposits SET state = $3 WHERE owner = $1 AND deposit_index = $2`

	result, err := p.db.ExecContext(ctx, query, owner, index, state)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s/%d", models.ErrDepositNotFound, owner, index)
	}
	return nil
}

func (p *PostgresDepositStore) DepositsByOwner(ctx context.Context, owner string) ([]models.Deposit, error) {
	const query = `SELECT owner, deposit_index, amount, start_time, state FROM deposits
	WHERE owner = $1 ORDER BY deposit_index`

	rows, err := p.db.QueryContext(ctx, query, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanDeposits(rows)
}

func (p *PostgresDepositStore) ActiveDeposits(ctx context.Context) ([]models.Deposit, error) {
	const query = `SELECT owner, deposit_index, amount, start_time, state FROM deposits
	WHERE state = $1 ORDER BY owner, deposit_index`

	rows, err := p.db.QueryContext(ctx, query, models.DepositActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanDeposits(rows)
}

func scanDeposits(rows *sql.Rows) ([]models.Deposit, error) {
	var deposits []models.Deposit
	for rows.Next() {
		var d models.Deposit
		if err := rows.Scan(&d.Owner, &d.Index, &d.Amount, &d.StartTime, &d.State); err != nil {
			return nil, err
		}
		deposits = append(deposits, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return deposits, nil
}

var _ interfaces.DepositStore = (*PostgresDepositStore)(nil)
