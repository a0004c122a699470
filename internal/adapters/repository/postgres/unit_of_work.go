package postgres

import (
	"context"
	"database/sql"
	"filedrop/internal/core/port"
)

type sqlUnitOfWork struct {
	db *sql.DB
	tx *sql.Tx
}

// NewUnitOfWork creates a unit of work running its repositories on db, or on a transaction inside Execute
func NewUnitOfWork(db *sql.DB) port.UnitOfWork {
	return &sqlUnitOfWork{db: db}
}

func (u *sqlUnitOfWork) querier() SQLQuerier {
	if u.tx != nil {
		return u.tx
	}
	return u.db
}

func (u *sqlUnitOfWork) UploadSessionRepo() port.UploadSessionRepository {
	return NewSQLUploadSessionRepository(u.querier())
}

func (u *sqlUnitOfWork) FileRepo() port.FileRepository {
	return NewSqlFileRepository(u.querier())
}

func (u *sqlUnitOfWork) QuotaRepo() port.QuotaRepository {
	return NewSqlQuotaRepository(u.querier())
}

func (u *sqlUnitOfWork) FolderRepo() port.FolderRepository {
	return NewSqlFolderRepository(u.querier())
}

func (u *sqlUnitOfWork) Execute(ctx context.Context, fn func(uow port.UnitOfWork) error) error {
	if u.tx != nil {
		return fn(u)
	}

	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback()
			panic(r)
		}
	}()

	uowWithTx := &sqlUnitOfWork{db: u.db, tx: tx}

	if err := fn(uowWithTx); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}
