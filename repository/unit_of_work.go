package repository

import (
	"context"
	"errors"
	"fmt"

	"incoin/database"
	"incoin/domain/interfaces"

	"github.com/jackc/pgx/v5"
)

// unitOfWork implements the UnitOfWork interface
type unitOfWork struct {
	db      *database.DB
	tx      pgx.Tx
	ctx     context.Context
	guildID int64

	userAccountRepo   interfaces.UserAccountRepository
	companyRepo       interfaces.CompanyRepository
	stockRepo         interfaces.StockRepository
	channelRewardRepo interfaces.ChannelRewardRepository
}

type unitOfWorkFactory struct {
	db *database.DB
}

// NewUnitOfWorkFactory creates a new UnitOfWork factory
func NewUnitOfWorkFactory(db *database.DB) interfaces.UnitOfWorkFactory {
	return &unitOfWorkFactory{db: db}
}

// CreateForGuild creates a unit of work whose repositories are scoped to guildID
func (f *unitOfWorkFactory) CreateForGuild(guildID int64) interfaces.UnitOfWork {
	return &unitOfWork{
		db:      f.db,
		guildID: guildID,
	}
}

// Begin starts a new transaction
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}

	tx, err := u.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	u.tx = tx
	u.ctx = ctx

	u.userAccountRepo = NewUserAccountRepositoryScoped(tx, u.guildID)
	u.companyRepo = NewCompanyRepositoryScoped(tx, u.guildID)
	u.stockRepo = NewStockRepositoryScoped(tx, u.guildID)
	u.channelRewardRepo = NewChannelRewardRepositoryScoped(tx, u.guildID)

	return nil
}

// Commit commits the transaction
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}

	if err := u.tx.Commit(u.ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	u.tx = nil
	return nil
}

// Rollback rolls back the transaction. It is safe to call after Commit.
func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil
	}

	err := u.tx.Rollback(u.ctx)
	if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}

	u.tx = nil
	return nil
}

// UserAccountRepository returns the user account repository for this unit of work
func (u *unitOfWork) UserAccountRepository() interfaces.UserAccountRepository {
	if u.userAccountRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.userAccountRepo
}

// CompanyRepository returns the company repository for this unit of work
func (u *unitOfWork) CompanyRepository() interfaces.CompanyRepository {
	if u.companyRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.companyRepo
}

// StockRepository returns the stock repository for this unit of work
func (u *unitOfWork) StockRepository() interfaces.StockRepository {
	if u.stockRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.stockRepo
}

// ChannelRewardRepository returns the channel reward repository for this unit of work
func (u *unitOfWork) ChannelRewardRepository() interfaces.ChannelRewardRepository {
	if u.channelRewardRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.channelRewardRepo
}
