package repository

import (
	"context"
	"fmt"

	"incoin/database"
	"incoin/domain/entities"
)

// StockRepository implements interfaces.StockRepository on Postgres
type StockRepository struct {
	q       Queryable
	guildID int64
}

// NewStockRepository creates a repository on the pool for one guild
func NewStockRepository(db *database.DB, guildID int64) *StockRepository {
	return &StockRepository{q: db.Pool, guildID: guildID}
}

// NewStockRepositoryScoped creates a repository bound to a transaction and guild
func NewStockRepositoryScoped(tx Queryable, guildID int64) *StockRepository {
	return &StockRepository{q: tx, guildID: guildID}
}

// Get loads the stock of a company, returning nil when none is stored
func (r *StockRepository) Get(ctx context.Context, companyID string) (*entities.StockRecord, error) {
	doc, err := companyStocksTable.get(ctx, r.q, r.guildID, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get stock %s in guild %d: %w", companyID, r.guildID, err)
	}
	if doc == nil {
		return nil, nil
	}
	return entities.DecodeStockRecord(r.guildID, companyID, doc.SchemaVersion, doc.Data)
}

// Upsert writes the stock document
func (r *StockRepository) Upsert(ctx context.Context, stock *entities.StockRecord) error {
	data, err := entities.Encode(stock)
	if err != nil {
		return err
	}
	if err := companyStocksTable.upsert(ctx, r.q, r.guildID, stock.CompanyID, entities.CurrentSchemaVersion, data); err != nil {
		return fmt.Errorf("failed to save stock %s in guild %d: %w", stock.CompanyID, r.guildID, err)
	}
	return nil
}

// Delete removes the stock document
func (r *StockRepository) Delete(ctx context.Context, companyID string) error {
	if err := companyStocksTable.delete(ctx, r.q, r.guildID, companyID); err != nil {
		return fmt.Errorf("failed to delete stock %s in guild %d: %w", companyID, r.guildID, err)
	}
	return nil
}

// List returns every stock record of the guild
func (r *StockRepository) List(ctx context.Context) ([]*entities.StockRecord, error) {
	docs, err := companyStocksTable.list(ctx, r.q, r.guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list stocks in guild %d: %w", r.guildID, err)
	}

	stocks := make([]*entities.StockRecord, 0, len(docs))
	for _, doc := range docs {
		stock, err := entities.DecodeStockRecord(r.guildID, doc.Key, doc.SchemaVersion, doc.Data)
		if err != nil {
			return nil, err
		}
		stocks = append(stocks, stock)
	}
	return stocks, nil
}
