package repository

import (
	"context"
	"fmt"

	"incoin/database"
	"incoin/domain/entities"
)

// CompanyRepository implements interfaces.CompanyRepository on Postgres
type CompanyRepository struct {
	q       Queryable
	guildID int64
}

// NewCompanyRepository creates a repository on the pool for one guild
func NewCompanyRepository(db *database.DB, guildID int64) *CompanyRepository {
	return &CompanyRepository{q: db.Pool, guildID: guildID}
}

// NewCompanyRepositoryScoped creates a repository bound to a transaction and guild
func NewCompanyRepositoryScoped(tx Queryable, guildID int64) *CompanyRepository {
	return &CompanyRepository{q: tx, guildID: guildID}
}

// Get loads one company, returning nil when it does not exist
func (r *CompanyRepository) Get(ctx context.Context, companyID string) (*entities.Company, error) {
	doc, err := companiesTable.get(ctx, r.q, r.guildID, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get company %s in guild %d: %w", companyID, r.guildID, err)
	}
	if doc == nil {
		return nil, nil
	}
	return entities.DecodeCompany(r.guildID, companyID, doc.SchemaVersion, doc.Data)
}

// Upsert writes the company document
func (r *CompanyRepository) Upsert(ctx context.Context, company *entities.Company) error {
	data, err := entities.Encode(company)
	if err != nil {
		return err
	}
	if err := companiesTable.upsert(ctx, r.q, r.guildID, company.ID, entities.CurrentSchemaVersion, data); err != nil {
		return fmt.Errorf("failed to save company %s in guild %d: %w", company.ID, r.guildID, err)
	}
	return nil
}

// Delete removes the company document
func (r *CompanyRepository) Delete(ctx context.Context, companyID string) error {
	if err := companiesTable.delete(ctx, r.q, r.guildID, companyID); err != nil {
		return fmt.Errorf("failed to delete company %s in guild %d: %w", companyID, r.guildID, err)
	}
	return nil
}

// List returns every company of the guild in creation order
func (r *CompanyRepository) List(ctx context.Context) ([]*entities.Company, error) {
	docs, err := companiesTable.list(ctx, r.q, r.guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies in guild %d: %w", r.guildID, err)
	}

	companies := make([]*entities.Company, 0, len(docs))
	for _, doc := range docs {
		company, err := entities.DecodeCompany(r.guildID, doc.Key, doc.SchemaVersion, doc.Data)
		if err != nil {
			return nil, err
		}
		companies = append(companies, company)
	}
	return companies, nil
}
