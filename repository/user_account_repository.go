package repository

import (
	"context"
	"fmt"
	"strconv"

	"incoin/database"
	"incoin/domain/entities"
)

// UserAccountRepository implements interfaces.UserAccountRepository on Postgres
type UserAccountRepository struct {
	q       Queryable
	guildID int64
}

// NewUserAccountRepository creates a repository on the pool for one guild
func NewUserAccountRepository(db *database.DB, guildID int64) *UserAccountRepository {
	return &UserAccountRepository{q: db.Pool, guildID: guildID}
}

// NewUserAccountRepositoryScoped creates a repository bound to a transaction and guild
func NewUserAccountRepositoryScoped(tx Queryable, guildID int64) *UserAccountRepository {
	return &UserAccountRepository{q: tx, guildID: guildID}
}

// Get loads one account, returning nil when the user has no stored record
func (r *UserAccountRepository) Get(ctx context.Context, userID int64) (*entities.UserAccount, error) {
	doc, err := userAccountsTable.get(ctx, r.q, r.guildID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user %d in guild %d: %w", userID, r.guildID, err)
	}
	if doc == nil {
		return nil, nil
	}
	return entities.DecodeUserAccount(r.guildID, userID, doc.SchemaVersion, doc.Data)
}

// Upsert writes the account document
func (r *UserAccountRepository) Upsert(ctx context.Context, user *entities.UserAccount) error {
	data, err := entities.Encode(user)
	if err != nil {
		return err
	}
	if err := userAccountsTable.upsert(ctx, r.q, r.guildID, user.UserID, entities.CurrentSchemaVersion, data); err != nil {
		return fmt.Errorf("failed to save user %d in guild %d: %w", user.UserID, r.guildID, err)
	}
	return nil
}

// Delete removes the account document
func (r *UserAccountRepository) Delete(ctx context.Context, userID int64) error {
	if err := userAccountsTable.delete(ctx, r.q, r.guildID, userID); err != nil {
		return fmt.Errorf("failed to delete user %d in guild %d: %w", userID, r.guildID, err)
	}
	return nil
}

// List returns every stored account of the guild
func (r *UserAccountRepository) List(ctx context.Context) ([]*entities.UserAccount, error) {
	docs, err := userAccountsTable.list(ctx, r.q, r.guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list users in guild %d: %w", r.guildID, err)
	}

	users := make([]*entities.UserAccount, 0, len(docs))
	for _, doc := range docs {
		userID, err := strconv.ParseInt(doc.Key, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid user id %q in guild %d: %w", doc.Key, r.guildID, err)
		}
		user, err := entities.DecodeUserAccount(r.guildID, userID, doc.SchemaVersion, doc.Data)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}
