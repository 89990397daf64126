package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserAccount_AddBalance(t *testing.T) {
	t.Parallel()

	t.Run("clamps at zero", func(t *testing.T) {
		user := NewUserAccount(1, 2)
		user.Balance = 500

		user.AddBalance(-700)

		assert.Equal(t, int64(0), user.Balance)
	})

	t.Run("never negative over any sequence", func(t *testing.T) {
		user := NewUserAccount(1, 2)
		for _, delta := range []int64{100, -50, -500, 20, -21, 1_000_000, -2_000_000} {
			user.AddBalance(delta)
			user.AddBankBalance(delta)
			assert.GreaterOrEqual(t, user.Balance, int64(0))
			assert.GreaterOrEqual(t, user.BankBalance, int64(0))
		}
	})
}

func TestUserAccount_AddCreditPoint(t *testing.T) {
	t.Parallel()

	t.Run("recovering from negative clears punishment", func(t *testing.T) {
		user := NewUserAccount(1, 2)
		user.CreditPoint = -1
		user.PunishedForNegativeCredit = true

		user.AddCreditPoint(1)

		assert.Equal(t, int64(0), user.CreditPoint)
		assert.False(t, user.PunishedForNegativeCredit)
	})

	t.Run("staying negative keeps punishment", func(t *testing.T) {
		user := NewUserAccount(1, 2)
		user.CreditPoint = -10
		user.PunishedForNegativeCredit = true

		user.AddCreditPoint(1)

		assert.True(t, user.PunishedForNegativeCredit)
	})

	t.Run("going negative does not set punishment", func(t *testing.T) {
		user := NewUserAccount(1, 2)
		user.CreditPoint = 2

		user.AddCreditPoint(-5)

		assert.Equal(t, int64(-3), user.CreditPoint)
		assert.False(t, user.PunishedForNegativeCredit)
	})
}

func TestUserAccount_AddStock(t *testing.T) {
	t.Parallel()

	user := NewUserAccount(1, 2)
	user.AddStock("c1", 10)
	assert.Equal(t, int64(10), user.StockAmount("c1"))

	user.AddStock("c1", -10)
	assert.Equal(t, int64(0), user.StockAmount("c1"))
	assert.NotContains(t, user.Stocks, "c1")
}

func TestUserAccount_Clone(t *testing.T) {
	t.Parallel()

	user := NewUserAccount(1, 2)
	user.AddStock("c1", 3)

	clone := user.Clone()
	clone.AddStock("c1", 5)
	clone.Balance = 99

	assert.Equal(t, int64(3), user.StockAmount("c1"))
	assert.Equal(t, int64(0), user.Balance)
}
