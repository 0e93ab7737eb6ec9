package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestTransferServiceConcurrentSharedAccount(t *testing.T) {
	fixture, accounts := newLedgerFixture(t, 10000, 0)
	ctx := context.Background()

	// 100 concurrent transfers of 10 out of the same source must serialize:
	// no lost update, exact final balances.
	var group errgroup.Group
	for i := 0; i < 100; i++ {
		group.Go(func() error {
			_, err := fixture.service.ProcessTransfer(ctx, transferRequest(10, accounts[0].ID, accounts[1].ID))
			return err
		})
	}
	require.NoError(t, group.Wait())

	source, err := fixture.accounts.GetByID(ctx, accounts[0].ID)
	require.NoError(t, err)
	assert.True(t, source.AvailableCash.Equal(decimal.NewFromInt(9000)), "source balance = %s", source.AvailableCash)

	destination, err := fixture.accounts.GetByID(ctx, accounts[1].ID)
	require.NoError(t, err)
	assert.True(t, destination.AvailableCash.Equal(decimal.NewFromInt(1000)), "destination balance = %s", destination.AvailableCash)
}

func TestTransferServiceConcurrentOppositeDirections(t *testing.T) {
	fixture, accounts := newLedgerFixture(t, 5000, 5000)
	ctx := context.Background()

	// Opposite-direction transfers between the same pair lock the accounts in
	// ascending id order, so neither can hold one lock while waiting on the
	// other. The deadline guards against a deadlock regression.
	done := make(chan error, 1)
	go func() {
		var group errgroup.Group
		for i := 0; i < 50; i++ {
			group.Go(func() error {
				_, err := fixture.service.ProcessTransfer(ctx, transferRequest(7, accounts[0].ID, accounts[1].ID))
				return err
			})
			group.Go(func() error {
				_, err := fixture.service.ProcessTransfer(ctx, transferRequest(7, accounts[1].ID, accounts[0].ID))
				return err
			})
		}
		done <- group.Wait()
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(30 * time.Second):
		t.Fatal("opposite-direction transfers did not complete; likely deadlocked")
	}

	source, err := fixture.accounts.GetByID(ctx, accounts[0].ID)
	require.NoError(t, err)
	destination, err := fixture.accounts.GetByID(ctx, accounts[1].ID)
	require.NoError(t, err)

	// Equal traffic both ways leaves both balances where they started.
	assert.True(t, source.AvailableCash.Equal(decimal.NewFromInt(5000)), "source balance = %s", source.AvailableCash)
	assert.True(t, destination.AvailableCash.Equal(decimal.NewFromInt(5000)), "destination balance = %s", destination.AvailableCash)
}

func TestTransferServiceConcurrentDisjointPairs(t *testing.T) {
	fixture, accounts := newLedgerFixture(t, 1000, 1000, 1000, 1000)
	ctx := context.Background()

	var group errgroup.Group
	for i := 0; i < 50; i++ {
		group.Go(func() error {
			_, err := fixture.service.ProcessTransfer(ctx, transferRequest(5, accounts[0].ID, accounts[1].ID))
			return err
		})
		group.Go(func() error {
			_, err := fixture.service.ProcessTransfer(ctx, transferRequest(5, accounts[2].ID, accounts[3].ID))
			return err
		})
	}
	require.NoError(t, group.Wait())

	balances := []int64{750, 1250, 750, 1250}
	for i, expected := range balances {
		account, err := fixture.accounts.GetByID(ctx, accounts[i].ID)
		require.NoError(t, err)
		assert.True(t, account.AvailableCash.Equal(decimal.NewFromInt(expected)), "account %d balance = %s", account.ID, account.AvailableCash)
	}
}

func TestTransferServiceConcurrentOverdraw(t *testing.T) {
	fixture, accounts := newLedgerFixture(t, 100, 0)
	ctx := context.Background()

	// 30 concurrent withdrawals of 10 against a balance of 100: exactly 10
	// succeed, the rest fail with insufficient funds, and the source never
	// goes negative.
	results := make(chan error, 30)
	var group errgroup.Group
	for i := 0; i < 30; i++ {
		group.Go(func() error {
			_, err := fixture.service.ProcessTransfer(ctx, transferRequest(10, accounts[0].ID, accounts[1].ID))
			results <- err
			return nil
		})
	}
	require.NoError(t, group.Wait())
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
		}
	}
	assert.Equal(t, 10, succeeded)

	source, err := fixture.accounts.GetByID(ctx, accounts[0].ID)
	require.NoError(t, err)
	assert.True(t, source.AvailableCash.Equal(decimal.Zero), "source balance = %s", source.AvailableCash)

	transactions, err := fixture.transactions.List(ctx)
	require.NoError(t, err)
	assert.Len(t, transactions, 30)
}
