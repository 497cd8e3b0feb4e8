package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/easypayhq/easypay/pkg/payments"
)

func newTestCheckoutService(t *testing.T) (*CheckoutService, *AccountService, *CatalogService) {
	t.Helper()
	accounts, _ := newTestAccountService(t)
	catalog := NewCatalogService(newFakeCatalogRepo(), nil, nil, "")
	svc := NewCheckoutService(accounts, catalog, "https://shop.example.com/thanks", nil)
	return svc, accounts, catalog
}

func TestCheckoutItem(t *testing.T) {
	ctx := context.Background()
	svc, accounts, _ := newTestCheckoutService(t)

	_, err := accounts.Register(ctx, RegisterInput{
		Username: "alice", Email: "alice@example.com", Password: "alices-password", ProviderKey: "sk_test_alice",
	})
	require.NoError(t, err)

	var gotKey string
	var gotInput payments.CheckoutInput
	svc.sessionFn = func(_ context.Context, apiKey string, in payments.CheckoutInput) (string, error) {
		gotKey = apiKey
		gotInput = in
		return "https://checkout.example.com/session/1", nil
	}

	item := CheckoutItemInput{Name: "Poster", Price: 14.5, Currency: "usd", ImageURL: "https://img/poster.jpg"}
	url, err := svc.CheckoutItem(ctx, "alice", item)
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.example.com/session/1", url)

	assert.Equal(t, "sk_test_alice", gotKey, "provider key is decrypted before the call")
	require.Len(t, gotInput.Items, 1)
	assert.Equal(t, "Poster", gotInput.Items[0].Name)
	assert.Equal(t, int64(1), gotInput.Items[0].Quantity)
	assert.Equal(t, "https://shop.example.com/thanks", gotInput.SuccessURL, "falls back to the configured success URL")
	assert.Equal(t, "alice", gotInput.Metadata["username"])
	assert.Equal(t, "14.5", gotInput.Metadata["price"])

	t.Run("buyer return url wins", func(t *testing.T) {
		item.ReturnURL = "https://buyer.example.com/done"
		_, err := svc.CheckoutItem(ctx, "alice", item)
		require.NoError(t, err)
		assert.Equal(t, "https://buyer.example.com/done", gotInput.SuccessURL)
		assert.Equal(t, "https://buyer.example.com/done", gotInput.CancelURL)
	})

	t.Run("unknown seller", func(t *testing.T) {
		_, err := svc.CheckoutItem(ctx, "mallory", item)
		assert.ErrorIs(t, err, ErrAccountNotFound)
	})
}

func TestCheckoutCart(t *testing.T) {
	ctx := context.Background()
	svc, accounts, catalog := newTestCheckoutService(t)

	_, err := accounts.Register(ctx, RegisterInput{
		Username: "bob", Email: "bob@example.com", Password: "bobs-password", ProviderKey: "sk_test_bob",
	})
	require.NoError(t, err)
	items, err := catalog.AddItem(ctx, "bob", AddItemInput{Name: "Shirt", Price: 25, Currency: "usd"})
	require.NoError(t, err)
	items, err = catalog.AddItem(ctx, "bob", AddItemInput{Name: "Cap", Price: 12, Currency: "usd"})
	require.NoError(t, err)
	require.Len(t, items, 2)

	var gotInput payments.CheckoutInput
	svc.sessionFn = func(_ context.Context, _ string, in payments.CheckoutInput) (string, error) {
		gotInput = in
		return "https://checkout.example.com/session/2", nil
	}

	shipping := &payments.ShippingOption{Title: "Standard", Price: 4.99, Currency: "usd", DaysMin: 3, DaysMax: 7}
	url, err := svc.CheckoutCart(ctx, "bob", []CartLine{
		{ItemID: items[0].ID, Quantity: 2},
		{ItemID: items[1].ID}, // zero quantity defaults to one
	}, shipping)
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.example.com/session/2", url)

	require.Len(t, gotInput.Items, 2)
	assert.Equal(t, int64(2), gotInput.Items[0].Quantity)
	assert.Equal(t, int64(1), gotInput.Items[1].Quantity)
	require.NotNil(t, gotInput.Shipping)
	assert.Equal(t, "Standard", gotInput.Shipping.Title)

	t.Run("empty cart", func(t *testing.T) {
		_, err := svc.CheckoutCart(ctx, "bob", nil, nil)
		assert.ErrorIs(t, err, payments.ErrNoItems)
	})

	t.Run("line references missing item", func(t *testing.T) {
		_, err := svc.CheckoutCart(ctx, "bob", []CartLine{{ItemID: 9999}}, nil)
		assert.ErrorIs(t, err, ErrItemNotFound)
	})
}
