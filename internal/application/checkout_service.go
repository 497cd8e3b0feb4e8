package application

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/easypayhq/easypay/internal/domain/entity"
	"github.com/easypayhq/easypay/pkg/payments"
)

// CheckoutService turns catalog listings into hosted checkout sessions paid
// under the seller's own provider account. The seller's API key is resolved
// and decrypted per call and handed to the payment builder as a parameter.
type CheckoutService struct {
	Accounts   *AccountService
	Catalog    *CatalogService
	SuccessURL string
	Logger     *logrus.Logger

	// sessionFn is swapped out in tests to avoid network calls.
	sessionFn func(ctx context.Context, apiKey string, in payments.CheckoutInput) (string, error)
}

func NewCheckoutService(accounts *AccountService, catalog *CatalogService, successURL string, logger *logrus.Logger) *CheckoutService {
	return &CheckoutService{
		Accounts:   accounts,
		Catalog:    catalog,
		SuccessURL: successURL,
		Logger:     logger,
		sessionFn:  payments.NewCheckoutSession,
	}
}

// CheckoutItemInput describes the single product being bought; the storefront
// client sends the listing fields directly.
type CheckoutItemInput struct {
	Name      string
	Price     float64
	Currency  string
	ImageURL  string
	ReturnURL string
}

// CheckoutItem starts a single-item purchase under the seller's provider
// account and returns the hosted payment page URL.
func (s *CheckoutService) CheckoutItem(ctx context.Context, owner string, item CheckoutItemInput) (string, error) {
	apiKey, err := s.Accounts.ProviderKey(ctx, owner)
	if err != nil {
		return "", err
	}

	returnURL := item.ReturnURL
	if returnURL == "" {
		returnURL = s.SuccessURL
	}
	in := payments.CheckoutInput{
		Items: []payments.LineItem{{
			Name:     item.Name,
			Price:    item.Price,
			Currency: item.Currency,
			ImageURL: item.ImageURL,
			Quantity: 1,
		}},
		SuccessURL: returnURL,
		CancelURL:  returnURL,
		Metadata:   payments.ItemMetadata(owner, item.Name, item.Price, item.Currency, item.ImageURL),
	}
	url, err := s.sessionFn(ctx, apiKey, in)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("username", owner).Error("checkout session failed")
		}
		return "", err
	}
	return url, nil
}

// CartLine is one entry of a multi-item checkout: a listing id plus quantity.
type CartLine struct {
	ItemID   int64
	Quantity int64
}

// CheckoutCart starts a purchase covering several of the seller's listings,
// optionally with a flat-rate shipping choice.
func (s *CheckoutService) CheckoutCart(ctx context.Context, owner string, lines []CartLine, shipping *payments.ShippingOption) (string, error) {
	if len(lines) == 0 {
		return "", payments.ErrNoItems
	}
	catalog, err := s.Catalog.List(ctx, owner)
	if err != nil {
		return "", err
	}
	byID := make(map[int64]*entity.CatalogItem, len(catalog))
	for i := range catalog {
		byID[catalog[i].ID] = &catalog[i]
	}

	items := make([]payments.LineItem, 0, len(lines))
	for _, line := range lines {
		item, ok := byID[line.ItemID]
		if !ok {
			return "", ErrItemNotFound
		}
		qty := line.Quantity
		if qty <= 0 {
			qty = 1
		}
		items = append(items, payments.LineItem{
			Name:     item.Name,
			Price:    item.Price,
			Currency: item.Currency,
			ImageURL: item.ImageURL,
			Quantity: qty,
		})
	}

	apiKey, err := s.Accounts.ProviderKey(ctx, owner)
	if err != nil {
		return "", err
	}
	in := payments.CheckoutInput{
		Items:      items,
		Shipping:   shipping,
		SuccessURL: s.SuccessURL,
		CancelURL:  s.SuccessURL,
		Metadata:   map[string]string{"username": owner},
	}
	url, err := s.sessionFn(ctx, apiKey, in)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("username", owner).Error("checkout session failed")
		}
		return "", err
	}
	return url, nil
}
