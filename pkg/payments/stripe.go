package payments

import (
	"context"
	"errors"
	"math"
	"strconv"

	stripe "github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
)

// ErrNoItems is returned when a checkout is requested with an empty cart.
var ErrNoItems = errors.New("checkout requires at least one line item")

// LineItem is one purchasable entry in a checkout session. Price is the unit
// price in major currency units; Stripe receives it in minor units.
type LineItem struct {
	Name     string
	Price    float64
	Currency string
	ImageURL string
	Quantity int64
}

// ShippingOption is a flat-rate shipping choice shown on the hosted page.
type ShippingOption struct {
	Title    string
	Price    float64
	Currency string
	DaysMin  int64
	DaysMax  int64
}

// CheckoutInput carries everything needed to build a hosted checkout session.
// Zero or negative prices and quantities are passed through unchanged; Stripe
// rejects them, the builder does not second-guess the catalog.
type CheckoutInput struct {
	Items      []LineItem
	Shipping   *ShippingOption
	SuccessURL string
	CancelURL  string
	Metadata   map[string]string
}

// NewCheckoutSession creates a Stripe hosted checkout session under the
// seller's API key and returns the URL the buyer is redirected to. The key is
// a plain per-call parameter; nothing is retained between calls.
func NewCheckoutSession(ctx context.Context, apiKey string, in CheckoutInput) (string, error) {
	if len(in.Items) == 0 {
		return "", ErrNoItems
	}

	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(in.Items))
	for _, item := range in.Items {
		qty := item.Quantity
		if qty == 0 {
			qty = 1
		}
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				UnitAmount: stripe.Int64(minorUnits(item.Price)),
				Currency:   stripe.String(item.Currency),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name:   stripe.String(item.Name),
					Images: stripe.StringSlice([]string{item.ImageURL}),
				},
			},
			Quantity: stripe.Int64(qty),
		})
	}

	params := &stripe.CheckoutSessionParams{
		Params:             stripe.Params{Context: ctx},
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems:          lineItems,
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		ShippingAddressCollection: &stripe.CheckoutSessionShippingAddressCollectionParams{
			AllowedCountries: stripe.StringSlice([]string{"US"}),
		},
		SuccessURL: stripe.String(in.SuccessURL),
		CancelURL:  stripe.String(in.CancelURL),
	}
	for k, v := range in.Metadata {
		params.AddMetadata(k, v)
	}
	if in.Shipping != nil {
		params.ShippingOptions = []*stripe.CheckoutSessionShippingOptionParams{
			{
				ShippingRateData: &stripe.CheckoutSessionShippingOptionShippingRateDataParams{
					Type:        stripe.String("fixed_amount"),
					DisplayName: stripe.String(in.Shipping.Title),
					FixedAmount: &stripe.CheckoutSessionShippingOptionShippingRateDataFixedAmountParams{
						Amount:   stripe.Int64(minorUnits(in.Shipping.Price)),
						Currency: stripe.String(in.Shipping.Currency),
					},
					DeliveryEstimate: &stripe.CheckoutSessionShippingOptionShippingRateDataDeliveryEstimateParams{
						Minimum: &stripe.CheckoutSessionShippingOptionShippingRateDataDeliveryEstimateMinimumParams{
							Unit:  stripe.String("business_day"),
							Value: stripe.Int64(in.Shipping.DaysMin),
						},
						Maximum: &stripe.CheckoutSessionShippingOptionShippingRateDataDeliveryEstimateMaximumParams{
							Unit:  stripe.String("business_day"),
							Value: stripe.Int64(in.Shipping.DaysMax),
						},
					},
				},
			},
		}
	}

	sc := &client.API{}
	sc.Init(apiKey, nil)

	sess, err := sc.CheckoutSessions.New(params)
	if err != nil {
		return "", err
	}
	return sess.URL, nil
}

// minorUnits converts a major-unit price to Stripe's integer minor units.
func minorUnits(price float64) int64 {
	return int64(math.Round(price * 100))
}

// ItemMetadata mirrors the original session metadata so webhook consumers can
// attribute a completed payment without a database lookup.
func ItemMetadata(username, name string, price float64, currency, imageURL string) map[string]string {
	return map[string]string{
		"username": username,
		"name":     name,
		"price":    strconv.FormatFloat(price, 'f', -1, 64),
		"currency": currency,
		"image":    imageURL,
	}
}
