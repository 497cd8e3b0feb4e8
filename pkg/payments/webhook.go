package payments

import (
	stripe "github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"
)

// EventCheckoutCompleted is the only event type this service acts on;
// everything else that verifies is acknowledged and ignored.
const EventCheckoutCompleted = "checkout.session.completed"

// VerifyEvent checks the Stripe-Signature header against the endpoint secret
// and parses the event payload. An invalid signature is an error; an
// unrecognized event type or API version is not.
func VerifyEvent(payload []byte, sigHeader, endpointSecret string) (stripe.Event, error) {
	return webhook.ConstructEventWithOptions(payload, sigHeader, endpointSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
}
