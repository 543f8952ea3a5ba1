package email

import (
	"context"
	"fmt"

	"github.com/moodmoney/quota/pkg/billing"
)

const paymentFailedTag = "payment-failed"

// PaymentNotifier delivers billing payment-failure notices by email.
type PaymentNotifier struct {
	sender     EmailSender
	billingURL string
}

var _ billing.Notifier = (*PaymentNotifier)(nil)

// NewPaymentNotifier creates a notifier that links users to billingURL.
func NewPaymentNotifier(sender EmailSender, billingURL string) *PaymentNotifier {
	if sender == nil {
		panic("email: sender is required")
	}
	return &PaymentNotifier{sender: sender, billingURL: billingURL}
}

func (n *PaymentNotifier) NotifyPaymentFailed(ctx context.Context, failure billing.PaymentFailure) error {
	body, err := Render(ctx, PaymentFailedNotice(n.billingURL, failure.AttemptCount))
	if err != nil {
		return fmt.Errorf("email: render payment notice: %w", err)
	}
	return n.sender.SendEmail(ctx, SendEmailParams{
		SendTo:   failure.Email,
		Subject:  "Action needed: your payment failed",
		BodyHTML: body,
		Tag:      paymentFailedTag,
	})
}
