package email

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// PaymentFailedNotice is the body of the failed-renewal email.
func PaymentFailedNotice(billingURL string, attempt int64) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		retry := "We will retry the charge automatically over the next few days."
		if attempt > 1 {
			retry = fmt.Sprintf("This was attempt %d. We will keep retrying for a few more days.", attempt)
		}
		_, err := fmt.Fprintf(w, `<!doctype html>
<html><body style="font-family:sans-serif;line-height:1.5">
<h2>Your payment did not go through</h2>
<p>We could not charge your card for your subscription renewal. %s</p>
<p>To keep your plan active, please update your payment method.</p>
<p><a href="%s">Update payment method</a></p>
<p>If your subscription lapses your account moves to the Free plan and your data stays intact.</p>
</body></html>`, templ.EscapeString(retry), templ.EscapeString(string(templ.URL(billingURL))))
		return err
	})
}

// Render renders a component to a string.
func Render(ctx context.Context, c templ.Component) (string, error) {
	var sb strings.Builder
	if err := c.Render(ctx, &sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}
