package billing

// Config holds the Stripe settings. Price IDs map one-to-one onto paid tiers.
type Config struct {
	SecretKey       string `env:"STRIPE_SECRET_KEY"`
	WebhookSecret   string `env:"STRIPE_WEBHOOK_SECRET"`
	PriceStarter    string `env:"STRIPE_PRICE_STARTER"`
	PricePro        string `env:"STRIPE_PRICE_PRO"`
	PricePremium    string `env:"STRIPE_PRICE_PREMIUM"`
	SuccessURL      string `env:"STRIPE_CHECKOUT_SUCCESS_URL" envDefault:"http://localhost:3000/billing/success"`
	CancelURL       string `env:"STRIPE_CHECKOUT_CANCEL_URL" envDefault:"http://localhost:3000/billing/cancel"`
	PortalReturnURL string `env:"STRIPE_PORTAL_RETURN_URL" envDefault:"http://localhost:3000/settings/billing"`
}
