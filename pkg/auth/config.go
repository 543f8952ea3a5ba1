package auth

import "time"

// Config holds the token verification settings.
type Config struct {
	JWTSecret string        `env:"SUPABASE_JWT_SECRET"`
	Issuer    string        `env:"SUPABASE_JWT_ISSUER"`
	Audience  string        `env:"SUPABASE_JWT_AUDIENCE" envDefault:"authenticated"`
	Leeway    time.Duration `env:"AUTH_LEEWAY" envDefault:"30s"`
}
