// Package auth verifies Supabase access tokens and carries the caller's
// identity through the request context.
//
// Supabase signs session tokens with the project's JWT secret (HS256). The
// subject claim holds the user's UUID, which every quota lookup is keyed by.
//
//	v, err := auth.NewVerifier(cfg)
//	if err != nil {
//		return err
//	}
//	r.Use(auth.Middleware(v))
//
// Handlers then read the caller with UserIDFromContext.
package auth
