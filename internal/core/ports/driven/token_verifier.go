package driven

// TokenVerifier resolves a bearer token to a tenant identity.
// Full authentication lives outside this service; the API only needs to know
// which tenant a request is scoped to.
type TokenVerifier interface {
	// VerifyToken validates the token and returns the tenant ID
	VerifyToken(token string) (tenantID string, err error)
}
