package auth

import "context"

type subjectKey struct{}

// WithSubject returns a copy of ctx carrying the authenticated employee's
// email, for log enrichment downstream.
func WithSubject(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, subjectKey{}, email)
}

// SubjectFromContext extracts the authenticated employee email. Returns ""
// on unauthenticated requests.
func SubjectFromContext(ctx context.Context) string {
	email, _ := ctx.Value(subjectKey{}).(string)
	return email
}
