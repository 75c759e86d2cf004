package domain

// User is the caller as vouched for by the identity provider. The service
// never stores users; it only keys its own records by ID.
type User struct {
	ID    string
	Email string // authenticator account label and notification address
}
