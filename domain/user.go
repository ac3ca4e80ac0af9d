package domain

// User represents a provisioned account. Accounts are seeded ahead of time
// and never mutated or deleted through the service. The credential is an
// opaque string compared by exact match; the lack of hashing is a known
// weakness inherited from the data model.
type User struct {
	ID       int64  `json:"user_id"`
	Username string `json:"username"`
	Password string `json:"-"`
}
