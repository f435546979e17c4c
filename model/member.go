package model

// AFKStatus is a user's away message.
type AFKStatus struct {
	UserID  string   `db:"user_id"`
	Message string   `db:"message"`
	SetAt   UnixTime `db:"set_at"`
}
