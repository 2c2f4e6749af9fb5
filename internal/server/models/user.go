package models

// User is an identity record as stored. PasswordHash and RefreshToken are
// secret material and never leave the server; use Public for responses.
type User struct {
	RecordID     int64
	FirstName    string
	LastName     string
	UserName     string
	Email        string
	PasswordHash string
	RefreshToken string
}

// PublicUser is the part of a User that may be returned to its owner.
type PublicUser struct {
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
	UserName  string `json:"username"`
	Email     string `json:"email"`
}

// Public strips secret material from u.
func (u *User) Public() PublicUser {
	return PublicUser{
		FirstName: u.FirstName,
		LastName:  u.LastName,
		UserName:  u.UserName,
		Email:     u.Email,
	}
}
