package types

// User is a Sendbird user as seen by the SDK and kept in the local cache.
// ProfileURL is empty when the user has no profile image.
type User struct {
	UserID     string `json:"user_id" yaml:"user_id"`
	Nickname   string `json:"nickname" yaml:"nickname"`
	ProfileURL string `json:"profile_url,omitempty" yaml:"profile_url,omitempty"`
}

// UserCreationParams carries the fields needed to create a user
type UserCreationParams struct {
	UserID     string `json:"user_id" yaml:"user_id"`
	Nickname   string `json:"nickname" yaml:"nickname"`
	ProfileURL string `json:"profile_url" yaml:"profile_url"`
}

// UserUpdateParams carries the fields to change on an existing user;
// nil attributes are left untouched by the backend
type UserUpdateParams struct {
	UserID     string  `json:"-"`
	Nickname   *string `json:"nickname,omitempty"`
	ProfileURL *string `json:"profile_url,omitempty"`
}

// ToUser returns the record the params describe, used when reporting
// creations that never reached the backend
func (p UserCreationParams) ToUser() User {
	return User{
		UserID:     p.UserID,
		Nickname:   p.Nickname,
		ProfileURL: p.ProfileURL,
	}
}
