package models

// Credentials is the username/password pair kept in the session store so an
// expired session can be renewed without prompting.
type Credentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Registration is the body of the register call.
type Registration struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	Email    string `json:"email" validate:"omitempty,email"`
}

// TokenPair is the JWT pair issued by login.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// LoginResponse is the success body of the login call.
type LoginResponse struct {
	Status  string     `json:"status"`
	Message string     `json:"message"`
	User    *User      `json:"user,omitempty"`
	Tokens  *TokenPair `json:"tokens,omitempty"`
}
