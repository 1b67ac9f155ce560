package domain

import "time"

// AccessToken is a signed bearer token handed out at login.
type AccessToken struct {
	Token     string
	ExpiresIn time.Duration
	Scopes    []string
}
