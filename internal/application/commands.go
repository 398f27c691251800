package application

import "github.com/bnema/me2u/internal/domain"

type AddProfileCommand struct {
	Name     domain.ProfileName
	Host     string
	Port     string
	Username string
}

// ResolveTargetCommand names a connection either by profile or by explicit
// username, host and port. Explicit fields override the profile's.
type ResolveTargetCommand struct {
	Profile  domain.ProfileName
	Username string
	Host     string
	Port     string
}
