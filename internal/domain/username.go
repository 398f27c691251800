package domain

import (
	"fmt"
	"strings"
)

const MaxUsernameLength = 10

func ValidateUsername(name string) error {
	if name == "" {
		return ErrUsernameEmpty
	}
	if len(name) > MaxUsernameLength {
		return fmt.Errorf("%w: %q", ErrUsernameTooLong, name)
	}
	if strings.ContainsAny(name, " \r\n") {
		return fmt.Errorf("username %q must not contain whitespace", name)
	}

	return nil
}
