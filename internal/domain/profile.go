package domain

import (
	"fmt"
	"strconv"
	"strings"
)

type ProfileName string

// Profile is a saved server and username combination.
type Profile struct {
	Name     ProfileName
	Host     string
	Port     string
	Username string
}

func (p Profile) Validate() error {
	if strings.TrimSpace(string(p.Name)) == "" {
		return fmt.Errorf("name is required")
	}
	if strings.TrimSpace(p.Host) == "" {
		return fmt.Errorf("host is required")
	}
	port, err := strconv.Atoi(p.Port)
	if err != nil || port <= 0 || port > 65535 {
		return fmt.Errorf("invalid port %q", p.Port)
	}
	if err := ValidateUsername(p.Username); err != nil {
		return err
	}

	return nil
}

func (p *Profile) Normalize() {
	if p == nil {
		return
	}

	p.Name = ProfileName(strings.TrimSpace(string(p.Name)))
	p.Host = strings.TrimSpace(p.Host)
	p.Port = strings.TrimSpace(p.Port)
	p.Username = strings.TrimSpace(p.Username)
}
