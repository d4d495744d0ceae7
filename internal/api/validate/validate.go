// Package validate holds the field rules shared by the services:
// slug and username shape, title year, review score.
package validate

import (
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"time"
)

const (
	MaxNameLen     = 256
	MaxSlugLen     = 50
	MaxUsernameLen = 150
	MaxEmailLen    = 254

	MinScore = 1
	MaxScore = 10
)

var (
	ErrUsernameReserved = errors.New(`username "me" is reserved`)

	slugPattern     = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
	usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)
	slugStrip       = regexp.MustCompile(`[^a-z0-9-]+`)
	slugSquash      = regexp.MustCompile(`-+`)
)

// Name checks the shared name field of categories, genres and titles.
func Name(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("name cannot be empty")
	}
	if len(name) > MaxNameLen {
		return fmt.Errorf("name must not exceed %d characters (got %d)", MaxNameLen, len(name))
	}
	return nil
}

func Slug(slug string) error {
	if len(slug) > MaxSlugLen {
		return fmt.Errorf("slug must not exceed %d characters (got %d)", MaxSlugLen, len(slug))
	}
	if !slugPattern.MatchString(slug) {
		return errors.New("slug may only contain letters, digits, hyphens and underscores")
	}
	return nil
}

// SlugFromName derives a URL-safe slug when the client omits one:
// lowercase, spaces to hyphens, anything else stripped, capped at MaxSlugLen.
func SlugFromName(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.ReplaceAll(slug, " ", "-")
	slug = slugStrip.ReplaceAllString(slug, "")
	slug = slugSquash.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if len(slug) > MaxSlugLen {
		slug = strings.Trim(slug[:MaxSlugLen], "-")
	}
	return slug
}

func Username(username string) error {
	if username == "me" {
		return ErrUsernameReserved
	}
	if username == "" {
		return errors.New("username cannot be empty")
	}
	if len(username) > MaxUsernameLen {
		return fmt.Errorf("username must not exceed %d characters (got %d)", MaxUsernameLen, len(username))
	}
	if !usernamePattern.MatchString(username) {
		return errors.New("username may only contain letters, digits and @/./+/-/_ characters")
	}
	return nil
}

func Email(email string) error {
	if email == "" {
		return errors.New("email cannot be empty")
	}
	if len(email) > MaxEmailLen {
		return fmt.Errorf("email must not exceed %d characters (got %d)", MaxEmailLen, len(email))
	}
	// Bare address only, no display-name form.
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return errors.New("email is not a valid address")
	}
	return nil
}

// Year rejects titles dated in the future.
func Year(year int) error {
	current := time.Now().Year()
	if year > current {
		return fmt.Errorf("year cannot be later than the current year (%d)", current)
	}
	return nil
}

func Score(score int) error {
	if score < MinScore || score > MaxScore {
		return fmt.Errorf("score must be between %d and %d", MinScore, MaxScore)
	}
	return nil
}

func Role(role string) error {
	switch role {
	case "user", "moderator", "admin":
		return nil
	}
	return fmt.Errorf("unknown role %q", role)
}
