// Package seed bootstraps an empty database: the administrator account and
// optional employees read from a YAML fixture file.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"

	"github.com/thynetwork/timeclock/internal/core/domain"
	"github.com/thynetwork/timeclock/internal/core/ports"
)

// Admin describes the administrator account to create when missing.
type Admin struct {
	Email    string
	Username string
	Password string
}

// EnsureAdmin creates the administrator unless a user with the same email or
// username already exists. It reports whether an account was created.
func EnsureAdmin(ctx context.Context, users ports.UserRepository, a Admin, log zerolog.Logger) (bool, error) {
	a.Email = strings.TrimSpace(a.Email)
	a.Username = strings.TrimSpace(a.Username)
	if a.Email == "" || a.Username == "" || a.Password == "" {
		return false, fmt.Errorf("seed admin: %w: email, username and password are required", domain.ErrInvalidInput)
	}

	exists, err := users.ExistsByEmailOrUsername(ctx, a.Email, a.Username)
	if err != nil {
		return false, fmt.Errorf("seed admin: %w", err)
	}
	if exists {
		log.Info().Str("username", a.Username).Msg("admin already present")
		return false, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(a.Password), bcrypt.DefaultCost)
	if err != nil {
		return false, fmt.Errorf("seed admin: hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.NewString(),
		Username:     a.Username,
		Email:        a.Email,
		PasswordHash: string(hash),
		Role:         domain.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := users.Create(ctx, user); err != nil {
		return false, fmt.Errorf("seed admin: %w", err)
	}

	log.Info().Str("username", a.Username).Str("user_id", user.ID).Msg("admin created")
	return true, nil
}

// Employee is one entry of the fixture file.
type Employee struct {
	FirstName string `yaml:"first_name"`
	LastName  string `yaml:"last_name"`
	Username  string `yaml:"username"`
	Email     string `yaml:"email"`
	Password  string `yaml:"password"`
}

type fixtureFile struct {
	Employees []Employee `yaml:"employees"`
}

// LoadFixtures parses a fixture document of the form
//
//	employees:
//	  - username: jdoe
//	    email: jdoe@example.com
//	    password: "1234"
func LoadFixtures(r io.Reader) ([]ports.CreateEmployeeInput, error) {
	var f fixtureFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse fixtures: %w", err)
	}

	out := make([]ports.CreateEmployeeInput, 0, len(f.Employees))
	for i, e := range f.Employees {
		if strings.TrimSpace(e.Username) == "" || strings.TrimSpace(e.Email) == "" {
			return nil, fmt.Errorf("parse fixtures: employee %d: username and email are required", i)
		}
		out = append(out, ports.CreateEmployeeInput{
			FirstName: e.FirstName,
			LastName:  e.LastName,
			Username:  e.Username,
			Email:     e.Email,
			Password:  e.Password,
		})
	}
	return out, nil
}

// Result counts what ApplyEmployees did.
type Result struct {
	Created int
	Skipped int
}

// ApplyEmployees creates each employee through the user service, skipping
// the ones that already exist.
func ApplyEmployees(ctx context.Context, users ports.UserService, employees []ports.CreateEmployeeInput, log zerolog.Logger) (Result, error) {
	var res Result
	for _, e := range employees {
		_, err := users.CreateEmployee(ctx, e)
		switch {
		case err == nil:
			res.Created++
		case errors.Is(err, domain.ErrUserExists):
			log.Debug().Str("username", e.Username).Msg("employee exists, skipped")
			res.Skipped++
		default:
			return res, fmt.Errorf("seed employee %s: %w", e.Username, err)
		}
	}
	return res, nil
}
