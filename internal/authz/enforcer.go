// Comicrec - Comic Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/comicrec

package authz

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	fileadapter "github.com/casbin/casbin/v2/persist/file-adapter"

	"github.com/tomtom215/comicrec/internal/auth"
)

//go:embed model.conf
var embeddedModel string

//go:embed policy.csv
var embeddedPolicy string

// Roles.
const (
	RoleUser   = "user"
	RoleEditor = "editor"
)

// Actions.
const (
	ActionRead  = "read"
	ActionWrite = "write"
)

// EnforcerConfig configures an Enforcer.
type EnforcerConfig struct {
	// ModelPath overrides the embedded casbin model.
	ModelPath string

	// PolicyPath overrides the embedded policy.
	PolicyPath string

	// Editors are the emails that hold RoleEditor.
	Editors []string
}

// Enforcer decides whether a role may perform an action on a request path.
type Enforcer struct {
	enforcer *casbin.SyncedEnforcer
	editors  map[string]struct{}
}

// NewEnforcer loads the model and policy, from files when the configured
// paths exist and from the embedded defaults otherwise.
func NewEnforcer(cfg *EnforcerConfig) (*Enforcer, error) {
	if cfg == nil {
		cfg = &EnforcerConfig{}
	}

	var (
		m   model.Model
		err error
	)
	if cfg.ModelPath != "" && fileExists(cfg.ModelPath) {
		m, err = model.NewModelFromFile(cfg.ModelPath)
	} else {
		m, err = model.NewModelFromString(embeddedModel)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load casbin model: %w", err)
	}

	var enforcer *casbin.SyncedEnforcer
	if cfg.PolicyPath != "" && fileExists(cfg.PolicyPath) {
		enforcer, err = casbin.NewSyncedEnforcer(m, fileadapter.NewAdapter(cfg.PolicyPath))
	} else {
		enforcer, err = casbin.NewSyncedEnforcer(m)
		if err == nil {
			err = loadPolicy(enforcer, embeddedPolicy)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}

	editors := make(map[string]struct{}, len(cfg.Editors))
	for _, email := range cfg.Editors {
		if email = normalizeEmail(email); email != "" {
			editors[email] = struct{}{}
		}
	}

	return &Enforcer{enforcer: enforcer, editors: editors}, nil
}

// loadPolicy adds the "p" and "g" lines of a policy CSV.
func loadPolicy(enforcer *casbin.SyncedEnforcer, policy string) error {
	for _, line := range strings.Split(policy, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Split(line, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}

		switch {
		case parts[0] == "p" && len(parts) == 4:
			if _, err := enforcer.AddPolicy(parts[1], parts[2], parts[3]); err != nil {
				return fmt.Errorf("failed to add policy %v: %w", parts[1:], err)
			}
		case parts[0] == "g" && len(parts) == 3:
			if _, err := enforcer.AddGroupingPolicy(parts[1], parts[2]); err != nil {
				return fmt.Errorf("failed to add grouping policy %v: %w", parts[1:], err)
			}
		default:
			return fmt.Errorf("malformed policy line %q", line)
		}
	}
	return nil
}

// RolesFor returns the roles held by an authenticated caller. Every caller
// is a user; configured editors are also editors.
func (e *Enforcer) RolesFor(claims *auth.Claims) []string {
	roles := []string{RoleUser}
	if claims == nil {
		return roles
	}
	if _, ok := e.editors[normalizeEmail(claims.Email)]; ok {
		roles = append(roles, RoleEditor)
	}
	return roles
}

// Enforce reports whether any of roles may perform action on object.
func (e *Enforcer) Enforce(roles []string, object, action string) (bool, error) {
	for _, role := range roles {
		allowed, err := e.enforcer.Enforce(role, object, action)
		if err != nil {
			return false, fmt.Errorf("enforcement failed: %w", err)
		}
		if allowed {
			return true, nil
		}
	}
	return false, nil
}

// Policy returns the loaded permission rules.
func (e *Enforcer) Policy() [][]string {
	//nolint:errcheck // only fails on a nil model
	policy, _ := e.enforcer.GetPolicy()
	return policy
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
