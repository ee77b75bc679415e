package transport

import (
	"strings"

	dErrors "memscope/pkg/domain-errors"
)

// WriteMemoryRequest is the body of POST /memory.
type WriteMemoryRequest struct {
	UserID  string `json:"user_id"`
	Scope   string `json:"scope"`
	Domain  string `json:"domain,omitempty"`
	Source  string `json:"source"`
	Shape   string `json:"shape,omitempty"`
	TTLDays int    `json:"ttl_days,omitempty"`
	Value   any    `json:"value"`
}

func (r *WriteMemoryRequest) Validate() error {
	if strings.TrimSpace(r.UserID) == "" {
		return dErrors.New(dErrors.CodeValidation, "user_id is required")
	}
	if strings.TrimSpace(r.Scope) == "" {
		return dErrors.New(dErrors.CodeValidation, "scope is required")
	}
	if strings.TrimSpace(r.Source) == "" {
		return dErrors.New(dErrors.CodeValidation, "source is required")
	}
	if r.Value == nil {
		return dErrors.New(dErrors.CodeValidation, "value is required")
	}
	return nil
}

// ReadMemoryRequest is the body of POST /memory/read.
type ReadMemoryRequest struct {
	UserID     string `json:"user_id"`
	Scope      string `json:"scope"`
	Domain     string `json:"domain,omitempty"`
	Purpose    string `json:"purpose"`
	MaxAgeDays int    `json:"max_age_days,omitempty"`
}

func (r *ReadMemoryRequest) Validate() error {
	if strings.TrimSpace(r.UserID) == "" {
		return dErrors.New(dErrors.CodeValidation, "user_id is required")
	}
	if strings.TrimSpace(r.Scope) == "" {
		return dErrors.New(dErrors.CodeValidation, "scope is required")
	}
	if strings.TrimSpace(r.Purpose) == "" {
		return dErrors.New(dErrors.CodeValidation, "purpose is required")
	}
	return nil
}

// ContinueReadRequest is the body of POST /memory/read/continue.
type ContinueReadRequest struct {
	Token      string `json:"token"`
	MaxAgeDays int    `json:"max_age_days,omitempty"`
}

func (r *ContinueReadRequest) Validate() error {
	if strings.TrimSpace(r.Token) == "" {
		return dErrors.New(dErrors.CodeValidation, "token is required")
	}
	return nil
}

// RevokeGrantRequest is the body of POST /memory/revoke.
type RevokeGrantRequest struct {
	Token string `json:"token"`
}

func (r *RevokeGrantRequest) Validate() error {
	if strings.TrimSpace(r.Token) == "" {
		return dErrors.New(dErrors.CodeValidation, "token is required")
	}
	return nil
}
