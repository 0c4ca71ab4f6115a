package api

import (
	"fmt"
	"net/url"
	"time"

	apperrors "aivaceo/internal/errors"
)

// Authentication methods
const (
	AuthNone   = "none"
	AuthBearer = "bearer"
	AuthAPIKey = "api_key"
	AuthBasic  = "basic"
)

// Pagination styles
const (
	PaginationNone   = "none"
	PaginationPage   = "page"
	PaginationOffset = "offset"
	PaginationCursor = "cursor"
)

// RecordsSource describes a JSON records endpoint such as a sheet export or a workflow webhook
type RecordsSource struct {
	Name        string            `json:"name" yaml:"name"`
	BaseURL     string            `json:"base_url" yaml:"base_url"`
	DataPath    string            `json:"data_path" yaml:"data_path"` // gjson path to the records; empty means the body itself
	Headers     map[string]string `json:"headers,omitempty" yaml:"headers"`
	QueryParams map[string]string `json:"query_params,omitempty" yaml:"query_params"`

	AuthMethod string `json:"auth_method" yaml:"auth_method"`
	AuthToken  string `json:"-" yaml:"auth_token"`
	Username   string `json:"-" yaml:"username"`
	Password   string `json:"-" yaml:"password"`

	PaginationType string `json:"pagination_type" yaml:"pagination_type"`
	PageSize       int    `json:"page_size" yaml:"page_size"`
	MaxPages       int    `json:"max_pages" yaml:"max_pages"`
	CursorPath     string `json:"cursor_path,omitempty" yaml:"cursor_path"` // defaults to the common next-cursor fields

	Timeout      time.Duration `json:"timeout" yaml:"timeout"`
	MaxBodyBytes int64         `json:"max_body_bytes" yaml:"max_body_bytes"` // per response; zero means DefaultMaxBodyBytes
}

// DefaultMaxBodyBytes caps a single response body
const DefaultMaxBodyBytes = 32 << 20

// DefaultRecordsSource returns a single-page, unauthenticated source for baseURL
func DefaultRecordsSource(baseURL string) RecordsSource {
	return RecordsSource{
		Name:           baseURL,
		BaseURL:        baseURL,
		AuthMethod:     AuthNone,
		PaginationType: PaginationNone,
		PageSize:       100,
		MaxPages:       10,
		Timeout:        30 * time.Second,
		MaxBodyBytes:   DefaultMaxBodyBytes,
	}
}

// Validate checks if the source is usable
func (s *RecordsSource) Validate() error {
	u, err := url.Parse(s.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return apperrors.InvalidInput(fmt.Sprintf("invalid records url: %q", s.BaseURL))
	}

	switch s.AuthMethod {
	case "", AuthNone:
	case AuthBearer, AuthAPIKey:
		if s.AuthToken == "" {
			return apperrors.InvalidInput(fmt.Sprintf("auth method %s requires a token", s.AuthMethod))
		}
	case AuthBasic:
		if s.Username == "" {
			return apperrors.InvalidInput("basic auth requires a username")
		}
	default:
		return apperrors.InvalidInput(fmt.Sprintf("unknown auth method: %s", s.AuthMethod))
	}

	switch s.PaginationType {
	case "", PaginationNone, PaginationCursor:
	case PaginationPage, PaginationOffset:
		if s.PageSize <= 0 {
			return apperrors.InvalidInput("page size must be positive")
		}
	default:
		return apperrors.InvalidInput(fmt.Sprintf("unknown pagination type: %s", s.PaginationType))
	}

	if s.MaxBodyBytes < 0 {
		return apperrors.InvalidInput("max body bytes cannot be negative")
	}
	if s.MaxPages < 0 {
		return apperrors.InvalidInput("max pages cannot be negative")
	}
	return nil
}
