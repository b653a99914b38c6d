package test

import (
	"github.com/polkiloo/storefront/internal/domain/model"
)

// StrategyStub issues and parses tokens via function overrides.
type StrategyStub struct {
	IssueFn func(model.Identity) (string, error)
	ParseFn func(string) (model.Identity, error)
	NameVal string
}

// IssueToken returns deterministic tokens for tests.
func (s StrategyStub) IssueToken(id model.Identity) (string, error) {
	if s.IssueFn != nil {
		return s.IssueFn(id)
	}
	return "token", nil
}

// ParseToken parses previously issued token strings.
func (s StrategyStub) ParseToken(token string) (model.Identity, error) {
	if s.ParseFn != nil {
		return s.ParseFn(token)
	}
	return model.Identity{UserID: 1, Role: model.RoleCustomer}, nil
}

// Name returns the strategy identifier used in tests.
func (s StrategyStub) Name() string {
	if s.NameVal != "" {
		return s.NameVal
	}
	return "stub"
}

// TokenParserStub maps raw tokens to identities for middleware tests.
type TokenParserStub struct {
	Identities map[string]model.Identity
	Err        error
}

// ParseToken returns the identity registered for token or Err.
func (s TokenParserStub) ParseToken(token string) (model.Identity, error) {
	if id, ok := s.Identities[token]; ok {
		return id, nil
	}
	return model.Identity{}, s.Err
}
