package secretProviders

import "errors"

// StaticProvider serves one fixed secret value regardless of name. Used when
// the secret is injected directly (JWT_SECRET) and in tests.
type StaticProvider struct {
	Value string
}

func NewStaticProvider(value string) *StaticProvider {
	return &StaticProvider{Value: value}
}

func (p *StaticProvider) GetSecret(_ string) (string, error) {
	if p.Value == "" {
		return "", errors.New("no secret value configured")
	}
	return p.Value, nil
}
