package secretProviders

// SecretProvider returns named secret material (the parameter-store role). A
// provider failure fails the caller; no fallback value is ever substituted.
type SecretProvider interface {
	GetSecret(name string) (string, error)
}

// SecretWriter is implemented by providers that can also store secrets, which
// the admin tool uses for rotation.
type SecretWriter interface {
	SetSecret(name string, value string) error
}
