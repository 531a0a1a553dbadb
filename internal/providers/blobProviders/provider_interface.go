package blobProviders

// BlobProviderInterface is the object store summary reports are written to.
// PutObject overwrites any existing object stored under key.
type BlobProviderInterface interface {
	Name() string
	PutObject(key string, data []byte, contentType string, metadata map[string]string) error
}
