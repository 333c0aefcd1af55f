package isrhooks

// Metadata contains information about a specific hook implementation.
type Metadata struct {
	name string
}

// MetadataOption represents a functional means of setting additional, optional, attributes of the
// Metadata.
type MetadataOption func(hook *Metadata)

// NewMetadata creates Metadata with the provided name.
func NewMetadata(name string, opts ...MetadataOption) Metadata {
	metadata := Metadata{
		name: name,
	}
	for _, opt := range opts {
		opt(&metadata)
	}
	return metadata
}

// Name gets the name of the hook implementation.
func (m Metadata) Name() string {
	return m.name
}
