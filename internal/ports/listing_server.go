package ports

// ListingServer defines the interface for the inbound listing boundary
type ListingServer interface {
	// Start starts accepting listing events
	Start() error

	// Stop stops the server and releases its resources
	Stop() error
}
