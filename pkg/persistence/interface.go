package persistence

// ITreeStore defines the interface for storing named tree definitions.
// All implementations must be thread-safe.
type ITreeStore interface {
	// SaveTree persists a tree record under record.Name.
	// Overwrites any existing record with the same name.
	SaveTree(record *TreeRecord) error

	// LoadTree retrieves a tree record by name.
	// Returns nil if the record doesn't exist, error only on storage failure.
	LoadTree(name string) (*TreeRecord, error)

	// ListTrees returns all stored records sorted by name.
	// Returns empty slice if no records exist, error only on storage failure.
	ListTrees() ([]*TreeRecord, error)

	// DeleteTree removes a record by name.
	// Idempotent - returns nil if the record doesn't exist.
	DeleteTree(name string) error

	// Close cleanly shuts down the store.
	// Idempotent - safe to call multiple times.
	// After Close(), all other operations return errors.
	Close() error

	// HealthCheck verifies the store is operational.
	HealthCheck() error
}
