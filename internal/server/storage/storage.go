package storage

import "context"

// Storage combines all server storages behind one backend
type Storage interface {
	UserStorage
	TokenStorage
	ArticleStorage

	// Ping checks that the backend is reachable
	Ping(ctx context.Context) error

	// Close releases backend resources
	Close() error
}
