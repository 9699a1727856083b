package store

import (
	"github.com/BBQAnChang/SBHomework/pkg/cache"
)

// Store provides a high-level interface for the users and settings kept in cache
// It encapsulates key prefixing and JSON serialization
type Store struct {
	User UserStoreInterface
	Meta MetaStoreInterface
}

// New creates a new Store instance with all sub-stores initialized
func New(cache cache.Cache) *Store {
	return &Store{
		User: newUserStore(cache),
		Meta: newMetaStore(cache),
	}
}

// Compile-time interface compliance checks
var (
	_ UserStoreInterface = (*UserStore)(nil)
	_ MetaStoreInterface = (*MetaStore)(nil)
)
