// Package types holds the values shared by the cache drivers and the cache package.
package types

import (
	"errors"
	"time"
)

// NoExpiration keeps the entry until it is explicitly deleted
const NoExpiration time.Duration = -1

// ErrKeyNotFound is returned when a key does not exist in the cache
var ErrKeyNotFound = errors.New("key not found in cache")
