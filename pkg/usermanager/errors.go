package usermanager

import (
	"errors"
	"fmt"

	"github.com/BBQAnChang/SBHomework/pkg/api"
	"github.com/BBQAnChang/SBHomework/pkg/queue"
	"github.com/BBQAnChang/SBHomework/pkg/store"
	"github.com/BBQAnChang/SBHomework/pkg/types"
)

var (
	// ErrInvalidCredentials is returned when the application id or API token is missing
	ErrInvalidCredentials = api.ErrInvalidCredentials

	// ErrNotInitialized is returned by every operation called before InitApplication
	ErrNotInitialized = errors.New("user manager is not initialized: call InitApplication first")

	// ErrQueueFull is returned when the creation queue is at capacity
	ErrQueueFull = queue.ErrQueueFull

	// ErrEmptyFilter is returned by GetUsers for an empty nickname
	ErrEmptyFilter = errors.New("nickname filter must not be empty")

	ErrEmptyUserID = store.ErrEmptyUserID

	// ErrRemoteFailure matches every *RemoteError
	ErrRemoteFailure = errors.New("remote request failed")

	// ErrBulkCreateFailed matches every *BulkCreateError
	ErrBulkCreateFailed = errors.New("bulk user creation failed")
)

// RemoteError wraps a transport, decoding or API error returned for Op
type RemoteError struct {
	Op  string
	Err error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

func (e *RemoteError) Is(target error) bool {
	return target == ErrRemoteFailure
}

// BulkCreateError lists every record CreateUsers could not create, with the
// fields the caller supplied. Causes[i] explains Failed[i].
type BulkCreateError struct {
	Failed []types.User
	Causes []error
}

func (e *BulkCreateError) Error() string {
	ids := make([]string, 0, len(e.Failed))
	for _, u := range e.Failed {
		ids = append(ids, u.UserID)
	}
	return fmt.Sprintf("failed to create %d user(s): %v", len(e.Failed), ids)
}

func (e *BulkCreateError) Is(target error) bool {
	return target == ErrBulkCreateFailed
}

func (e *BulkCreateError) Unwrap() []error {
	return e.Causes
}

// remoteError classifies an error from the network client
func remoteError(op string, err error) error {
	if errors.Is(err, api.ErrInvalidCredentials) {
		return ErrInvalidCredentials
	}
	return &RemoteError{Op: op, Err: err}
}
