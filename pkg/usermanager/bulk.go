package usermanager

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/BBQAnChang/SBHomework/pkg/types"
)

// CreateUsers creates up to the max create count users, sending the k-th no
// earlier than k times the bulk create delay after the call starts, and waits
// for every result. Entries past the limit fail without a remote call.
//
// The created users are returned in input order. If any entry failed the
// error is a *BulkCreateError listing the failed entries as supplied.
func (m *UserManager) CreateUsers(ctx context.Context, params []types.UserCreationParams) (created []types.User, err error) {
	start := time.Now()
	defer func() { m.metrics.RecordOperation(ctx, opCreateUsers, start, err) }()

	if err := m.ready(); err != nil {
		return nil, err
	}

	log := m.opLogger(ctx, opCreateUsers).WithFields(logrus.Fields{
		"requested": len(params),
		"limit":     m.maxCreateCount,
	})

	accepted := params
	var overflow []types.UserCreationParams
	if len(params) > m.maxCreateCount {
		accepted = params[:m.maxCreateCount]
		overflow = params[m.maxCreateCount:]
		log.WithField("rejected", len(overflow)).Warn("bulk creation exceeds the limit, rejecting overflow")
	}

	users := make([]*types.User, len(accepted))
	errs := make([]error, len(accepted))
	remoteCtx := context.WithoutCancel(ctx)
	scheduled := time.Now()

	var g errgroup.Group
	for k, p := range accepted {
		g.Go(func() error {
			if err := waitUntil(ctx, scheduled.Add(time.Duration(k)*m.bulkCreateDelay)); err != nil {
				errs[k] = err
				return nil
			}
			users[k], errs[k] = m.createRemote(remoteCtx, p)
			return nil
		})
	}
	_ = g.Wait()

	bulkErr := &BulkCreateError{}
	created = make([]types.User, 0, len(accepted))
	for k, p := range accepted {
		if errs[k] != nil {
			bulkErr.Failed = append(bulkErr.Failed, p.ToUser())
			bulkErr.Causes = append(bulkErr.Causes, errs[k])
			continue
		}
		created = append(created, *users[k])
	}
	for _, p := range overflow {
		bulkErr.Failed = append(bulkErr.Failed, p.ToUser())
		bulkErr.Causes = append(bulkErr.Causes,
			fmt.Errorf("user %q is over the bulk limit of %d: %w", p.UserID, m.maxCreateCount, ErrQueueFull))
	}

	log = log.WithFields(logrus.Fields{
		"created": len(created),
		"failed":  len(bulkErr.Failed),
	})
	if len(bulkErr.Failed) > 0 {
		log.Error("bulk user creation finished with failures")
		return created, bulkErr
	}

	log.Info("bulk user creation finished")
	return created, nil
}

// waitUntil blocks until deadline or until ctx is done
func waitUntil(ctx context.Context, deadline time.Time) error {
	d := time.Until(deadline)
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
