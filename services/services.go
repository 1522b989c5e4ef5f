// Package services holds the storefront's business operations. Controllers
// call into these; services talk to repositories, the payment orchestrator,
// notifiers and the realtime broker through their interfaces.
package services

import (
	"context"
	"errors"

	"github.com/Govind-619/Clomora/realtime"
	"github.com/Govind-619/Clomora/repository"
	"github.com/Govind-619/Clomora/utils"
	"github.com/google/uuid"
)

func newID() string {
	return uuid.New().String()
}

func requireUser(uid string) error {
	if uid == "" {
		return utils.UnauthenticatedError(utils.ErrSignInRequired)
	}
	return nil
}

// publish announces a committed change. Failures only affect live
// listeners on other instances, so they are logged.
func publish(ctx context.Context, p realtime.Publisher, c realtime.Change) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, c); err != nil {
		utils.LogError("Failed to publish %s change for %s: %v", c.Collection, c.DocumentID, err)
	}
}

// notFoundOr maps repository.ErrNotFound to a 404 and anything else to a
// persistence failure.
func notFoundOr(err error, notFound, failure string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return utils.NotFoundError(notFound, err)
	}
	return utils.PersistenceFailureError(failure, err)
}
