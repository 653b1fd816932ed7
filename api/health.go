// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/alexliesenfeld/health"
)

var errNoOperators = errors.New("no operator set committed")

// NewHealthHandler reports healthy once an operator set is live.
func NewHealthHandler(authorizer Authorizer) http.Handler {
	checker := health.NewChecker(
		health.WithCheck(health.Check{
			Name: "auth-operators",
			Check: func(context.Context) error {
				if authorizer.CurrentEpoch() == 0 {
					return errNoOperators
				}
				return nil
			},
		}),
	)
	return health.NewHandler(checker)
}
