package inbound

import (
	"context"

	"github.com/tasklet-app/tasklet/internal/auth/usecase"
	"github.com/tasklet-app/tasklet/internal/pkg/router"
)

type uc interface {
	StartAuthentication(ctx context.Context, in usecase.StartAuthenticationInput) (*usecase.StartAuthenticationOutput, error)
	CompleteAuthentication(ctx context.Context, in usecase.CompleteAuthenticationInput) (*usecase.CompleteAuthenticationOutput, error)
	RenewToken(ctx context.Context, in usecase.RenewTokenInput) (*usecase.RenewTokenOutput, error)
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	r.POST("/api/v1/auth/start", end.StartAuthentication)
	r.POST("/api/v1/auth/complete", end.CompleteAuthentication)
	r.POST("/api/v1/auth/renew", end.RenewToken)
}
