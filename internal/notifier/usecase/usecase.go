package usecase

import (
	"context"

	"github.com/tasklet-app/tasklet/internal/pkg/instrument"
	"github.com/tasklet-app/tasklet/internal/pkg/sms"
	"github.com/tasklet-app/tasklet/internal/pkg/validator"
	"go.opentelemetry.io/otel/trace"
)

type Usecase struct {
	sms       sms.SMS
	validator validator.Validator
	ins       instrument.Instrumentation
}

type Dependency struct {
	SMS        sms.SMS
	Validator  validator.Validator
	Instrument instrument.Instrumentation
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		sms:       dep.SMS,
		validator: dep.Validator,
		ins:       dep.Instrument,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("notifier.usecase").Start(ctx, name)
}
