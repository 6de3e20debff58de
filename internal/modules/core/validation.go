package core

import (
	"context"

	"github.com/eskrenkovic/mediator-go"
)

type Validator interface {
	Validate() error
}

type RequestValidationBehavior struct{}

var _ mediator.PipelineBehavior = (*RequestValidationBehavior)(nil)

func (b *RequestValidationBehavior) Handle(
	ctx context.Context,
	request interface{},
	next mediator.RequestHandlerFunc,
) (interface{}, error) {
	if request, ok := request.(Validator); ok {
		if err := request.Validate(); err != nil {
			return nil, NewCommandError(400, err)
		}
	}

	return next(ctx, request)
}
