package graph

import (
	"context"
	"errors"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/gqlerrors"
	"github.com/sirupsen/logrus"
)

// Request is the standard GraphQL request envelope shared by every transport.
type Request struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName,omitempty"`
	Variables     map[string]interface{} `json:"variables,omitempty"`
}

// Executor runs requests against a built schema.
type Executor struct {
	schema graphql.Schema
	debug  bool
	log    logrus.FieldLogger
}

// Config 控制执行器行为。
type Config struct {
	// Debug attaches resolver stack traces to error extensions. Development only.
	Debug  bool
	Logger logrus.FieldLogger
}

// NewExecutor builds the schema around resolver.
func NewExecutor(resolver Resolver, cfg Config) (*Executor, error) {
	log := cfg.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	schema, err := NewSchema(resolver, log)
	if err != nil {
		return nil, err
	}
	return &Executor{schema: schema, debug: cfg.Debug, log: log}, nil
}

// Execute runs req and returns the result. Failures are reported inside
// result.Errors; Execute never returns a Go error.
func (e *Executor) Execute(ctx context.Context, req Request) *graphql.Result {
	result := graphql.Do(graphql.Params{
		Schema:         e.schema,
		RequestString:  req.Query,
		VariableValues: req.Variables,
		OperationName:  req.OperationName,
		Context:        ctx,
	})

	for i := range result.Errors {
		rp, ok := panicFrom(result.Errors[i].OriginalError())
		if !ok {
			continue
		}

		e.log.WithField("panic", rp.value).Error("resolver panicked")
		if e.debug {
			if result.Errors[i].Extensions == nil {
				result.Errors[i].Extensions = map[string]interface{}{}
			}
			result.Errors[i].Extensions["stack"] = string(rp.stack)
		} else {
			result.Errors[i].Message = "internal server error"
		}
	}

	return result
}

// panicFrom finds a resolverPanic under err. graphql-go wraps resolver
// errors in *gqlerrors.Error, which has no Unwrap, so its OriginalError
// field is followed by hand.
func panicFrom(err error) (*resolverPanic, bool) {
	for err != nil {
		var rp *resolverPanic
		if errors.As(err, &rp) {
			return rp, true
		}
		gerr, ok := err.(*gqlerrors.Error)
		if !ok || gerr == nil || gerr.OriginalError == err {
			return nil, false
		}
		err = gerr.OriginalError
	}
	return nil, false
}
