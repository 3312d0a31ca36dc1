// Package graph describes the GraphQL schema served by the API and executes
// requests against it.
package graph

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/graphql-go/graphql"
	"github.com/sirupsen/logrus"

	"github.com/zhouzirui/user-lookup/backend/internal/model/user"
)

// Resolver is the lookup behaviour the schema delegates to.
type Resolver interface {
	FindByEmail(ctx context.Context, email user.Email) (user.User, bool)
}

// resolverPanic carries a recovered panic and the stack it happened on.
type resolverPanic struct {
	value interface{}
	stack []byte
}

func (p *resolverPanic) Error() string {
	return fmt.Sprintf("resolver panic: %v", p.value)
}

func newUserType() *graphql.Object {
	field := func(t graphql.Output, description string) *graphql.Field {
		return &graphql.Field{Type: t, Description: description}
	}

	return graphql.NewObject(graphql.ObjectConfig{
		Name:        "User",
		Description: "Define a user",
		Fields: graphql.Fields{
			"id":         field(graphql.Int, "User id"),
			"first_name": field(graphql.String, "User first name"),
			"last_name":  field(graphql.String, "User last name"),
			"email":      field(graphql.String, "User email"),
			"gender":     field(graphql.String, "User gender"),
			"ip_address": field(graphql.String, "User ip address"),
		},
	})
}

// NewSchema builds the schema: a User type, the Email scalar and
// Query.getUserByEmail(email: Email!): User.
func NewSchema(resolver Resolver, log logrus.FieldLogger) (graphql.Schema, error) {
	emailType := newEmailScalar(log)
	userType := newUserType()

	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"getUserByEmail": &graphql.Field{
				Type:        userType,
				Description: "Returns the first user whose email matches exactly, or null.",
				Args: graphql.FieldConfigArgument{
					"email": &graphql.ArgumentConfig{
						Type:        graphql.NewNonNull(emailType),
						Description: "Email to look up",
					},
				},
				Resolve: func(p graphql.ResolveParams) (result interface{}, err error) {
					defer func() {
						if r := recover(); r != nil {
							result, err = nil, &resolverPanic{value: r, stack: debug.Stack()}
						}
					}()

					email, ok := p.Args["email"].(user.Email)
					if !ok {
						return nil, nil
					}
					found, ok := resolver.FindByEmail(p.Context, email)
					if !ok {
						return nil, nil
					}
					return found, nil
				},
			},
		},
	})

	schema, err := graphql.NewSchema(graphql.SchemaConfig{Query: query})
	if err != nil {
		return graphql.Schema{}, fmt.Errorf("build schema: %w", err)
	}
	return schema, nil
}
