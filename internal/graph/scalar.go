package graph

import (
	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"
	"github.com/sirupsen/logrus"

	"github.com/zhouzirui/user-lookup/backend/internal/model/user"
)

const emailDescription = `An email-shaped string, returned exactly as given. ` +
	`A value that is not a string is rejected (NotAString); ` +
	`a string without an "@" is rejected (InvalidFormat). No other checks apply.`

// newEmailScalar builds the Email scalar. Literal and variable inputs go
// through the same user.ValidateEmail check; returning nil makes graphql-go
// report the argument as invalid before any resolver runs.
func newEmailScalar(log logrus.FieldLogger) *graphql.Scalar {
	reject := func(err error) interface{} {
		log.WithError(err).Debug("email argument rejected")
		return nil
	}

	return graphql.NewScalar(graphql.ScalarConfig{
		Name:        "Email",
		Description: emailDescription,
		Serialize: func(value interface{}) interface{} {
			switch v := value.(type) {
			case user.Email:
				return user.Serialize(v)
			case string:
				return v
			case *string:
				if v == nil {
					return nil
				}
				return *v
			}
			return nil
		},
		ParseValue: func(value interface{}) interface{} {
			email, err := user.ValidateEmail(value)
			if err != nil {
				return reject(err)
			}
			return email
		},
		ParseLiteral: func(valueAST ast.Value) interface{} {
			literal, ok := valueAST.(*ast.StringValue)
			if !ok {
				return reject(&user.ValidationError{Kind: user.NotAString, Value: valueAST.GetKind()})
			}
			email, err := user.ValidateEmail(literal.Value)
			if err != nil {
				return reject(err)
			}
			return email
		},
	})
}
