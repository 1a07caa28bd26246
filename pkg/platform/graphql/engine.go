package graphql

import (
	"context"
	"fmt"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/gqlerrors"
	"github.com/jobdesk/jobdesk/pkg/platform/auth"
	"github.com/jobdesk/jobdesk/pkg/platform/store"
	"github.com/jobdesk/jobdesk/pkg/platform/tracker"
	"go.uber.org/zap"
)

type contextKey string

const identityKey contextKey = "identity"

// identityFrom pulls the authenticated identity out of the resolver
// context. Nil means the request carried no valid token.
func identityFrom(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(identityKey).(*auth.Claims)
	return claims
}

// GraphQLEngine holds the static schema over the tracker operations.
type GraphQLEngine struct {
	tracker   *tracker.Service
	logger    *zap.Logger
	schema    graphql.Schema
	hasSchema bool
}

func NewGraphQLEngine(svc *tracker.Service, logger *zap.Logger) *GraphQLEngine {
	return &GraphQLEngine{
		tracker: svc,
		logger:  logger,
	}
}

// BuildSchema constructs the GraphQL schema: job/user types, the public
// queries, the legacy mutations and the token-scoped job mutations.
func (e *GraphQLEngine) BuildSchema() error {
	e.logger.Info("Building GraphQL Schema...")

	jobType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Job",
		Fields: graphql.Fields{
			"title":       &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"description": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"endDate":     &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		},
	})

	userType := graphql.NewObject(graphql.ObjectConfig{
		Name: "User",
		Fields: graphql.Fields{
			"name":     &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"surname":  &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"username": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"email":    &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"password": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"jobs": &graphql.Field{
				Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(jobType))),
			},
		},
	})

	authPayloadType := graphql.NewObject(graphql.ObjectConfig{
		Name: "AuthPayload",
		Fields: graphql.Fields{
			"user":    &graphql.Field{Type: userType},
			"message": &graphql.Field{Type: graphql.String},
			"error":   &graphql.Field{Type: graphql.String},
			"token":   &graphql.Field{Type: graphql.String},
		},
	})

	jobInputType := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "JobInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"title":       &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"description": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"endDate":     &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		},
	})

	userInputType := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "UserInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"name":     &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"surname":  &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"username": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"email":    &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"password": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		},
	})

	queryFields := graphql.Fields{
		"users": &graphql.Field{
			Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(userType))),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return e.tracker.ListUsers()
			},
		},
		"user": &graphql.Field{
			Type: userType,
			Args: graphql.FieldConfigArgument{
				"username": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				username, _ := p.Args["username"].(string)
				user, err := e.tracker.GetUser(username)
				if err != nil {
					return nil, err
				}
				if user == nil {
					return nil, nil
				}
				return user, nil
			},
		},
	}

	mutationFields := graphql.Fields{
		"addUser": &graphql.Field{
			Type: userType,
			Args: graphql.FieldConfigArgument{
				"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(userInputType)},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return e.tracker.AddUser(userInputFromArgs(p.Args["input"]))
			},
		},
		"addJob": &graphql.Field{
			Type: userType,
			Args: graphql.FieldConfigArgument{
				"username": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				"job":      &graphql.ArgumentConfig{Type: graphql.NewNonNull(jobInputType)},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				username, _ := p.Args["username"].(string)
				return e.tracker.AddJob(username, jobFromArgs(p.Args["job"]))
			},
		},
		"register": &graphql.Field{
			Type: authPayloadType,
			Args: graphql.FieldConfigArgument{
				"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(userInputType)},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return e.tracker.Register(userInputFromArgs(p.Args["input"]))
			},
		},
		"login": &graphql.Field{
			Type: authPayloadType,
			Args: graphql.FieldConfigArgument{
				"identifier": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				"password":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				identifier, _ := p.Args["identifier"].(string)
				password, _ := p.Args["password"].(string)
				return e.tracker.Login(identifier, password)
			},
		},
		"createJob": &graphql.Field{
			Type: authPayloadType,
			Args: graphql.FieldConfigArgument{
				"job": &graphql.ArgumentConfig{Type: graphql.NewNonNull(jobInputType)},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return e.tracker.CreateJob(identityFrom(p.Context), jobFromArgs(p.Args["job"]))
			},
		},
		"updateJob": &graphql.Field{
			Type: authPayloadType,
			Args: graphql.FieldConfigArgument{
				"title": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				"job":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(jobInputType)},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				title, _ := p.Args["title"].(string)
				return e.tracker.UpdateJob(identityFrom(p.Context), title, jobFromArgs(p.Args["job"]))
			},
		},
		"deleteJob": &graphql.Field{
			Type: authPayloadType,
			Args: graphql.FieldConfigArgument{
				"title": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				title, _ := p.Args["title"].(string)
				return e.tracker.DeleteJob(identityFrom(p.Context), title)
			},
		},
	}

	schema, err := graphql.NewSchema(graphql.SchemaConfig{
		Query:    graphql.NewObject(graphql.ObjectConfig{Name: "Query", Fields: queryFields}),
		Mutation: graphql.NewObject(graphql.ObjectConfig{Name: "Mutation", Fields: mutationFields}),
	})
	if err != nil {
		return fmt.Errorf("failed to create schema: %v", err)
	}

	e.schema = schema
	e.hasSchema = true
	return nil
}

// Execute runs a GraphQL query. The identity (nil for anonymous callers)
// is attached to the context so the token-scoped resolvers can see it.
func (e *GraphQLEngine) Execute(ctx context.Context, query string, variables map[string]interface{}, identity *auth.Claims) *graphql.Result {
	if !e.hasSchema {
		// Try to build schema lazily
		if err := e.BuildSchema(); err != nil {
			return &graphql.Result{Errors: []gqlerrors.FormattedError{{Message: err.Error()}}}
		}
	}

	params := graphql.Params{
		Schema:         e.schema,
		RequestString:  query,
		VariableValues: variables,
		Context:        context.WithValue(ctx, identityKey, identity),
	}

	return graphql.Do(params)
}

func jobFromArgs(arg interface{}) store.Job {
	m, _ := arg.(map[string]interface{})
	job := store.Job{}
	if v, ok := m["title"].(string); ok {
		job.Title = v
	}
	if v, ok := m["description"].(string); ok {
		job.Description = v
	}
	if v, ok := m["endDate"].(string); ok {
		job.EndDate = v
	}
	return job
}

func userInputFromArgs(arg interface{}) tracker.UserInput {
	m, _ := arg.(map[string]interface{})
	input := tracker.UserInput{}
	if v, ok := m["name"].(string); ok {
		input.Name = v
	}
	if v, ok := m["surname"].(string); ok {
		input.Surname = v
	}
	if v, ok := m["username"].(string); ok {
		input.Username = v
	}
	if v, ok := m["email"].(string); ok {
		input.Email = v
	}
	if v, ok := m["password"].(string); ok {
		input.Password = v
	}
	return input
}
