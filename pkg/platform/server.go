package platform

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/fasthttp/router"
	"github.com/google/uuid"
	"github.com/jobdesk/jobdesk/pkg/platform/auth"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// Server serves the GraphQL API over fasthttp.
type Server struct {
	logger   *zap.Logger
	platform *Platform
	router   *router.Router
	setup    sync.Once
}

func NewServer(platform *Platform, logger *zap.Logger) *Server {
	return &Server{
		logger:   logger,
		platform: platform,
		router:   router.New(),
	}
}

func (s *Server) Start(addr string) error {
	s.logger.Info("Starting JobDesk Server (FastHTTP)", zap.String("addr", addr))

	return fasthttp.ListenAndServe(addr, s.Handler())
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() fasthttp.RequestHandler {
	s.setup.Do(s.setupRoutes)
	return s.corsMiddleware(s.requestIDMiddleware(s.router.Handler))
}

func (s *Server) setupRoutes() {
	s.router.POST("/graphql", s.handleGraphQL)
	s.router.GET("/graphql", s.handleGraphQLOrPlayground)

	s.router.GET("/api/health", func(ctx *fasthttp.RequestCtx) {
		ctx.SetContentType("application/json")
		ctx.SetStatusCode(fasthttp.StatusOK)
		fmt.Fprintf(ctx, `{"status":"ok","version":"1.0.0"}`)
	})
}

// Helpers
func jsonResponse(ctx *fasthttp.RequestCtx, code int, data interface{}) {
	ctx.SetContentType("application/json")
	ctx.SetStatusCode(code)
	if err := json.NewEncoder(ctx).Encode(data); err != nil {
		ctx.Error(err.Error(), fasthttp.StatusInternalServerError)
	}
}

func errorResponse(ctx *fasthttp.RequestCtx, code int, message string) {
	jsonResponse(ctx, code, map[string]string{"error": message})
}

// Handlers

func (s *Server) handleGraphQL(ctx *fasthttp.RequestCtx) {
	var body struct {
		Query     string                 `json:"query"`
		Operation string                 `json:"operationName"`
		Variables map[string]interface{} `json:"variables"`
	}

	if err := json.Unmarshal(ctx.PostBody(), &body); err != nil {
		errorResponse(ctx, fasthttp.StatusBadRequest, "Invalid request body")
		return
	}

	identity := s.identity(ctx)
	result := s.platform.gqlEngine.Execute(ctx, body.Query, body.Variables, identity)
	jsonResponse(ctx, fasthttp.StatusOK, result)
}

func (s *Server) handleGraphQLOrPlayground(ctx *fasthttp.RequestCtx) {
	queryArgs := ctx.QueryArgs()
	if queryArgs.Has("query") {
		query := string(queryArgs.Peek("query"))
		result := s.platform.gqlEngine.Execute(ctx, query, nil, s.identity(ctx))
		jsonResponse(ctx, fasthttp.StatusOK, result)
		return
	}

	ctx.SetContentType("text/html")
	ctx.SetStatusCode(fasthttp.StatusOK)
	ctx.WriteString(graphiqlHTML)
}

// identity resolves the Authorization header into an authenticated
// identity. Any failure leaves the request anonymous; the operations
// answer "Unauthorized" where it matters.
func (s *Server) identity(ctx *fasthttp.RequestCtx) *auth.Claims {
	authHeader := string(ctx.Request.Header.Peek("Authorization"))
	return s.platform.authEngine.Identify(authHeader)
}

// Middleware

func (s *Server) requestIDMiddleware(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		id := uuid.NewString()
		ctx.Response.Header.Set("X-Request-Id", id)
		next(ctx)
		s.logger.Debug("request",
			zap.String("request_id", id),
			zap.ByteString("method", ctx.Method()),
			zap.ByteString("path", ctx.Path()),
			zap.Int("status", ctx.Response.StatusCode()))
	}
}

func (s *Server) corsMiddleware(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		ctx.Response.Header.Set("Access-Control-Allow-Origin", "*")
		ctx.Response.Header.Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		ctx.Response.Header.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if string(ctx.Method()) == "OPTIONS" {
			ctx.SetStatusCode(fasthttp.StatusNoContent)
			return
		}
		next(ctx)
	}
}

const graphiqlHTML = `
<!DOCTYPE html>
<html>
  <head>
    <title>JobDesk GraphiQL</title>
    <link href="https://unpkg.com/graphiql/graphiql.min.css" rel="stylesheet" />
  </head>
  <body style="margin: 0;">
    <div id="graphiql" style="height: 100vh;"></div>
    <script
      crossorigin
      src="https://unpkg.com/react/umd/react.production.min.js"
    ></script>
    <script
      crossorigin
      src="https://unpkg.com/react-dom/umd/react-dom.production.min.js"
    ></script>
    <script
      crossorigin
      src="https://unpkg.com/graphiql/graphiql.min.js"
    ></script>
    <script>
      const fetcher = GraphiQL.createFetcher({
        url: '/graphql',
      });
      ReactDOM.render(
        React.createElement(GraphiQL, { fetcher: fetcher }),
        document.getElementById('graphiql'),
      );
    </script>
  </body>
</html>
`
