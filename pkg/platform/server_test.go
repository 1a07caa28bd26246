package platform

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/jobdesk/jobdesk/pkg/config"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

func testServer(t *testing.T) *Server {
	t.Helper()

	cfg := &config.Config{
		Server: config.ServerConfig{Addr: ":0"},
		Store:  config.StoreConfig{Path: filepath.Join(t.TempDir(), "data.json")},
		Auth: config.AuthConfig{
			Secret:     "test-secret",
			TokenTTL:   time.Hour,
			BcryptCost: 4,
		},
	}

	p := NewPlatform(cfg, zap.NewNop())
	if err := p.Start(); err != nil {
		t.Fatalf("platform start failed: %v", err)
	}
	t.Cleanup(p.Stop)

	return NewServer(p, zap.NewNop())
}

func doRequest(t *testing.T, handler fasthttp.RequestHandler, method, uri, body string) *fasthttp.RequestCtx {
	t.Helper()

	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod(method)
	ctx.Request.SetRequestURI(uri)
	if body != "" {
		ctx.Request.SetBodyString(body)
	}
	handler(ctx)
	return ctx
}

func TestHealthEndpoint(t *testing.T) {
	srv := testServer(t)
	handler := srv.Handler()

	ctx := doRequest(t, handler, "GET", "/api/health", "")
	if ctx.Response.StatusCode() != fasthttp.StatusOK {
		t.Errorf("status = %d, want 200", ctx.Response.StatusCode())
	}
	if ctx.Response.Header.Peek("X-Request-Id") == nil {
		t.Error("missing X-Request-Id header")
	}
}

func TestCORSPreflight(t *testing.T) {
	srv := testServer(t)
	handler := srv.Handler()

	ctx := doRequest(t, handler, "OPTIONS", "/graphql", "")
	if ctx.Response.StatusCode() != fasthttp.StatusNoContent {
		t.Errorf("status = %d, want 204", ctx.Response.StatusCode())
	}
	if string(ctx.Response.Header.Peek("Access-Control-Allow-Origin")) != "*" {
		t.Error("missing CORS headers")
	}
}

func TestGraphQLEndToEnd(t *testing.T) {
	srv := testServer(t)
	handler := srv.Handler()

	post := func(query string, authHeader string) map[string]interface{} {
		body, _ := json.Marshal(map[string]interface{}{"query": query})
		var req fasthttp.Request
		req.Header.SetMethod("POST")
		req.SetRequestURI("/graphql")
		req.SetBody(body)
		if authHeader != "" {
			req.Header.Set("Authorization", authHeader)
		}
		ctx := &fasthttp.RequestCtx{}
		ctx.Init(&req, nil, nil)
		handler(ctx)

		if ctx.Response.StatusCode() != fasthttp.StatusOK {
			t.Fatalf("status = %d, body = %s", ctx.Response.StatusCode(), ctx.Response.Body())
		}
		var result struct {
			Data map[string]interface{} `json:"data"`
		}
		if err := json.Unmarshal(ctx.Response.Body(), &result); err != nil {
			t.Fatalf("bad response body: %v", err)
		}
		return result.Data
	}

	data := post(`mutation {
		register(input: {name: "Al", surname: "Smith", username: "al", email: "a@x.com", password: "p"}) {
			message error
		}
	}`, "")
	payload := data["register"].(map[string]interface{})
	if payload["message"] != "Registration successful" {
		t.Fatalf("register = %+v", payload)
	}

	data = post(`mutation { login(identifier: "al", password: "p") { token error } }`, "")
	payload = data["login"].(map[string]interface{})
	token, _ := payload["token"].(string)
	if token == "" {
		t.Fatalf("login = %+v", payload)
	}

	// With the bearer token the job mutation succeeds.
	data = post(`mutation {
		createJob(job: {title: "T", description: "d", endDate: "2027-01-01"}) { message error }
	}`, "Bearer "+token)
	payload = data["createJob"].(map[string]interface{})
	if payload["message"] != "Job added successfully" {
		t.Errorf("createJob = %+v", payload)
	}

	// Without it the same mutation soft-fails and changes nothing.
	data = post(`mutation { deleteJob(title: "T") { error } }`, "")
	payload = data["deleteJob"].(map[string]interface{})
	if payload["error"] != "Unauthorized" {
		t.Errorf("anonymous deleteJob = %+v", payload)
	}

	data = post(`{ user(username: "al") { jobs { title } } }`, "")
	user := data["user"].(map[string]interface{})
	jobs := user["jobs"].([]interface{})
	if len(jobs) != 1 {
		t.Errorf("job list changed by unauthorized delete: %+v", jobs)
	}
}

// BenchmarkHealthHandler benchmarks the raw HTTP throughput of the
// wrapped handler chain.
func BenchmarkHealthHandler(b *testing.B) {
	handler := func(ctx *fasthttp.RequestCtx) {
		ctx.SetContentType("application/json")
		ctx.SetStatusCode(fasthttp.StatusOK)
		ctx.SetBodyString(`{"status":"ok"}`)
	}

	ctx := &fasthttp.RequestCtx{}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		handler(ctx)
	}
}
