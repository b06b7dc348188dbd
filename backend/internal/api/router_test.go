package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"membergraph/backend/internal/gql"
	"membergraph/backend/internal/metrics"
	"membergraph/backend/internal/resolve"
	"membergraph/backend/internal/store/memory"
)

type panickingExecutor struct{}

func (panickingExecutor) Execute(context.Context, gql.Request) *gql.Response {
	panic("boom")
}

// deadlineExecutor reports whether the request context carried a deadline
type deadlineExecutor struct {
	sawDeadline bool
}

func (d *deadlineExecutor) Execute(ctx context.Context, _ gql.Request) *gql.Response {
	_, d.sawDeadline = ctx.Deadline()
	return &gql.Response{}
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	m := metrics.New()
	exec, err := gql.NewExecutor(resolve.NewDispatcher(memory.New(), nil, m), nil)
	require.NoError(t, err)
	return NewRouter(Options{Executor: exec, Metrics: m, RequestTimeout: time.Second})
}

func post(router http.Handler, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/graphql", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "ok", response["status"])
}

func TestGraphQLEndpoint(t *testing.T) {
	router := newTestRouter(t)

	w := post(router, `{"query":"{ memberTypes { id } }"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":{"memberTypes":[{"id":"BASIC"},{"id":"BUSINESS"}]}}`, w.Body.String())

	w = post(router, `{"query":"query($id: MemberTypeId!) { memberType(id: $id) { postsLimitPerMonth } }","variables":{"id":"BUSINESS"}}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":{"memberType":{"postsLimitPerMonth":100}}}`, w.Body.String())
}

func TestGraphQLEndpoint_InvalidRequest(t *testing.T) {
	router := newTestRouter(t)

	assert.Equal(t, http.StatusBadRequest, post(router, `{}`).Code, "missing query")
	assert.Equal(t, http.StatusBadRequest, post(router, `{"query":`).Code, "truncated body")
}

func TestGraphQLEndpoint_ExecutorPanic(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := NewRouter(Options{Executor: panickingExecutor{}})

	w := post(router, `{"query":"{ users { id } }"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Failed to execute GraphQL query"}`, w.Body.String())
}

func TestGraphQLEndpoint_AppliesTimeout(t *testing.T) {
	gin.SetMode(gin.TestMode)
	exec := &deadlineExecutor{}
	router := NewRouter(Options{Executor: exec, RequestTimeout: time.Second})

	post(router, `{"query":"{ users { id } }"}`)
	assert.True(t, exec.sawDeadline)
}

func TestMetricsEndpoint(t *testing.T) {
	router := newTestRouter(t)
	post(router, `{"query":"{ posts { id } }"}`)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/metrics", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `membergraph_operations_total{field="posts",status="ok",type="query"} 1`)
}

func TestCORSPreflight(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodOptions, "/graphql", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
