package assistant

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-faster/errors"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nicolasimarinw/hr-ontology/modules/graph"
	"github.com/nicolasimarinw/hr-ontology/modules/lake"
)

type fakeRunner struct {
	rows  []map[string]any
	err   error
	reads []string
}

func (f *fakeRunner) Write(context.Context, string, map[string]any) error { return nil }

func (f *fakeRunner) Read(_ context.Context, cypher string, _ map[string]any) ([]map[string]any, error) {
	f.reads = append(f.reads, cypher)
	return f.rows, f.err
}

type fakeLake struct {
	res   *lake.QueryResult
	err   error
	limit int
	query string
}

func (f *fakeLake) Query(_ context.Context, query string, limit int) (*lake.QueryResult, error) {
	f.query, f.limit = query, limit
	return f.res, f.err
}

type fakeGraphTools struct {
	req   graph.AlgorithmRequest
	err   error
	title string
}

func (f *fakeGraphTools) Run(_ context.Context, req graph.AlgorithmRequest) (any, error) {
	f.req = req
	if f.err != nil {
		return nil, f.err
	}
	return map[string]any{"algorithm": req.Algorithm}, nil
}

func (f *fakeGraphTools) Visualize(_ context.Context, _ string, title string) (*graph.RenderResult, error) {
	f.title = title
	return &graph.RenderResult{File: "custom_" + graph.SafeName(title) + ".html", NodeCount: 2, EdgeCount: 1}, nil
}

func decodeResult(t *testing.T, s string) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(s), &out), s)
	return out
}

func TestToolbox_QueryGraph(t *testing.T) {
	runner := &fakeRunner{rows: []map[string]any{{"name": "Ada", "reports": int64(3)}}}
	tb := NewToolbox(runner, nil, nil)

	out := decodeResult(t, tb.Execute(context.Background(), ToolQueryGraph, `{"cypher":"MATCH (e:Employee) RETURN e.first_name AS name"}`))
	assert.EqualValues(t, 1, out["count"])
	assert.Len(t, runner.reads, 1)

	out = decodeResult(t, tb.Execute(context.Background(), ToolQueryGraph, `{"cypher":"MATCH (e) DETACH DELETE e"}`))
	assert.Contains(t, out["error"], "read-only")
	assert.Len(t, runner.reads, 1)

	out = decodeResult(t, tb.Execute(context.Background(), ToolQueryGraph, `{}`))
	assert.Contains(t, out["error"], "invalid tool input")
}

func TestToolbox_Unavailable(t *testing.T) {
	tb := NewToolbox(nil, nil, nil)
	ctx := context.Background()

	assert.Contains(t, decodeResult(t, tb.Execute(ctx, ToolQueryGraph, `{"cypher":"RETURN 1"}`))["error"], "not connected")
	assert.Contains(t, decodeResult(t, tb.Execute(ctx, ToolQueryDataLake, `{"sql":"SELECT 1"}`))["error"], "not available")
	assert.Contains(t, decodeResult(t, tb.Execute(ctx, ToolRunGraphAlgorithm, `{"algorithm":"centrality"}`))["error"], "not connected")
	assert.Contains(t, decodeResult(t, tb.Execute(ctx, "drop_tables", `{}`))["error"], "unknown tool")
	assert.Contains(t, decodeResult(t, tb.Execute(ctx, ToolQueryGraph, `not json`))["error"], "invalid tool input")
}

func TestToolbox_QueryDataLake(t *testing.T) {
	fl := &fakeLake{res: &lake.QueryResult{Columns: []string{"n"}, Rows: []map[string]any{{"n": 1}}, Count: 1}}
	tb := NewToolbox(nil, fl, nil)

	out := decodeResult(t, tb.Execute(context.Background(), ToolQueryDataLake, `{"sql":"SELECT count(*) AS n FROM employees"}`))
	assert.EqualValues(t, 1, out["count"])
	assert.Equal(t, lake.DefaultRowLimit, fl.limit)

	fl.err = lake.ErrNotReadOnly
	out = decodeResult(t, tb.Execute(context.Background(), ToolQueryDataLake, `{"sql":"DROP TABLE employees"}`))
	assert.Contains(t, out["error"], "read-only")
}

func TestToolbox_DescribeOntology(t *testing.T) {
	tb := NewToolbox(nil, nil, nil)

	out := decodeResult(t, tb.Execute(context.Background(), ToolDescribeOntology, `{"entity_type":"all"}`))
	assert.Contains(t, out, "node_types")
	assert.Contains(t, out, "relationship_types")

	out = decodeResult(t, tb.Execute(context.Background(), ToolDescribeOntology, `{"entity_type":"REPORTS_TO"}`))
	assert.Equal(t, "Employee", out["source_label"])

	out = decodeResult(t, tb.Execute(context.Background(), ToolDescribeOntology, `{"entity_type":"Spaceship"}`))
	assert.Contains(t, out["error"], "Spaceship")
	assert.Contains(t, out["available_nodes"], "Employee")
	assert.Contains(t, out["available_edges"], "REPORTS_TO")
}

func TestToolbox_GraphAlgorithms(t *testing.T) {
	gt := &fakeGraphTools{}
	tb := NewToolbox(nil, nil, gt)
	ctx := context.Background()

	out := decodeResult(t, tb.Execute(ctx, ToolRunGraphAlgorithm, `{"algorithm":"cascade","employee_id":"EMP-00010","top_n":5}`))
	assert.Equal(t, "cascade", out["algorithm"])
	assert.Equal(t, "EMP-00010", gt.req.EmployeeID)
	assert.Equal(t, 5, gt.req.TopN)

	out = decodeResult(t, tb.Execute(ctx, ToolRunGraphAlgorithm, `{"algorithm":"centrality","top_n":9999}`))
	assert.Contains(t, out["error"], "invalid tool input")

	gt.err = errors.Wrap(graph.ErrUnknownAlgorithm, "pagerank")
	out = decodeResult(t, tb.Execute(ctx, ToolRunGraphAlgorithm, `{"algorithm":"pagerank"}`))
	assert.Contains(t, out["error"], "pagerank")
	assert.Len(t, out["available"], len(graph.Algorithms()))

	out = decodeResult(t, tb.Execute(ctx, ToolVisualizeSubgraph, `{"cypher":"MATCH p=()-->() RETURN p LIMIT 5"}`))
	assert.Equal(t, "custom_subgraph.html", out["file"])
	assert.Equal(t, "subgraph", gt.title)
}

func TestDefinitions(t *testing.T) {
	defs := Definitions()
	require.Len(t, defs, 5)
	names := make([]string, 0, len(defs))
	for _, d := range defs {
		names = append(names, d.Function.Name)
		assert.Equal(t, "object", d.Function.Parameters["type"])
	}
	assert.Equal(t, []string{ToolQueryGraph, ToolQueryDataLake, ToolDescribeOntology, ToolVisualizeSubgraph, ToolRunGraphAlgorithm}, names)
}

func TestSystemPrompt(t *testing.T) {
	p := SystemPrompt()
	for _, want := range []string{
		"**Employee**: employee_id",
		"(Employee)-[:REPORTS_TO]->(Employee) {effective_date}",
		"performance_reviews",
		"EMP-00001",
		"Which managers have the widest span of control?",
	} {
		assert.Contains(t, p, want)
	}
}

func TestCacheKey(t *testing.T) {
	h := []Message{{Role: RoleUser, Content: "How many employees?"}}
	a, err := CacheKey("m1", h)
	require.NoError(t, err)
	b, err := CacheKey("m1", []Message{{Role: RoleUser, Content: "How many employees?"}})
	require.NoError(t, err)
	c, err := CacheKey("m2", h)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 32)
}

func TestRedisCache(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := NewRedisCache(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "", time.Minute)
	ctx := context.Background()

	_, err := cache.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, cache.Set(ctx, "k", "answer"))
	v, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "answer", v)
	assert.True(t, mr.Exists(DefaultCachePrefix+"k"))

	mr.FastForward(2 * time.Minute)
	_, err = cache.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

// fakeLLM answers the first completion with a tool call and every later
// one with a final answer.
type fakeLLM struct {
	mu       sync.Mutex
	requests []map[string]any
}

func (f *fakeLLM) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	var req map[string]any
	_ = json.Unmarshal(body, &req)

	f.mu.Lock()
	f.requests = append(f.requests, req)
	n := len(f.requests)
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if n == 1 {
		_, _ = io.WriteString(w, `{"id":"c1","object":"chat.completion","created":1,"model":"test",
"choices":[{"index":0,"finish_reason":"tool_calls","message":{"role":"assistant","content":null,
"tool_calls":[{"id":"call_1","type":"function","function":{"name":"describe_ontology","arguments":"{\"entity_type\":\"Employee\"}"}}]}}]}`)
		return
	}
	_, _ = io.WriteString(w, `{"id":"c2","object":"chat.completion","created":1,"model":"test",
"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"<think>plan</think>Employees have an employee_id."}}]}`)
}

func (f *fakeLLM) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func newTestAgent(t *testing.T, llm *fakeLLM, cache Cache) *Agent {
	t.Helper()
	srv := httptest.NewServer(llm)
	t.Cleanup(srv.Close)
	log, _ := test.NewNullLogger()
	agent, err := NewAgent(Config{APIKey: "test-key", BaseURL: srv.URL + "/", Model: "test", Cache: cache, Logger: log})
	require.NoError(t, err)
	return agent
}

func TestNewAgent_RequiresKey(t *testing.T) {
	_, err := NewAgent(Config{})
	assert.ErrorIs(t, err, ErrNoAPIKey)
}

func TestAgent_Chat(t *testing.T) {
	llm := &fakeLLM{}
	agent := newTestAgent(t, llm, nil)

	var seen []ToolCall
	reply, err := agent.Chat(context.Background(), []Message{
		{Role: RoleUser, Content: "hi"},
		{Role: RoleAssistant, Content: "hello"},
	}, "What identifies an employee?", func(tc ToolCall) { seen = append(seen, tc) })
	require.NoError(t, err)

	assert.Equal(t, "Employees have an employee_id.", reply.Answer)
	assert.Equal(t, 2, reply.Iterations)
	require.Len(t, reply.ToolCalls, 1)
	assert.Equal(t, ToolDescribeOntology, reply.ToolCalls[0].Name)
	assert.Contains(t, reply.ToolCalls[0].Result, `"id_property":"employee_id"`)
	assert.Equal(t, reply.ToolCalls, seen)

	require.Equal(t, 2, llm.count())
	first := llm.requests[0]
	assert.Equal(t, "test", first["model"])
	assert.Len(t, first["tools"], 5)
	msgs := first["messages"].([]any)
	require.Len(t, msgs, 4)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])

	second := llm.requests[1]["messages"].([]any)
	require.Len(t, second, 6)
	last := second[5].(map[string]any)
	assert.Equal(t, "tool", last["role"])
	assert.Equal(t, "call_1", last["tool_call_id"])
}

func TestAgent_ChatEmptyMessage(t *testing.T) {
	agent := newTestAgent(t, &fakeLLM{}, nil)
	_, err := agent.Chat(context.Background(), nil, "   ", nil)
	assert.ErrorIs(t, err, ErrEmptyMessage)
}

func TestAgent_ChatCached(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := NewRedisCache(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "", time.Hour)
	llm := &fakeLLM{}
	agent := newTestAgent(t, llm, cache)
	ctx := context.Background()

	first, err := agent.Chat(ctx, nil, "What identifies an employee?", nil)
	require.NoError(t, err)
	assert.False(t, first.Cached)
	require.Equal(t, 2, llm.count())

	second, err := agent.Chat(ctx, nil, "What identifies an employee?", nil)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Answer, second.Answer)
	assert.Equal(t, 2, llm.count())
}

func TestOverview(t *testing.T) {
	log, _ := test.NewNullLogger()
	runner := &fakeRunner{rows: []map[string]any{{"count": int64(900), "total": int64(1000), "termed": int64(123)}}}
	fl := &fakeLake{res: &lake.QueryResult{Rows: []map[string]any{{"avg_rating": 3.41, "gender": "Female", "count": int64(450)}}}}

	o := NewOverviewService(runner, fl, log).Overview(context.Background())
	require.NotNil(t, o.Headcount)
	assert.EqualValues(t, 900, *o.Headcount)
	require.NotNil(t, o.TurnoverPct)
	assert.InDelta(t, 12.3, *o.TurnoverPct, 1e-9)
	require.NotNil(t, o.AvgRating)
	assert.InDelta(t, 3.41, *o.AvgRating, 1e-9)
	assert.EqualValues(t, 450, o.Diversity["Female"])
	assert.Len(t, runner.reads, 3)
}

func TestOverview_MissingSources(t *testing.T) {
	log, _ := test.NewNullLogger()
	runner := &fakeRunner{err: errors.New("connection refused")}

	o := NewOverviewService(runner, nil, log).Overview(context.Background())
	assert.Nil(t, o.Headcount)
	assert.Nil(t, o.TurnoverPct)
	assert.Nil(t, o.AvgRating)
	assert.Nil(t, o.Diversity)

	b, err := json.Marshal(o)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(b), `"headcount":null`))
	assert.True(t, strings.Contains(string(b), `"diversity":null`))
}

func TestOverview_LakeDownVersusNoRows(t *testing.T) {
	log, _ := test.NewNullLogger()

	down := NewOverviewService(nil, &fakeLake{err: errors.New("lake not built")}, log).Overview(context.Background())
	assert.Nil(t, down.Diversity)
	assert.Nil(t, down.AvgRating)

	empty := NewOverviewService(nil, &fakeLake{res: &lake.QueryResult{}}, log).Overview(context.Background())
	require.NotNil(t, empty.Diversity)
	assert.Empty(t, empty.Diversity)

	b, err := json.Marshal(empty)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"diversity":{}`)
}
