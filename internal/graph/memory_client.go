package graph

import (
	"context"
	"strings"
	"sync"
)

// MemoryClient is an in-memory Client that records every executed statement and
// replays canned results, so Cypher-building code can be tested without a
// running database.
//
// Results registered with OnRead/OnWrite are matched by a substring of the
// statement and take precedence over the plain FIFO queues.
type MemoryClient struct {
	mu           sync.Mutex
	writeCalls   []ExecutedQuery
	readCalls    []ExecutedQuery
	readResults  []Result
	writeResults []Result
	readRoutes   []route
	writeRoutes  []route
	err          error
	connectivity error
	closed       bool
}

type route struct {
	match   string
	results []Result
}

// ExecutedQuery captures a cypher statement and parameters executed against the graph.
type ExecutedQuery struct {
	Query  string
	Params map[string]any
}

// NewMemoryClient instantiates the in-memory client.
func NewMemoryClient() *MemoryClient {
	return &MemoryClient{}
}

// WithError configures the client to return the provided error for subsequent calls.
func (m *MemoryClient) WithError(err error) *MemoryClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// WithConnectivityError forces VerifyConnectivity to return the supplied error.
func (m *MemoryClient) WithConnectivityError(err error) *MemoryClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connectivity = err
	return m
}

// PushReadResult appends a result that will be returned on the next unrouted ExecuteRead call.
func (m *MemoryClient) PushReadResult(res Result) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readResults = append(m.readResults, res)
}

// PushWriteResult appends a result that will be returned on the next unrouted ExecuteWrite call.
func (m *MemoryClient) PushWriteResult(res Result) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeResults = append(m.writeResults, res)
}

// OnRead queues results for reads whose statement contains match. The last
// queued result is repeated once the others are consumed.
func (m *MemoryClient) OnRead(match string, results ...Result) *MemoryClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readRoutes = append(m.readRoutes, route{match: match, results: results})
	return m
}

// OnWrite is the write-side counterpart of OnRead.
func (m *MemoryClient) OnWrite(match string, results ...Result) *MemoryClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeRoutes = append(m.writeRoutes, route{match: match, results: results})
	return m
}

func (m *MemoryClient) ExecuteWrite(_ context.Context, cypher string, params map[string]any) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return Result{}, m.err
	}
	m.writeCalls = append(m.writeCalls, ExecutedQuery{Query: cypher, Params: cloneMap(params)})
	return next(cypher, m.writeRoutes, &m.writeResults), nil
}

func (m *MemoryClient) ExecuteRead(_ context.Context, cypher string, params map[string]any) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return Result{}, m.err
	}
	m.readCalls = append(m.readCalls, ExecutedQuery{Query: cypher, Params: cloneMap(params)})
	return next(cypher, m.readRoutes, &m.readResults), nil
}

func next(cypher string, routes []route, queue *[]Result) Result {
	for i := range routes {
		r := &routes[i]
		if !strings.Contains(cypher, r.match) || len(r.results) == 0 {
			continue
		}
		res := r.results[0]
		if len(r.results) > 1 {
			r.results = r.results[1:]
		}
		return res
	}
	if len(*queue) == 0 {
		return Result{}
	}
	res := (*queue)[0]
	*queue = (*queue)[1:]
	return res
}

func (m *MemoryClient) VerifyConnectivity(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connectivity
}

func (m *MemoryClient) Close(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Closed reports whether Close has been called.
func (m *MemoryClient) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// WriteCalls returns a snapshot of executed write queries.
func (m *MemoryClient) WriteCalls() []ExecutedQuery {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ExecutedQuery(nil), m.writeCalls...)
}

// ReadCalls returns a snapshot of executed read queries.
func (m *MemoryClient) ReadCalls() []ExecutedQuery {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ExecutedQuery(nil), m.readCalls...)
}

func cloneMap(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
