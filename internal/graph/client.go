package graph

import (
	"context"
	"errors"
)

// Client is the Cypher execution contract the Neo4j-backed store is written
// against. Implementations must be safe for concurrent use.
type Client interface {
	ExecuteWrite(ctx context.Context, cypher string, params map[string]any) (Result, error)
	ExecuteRead(ctx context.Context, cypher string, params map[string]any) (Result, error)
	VerifyConnectivity(ctx context.Context) error
	Close(ctx context.Context) error
}

// Result is a fully consumed query response.
type Result struct {
	Records []Record
}

// Record groups the named columns of one result row. Node and relationship
// values are flattened into plain maps (see NodeValue and RelationshipValue).
type Record map[string]any

// NodeValue is how a returned graph node appears inside a Record.
type NodeValue struct {
	ElementID  string
	Labels     []string
	Properties map[string]any
}

// RelationshipValue is how a returned relationship appears inside a Record.
type RelationshipValue struct {
	ElementID      string
	Type           string
	StartElementID string
	EndElementID   string
	Properties     map[string]any
}

// Options configures a graph client implementation.
type Options struct {
	URI            string
	Database       string
	Username       string
	Password       string
	MaxConnections int
	// FetchSize bounds how many records the driver pulls per round trip; 0 keeps
	// the driver default.
	FetchSize int
}

// ErrMissingURI indicates the graph URI is not provided.
var ErrMissingURI = errors.New("graph URI is required")
