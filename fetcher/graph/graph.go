// Package graph resolves attributes from node properties in Neo4j.
package graph

import (
	"context"
	"fmt"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"github.com/dev-mohitbeniwal/themis/db"
	"github.com/dev-mohitbeniwal/themis/fetcher"
	logger "github.com/dev-mohitbeniwal/themis/logging"
	"github.com/dev-mohitbeniwal/themis/model"
)

const ID = "graph"

type Config struct {
	Neo4jURI    string   `mapstructure:"neo4j_uri" validate:"required"`
	Username    string   `mapstructure:"username"`
	Password    string   `mapstructure:"password"`
	Database    string   `mapstructure:"database"`
	NodeLabel   string   `mapstructure:"node_label" validate:"required"`
	URIProperty string   `mapstructure:"uri_property" validate:"required"`
	URISchemes  []string `mapstructure:"uri_schemes" validate:"min=1,dive,required"`
}

func DefaultConfig() *Config {
	return &Config{NodeLabel: "Entity", URIProperty: "uri"}
}

// Registration wires the graph fetcher into a fetcher.Factory. It has no
// admin routes.
func Registration() fetcher.Registration {
	return fetcher.Define(DefaultConfig, build, nil)
}

func build(ctx context.Context, cfg *Config) (fetcher.Fetcher, error) {
	driver, err := db.OpenNeo4j(ctx, db.Neo4jOptions{
		URI:      cfg.Neo4jURI,
		Username: cfg.Username,
		Password: cfg.Password,
	})
	if err != nil {
		return nil, err
	}
	g := New(*cfg, &neo4jQuerier{
		driver:   driver,
		database: cfg.Database,
		query:    nodeQuery(cfg.NodeLabel, cfg.URIProperty),
	})
	g.closer = func() error {
		db.CloseNeo4j(context.Background(), driver)
		return nil
	}
	return g, nil
}

// NodeQuerier looks up the property map of the node identified by uri.
type NodeQuerier interface {
	NodeProperties(ctx context.Context, uri string) (map[string]any, bool, error)
}

// Graph is a read-only fetcher over graph nodes.
type Graph struct {
	querier     NodeQuerier
	uriProperty string
	schemes     map[string]struct{}
	closer      func() error
}

func New(cfg Config, querier NodeQuerier) *Graph {
	schemes := make(map[string]struct{}, len(cfg.URISchemes))
	for _, s := range cfg.URISchemes {
		schemes[strings.ToLower(s)] = struct{}{}
	}
	return &Graph{querier: querier, uriProperty: cfg.URIProperty, schemes: schemes}
}

// MatchURI claims uris whose scheme is configured for the graph.
func (g *Graph) MatchURI(uri string) bool {
	idx := strings.Index(uri, "://")
	if idx <= 0 {
		return false
	}
	_, ok := g.schemes[strings.ToLower(uri[:idx])]
	return ok
}

func (g *Graph) FetchAttributes(ctx context.Context, uri string) (model.Attributes, error) {
	props, found, err := g.querier.NodeProperties(ctx, uri)
	if err != nil {
		logger.Error("Graph attribute lookup failed", zap.String("uri", uri), zap.Error(err))
		return nil, fmt.Errorf("graph lookup %s: %w", uri, err)
	}
	attrs := make(model.Attributes, len(props))
	if !found {
		return attrs, nil
	}
	for k, v := range props {
		if k == g.uriProperty {
			continue
		}
		attrs[k] = model.FromNative(v)
	}
	return attrs, nil
}

func (g *Graph) Close() error {
	if g.closer == nil {
		return nil
	}
	return g.closer()
}

type neo4jQuerier struct {
	driver   neo4j.DriverWithContext
	database string
	query    string
}

func nodeQuery(label, property string) string {
	return fmt.Sprintf("MATCH (n:%s {%s: $uri}) RETURN properties(n) AS props LIMIT 1",
		quoteIdentifier(label), quoteIdentifier(property))
}

func quoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func (q *neo4jQuerier) NodeProperties(ctx context.Context, uri string) (map[string]any, bool, error) {
	configurers := []neo4j.ExecuteQueryConfigurationOption{neo4j.ExecuteQueryWithReadersRouting()}
	if q.database != "" {
		configurers = append(configurers, neo4j.ExecuteQueryWithDatabase(q.database))
	}
	result, err := neo4j.ExecuteQuery(ctx, q.driver, q.query,
		map[string]any{"uri": uri},
		neo4j.EagerResultTransformer,
		configurers...,
	)
	if err != nil {
		return nil, false, err
	}
	if len(result.Records) == 0 {
		return nil, false, nil
	}
	props, _, err := neo4j.GetRecordValue[map[string]any](result.Records[0], "props")
	if err != nil {
		return nil, false, err
	}
	return props, true, nil
}
