// db/neo4j.go
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	logger "github.com/dev-mohitbeniwal/themis/logging"
)

type Neo4jOptions struct {
	URI      string
	Username string
	Password string
}

// OpenNeo4j connects to Neo4j and verifies connectivity.
func OpenNeo4j(ctx context.Context, opts Neo4jOptions) (neo4j.DriverWithContext, error) {
	logger.Info("Connecting to Neo4j at URI", zap.String("uri", opts.URI))
	driver, err := neo4j.NewDriverWithContext(
		opts.URI,
		neo4j.BasicAuth(opts.Username, opts.Password, ""),
		func(c *neo4j.Config) {
			c.MaxConnectionLifetime = 30 * time.Minute
			c.MaxConnectionPoolSize = 50
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Neo4j driver: %w", err)
	}

	verifyCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := driver.VerifyConnectivity(verifyCtx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("failed to connect to Neo4j: %w", err)
	}

	logger.Info("Successfully connected to Neo4j")
	return driver, nil
}

func CloseNeo4j(ctx context.Context, driver neo4j.DriverWithContext) {
	if driver == nil {
		return
	}
	closeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := driver.Close(closeCtx); err != nil {
		logger.Error("Error closing Neo4j connection", zap.Error(err))
	}
}
