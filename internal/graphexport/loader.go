package graphexport

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
)

type queryFunc func(ctx context.Context, cypher string, params map[string]any) error

// Neo4jLoader writes contract hierarchies into a Neo4j database using
// batch UNWIND queries.
type Neo4jLoader struct {
	driver neo4j.DriverWithContext
	logger *zap.Logger
	run    queryFunc
}

// NewNeo4jLoader connects to Neo4j and returns a ready-to-use loader.
func NewNeo4jLoader(ctx context.Context, uri, user, password string, logger *zap.Logger) (*Neo4jLoader, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("failed to reach neo4j at %s: %w", uri, err)
	}
	l := &Neo4jLoader{driver: driver, logger: logger}
	l.run = func(ctx context.Context, cypher string, params map[string]any) error {
		_, err := neo4j.ExecuteQuery(ctx, driver, cypher, params, neo4j.EagerResultTransformer)
		return err
	}
	return l, nil
}

func newLoader(run queryFunc, logger *zap.Logger) *Neo4jLoader {
	return &Neo4jLoader{run: run, logger: logger}
}

// Close releases the underlying Neo4j driver resources.
func (l *Neo4jLoader) Close(ctx context.Context) error {
	if l.driver == nil {
		return nil
	}
	return l.driver.Close(ctx)
}

// CleanGraph removes previously exported contract nodes and relationships.
func (l *Neo4jLoader) CleanGraph(ctx context.Context) error {
	l.logger.Info("cleaning existing contract graph")
	queries := []string{
		"MATCH ()-[r:CALLS_ABBREVIATOR]->() DELETE r",
		"MATCH ()-[r:CORRESPONDS_TO]->() DELETE r",
		"MATCH ()-[r:CONTRACT_FOR]->() DELETE r",
		"MATCH ()-[r:IMPLEMENTS]->() DELETE r",
		"MATCH ()-[r:HAS_MEMBER]->() DELETE r",
		"MATCH (n:ContractMember) DETACH DELETE n",
		"MATCH (n:ContractType) DETACH DELETE n",
	}
	for _, q := range queries {
		if err := l.run(ctx, q, nil); err != nil {
			return err
		}
	}
	return nil
}

// CreateIndexes ensures the lookup indexes exist.
func (l *Neo4jLoader) CreateIndexes(ctx context.Context) error {
	indexes := []string{
		"CREATE INDEX contract_type_name IF NOT EXISTS FOR (n:ContractType) ON (n.name)",
		"CREATE INDEX contract_member_id IF NOT EXISTS FOR (n:ContractMember) ON (n.id)",
	}
	for _, q := range indexes {
		if err := l.run(ctx, q, nil); err != nil {
			return err
		}
	}
	return nil
}

// Load upserts every node and edge of g. Types go first so that member and
// edge queries can MATCH them.
func (l *Neo4jLoader) Load(ctx context.Context, g *Graph) error {
	steps := []struct {
		name string
		fn   func(context.Context, *Graph) error
	}{
		{"types", l.loadTypes},
		{"members", l.loadMembers},
		{"implements", l.loadImplements},
		{"contract-for", l.loadContractFor},
		{"correspondences", l.loadCorrespondences},
		{"calls", l.loadCalls},
	}
	for _, step := range steps {
		if err := step.fn(ctx, g); err != nil {
			return fmt.Errorf("loading %s: %w", step.name, err)
		}
	}
	return nil
}

func (l *Neo4jLoader) loadTypes(ctx context.Context, g *Graph) error {
	l.logger.Debug("loading types", zap.Int("count", len(g.Types)))
	batch := make([]map[string]any, 0, len(g.Types))
	for _, t := range g.Types {
		batch = append(batch, map[string]any{
			"name":       t.Name,
			"kind":       t.Kind,
			"invariants": t.Invariants,
		})
	}
	return l.run(ctx,
		`UNWIND $batch AS row
		 MERGE (n:ContractType {name: row.name})
		 SET n.kind = row.kind, n.invariant_count = row.invariants`,
		map[string]any{"batch": batch},
	)
}

func (l *Neo4jLoader) loadMembers(ctx context.Context, g *Graph) error {
	l.logger.Debug("loading members", zap.Int("count", len(g.Members)))
	batch := make([]map[string]any, 0, len(g.Members))
	for _, m := range g.Members {
		batch = append(batch, map[string]any{
			"id":          m.ID,
			"owner":       m.Owner,
			"signature":   m.Signature,
			"kind":        m.Kind,
			"abbreviator": m.Abbreviator,
			"private":     m.Private,
			"clauses":     m.Clauses,
		})
	}
	return l.run(ctx,
		`UNWIND $batch AS row
		 MERGE (n:ContractMember {id: row.id})
		 SET n.owner = row.owner, n.signature = row.signature, n.kind = row.kind,
		     n.abbreviator = row.abbreviator, n.private = row.private,
		     n.clause_count = row.clauses
		 WITH n, row
		 MATCH (t:ContractType {name: row.owner})
		 MERGE (t)-[:HAS_MEMBER]->(n)`,
		map[string]any{"batch": batch},
	)
}

func (l *Neo4jLoader) loadImplements(ctx context.Context, g *Graph) error {
	return l.runTypeEdges(ctx, "IMPLEMENTS", g.Implements)
}

func (l *Neo4jLoader) loadContractFor(ctx context.Context, g *Graph) error {
	return l.runTypeEdges(ctx, "CONTRACT_FOR", g.ContractFor)
}

func (l *Neo4jLoader) loadCorrespondences(ctx context.Context, g *Graph) error {
	return l.runMemberEdges(ctx, "CORRESPONDS_TO", g.Correspondences)
}

func (l *Neo4jLoader) loadCalls(ctx context.Context, g *Graph) error {
	return l.runMemberEdges(ctx, "CALLS_ABBREVIATOR", g.Calls)
}

// runTypeEdges merges relationships of the given type between ContractType
// nodes. rel is one of the fixed labels above, never user input.
func (l *Neo4jLoader) runTypeEdges(ctx context.Context, rel string, edges []TypeEdge) error {
	if len(edges) == 0 {
		return nil
	}
	l.logger.Debug("loading edges", zap.String("rel", rel), zap.Int("count", len(edges)))
	batch := make([]map[string]any, 0, len(edges))
	for _, e := range edges {
		batch = append(batch, map[string]any{"from": e.From, "to": e.To})
	}
	return l.run(ctx,
		`UNWIND $batch AS row
		 MATCH (a:ContractType {name: row.from}), (b:ContractType {name: row.to})
		 MERGE (a)-[:`+rel+`]->(b)`,
		map[string]any{"batch": batch},
	)
}

func (l *Neo4jLoader) runMemberEdges(ctx context.Context, rel string, edges []MemberEdge) error {
	if len(edges) == 0 {
		return nil
	}
	l.logger.Debug("loading edges", zap.String("rel", rel), zap.Int("count", len(edges)))
	batch := make([]map[string]any, 0, len(edges))
	for _, e := range edges {
		batch = append(batch, map[string]any{"from": e.From, "to": e.To})
	}
	return l.run(ctx,
		`UNWIND $batch AS row
		 MATCH (a:ContractMember {id: row.from}), (b:ContractMember {id: row.to})
		 MERGE (a)-[:`+rel+`]->(b)`,
		map[string]any{"batch": batch},
	)
}
