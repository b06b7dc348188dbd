package graph

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
)

type migration struct {
	name  string
	query string
}

// Neo4j runs one schema statement per query
var schemaMigrations = []migration{
	{"user_id_unique", `CREATE CONSTRAINT user_id_unique IF NOT EXISTS FOR (u:User) REQUIRE u.id IS UNIQUE`},
	{"post_id_unique", `CREATE CONSTRAINT post_id_unique IF NOT EXISTS FOR (p:Post) REQUIRE p.id IS UNIQUE`},
	{"profile_id_unique", `CREATE CONSTRAINT profile_id_unique IF NOT EXISTS FOR (p:Profile) REQUIRE p.id IS UNIQUE`},
	{"profile_user_unique", `CREATE CONSTRAINT profile_user_unique IF NOT EXISTS FOR (p:Profile) REQUIRE p.user_id IS UNIQUE`},
	{"member_type_id_unique", `CREATE CONSTRAINT member_type_id_unique IF NOT EXISTS FOR (m:MemberType) REQUIRE m.id IS UNIQUE`},
	{"post_author", `CREATE INDEX post_author IF NOT EXISTS FOR (p:Post) ON (p.author_id)`},
	{"profile_member_type", `CREATE INDEX profile_member_type IF NOT EXISTS FOR (p:Profile) ON (p.member_type_id)`},
}

// Migrate creates the constraints and indexes the store relies on.
// It is safe to run repeatedly.
func (r *Repository) Migrate(ctx context.Context) error {
	session := r.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	for _, m := range schemaMigrations {
		result, err := session.Run(ctx, m.query, nil)
		if err == nil {
			_, err = result.Consume(ctx)
		}
		if err != nil {
			return r.storeError("Migrate", err)
		}
		r.logger.Debug("Schema statement applied", zap.String("name", m.name))
	}
	return nil
}

// Reset deletes every user, post, profile and subscription. Member tiers
// are kept.
func (r *Repository) Reset(ctx context.Context) error {
	query := `
		MATCH (n)
		WHERE n:User OR n:Post OR n:Profile
		DETACH DELETE n
	`

	_, err := r.write(ctx, "Reset", func(tx neo4j.ManagedTransaction) (interface{}, error) {
		result, err := tx.Run(ctx, query, nil)
		if err != nil {
			return nil, err
		}
		summary, err := result.Consume(ctx)
		if err != nil {
			return nil, err
		}
		r.logger.Info("Store reset", zap.Int("nodes_deleted", summary.Counters().NodesDeleted()))
		return nil, nil
	})
	return err
}
