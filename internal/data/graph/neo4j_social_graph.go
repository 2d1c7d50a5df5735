package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/daniel-davidyan/pachu-app-sub003/internal/platform/logger"
	"github.com/daniel-davidyan/pachu-app-sub003/internal/platform/neo4jdb"
)

// SocialGraph reads and writes (:User)-[:FOLLOWS]->(:User)-[:RATED]->(:Restaurant).
// Restaurant nodes are keyed by the internal restaurant id.
type SocialGraph struct {
	client *neo4jdb.Client
	log    *logger.Logger
}

func NewSocialGraph(client *neo4jdb.Client, baseLog *logger.Logger) *SocialGraph {
	return &SocialGraph{client: client, log: baseLog.With("repo", "SocialGraph")}
}

func (g *SocialGraph) enabled() bool {
	return g != nil && g.client != nil && g.client.Driver != nil
}

// EnsureSchema creates the uniqueness constraints. Failures are logged and ignored.
func (g *SocialGraph) EnsureSchema(ctx context.Context) {
	if !g.enabled() {
		return
	}
	session := g.client.Session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	for _, stmt := range []string{
		`CREATE CONSTRAINT user_id_unique IF NOT EXISTS FOR (u:User) REQUIRE u.id IS UNIQUE`,
		`CREATE CONSTRAINT restaurant_id_unique IF NOT EXISTS FOR (r:Restaurant) REQUIRE r.id IS UNIQUE`,
	} {
		res, err := session.Run(ctx, stmt, nil)
		if err != nil {
			g.log.Warn("neo4j schema init failed (continuing)", "error", err)
			continue
		}
		_, _ = res.Consume(ctx)
	}
}

// FolloweeRatingSums sums the ratings left by the users userID follows, per
// restaurant. Restaurants nobody followed has rated are absent from the map.
func (g *SocialGraph) FolloweeRatingSums(ctx context.Context, userID uuid.UUID, restaurantIDs []uuid.UUID) (map[uuid.UUID]float64, error) {
	out := map[uuid.UUID]float64{}
	if !g.enabled() || userID == uuid.Nil || len(restaurantIDs) == 0 {
		return out, nil
	}

	ids := make([]string, 0, len(restaurantIDs))
	for _, id := range restaurantIDs {
		if id != uuid.Nil {
			ids = append(ids, id.String())
		}
	}
	if len(ids) == 0 {
		return out, nil
	}

	session := g.client.Session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	_, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
MATCH (:User {id: $user_id})-[:FOLLOWS]->(:User)-[r:RATED]->(rest:Restaurant)
WHERE rest.id IN $restaurant_ids
RETURN rest.id AS restaurant_id, sum(r.rating) AS total
`, map[string]any{"user_id": userID.String(), "restaurant_ids": ids})
		if err != nil {
			return nil, err
		}
		for res.Next(ctx) {
			rec := res.Record()
			rawID, _ := rec.Get("restaurant_id")
			rawTotal, _ := rec.Get("total")
			s, ok := rawID.(string)
			if !ok {
				continue
			}
			id, err := uuid.Parse(s)
			if err != nil {
				continue
			}
			out[id] = toFloat(rawTotal)
		}
		return nil, res.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("followee rating sums: %w", err)
	}
	return out, nil
}

// UpsertRating records userID's rating of a restaurant, replacing any earlier one.
func (g *SocialGraph) UpsertRating(ctx context.Context, userID, restaurantID uuid.UUID, rating float64) error {
	if !g.enabled() || userID == uuid.Nil || restaurantID == uuid.Nil {
		return nil
	}
	session := g.client.Session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
MERGE (u:User {id: $user_id})
MERGE (rest:Restaurant {id: $restaurant_id})
MERGE (u)-[r:RATED]->(rest)
SET r.rating = $rating,
    r.updated_at = $updated_at
`, map[string]any{
			"user_id":       userID.String(),
			"restaurant_id": restaurantID.String(),
			"rating":        rating,
			"updated_at":    time.Now().UTC().Format(time.RFC3339Nano),
		})
		if err != nil {
			return nil, err
		}
		_, err = res.Consume(ctx)
		return nil, err
	})
	if err != nil {
		return fmt.Errorf("upsert rating: %w", err)
	}
	return nil
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	case int:
		return float64(n)
	default:
		return 0
	}
}
