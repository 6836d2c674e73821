package neo4jdb

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// GraphNeo4jStorage хранит узлы User и ребра FOLLOWS в Neo4j
type GraphNeo4jStorage struct{}

func NewGraphNeo4jStorage() *GraphNeo4jStorage {
	return &GraphNeo4jStorage{}
}

func (s *GraphNeo4jStorage) CreateUser(ctx context.Context, username string) error {
	session := Driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	_, err := session.Run(ctx,
		"MERGE (u:User {username: $username})",
		map[string]any{"username": username})
	if err != nil {
		return fmt.Errorf("failed to create user node: %w", err)
	}

	return nil
}

func (s *GraphNeo4jStorage) DeleteUser(ctx context.Context, username string) error {
	session := Driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	// DETACH DELETE удаляет и инцидентные ребра
	_, err := session.Run(ctx,
		"MATCH (u:User {username: $username}) DETACH DELETE u",
		map[string]any{"username": username})
	if err != nil {
		return fmt.Errorf("failed to delete user node: %w", err)
	}

	return nil
}

func (s *GraphNeo4jStorage) IsFollowing(ctx context.Context, follower, target string) (bool, error) {
	session := Driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.Run(ctx,
		`MATCH (a:User {username: $username})-[r:FOLLOWS]->(b:User {username: $target})
		 RETURN r`,
		map[string]any{"username": follower, "target": target})
	if err != nil {
		return false, fmt.Errorf("failed to check follow edge: %w", err)
	}

	return result.Next(ctx), nil
}

func (s *GraphNeo4jStorage) Follow(ctx context.Context, follower, target string) error {
	session := Driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	_, err := session.Run(ctx,
		`MATCH (a:User {username: $username}), (b:User {username: $target})
		 CREATE (a)-[:FOLLOWS]->(b)`,
		map[string]any{"username": follower, "target": target})
	if err != nil {
		return fmt.Errorf("failed to create follow edge: %w", err)
	}

	return nil
}

func (s *GraphNeo4jStorage) Unfollow(ctx context.Context, follower, target string) error {
	session := Driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	// отсутствующее ребро - no-op
	_, err := session.Run(ctx,
		"MATCH (a:User {username: $username})-[r:FOLLOWS]->(b:User {username: $target}) DELETE r",
		map[string]any{"username": follower, "target": target})
	if err != nil {
		return fmt.Errorf("failed to delete follow edge: %w", err)
	}

	return nil
}

func (s *GraphNeo4jStorage) Followers(ctx context.Context, username string) ([]string, error) {
	return s.collectUsernames(ctx,
		"MATCH (u:User {username: $username})<-[:FOLLOWS]-(f) RETURN f.username AS username",
		map[string]any{"username": username})
}

func (s *GraphNeo4jStorage) Following(ctx context.Context, username string) ([]string, error) {
	return s.collectUsernames(ctx,
		"MATCH (u:User {username: $username})-[:FOLLOWS]->(f) RETURN f.username AS username",
		map[string]any{"username": username})
}

// Recommendations - пользователи, на которых подписаны мои подписки, по убыванию числа общих связей.
// Порядок при равном mutualCount зависит от базы и не стабилен
func (s *GraphNeo4jStorage) Recommendations(ctx context.Context, username string, limit int) ([]string, error) {
	return s.collectUsernames(ctx,
		`MATCH (current:User {username: $username})-[:FOLLOWS]->(followed:User)<-[:FOLLOWS]-(rec:User)
		 WHERE NOT (rec)-[:FOLLOWS]->(current)
		   AND NOT (current)-[:FOLLOWS]->(rec)
		   AND rec <> current
		 RETURN rec.username AS username, count(followed) AS mutualCount
		 ORDER BY mutualCount DESC
		 LIMIT $limit`,
		map[string]any{"username": username, "limit": limit})
}

func (s *GraphNeo4jStorage) collectUsernames(ctx context.Context, query string, params map[string]any) ([]string, error) {
	session := Driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.Run(ctx, query, params)
	if err != nil {
		return nil, fmt.Errorf("failed to run graph query: %w", err)
	}

	// не-nil даже без записей: nil-срез кодируется в BSON как null и ломает $in-фильтры
	usernames := make([]string, 0)
	for result.Next(ctx) {
		value, ok := result.Record().Get("username")
		if !ok {
			continue
		}
		if name, ok := value.(string); ok {
			usernames = append(usernames, name)
		}
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("failed to read graph result: %w", err)
	}

	return usernames, nil
}
