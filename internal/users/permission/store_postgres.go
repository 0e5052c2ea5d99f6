// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package permission

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/HacMan137/BackSite/internal/platform/database/schema"
	"github.com/HacMan137/BackSite/internal/platform/postgres"
)

// PostgresRepository implements [Repository] using pgx.
//
// # Schema Table Mapping
//   - users.permission, users.accessgroup: the catalogs (name is the key).
//   - users.accountpermission: user → permission.
//   - users.accountgroup: user → group.
//   - users.grouppermission: group → permission.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new Postgres implementation of the permission store.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// DirectPermissions returns the names granted to userID directly.
func (repository *PostgresRepository) DirectPermissions(context context.Context, userID string) ([]string, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		schema.UserGrant.Permission, schema.UserGrant.Table, schema.UserGrant.UserID,
	)
	return repository.names(context, "direct_permissions", query, userID)
}

// GroupPermissions returns the names reachable through every group of userID.
func (repository *PostgresRepository) GroupPermissions(context context.Context, userID string) ([]string, error) {
	query := fmt.Sprintf(`
		SELECT DISTINCT gp.%s
		FROM %s gp
		JOIN %s ug ON ug.%s = gp.%s
		WHERE ug.%s = $1`,
		schema.GroupGrant.Permission,
		schema.GroupGrant.Table,
		schema.UserMembership.Table, schema.UserMembership.Group, schema.GroupGrant.Group,
		schema.UserMembership.UserID,
	)
	return repository.names(context, "group_permissions", query, userID)
}

// UserGroups returns the group names userID belongs to.
func (repository *PostgresRepository) UserGroups(context context.Context, userID string) ([]string, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 ORDER BY %s`,
		schema.UserMembership.Group, schema.UserMembership.Table, schema.UserMembership.UserID, schema.UserMembership.Group,
	)
	return repository.names(context, "user_groups", query, userID)
}

/*
EnsurePermissions inserts the catalog names with ON CONFLICT DO NOTHING.

Returns:
  - int64: Rows actually inserted
*/
func (repository *PostgresRepository) EnsurePermissions(context context.Context, names ...string) (int64, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		SELECT UNNEST($1::text[])
		ON CONFLICT (%s) DO NOTHING`,
		schema.UserPermission.Table, schema.UserPermission.Name, schema.UserPermission.Name,
	)

	tag, err := repository.pool.Exec(context, query, names)
	if err != nil {
		return 0, fmt.Errorf("postgres_permission_repo_ensure_permissions_failed: %w", err)
	}

	return tag.RowsAffected(), nil
}

/*
EnsureGroup creates the group and its links inside one transaction.

Only permissions that exist are linked; unknown names are silently skipped.
*/
func (repository *PostgresRepository) EnsureGroup(context context.Context, name string, permissions []string) error {
	insertGroup := fmt.Sprintf(`INSERT INTO %s (%s) VALUES ($1) ON CONFLICT (%s) DO NOTHING`,
		schema.UserGroup.Table, schema.UserGroup.Name, schema.UserGroup.Name,
	)
	linkPermissions := fmt.Sprintf(`
		INSERT INTO %s (%s, %s)
		SELECT $1, p.%s FROM %s p WHERE p.%s = ANY($2::text[])
		ON CONFLICT (%s, %s) DO NOTHING`,
		schema.GroupGrant.Table, schema.GroupGrant.Group, schema.GroupGrant.Permission,
		schema.UserPermission.Name, schema.UserPermission.Table, schema.UserPermission.Name,
		schema.GroupGrant.Group, schema.GroupGrant.Permission,
	)

	err := postgres.WithTx(context, repository.pool, func(transaction pgx.Tx) error {
		if _, err := transaction.Exec(context, insertGroup, name); err != nil {
			return err
		}
		_, err := transaction.Exec(context, linkPermissions, name, permissions)
		return err
	})
	if err != nil {
		return fmt.Errorf("postgres_permission_repo_ensure_group_failed: %w", err)
	}

	return nil
}

// GrantToUser links userID to permission, failing with [ErrUnknownPermission] if it does not exist.
func (repository *PostgresRepository) GrantToUser(context context.Context, userID, permission string) error {
	return repository.link(context, "grant_to_user",
		schema.UserPermission.Table, schema.UserPermission.Name, permission, ErrUnknownPermission,
		schema.UserGrant.Table, schema.UserGrant.UserID, schema.UserGrant.Permission, userID,
	)
}

// AddUserToGroup links userID to group, failing with [ErrUnknownGroup] if it does not exist.
func (repository *PostgresRepository) AddUserToGroup(context context.Context, userID, group string) error {
	return repository.link(context, "add_user_to_group",
		schema.UserGroup.Table, schema.UserGroup.Name, group, ErrUnknownGroup,
		schema.UserMembership.Table, schema.UserMembership.UserID, schema.UserMembership.Group, userID,
	)
}

// # Helpers

// link checks the catalog row exists and inserts the join row, in one transaction.
func (repository *PostgresRepository) link(
	context context.Context, operation string,
	catalogTable, catalogColumn, name string, unknown error,
	joinTable, joinUserColumn, joinNameColumn, userID string,
) error {
	exists := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1)`, catalogTable, catalogColumn)
	insert := fmt.Sprintf(`INSERT INTO %s (%s, %s) VALUES ($1, $2) ON CONFLICT (%s, %s) DO NOTHING`,
		joinTable, joinUserColumn, joinNameColumn, joinUserColumn, joinNameColumn,
	)

	err := postgres.WithTx(context, repository.pool, func(transaction pgx.Tx) error {
		var found bool
		if err := transaction.QueryRow(context, exists, name).Scan(&found); err != nil {
			return err
		}
		if !found {
			return unknown
		}
		_, err := transaction.Exec(context, insert, userID, name)
		return err
	})

	switch {
	case err == nil:
		return nil
	case errors.Is(err, unknown):
		return unknown
	default:
		return fmt.Errorf("postgres_permission_repo_%s_failed: %w", operation, err)
	}
}

func (repository *PostgresRepository) names(context context.Context, operation, query string, args ...any) ([]string, error) {
	rows, err := repository.pool.Query(context, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres_permission_repo_%s_failed: %w", operation, err)
	}

	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("postgres_permission_repo_%s_failed: %w", operation, err)
	}

	return names, nil
}
