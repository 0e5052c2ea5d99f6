// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package permission

import (
	"context"
	"fmt"
	"log/slog"
)

// Service resolves effective permissions and manages grants.
type Service struct {
	repository Repository
	logger     *slog.Logger
}

// NewService constructs a new [Service].
func NewService(repository Repository, logger *slog.Logger) *Service {
	return &Service{repository: repository, logger: logger}
}

// # Resolution

/*
EffectivePermissions returns the union of userID's direct grants and the
permissions of every group userID belongs to.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - Set: Effective permission names (possibly empty, never nil)
  - error: Storage failures
*/
func (service *Service) EffectivePermissions(context context.Context, userID string) (Set, error) {
	direct, err := service.repository.DirectPermissions(context, userID)
	if err != nil {
		return nil, fmt.Errorf("permission_service_resolve_failed: %w", err)
	}

	inherited, err := service.repository.GroupPermissions(context, userID)
	if err != nil {
		return nil, fmt.Errorf("permission_service_resolve_failed: %w", err)
	}

	set := NewSet(direct...)
	set.Add(inherited...)
	return set, nil
}

// Groups returns the group names userID belongs to.
func (service *Service) Groups(context context.Context, userID string) ([]string, error) {
	groups, err := service.repository.UserGroups(context, userID)
	if err != nil {
		return nil, fmt.Errorf("permission_service_groups_failed: %w", err)
	}
	return groups, nil
}

// # Grants

// Grant gives userID a permission directly. Returns [ErrUnknownPermission] for names outside the catalog.
func (service *Service) Grant(context context.Context, userID, permission string) error {
	return service.repository.GrantToUser(context, userID, permission)
}

// AddToGroup places userID in group. Returns [ErrUnknownGroup] for unknown groups.
func (service *Service) AddToGroup(context context.Context, userID, group string) error {
	return service.repository.AddUserToGroup(context, userID, group)
}

// # Provisioning

/*
CreateDefaultPermissions seeds [DefaultPermissions]. Safe to re-run: existing
names are left untouched and no duplicates are created.

Returns:
  - int64: How many permissions were newly created
*/
func (service *Service) CreateDefaultPermissions(context context.Context) (int64, error) {
	created, err := service.repository.EnsurePermissions(context, DefaultPermissions...)
	if err != nil {
		return 0, fmt.Errorf("permission_service_seed_permissions_failed: %w", err)
	}

	service.logger.InfoContext(context, "permission_catalog_seeded",
		slog.Int("catalog_size", len(DefaultPermissions)),
		slog.Int64("created", created),
	)
	return created, nil
}

// CreateDefaultGroups seeds [DefaultGroups]. Safe to re-run.
//
// Permissions missing from storage are skipped, so seed permissions first.
func (service *Service) CreateDefaultGroups(context context.Context) error {
	for _, group := range DefaultGroups {
		if err := service.repository.EnsureGroup(context, group.Name, group.Permissions); err != nil {
			return fmt.Errorf("permission_service_seed_group_failed: %s: %w", group.Name, err)
		}
	}

	service.logger.InfoContext(context, "permission_groups_seeded", slog.Int("groups", len(DefaultGroups)))
	return nil
}
