package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/storage"
	"github.com/mmynk/splitledger/pkg/api"
)

// UserService implements the UserService RPC interface.
type UserService struct {
	users  storage.UserStore
	logger *slog.Logger
}

// NewUserService creates a user directory service.
func NewUserService(users storage.UserStore, logger *slog.Logger) *UserService {
	return &UserService{users: users, logger: logger}
}

// ListUsers returns every registered user, ordered by name.
func (s *UserService) ListUsers(ctx context.Context, req *connect.Request[api.ListUsersRequest]) (*connect.Response[api.ListUsersResponse], error) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		s.logger.Error("ListUsers failed", "error", err)
		return nil, connectError(err)
	}

	out := make([]*api.User, 0, len(users))
	for _, u := range users {
		out = append(out, toAPIUser(u))
	}
	return connect.NewResponse(&api.ListUsersResponse{Users: out}), nil
}
