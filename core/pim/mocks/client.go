package mocks

import (
	"context"
	"encoding/json"

	"catalog-sync/core/pim"

	"github.com/stretchr/testify/mock"
)

// Client is a mock implementation of pim.Client
type Client struct {
	mock.Mock
}

func (m *Client) FetchTree(ctx context.Context, catalogID int) (json.RawMessage, error) {
	args := m.Called(ctx, catalogID)
	if raw, ok := args.Get(0).(json.RawMessage); ok {
		return raw, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) CreateNode(ctx context.Context, req pim.CreateNodeRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}
