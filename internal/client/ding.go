package client

import (
	"context"
	"fmt"
	"net/http"

	"unihub-board/internal/dto"
	"unihub-board/internal/model"
)

// CreateDing POST /dings/createdings
func (c *Client) CreateDing(ctx context.Context, token string, payload *dto.CreateDingRequest) (*model.DingTask, error) {
	body, err := c.do(ctx, request{
		op:     "create_ding",
		method: http.MethodPost,
		path:   "/dings/createdings",
		token:  token,
		auth:   true,
		body:   payload,
	})
	if err != nil {
		return nil, err
	}

	var w wireDing
	if len(body) > 0 {
		if err := decode("create_ding", unwrapObject(body, "ding"), &w); err != nil {
			return nil, err
		}
	}
	task := w.toModel()
	return &task, nil
}

// ListMyCreatedDings GET /dings/mycreateddings
func (c *Client) ListMyCreatedDings(ctx context.Context, token string) ([]model.DingTask, error) {
	body, err := c.do(ctx, request{
		op:     "list_my_dings",
		method: http.MethodGet,
		path:   "/dings/mycreateddings",
		token:  token,
		auth:   true,
	})
	if err != nil {
		return nil, err
	}

	var ws []wireDing
	if err := decode("list_my_dings", unwrapList(body, "dings"), &ws); err != nil {
		return nil, err
	}
	out := make([]model.DingTask, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.toModel())
	}
	return out, nil
}

// ListDingRecords GET /dings/mycreateddingsrecords/:id
func (c *Client) ListDingRecords(ctx context.Context, token string, dingID int64) ([]model.DingRecord, error) {
	body, err := c.do(ctx, request{
		op:     "list_ding_records",
		method: http.MethodGet,
		path:   fmt.Sprintf("/dings/mycreateddingsrecords/%d", dingID),
		token:  token,
		auth:   true,
	})
	if err != nil {
		return nil, err
	}

	var ws []wireDingRecord
	if err := decode("list_ding_records", unwrapList(body, "records"), &ws); err != nil {
		return nil, err
	}
	out := make([]model.DingRecord, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.toModel())
	}
	return out, nil
}

// GetDingStats GET /dings/stats
func (c *Client) GetDingStats(ctx context.Context, token string) (*model.DingStats, error) {
	body, err := c.do(ctx, request{
		op:     "ding_stats",
		method: http.MethodGet,
		path:   "/dings/stats",
		token:  token,
		auth:   true,
	})
	if err != nil {
		return nil, err
	}

	var w wireDingStats
	if err := decode("ding_stats", unwrapObject(body, "stats"), &w); err != nil {
		return nil, err
	}
	return w.toModel(), nil
}
