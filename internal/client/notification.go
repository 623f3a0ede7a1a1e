package client

import (
	"context"
	"net/http"

	"unihub-board/internal/dto"
)

// CreateNotification POST /notifications，一次只发给一个对象
func (c *Client) CreateNotification(ctx context.Context, token string, payload *dto.CreateNotificationRequest) error {
	_, err := c.do(ctx, request{
		op:     "create_notification",
		method: http.MethodPost,
		path:   "/notifications",
		token:  token,
		auth:   true,
		body:   payload,
	})
	return err
}
