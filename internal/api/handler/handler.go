package handler

import (
	"unihub-board/internal/alert"
	"unihub-board/internal/service"
)

// Handler 所有 Handler 的聚合入口，每个页面一个
type Handler struct {
	Auth         *AuthHandler
	Org          *OrgHandler
	Leave        *LeaveHandler
	Ding         *DingHandler
	Dashboard    *DashboardHandler
	Notification *NotificationHandler
	Export       *ExportHandler
	Alert        *AlertHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service, alerts *alert.Center) *Handler {
	return &Handler{
		Auth:         NewAuthHandler(svc.Auth, svc.Profile),
		Org:          NewOrgHandler(svc.Org, svc.Auth),
		Leave:        NewLeaveHandler(svc.Leave, svc.Auth),
		Ding:         NewDingHandler(svc.Ding, svc.Auth),
		Dashboard:    NewDashboardHandler(svc.Dashboard, svc.Auth),
		Notification: NewNotificationHandler(svc.Notification, svc.Auth),
		Export:       NewExportHandler(svc.Export, svc.Auth),
		Alert:        NewAlertHandler(alerts),
	}
}
