package client

import (
	"context"
	"fmt"
	"net/http"

	"unihub-board/internal/dto"
	"unihub-board/internal/model"
)

// orgRoutes 部门与班级接口结构一致，仅路径不同
type orgRoutes struct {
	collection string
	listKey    string
	singular   string
}

var routesByKind = map[model.OrgKind]orgRoutes{
	model.OrgDepartment: {collection: "/departments", listKey: "departments", singular: "department"},
	model.OrgClass:      {collection: "/classes", listKey: "classes", singular: "class"},
}

// ListMyDepartments GET /departments/mine（辅导员）
func (c *Client) ListMyDepartments(ctx context.Context, token string) ([]model.Org, error) {
	return c.listMine(ctx, token, model.OrgDepartment)
}

// CreateDepartment POST /departments
func (c *Client) CreateDepartment(ctx context.Context, token, name string) (*model.Org, error) {
	return c.createOrg(ctx, token, model.OrgDepartment, name)
}

// GetDepartmentDetail GET /departments/mine/:id
func (c *Client) GetDepartmentDetail(ctx context.Context, token string, id int64) (*model.OrgDetail, error) {
	return c.orgDetail(ctx, token, model.OrgDepartment, id)
}

// ListMyClasses GET /classes/mine（教师）
func (c *Client) ListMyClasses(ctx context.Context, token string) ([]model.Org, error) {
	return c.listMine(ctx, token, model.OrgClass)
}

// CreateClass POST /classes
func (c *Client) CreateClass(ctx context.Context, token, name string) (*model.Org, error) {
	return c.createOrg(ctx, token, model.OrgClass, name)
}

// GetClassDetail GET /classes/mine/:id
func (c *Client) GetClassDetail(ctx context.Context, token string, id int64) (*model.OrgDetail, error) {
	return c.orgDetail(ctx, token, model.OrgClass, id)
}

// ListMine 按组织类型列出
func (c *Client) ListMine(ctx context.Context, token string, kind model.OrgKind) ([]model.Org, error) {
	return c.listMine(ctx, token, kind)
}

// CreateOrg 按组织类型创建
func (c *Client) CreateOrg(ctx context.Context, token string, kind model.OrgKind, name string) (*model.Org, error) {
	return c.createOrg(ctx, token, kind, name)
}

// OrgDetail 按组织类型获取详情
func (c *Client) OrgDetail(ctx context.Context, token string, kind model.OrgKind, id int64) (*model.OrgDetail, error) {
	return c.orgDetail(ctx, token, kind, id)
}

func (c *Client) listMine(ctx context.Context, token string, kind model.OrgKind) ([]model.Org, error) {
	rt := routesByKind[kind]
	op := "list_my_" + rt.listKey
	body, err := c.do(ctx, request{
		op:     op,
		method: http.MethodGet,
		path:   rt.collection + "/mine",
		token:  token,
		auth:   true,
	})
	if err != nil {
		return nil, err
	}

	var ws []wireOrg
	if err := decode(op, unwrapList(body, rt.listKey), &ws); err != nil {
		return nil, err
	}
	out := make([]model.Org, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.toModel(kind))
	}
	return out, nil
}

func (c *Client) createOrg(ctx context.Context, token string, kind model.OrgKind, name string) (*model.Org, error) {
	rt := routesByKind[kind]
	op := "create_" + rt.singular
	body, err := c.do(ctx, request{
		op:     op,
		method: http.MethodPost,
		path:   rt.collection,
		token:  token,
		auth:   true,
		body:   &dto.CreateOrgRequest{Name: name},
	})
	if err != nil {
		return nil, err
	}

	var w wireOrg
	if len(body) > 0 {
		if err := decode(op, unwrapObject(body, rt.singular), &w); err != nil {
			return nil, err
		}
	}
	org := w.toModel(kind)
	return &org, nil
}

func (c *Client) orgDetail(ctx context.Context, token string, kind model.OrgKind, id int64) (*model.OrgDetail, error) {
	rt := routesByKind[kind]
	op := rt.singular + "_detail"
	body, err := c.do(ctx, request{
		op:     op,
		method: http.MethodGet,
		path:   fmt.Sprintf("%s/mine/%d", rt.collection, id),
		token:  token,
		auth:   true,
	})
	if err != nil {
		return nil, err
	}

	var w wireOrgDetail
	if err := decode(op, unwrapObject(body), &w); err != nil {
		return nil, err
	}
	d := w.toModel(kind)
	if d.ID == 0 {
		d.ID = id
	}
	return d, nil
}
