package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// ── 列表视图：行展开与懒加载 ──
//
// 每次进入页面都会创建新的视图；在视图存活期间，每一行的明细最多请求一次。
// 同一行的并发加载经 singleflight 合并为一次上游调用；加载失败的行保持未加载，
// 下一次展开会重新请求。

const maxViews = 64

type rowState[T any] struct {
	open   bool
	loaded bool
	items  []T
}

// rowView 单个视图
type rowView[T any] struct {
	id    string
	mu    sync.Mutex
	rows  map[int64]*rowState[T]
	group singleflight.Group
}

// toggleResult 展开 / 收起结果
type toggleResult[T any] struct {
	Open    bool
	Loaded  bool
	Fetched bool
	Items   []T
}

func (v *rowView[T]) toggle(ctx context.Context, rowID int64, fetch func(context.Context) ([]T, error)) (toggleResult[T], error) {
	v.mu.Lock()
	row, ok := v.rows[rowID]
	if !ok {
		row = &rowState[T]{}
		v.rows[rowID] = row
	}
	if row.open {
		row.open = false
		res := toggleResult[T]{Open: false, Loaded: row.loaded, Items: row.items}
		v.mu.Unlock()
		return res, nil
	}
	row.open = true
	if row.loaded {
		res := toggleResult[T]{Open: true, Loaded: true, Items: row.items}
		v.mu.Unlock()
		return res, nil
	}
	v.mu.Unlock()

	out, err, _ := v.group.Do(fmt.Sprint(rowID), func() (interface{}, error) {
		items, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		if items == nil {
			items = []T{}
		}
		v.mu.Lock()
		row.loaded = true
		row.items = items
		v.mu.Unlock()
		return items, nil
	})
	if err != nil {
		v.mu.Lock()
		row.open = false
		v.mu.Unlock()
		return toggleResult[T]{}, err
	}

	v.mu.Lock()
	res := toggleResult[T]{Open: row.open, Loaded: true, Fetched: true, Items: out.([]T)}
	v.mu.Unlock()
	return res, nil
}

// viewRegistry 保存最近的视图，超过上限时淘汰最早的
type viewRegistry[T any] struct {
	mu    sync.Mutex
	views map[string]*rowView[T]
	order []string
}

func newViewRegistry[T any]() *viewRegistry[T] {
	return &viewRegistry[T]{views: make(map[string]*rowView[T])}
}

func (r *viewRegistry[T]) create() *rowView[T] {
	v := &rowView[T]{id: uuid.NewString(), rows: make(map[int64]*rowState[T])}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.views[v.id] = v
	r.order = append(r.order, v.id)
	for len(r.order) > maxViews {
		delete(r.views, r.order[0])
		r.order = r.order[1:]
	}
	return v
}

func (r *viewRegistry[T]) get(id string) (*rowView[T], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.views[id]
	if !ok {
		return nil, ErrViewNotFound
	}
	return v, nil
}
