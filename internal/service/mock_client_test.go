package service

import (
	"context"
	"sync"

	"assess-console/backend/pkg/nocodb"
)

// ── Mock TableAPI ──

type mockTableClient struct {
	mu sync.Mutex

	// 按 TableID 预置的列表响应
	lists map[string]*nocodb.ListResult
	// listHook 非 nil 时优先生效（围栏测试用）
	listHook func(table nocodb.Table) (*nocodb.ListResult, error)
	listErr  error

	createErr error
	created   []map[string]any

	updateErr error
	updated   []map[string]any
	updatedID []int

	deleteErr error
	deleted   []int
}

func newMockTableClient(lists map[string]*nocodb.ListResult) *mockTableClient {
	return &mockTableClient{lists: lists}
}

func (m *mockTableClient) List(_ context.Context, table nocodb.Table, _, _ int) (*nocodb.ListResult, error) {
	m.mu.Lock()
	hook, err := m.listHook, m.listErr
	m.mu.Unlock()

	if hook != nil {
		return hook(table)
	}
	if err != nil {
		return nil, err
	}
	if res, ok := m.lists[table.TableID]; ok {
		return res, nil
	}
	return &nocodb.ListResult{}, nil
}

func (m *mockTableClient) Create(_ context.Context, _ nocodb.Table, fields map[string]any) (nocodb.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.createErr != nil {
		return nil, m.createErr
	}
	m.created = append(m.created, fields)
	return nocodb.Record{"Id": float64(1000 + len(m.created))}, nil
}

func (m *mockTableClient) Update(_ context.Context, _ nocodb.Table, id int, fields map[string]any) (nocodb.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.updateErr != nil {
		return nil, m.updateErr
	}
	m.updated = append(m.updated, fields)
	m.updatedID = append(m.updatedID, id)
	return nocodb.Record{"Id": float64(id)}, nil
}

func (m *mockTableClient) Delete(_ context.Context, _ nocodb.Table, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockTableClient) setListErr(err error) {
	m.mu.Lock()
	m.listErr = err
	m.mu.Unlock()
}

func (m *mockTableClient) setListHook(hook func(table nocodb.Table) (*nocodb.ListResult, error)) {
	m.mu.Lock()
	m.listHook = hook
	m.mu.Unlock()
}
