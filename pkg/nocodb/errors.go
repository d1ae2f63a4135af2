package nocodb

import "fmt"

// RequestError 上游表服务返回非 2xx 状态时的传输层错误
type RequestError struct {
	Status int
	Body   string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("表服务请求失败: HTTP %d", e.Status)
}
