package model

// FulfilmentStatus 达成状态闭合枚举（空串表示未设置）
type FulfilmentStatus string

const (
	FulfilmentFullyMet     FulfilmentStatus = "Fully Met"
	FulfilmentPartiallyMet FulfilmentStatus = "Partially Met"
	FulfilmentNotMet       FulfilmentStatus = "Not Met"
	FulfilmentUnset        FulfilmentStatus = ""
)

// Valid 校验枚举取值
func (s FulfilmentStatus) Valid() bool {
	switch s {
	case FulfilmentFullyMet, FulfilmentPartiallyMet, FulfilmentNotMet, FulfilmentUnset:
		return true
	}
	return false
}

// DisplayRecord 前端表格操作的展示行（反规范化之后）
// ID 为 0 以外的唯一整数；SubjectID/AssessmentID 为 0 表示未关联
type DisplayRecord struct {
	ID               int              `json:"id"`
	Actual           string           `json:"actual"`
	SubjectTitle     string           `json:"subject_title"`
	SubjectID        int              `json:"subject_id,omitempty"`
	Target           string           `json:"target"`
	FulfilmentStatus FulfilmentStatus `json:"fulfilment_status"`
	AssessmentTitle  string           `json:"assessment_title"`
	AssessmentID     int              `json:"assessment_id,omitempty"`
	StandardName     string           `json:"standard_name"`
	StandardCode     string           `json:"standard_code"`
}
