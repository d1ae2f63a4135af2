package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"assess-console/backend/config"
	"assess-console/backend/internal/dto"
	"assess-console/backend/internal/store"
	"assess-console/backend/pkg/nocodb"
)

// ── 测试辅助 ──

const (
	tblAP     = "tbl-ap"
	tblParam  = "tbl-param"
	tblStd    = "tbl-std"
	tblAssess = "tbl-assess"
)

func testConfig() *config.Config {
	return &config.Config{
		NocoDB: config.NocoDBConfig{
			PageLimit:           100,
			AssessmentParameter: config.TableConfig{TableID: tblAP},
			Parameter:           config.TableConfig{TableID: tblParam},
			Standard:            config.TableConfig{TableID: tblStd},
			Assessment:          config.TableConfig{TableID: tblAssess},
		},
		Redis: config.RedisConfig{SnapshotTTL: time.Hour},
	}
}

// scenarioLists 标准测试数据：一个主题、一个评估、一条评估参数记录
func scenarioLists() map[string]*nocodb.ListResult {
	return map[string]*nocodb.ListResult{
		tblParam: {List: []nocodb.Record{
			{"Id": float64(1), "Title": "Access Control", "Target": "80%"},
		}},
		tblStd: {List: []nocodb.Record{}},
		tblAssess: {List: []nocodb.Record{
			{"Id": float64(5), "Title": "Q1 Audit"},
		}},
		tblAP: {List: []nocodb.Record{
			{"Id": float64(10), "Subject": map[string]any{"Id": float64(1), "Title": "Access Control"}, "Actual": "A"},
		}},
	}
}

func setupSyncService(client *mockTableClient) SyncService {
	return NewSyncService(testConfig(), client, store.New(), nil, zap.NewNop())
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

// ── FetchAll ──

func TestSyncService_FetchAll_Success(t *testing.T) {
	client := newMockTableClient(scenarioLists())
	svc := setupSyncService(client)

	if err := svc.FetchAll(context.Background()); err != nil {
		t.Fatalf("FetchAll 应成功: %v", err)
	}

	state := svc.State()
	if state.Loading {
		t.Error("拉取完成后 loading 应为 false")
	}
	if state.Error != "" {
		t.Errorf("成功拉取不应有错误: %s", state.Error)
	}
	if len(state.Data) != 1 {
		t.Fatalf("期望 1 条记录，实际=%d", len(state.Data))
	}

	rec := state.Data[0]
	if rec.ID != 10 || rec.SubjectTitle != "Access Control" || rec.SubjectID != 1 {
		t.Errorf("主题映射错误: %+v", rec)
	}
	if rec.Actual != "A" {
		t.Errorf("期望Actual=A，实际=%s", rec.Actual)
	}
	if rec.Target != "" {
		t.Errorf("无 Target 字段时应为空串，实际=%q", rec.Target)
	}

	if len(state.SubjectOptions) != 1 || state.SubjectOptions[0].Target != "80%" {
		t.Errorf("主题选项映射错误: %+v", state.SubjectOptions)
	}
	if len(state.AssessmentOptions) != 1 || state.AssessmentOptions[0].Title != "Q1 Audit" {
		t.Errorf("评估选项映射错误: %+v", state.AssessmentOptions)
	}
}

func TestSyncService_FetchAll_FailurePreservesState(t *testing.T) {
	client := newMockTableClient(scenarioLists())
	svc := setupSyncService(client)

	if err := svc.FetchAll(context.Background()); err != nil {
		t.Fatalf("首次拉取应成功: %v", err)
	}

	client.setListErr(errors.New("connection refused"))

	if err := svc.FetchAll(context.Background()); err == nil {
		t.Fatal("第二次拉取应失败")
	}

	state := svc.State()
	if len(state.Data) != 1 || state.Data[0].ID != 10 {
		t.Errorf("失败的拉取不得覆盖既有快照: %+v", state.Data)
	}
	if state.Error == "" {
		t.Error("失败后 error 应非空")
	}
	if state.Loading {
		t.Error("失败后 loading 应为 false")
	}
}

func TestSyncService_FetchAll_StaleResultDiscarded(t *testing.T) {
	// 旧拉取晚于新拉取返回时，其结果必须被围栏丢弃
	listsOld := scenarioLists()
	listsOld[tblAP] = &nocodb.ListResult{List: []nocodb.Record{{"Id": float64(1)}}}
	listsNew := scenarioLists()
	listsNew[tblAP] = &nocodb.ListResult{List: []nocodb.Record{{"Id": float64(2)}}}

	client := newMockTableClient(nil)
	svc := setupSyncService(client)

	release := make(chan struct{})
	var calls atomic.Int64
	client.setListHook(func(table nocodb.Table) (*nocodb.ListResult, error) {
		if calls.Add(1) <= 4 {
			// 第一次拉取的四个请求全部挂起，直到新拉取完成
			<-release
			return listsOld[table.TableID], nil
		}
		return listsNew[table.TableID], nil
	})

	done := make(chan error, 1)
	go func() { done <- svc.FetchAll(context.Background()) }()

	// 等旧拉取的四个请求全部在途
	for calls.Load() < 4 {
		time.Sleep(time.Millisecond)
	}

	if err := svc.FetchAll(context.Background()); err != nil {
		t.Fatalf("新拉取应成功: %v", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("旧拉取不应报错: %v", err)
	}

	state := svc.State()
	if len(state.Data) != 1 || state.Data[0].ID != 2 {
		t.Errorf("过期结果不得覆盖新快照: %+v", state.Data)
	}
}

// ── Create ──

func TestSyncService_Create_SendsFieldsAndRefetches(t *testing.T) {
	client := newMockTableClient(scenarioLists())
	svc := setupSyncService(client)

	req := &dto.CreateParameterRequest{
		SubjectID:        intPtr(1),
		Actual:           "B",
		FulfilmentStatus: "Fully Met",
	}
	if err := svc.Create(context.Background(), req); err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}

	if len(client.created) != 1 {
		t.Fatalf("应发起 1 次远端创建，实际=%d", len(client.created))
	}
	if client.created[0]["SubjectId"] != 1 || client.created[0]["Actual"] != "B" {
		t.Errorf("创建字段错误: %+v", client.created[0])
	}

	// 创建成功后应触发完整重拉
	if len(svc.State().Data) != 1 {
		t.Error("创建后应重拉快照")
	}
}

func TestSyncService_Create_InvalidFulfilment(t *testing.T) {
	client := newMockTableClient(scenarioLists())
	svc := setupSyncService(client)

	req := &dto.CreateParameterRequest{FulfilmentStatus: "Somewhat Met"}
	if err := svc.Create(context.Background(), req); !errors.Is(err, ErrInvalidFulfilment) {
		t.Errorf("期望 ErrInvalidFulfilment，实际: %v", err)
	}
	if len(client.created) != 0 {
		t.Error("非法枚举不应触达远端")
	}
}

func TestSyncService_Create_FailureNoRefetch(t *testing.T) {
	client := newMockTableClient(scenarioLists())
	client.createErr = errors.New("HTTP 500")
	svc := setupSyncService(client)

	if err := svc.Create(context.Background(), &dto.CreateParameterRequest{}); err == nil {
		t.Fatal("Create 应失败")
	}
	if svc.State().Error == "" {
		t.Error("失败后 error 应非空")
	}
}

// ── QuickAdd ──

func TestSyncService_QuickAdd_CreatesRemotely(t *testing.T) {
	client := newMockTableClient(scenarioLists())
	svc := setupSyncService(client)

	if err := svc.FetchAll(context.Background()); err != nil {
		t.Fatal(err)
	}

	id, err := svc.QuickAdd(context.Background())
	if err != nil {
		t.Fatalf("QuickAdd 应成功: %v", err)
	}
	if id <= 10 {
		t.Errorf("临时 ID 应大于现有最大值: %d", id)
	}
	if len(client.created) != 1 {
		t.Error("快捷添加必须发起远端创建")
	}
}

func TestSyncService_QuickAdd_FailureRevertsProvisionalRow(t *testing.T) {
	client := newMockTableClient(scenarioLists())
	svc := setupSyncService(client)

	if err := svc.FetchAll(context.Background()); err != nil {
		t.Fatal(err)
	}

	client.createErr = errors.New("HTTP 502")
	if _, err := svc.QuickAdd(context.Background()); err == nil {
		t.Fatal("QuickAdd 应失败")
	}

	if len(svc.State().Data) != 1 {
		t.Error("失败后临时行应被撤销，不留幽灵记录")
	}
}

// ── Update ──

func TestSyncService_Update_UnknownID(t *testing.T) {
	client := newMockTableClient(scenarioLists())
	svc := setupSyncService(client)

	err := svc.Update(context.Background(), 999, &dto.UpdateParameterRequest{Actual: strPtr("Z")})
	if !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("期望 ErrRecordNotFound，实际: %v", err)
	}
	if len(client.updated) != 0 {
		t.Error("未知记录不应触达远端")
	}
}

func TestSyncService_Update_SendsChangedFieldsOnly(t *testing.T) {
	client := newMockTableClient(scenarioLists())
	svc := setupSyncService(client)

	if err := svc.FetchAll(context.Background()); err != nil {
		t.Fatal(err)
	}

	req := &dto.UpdateParameterRequest{Actual: strPtr("Z")}
	if err := svc.Update(context.Background(), 10, req); err != nil {
		t.Fatalf("Update 应成功: %v", err)
	}

	if len(client.updated) != 1 || client.updatedID[0] != 10 {
		t.Fatalf("应发起 1 次远端更新: %+v", client.updatedID)
	}
	if client.updated[0]["Actual"] != "Z" {
		t.Errorf("更新字段错误: %+v", client.updated[0])
	}
	if _, ok := client.updated[0]["Target"]; ok {
		t.Error("未改动字段不应出现在请求中")
	}
}

func TestSyncService_Update_FailureRevertsRecord(t *testing.T) {
	client := newMockTableClient(scenarioLists())
	svc := setupSyncService(client)

	if err := svc.FetchAll(context.Background()); err != nil {
		t.Fatal(err)
	}

	client.updateErr = errors.New("HTTP 500")
	if err := svc.Update(context.Background(), 10, &dto.UpdateParameterRequest{Actual: strPtr("Z")}); err == nil {
		t.Fatal("Update 应失败")
	}

	state := svc.State()
	if state.Data[0].Actual != "A" {
		t.Errorf("失败后应回退到已知良好值，实际=%s", state.Data[0].Actual)
	}
	if state.Error == "" {
		t.Error("失败后 error 应非空")
	}
}

func TestSyncService_Update_InvalidFulfilment(t *testing.T) {
	client := newMockTableClient(scenarioLists())
	svc := setupSyncService(client)

	if err := svc.FetchAll(context.Background()); err != nil {
		t.Fatal(err)
	}

	err := svc.Update(context.Background(), 10, &dto.UpdateParameterRequest{FulfilmentStatus: strPtr("Maybe")})
	if !errors.Is(err, ErrInvalidFulfilment) {
		t.Errorf("期望 ErrInvalidFulfilment，实际: %v", err)
	}
}

// ── Delete ──

func TestSyncService_Delete_Success(t *testing.T) {
	client := newMockTableClient(scenarioLists())
	svc := setupSyncService(client)

	if err := svc.FetchAll(context.Background()); err != nil {
		t.Fatal(err)
	}

	if err := svc.Delete(context.Background(), 10); err != nil {
		t.Fatalf("Delete 应成功: %v", err)
	}
	if len(client.deleted) != 1 || client.deleted[0] != 10 {
		t.Errorf("应远端删除 ID=10: %+v", client.deleted)
	}
}

func TestSyncService_Delete_FailureRestoresRecord(t *testing.T) {
	client := newMockTableClient(scenarioLists())
	svc := setupSyncService(client)

	if err := svc.FetchAll(context.Background()); err != nil {
		t.Fatal(err)
	}

	client.deleteErr = errors.New("HTTP 500")
	if err := svc.Delete(context.Background(), 10); err == nil {
		t.Fatal("Delete 应失败")
	}

	if _, found := setupGet(svc); !found {
		t.Error("失败后记录应恢复")
	}
}

func TestSyncService_Delete_UnknownID(t *testing.T) {
	client := newMockTableClient(scenarioLists())
	svc := setupSyncService(client)

	if err := svc.Delete(context.Background(), 999); !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("期望 ErrRecordNotFound，实际: %v", err)
	}
}

// setupGet 从状态中查找 ID=10 的记录
func setupGet(svc SyncService) (int, bool) {
	for _, rec := range svc.State().Data {
		if rec.ID == 10 {
			return rec.ID, true
		}
	}
	return 0, false
}
