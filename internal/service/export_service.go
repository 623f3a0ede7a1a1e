package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"unihub-board/internal/alert"
	"unihub-board/internal/dto"
	"unihub-board/internal/model"
	"unihub-board/internal/session"
)

// ── 导出模块业务错误 ──

var (
	ErrExportEmpty        = errors.New("没有可导出的数据")
	ErrExportGenerateFail = errors.New("生成 Excel 失败")
)

const defaultRecordConcurrency = 8

// exportHeaders Excel 表头，与 FlatRecord 字段一一对应
var exportHeaders = []string{"任务标题", "任务类型", "发布日期", "学生姓名", "学号", "打卡状态", "打卡时间", "位置/备注"}

// ExportService 打卡数据导出
type ExportService interface {
	// Query 拉取打卡任务与记录并展平为明细行
	Query(ctx context.Context, sess *session.Session, req *dto.ExportQueryRequest) ([]dto.FlatRecord, error)
	// ExportRemote 交给上游生成 Excel，返回下载地址
	ExportRemote(ctx context.Context, sess *session.Session, rows []dto.FlatRecord) (*dto.ExportResponse, error)
	// ExportLocal 在本地生成 Excel
	ExportLocal(ctx context.Context, rows []dto.FlatRecord) (*bytes.Buffer, string, error)
}

type exportService struct {
	upstream    Upstream
	guard       Guard
	alerts      *alert.Center
	concurrency int
	logger      *zap.Logger
	now         func() time.Time
}

// NewExportService 创建 ExportService 实例
func NewExportService(upstream Upstream, guard Guard, alerts *alert.Center, concurrency int, logger *zap.Logger) ExportService {
	if concurrency <= 0 {
		concurrency = defaultRecordConcurrency
	}
	return &exportService{
		upstream:    upstream,
		guard:       guard,
		alerts:      alerts,
		concurrency: concurrency,
		logger:      logger,
		now:         time.Now,
	}
}

// ────────────────────── Query ──────────────────────

func (s *exportService) Query(ctx context.Context, sess *session.Session, req *dto.ExportQueryRequest) ([]dto.FlatRecord, error) {
	var from, to time.Time
	if req.UseDateRange {
		if req.StartDate == "" || req.EndDate == "" {
			return nil, alertInvalid(s.alerts, invalid("请选择开始和结束时间"))
		}
		var err error
		if from, err = time.ParseInLocation("2006-01-02", req.StartDate, time.Local); err != nil {
			return nil, alertInvalid(s.alerts, invalid("开始日期格式错误"))
		}
		if to, err = time.ParseInLocation("2006-01-02", req.EndDate, time.Local); err != nil {
			return nil, alertInvalid(s.alerts, invalid("结束日期格式错误"))
		}
		// 结束日当天包含在内
		to = to.Add(24 * time.Hour)
		if !from.Before(to) {
			return nil, alertInvalid(s.alerts, invalid("开始日期不能晚于结束日期"))
		}
	}
	token, err := requireToken(sess)
	if err != nil {
		return nil, err
	}

	all, err := s.upstream.ListMyCreatedDings(ctx, token)
	if err != nil {
		s.logger.Warn("查询打卡任务失败", zap.Error(err))
		alertFailure(s.alerts, "查询失败", err)
		return nil, err
	}

	tasks := all
	if req.UseDateRange {
		tasks = FilterDingsByRange(all, from, to)
	}

	perTask := make([][]dto.FlatRecord, len(tasks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, task := range tasks {
		i, task := i, task
		g.Go(func() error {
			recs, err := s.upstream.ListDingRecords(gctx, token, task.ID)
			if err != nil {
				// 单个任务失败只跳过该任务，登录失效则整体失败
				s.logger.Warn("加载打卡记录失败", zap.Int64("ding_id", task.ID), zap.Error(err))
				return unauthorizedOnly(err)
			}
			perTask[i] = FlattenRecords(task, recs)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rows := make([]dto.FlatRecord, 0)
	for _, part := range perTask {
		rows = append(rows, part...)
	}
	if len(rows) == 0 && s.alerts != nil {
		s.alerts.Show("查询完成", "该时间段内无数据", alert.SeverityInfo)
	}
	return rows, nil
}

// FilterDingsByRange 按开始时间筛选，区间左闭右开
func FilterDingsByRange(all []model.DingTask, from, to time.Time) []model.DingTask {
	out := make([]model.DingTask, 0, len(all))
	for _, d := range all {
		if !d.StartTime.Before(from) && d.StartTime.Before(to) {
			out = append(out, d)
		}
	}
	return out
}

// FlattenRecords 每条打卡记录带上所属任务的标题、类型与日期
func FlattenRecords(task model.DingTask, recs []model.DingRecord) []dto.FlatRecord {
	rows := make([]dto.FlatRecord, 0, len(recs))
	taskDate := "-"
	if !task.StartTime.IsZero() {
		taskDate = task.StartTime.In(time.Local).Format("2006-01-02")
	}
	for _, r := range recs {
		checkIn := "-"
		if r.DingTime != nil && !r.DingTime.IsZero() {
			checkIn = r.DingTime.In(time.Local).Format("2006-01-02 15:04:05")
		}
		location := r.Location
		if location == "" {
			location = "-"
		}
		rows = append(rows, dto.FlatRecord{
			TaskTitle:   task.Title,
			TaskType:    task.Type.Label(),
			TaskDate:    taskDate,
			StudentName: r.StudentName,
			StudentNo:   r.StudentNo,
			Status:      r.Status.Label(),
			CheckInTime: checkIn,
			Location:    location,
		})
	}
	return rows
}

// LabelRows 转为带中文表头的行，上游以表头作为 Excel 列名
func LabelRows(rows []dto.FlatRecord) []dto.LabeledRow {
	out := make([]dto.LabeledRow, 0, len(rows))
	for _, r := range rows {
		values := flatValues(r)
		row := make(dto.LabeledRow, len(exportHeaders))
		for i, h := range exportHeaders {
			row[i] = dto.Cell{Label: h, Value: values[i]}
		}
		out = append(out, row)
	}
	return out
}

func flatValues(r dto.FlatRecord) []string {
	return []string{r.TaskTitle, r.TaskType, r.TaskDate, r.StudentName, r.StudentNo, r.Status, r.CheckInTime, r.Location}
}

// ────────────────────── ExportRemote ──────────────────────

func (s *exportService) ExportRemote(ctx context.Context, sess *session.Session, rows []dto.FlatRecord) (*dto.ExportResponse, error) {
	if len(rows) == 0 {
		return nil, ErrExportEmpty
	}
	token, err := requireToken(sess)
	if err != nil {
		return nil, err
	}

	release, err := s.guard.Acquire(ctx, guardKey("export", token))
	if err != nil {
		return nil, err
	}
	defer release()

	path, err := s.upstream.ExportData(ctx, token, LabelRows(rows))
	if err != nil {
		s.logger.Warn("导出失败", zap.Int("rows", len(rows)), zap.Error(err))
		alertFailure(s.alerts, "导出失败", err)
		return nil, err
	}

	path = strings.TrimLeft(path, "/")
	s.logger.Info("导出完成", zap.Int("rows", len(rows)), zap.String("path", path))
	return &dto.ExportResponse{Path: path, DownloadURL: s.upstream.ResolveURL(path)}, nil
}

// ────────────────────── ExportLocal ──────────────────────

func (s *exportService) ExportLocal(_ context.Context, rows []dto.FlatRecord) (*bytes.Buffer, string, error) {
	if len(rows) == 0 {
		return nil, "", ErrExportEmpty
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "打卡记录"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	// 删除默认 Sheet1
	f.DeleteSheet("Sheet1")

	widths := []float64{20, 8, 12, 12, 14, 10, 20, 24}
	for i, w := range widths {
		col := colName(i)
		f.SetColWidth(sheetName, col, col, w)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// 表头
	for i, h := range exportHeaders {
		f.SetCellValue(sheetName, cell(colName(i), 1), h)
	}
	f.SetCellStyle(sheetName, "A1", cell(colName(len(exportHeaders)-1), 1), headerStyle)
	f.SetPanes(sheetName, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})

	// 数据行
	for r, rec := range rows {
		for i, v := range flatValues(rec) {
			f.SetCellValue(sheetName, cell(colName(i), r+2), v)
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("打卡记录_%s.xlsx", s.now().Format("20060102150405"))
	return buf, filename, nil
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
