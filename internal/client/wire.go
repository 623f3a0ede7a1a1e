package client

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"unihub-board/internal/model"
)

// ── 反序列化边界 ──
//
// 上游记录的字段命名并不统一：GORM 默认导出的 ID / Nickname / StudentNo / InviteCode
// 与手写 JSON 标签的 id / nickname / student_no / invite_code 混用。
// 所有记录先解码到 wire 结构（同时接受两种写法），再一次性转换为 model 中的规范类型，
// 客户端之外的代码不再关心大小写差异。

// flexInt 兼容数字与数字字符串
type flexInt int64

func (f *flexInt) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	s := strings.Trim(string(b), `"`)
	if s == "" {
		return nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		*f = flexInt(n)
		return nil
	}
	fl, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*f = flexInt(int64(fl))
	return nil
}

// flexString 兼容字符串与数字（学号、工号可能以数字下发）
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	*f = flexString(string(b))
	return nil
}

// flexFloat 兼容数字与数字字符串
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(bytes.TrimSpace(b)), `"`)
	if s == "" || s == "null" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*f = flexFloat(v)
	return nil
}

// flexTime 兼容 RFC3339、常见的 "2006-01-02 15:04:05" 与 Unix 秒 / 毫秒
type flexTime struct {
	time.Time
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

func (t *flexTime) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	if b[0] != '"' {
		n, err := strconv.ParseInt(string(b), 10, 64)
		if err != nil {
			return err
		}
		if n > 1e12 {
			t.Time = time.UnixMilli(n)
		} else {
			t.Time = time.Unix(n, 0)
		}
		return nil
	}
	s := strings.Trim(string(b), `"`)
	if s == "" || strings.HasPrefix(s, "0001-01-01") {
		return nil
	}
	for _, layout := range timeLayouts {
		if v, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			t.Time = v
			return nil
		}
	}
	// 无法识别的时间按缺省处理，不让单个字段拖垮整条记录
	return nil
}

// flexStatus 请假状态：数字或字符串
type flexStatus struct {
	model.LeaveStatus
}

func (s *flexStatus) UnmarshalJSON(b []byte) error {
	v := strings.Trim(string(bytes.TrimSpace(b)), `"`)
	if v == "" || v == "null" {
		return nil
	}
	st, _ := model.ParseLeaveStatus(v)
	s.LeaveStatus = st
	return nil
}

func firstString(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstInt(vals ...flexInt) int64 {
	for _, v := range vals {
		if v != 0 {
			return int64(v)
		}
	}
	return 0
}

func firstTime(vals ...flexTime) time.Time {
	for _, v := range vals {
		if !v.IsZero() {
			return v.Time
		}
	}
	return time.Time{}
}

// ── 信封解包 ──

// envelopeKeys 列表接口常见的包装键
var envelopeKeys = []string{"data", "items", "list", "records", "result"}

// unwrapList 解出列表：裸数组直接返回；对象则按 keys 与通用包装键查找，
// 找不到时返回空数组，保证调用方拿到的是空集合而不是 nil
func unwrapList(body []byte, keys ...string) json.RawMessage {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || string(body) == "null" {
		return json.RawMessage("[]")
	}
	if body[0] == '[' {
		return body
	}
	if body[0] != '{' {
		return json.RawMessage("[]")
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil {
		return json.RawMessage("[]")
	}
	for _, k := range append(keys, envelopeKeys...) {
		raw, ok := obj[k]
		if !ok {
			continue
		}
		raw = bytes.TrimSpace(raw)
		if len(raw) == 0 || string(raw) == "null" {
			return json.RawMessage("[]")
		}
		if raw[0] == '[' {
			return raw
		}
		if raw[0] == '{' {
			return unwrapList(raw, keys...)
		}
	}
	return json.RawMessage("[]")
}

// unwrapObject 解出单个对象：{code,message,data:{...}} 或 {<key>:{...}} 形式时返回内层对象
func unwrapObject(body []byte, keys ...string) json.RawMessage {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '{' {
		return body
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil {
		return body
	}
	for _, k := range append(keys, "data") {
		raw, ok := obj[k]
		if !ok {
			continue
		}
		raw = bytes.TrimSpace(raw)
		if len(raw) > 0 && raw[0] == '{' {
			return raw
		}
	}
	return body
}

// ── 用户 ──

type wireRole struct {
	ID   flexInt `json:"ID"`
	Name string  `json:"Name"`
	Key  string  `json:"Key"`
}

// UnmarshalJSON 角色可能直接下发为字符串 "counselor"
func (r *wireRole) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		return json.Unmarshal(b, &r.Key)
	}
	type plain wireRole
	return json.Unmarshal(b, (*plain)(r))
}

type wireProfile struct {
	ID             flexInt    `json:"ID"`
	Nickname       string     `json:"Nickname"`
	Email          string     `json:"Email"`
	Role           *wireRole  `json:"Role"`
	RoleKey        string     `json:"RoleKey"`
	RoleKeySnake   string     `json:"role_key"`
	StudentNo      flexString `json:"StudentNo"`
	StudentNoSnake flexString `json:"student_no"`
	StaffNo        flexString `json:"StaffNo"`
	StaffNoSnake   flexString `json:"staff_no"`
}

func (w wireProfile) toModel() model.UserProfile {
	p := model.UserProfile{
		ID:        int64(w.ID),
		Nickname:  w.Nickname,
		Email:     w.Email,
		StudentNo: firstString(string(w.StudentNo), string(w.StudentNoSnake)),
		StaffNo:   firstString(string(w.StaffNo), string(w.StaffNoSnake)),
	}
	if w.Role != nil {
		p.Role = model.Role{ID: int64(w.Role.ID), Name: w.Role.Name, Key: w.Role.Key}
	}
	if p.Role.Key == "" {
		p.Role.Key = firstString(w.RoleKey, w.RoleKeySnake)
	}
	return p
}

type wireAuth struct {
	Token       string       `json:"token"`
	AccessToken string       `json:"access_token"`
	User        *wireProfile `json:"user"`
	Data        *wireAuth    `json:"data"`
}

func (w wireAuth) toModel() *model.AuthResult {
	if w.Token == "" && w.AccessToken == "" && w.Data != nil {
		return w.Data.toModel()
	}
	res := &model.AuthResult{Token: firstString(w.Token, w.AccessToken)}
	if w.User != nil {
		u := w.User.toModel()
		res.User = &u
	}
	return res
}

// ── 部门 / 班级 ──

type wireOrg struct {
	ID              flexInt  `json:"ID"`
	Name            string   `json:"Name"`
	InviteCode      string   `json:"InviteCode"`
	InviteCodeSnake string   `json:"invite_code"`
	OwnerID         flexInt  `json:"OwnerID"`
	OwnerIDSnake    flexInt  `json:"owner_id"`
	UserID          flexInt  `json:"UserID"`
	UserIDSnake     flexInt  `json:"user_id"`
	CreatedAt       flexTime `json:"CreatedAt"`
	CreatedAtSnake  flexTime `json:"created_at"`
}

func (w wireOrg) toModel(kind model.OrgKind) model.Org {
	return model.Org{
		ID:         int64(w.ID),
		Kind:       kind,
		Name:       w.Name,
		InviteCode: firstString(w.InviteCode, w.InviteCodeSnake),
		OwnerID:    firstInt(w.OwnerID, w.OwnerIDSnake, w.UserID, w.UserIDSnake),
		CreatedAt:  firstTime(w.CreatedAt, w.CreatedAtSnake),
	}
}

type wireStudent struct {
	ID                flexInt    `json:"ID"`
	Nickname          string     `json:"Nickname"`
	Email             string     `json:"Email"`
	StudentNo         flexString `json:"StudentNo"`
	StudentNoSnake    flexString `json:"student_no"`
	ParentID          flexInt    `json:"ParentID"`
	ParentIDSnake     flexInt    `json:"parent_id"`
	DepartmentID      flexInt    `json:"DepartmentID"`
	DepartmentIDSnake flexInt    `json:"department_id"`
	ClassID           flexInt    `json:"ClassID"`
	ClassIDSnake      flexInt    `json:"class_id"`
}

func (w wireStudent) toModel() model.Student {
	return model.Student{
		ID:        int64(w.ID),
		Nickname:  w.Nickname,
		Email:     w.Email,
		StudentNo: firstString(string(w.StudentNo), string(w.StudentNoSnake)),
		ParentID: firstInt(w.ParentID, w.ParentIDSnake,
			w.DepartmentID, w.DepartmentIDSnake, w.ClassID, w.ClassIDSnake),
	}
}

type wireOrgDetail struct {
	wireOrg
	Department *wireOrg      `json:"department"`
	Class      *wireOrg      `json:"class"`
	Students   []wireStudent `json:"students"`
}

func (w wireOrgDetail) toModel(kind model.OrgKind) *model.OrgDetail {
	org := w.wireOrg
	if w.Department != nil && kind == model.OrgDepartment {
		org = *w.Department
	}
	if w.Class != nil && kind == model.OrgClass {
		org = *w.Class
	}
	d := &model.OrgDetail{
		Org:      org.toModel(kind),
		Students: make([]model.Student, 0, len(w.Students)),
	}
	for _, s := range w.Students {
		d.Students = append(d.Students, s.toModel())
	}
	return d
}

// ── 请假 ──

type wireLeaveStudent struct {
	ID        flexInt    `json:"ID"`
	Name      string     `json:"Name"`
	Nickname  string     `json:"Nickname"`
	StudentID flexString `json:"student_id"`
	StudentNo flexString `json:"StudentNo"`
	NoSnake   flexString `json:"student_no"`
}

type wireLeave struct {
	ID               flexInt           `json:"ID"`
	StudentID        flexInt           `json:"StudentID"`
	StudentIDSnake   flexInt           `json:"student_id"`
	StudentName      string            `json:"StudentName"`
	StudentNameSnake string            `json:"student_name"`
	Student          *wireLeaveStudent `json:"Student"`
	Type             flexInt           `json:"Type"`
	StartTime        flexTime          `json:"StartTime"`
	StartTimeSnake   flexTime          `json:"start_time"`
	EndTime          flexTime          `json:"EndTime"`
	EndTimeSnake     flexTime          `json:"end_time"`
	Reason           string            `json:"Reason"`
	Status           flexStatus        `json:"Status"`
}

func (w wireLeave) toModel() model.LeaveRequest {
	l := model.LeaveRequest{
		ID:          int64(w.ID),
		StudentID:   firstInt(w.StudentID, w.StudentIDSnake),
		StudentName: firstString(w.StudentName, w.StudentNameSnake),
		Type:        model.LeaveType(w.Type),
		StartTime:   firstTime(w.StartTime, w.StartTimeSnake),
		EndTime:     firstTime(w.EndTime, w.EndTimeSnake),
		Reason:      w.Reason,
		Status:      w.Status.LeaveStatus,
	}
	if s := w.Student; s != nil {
		if l.StudentID == 0 {
			l.StudentID = int64(s.ID)
		}
		l.StudentName = firstString(l.StudentName, s.Name, s.Nickname)
		// 嵌套 student 对象里的 student_id 是学号而非主键
		l.StudentNo = firstString(string(s.StudentNo), string(s.NoSnake), string(s.StudentID))
	}
	return l
}

type wireLeaveBackInfo struct {
	Approved          []wireLeave `json:"approved"`
	Returned          []wireLeave `json:"returned"`
	LateReturned      []wireLeave `json:"late_returned"`
	LateReturnedCamel []wireLeave `json:"LateReturned"`
	Leaving           []wireLeave `json:"leaving"`
}

func leavesToModel(ws []wireLeave) []model.LeaveRequest {
	out := make([]model.LeaveRequest, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.toModel())
	}
	return out
}

func (w wireLeaveBackInfo) toModel() *model.LeaveBackInfo {
	late := w.LateReturned
	if len(late) == 0 {
		late = w.LateReturnedCamel
	}
	return &model.LeaveBackInfo{
		Approved:     leavesToModel(w.Approved),
		Returned:     leavesToModel(w.Returned),
		LateReturned: leavesToModel(late),
		Leaving:      leavesToModel(w.Leaving),
	}
}

// ── 打卡 ──

type wireDing struct {
	ID             flexInt   `json:"ID"`
	Title          string    `json:"Title"`
	StartTime      flexTime  `json:"StartTime"`
	StartTimeSnake flexTime  `json:"start_time"`
	EndTime        flexTime  `json:"EndTime"`
	EndTimeSnake   flexTime  `json:"end_time"`
	Deadline       flexTime  `json:"Deadline"`
	Type           string    `json:"Type"`
	Latitude       flexFloat `json:"Latitude"`
	Longitude      flexFloat `json:"Longitude"`
	Radius         flexFloat `json:"Radius"`
	DeptID         flexInt   `json:"DeptID"`
	DeptIDSnake    flexInt   `json:"dept_id"`
	ClassID        flexInt   `json:"ClassID"`
	ClassIDSnake   flexInt   `json:"class_id"`
	StudentID      flexInt   `json:"StudentID"`
	StudentIDSnake flexInt   `json:"student_id"`
}

func (w wireDing) toModel() model.DingTask {
	return model.DingTask{
		ID:        int64(w.ID),
		Title:     w.Title,
		StartTime: firstTime(w.StartTime, w.StartTimeSnake),
		Deadline:  firstTime(w.Deadline, w.EndTime, w.EndTimeSnake),
		Type:      model.DingType(w.Type),
		Latitude:  float64(w.Latitude),
		Longitude: float64(w.Longitude),
		Radius:    float64(w.Radius),
		DeptID:    firstInt(w.DeptID, w.DeptIDSnake),
		ClassID:   firstInt(w.ClassID, w.ClassIDSnake),
		StudentID: firstInt(w.StudentID, w.StudentIDSnake),
	}
}

type wireDingRecord struct {
	StudentID        flexInt    `json:"StudentID"`
	StudentIDSnake   flexInt    `json:"student_id"`
	StudentName      string     `json:"StudentName"`
	StudentNameSnake string     `json:"student_name"`
	StudentNo        flexString `json:"StudentNo"`
	StudentNoSnake   flexString `json:"student_no"`
	Status           string     `json:"Status"`
	DingTime         flexTime   `json:"DingTime"`
	DingTimeSnake    flexTime   `json:"ding_time"`
	Location         string     `json:"Location"`
}

func (w wireDingRecord) toModel() model.DingRecord {
	r := model.DingRecord{
		StudentID:   firstInt(w.StudentID, w.StudentIDSnake),
		StudentName: firstString(w.StudentName, w.StudentNameSnake),
		StudentNo:   firstString(string(w.StudentNo), string(w.StudentNoSnake)),
		Status:      model.DingRecordStatus(w.Status),
		Location:    w.Location,
	}
	if t := firstTime(w.DingTime, w.DingTimeSnake); !t.IsZero() {
		r.DingTime = &t
	}
	return r
}

type wireDingStats struct {
	TotalTasks        flexInt `json:"TotalTasks"`
	TotalTasksSnake   flexInt `json:"total_tasks"`
	TotalRecords      flexInt `json:"TotalRecords"`
	TotalRecordsSnake flexInt `json:"total_records"`
	Complete          flexInt `json:"Complete"`
	Completed         flexInt `json:"Completed"`
	Late              flexInt `json:"Late"`
	Pending           flexInt `json:"Pending"`
}

func (w wireDingStats) toModel() *model.DingStats {
	return &model.DingStats{
		TotalTasks:   int(firstInt(w.TotalTasks, w.TotalTasksSnake)),
		TotalRecords: int(firstInt(w.TotalRecords, w.TotalRecordsSnake)),
		Complete:     int(firstInt(w.Complete, w.Completed)),
		Late:         int(w.Late),
		Pending:      int(w.Pending),
	}
}
