package service

import (
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"

	"unihub-board/internal/model"
)

// ── iCalendar 导出 ──
//
// 每个打卡任务对应一个 VEVENT：开始时间 → 截止时间；
// UID 由任务 ID 生成，订阅方重复拉取时可以按 UID 去重更新。

const calendarProductID = "-//unihub//board//CN"

// RenderDingCalendar 生成打卡任务日历
func RenderDingCalendar(name string, tasks []model.DingTask, stamp time.Time) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(calendarProductID)
	cal.SetXWRCalName(name)

	for _, d := range tasks {
		if d.StartTime.IsZero() {
			continue
		}
		end := d.Deadline
		if end.IsZero() || !end.After(d.StartTime) {
			end = d.StartTime.Add(time.Hour)
		}

		evt := cal.AddEvent(fmt.Sprintf("ding-%d@unihub", d.ID))
		evt.SetDtStampTime(stamp)
		evt.SetStartAt(d.StartTime)
		evt.SetEndAt(end)
		evt.SetSummary(d.Title)
		evt.SetDescription(fmt.Sprintf("类型：%s\n对象：%s", d.Type.Label(), dingTargetLabel(d)))
		evt.SetProperty(ics.ComponentPropertyCategories, d.Type.Label())
		if d.Latitude != 0 || d.Longitude != 0 {
			evt.SetProperty(ics.ComponentPropertyGeo, fmt.Sprintf("%.6f;%.6f", d.Latitude, d.Longitude))
			if d.Radius > 0 {
				evt.SetLocation(fmt.Sprintf("半径 %.0f 米范围内", d.Radius))
			}
		}
	}
	return cal.Serialize()
}
