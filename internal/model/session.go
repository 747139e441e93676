package model

import "time"

// Session 排课时段，对应 timetable_{a,b}
// WeekID 指向 weekmapnumeric 中的一组周次，Weekday 为 1=周一 … 7=周日
type Session struct {
	SlotID     int64  `gorm:"column:slotid;primaryKey" json:"slot_id"`
	ModuleID   string `gorm:"column:moduleid"          json:"module_id"`
	InstID     int64  `gorm:"column:instid"            json:"instid"`
	WeekID     string `gorm:"column:weekid"            json:"week_id"`
	Weekday    int    `gorm:"column:weekday"           json:"weekday"`
	StartTime  string `gorm:"column:starttime"         json:"start_time"`
	FinishTime string `gorm:"column:finishtime"        json:"finish_time"`
	Duration   int    `gorm:"column:duration"          json:"duration"`
	Owner      string `gorm:"column:owner"             json:"owner"`
	SiteID     string `gorm:"column:siteid"            json:"site_id"`
	RoomID     string `gorm:"column:roomid"            json:"room_id"`
	LecturerID string `gorm:"column:lecturerid"        json:"lecturer_id"`
	ModuleType string `gorm:"column:moduletype"        json:"module_type"`
	SetID      string `gorm:"column:setid"             json:"set_id"`
}

// Booking 房间预订记录，对应 booking_{a,b}
// 同一 slotid 存在预订时，以预订数据替代排课时段本身的日期/时间/地点
type Booking struct {
	BookingID      int64     `gorm:"column:bookingid;primaryKey" json:"booking_id"`
	SlotID         int64     `gorm:"column:slotid"               json:"slot_id"`
	StartDateTime  time.Time `gorm:"column:startdatetime"        json:"start_datetime"`
	StartTime      string    `gorm:"column:starttime"            json:"start_time"`
	FinishTime     string    `gorm:"column:finishtime"           json:"finish_time"`
	Title          string    `gorm:"column:title"                json:"title"`
	SiteID         string    `gorm:"column:siteid"               json:"site_id"`
	RoomID         string    `gorm:"column:roomid"               json:"room_id"`
	ContactDisplay string    `gorm:"column:condisplayname"       json:"contact"`
}
