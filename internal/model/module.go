package model

// Module 课程开设记录，对应 module_{a,b}
// 同一 moduleid 可有多个 instid（不同学期/开设方式）
type Module struct {
	ModuleID   string `gorm:"column:moduleid;primaryKey"   json:"module_id"`
	InstID     int64  `gorm:"column:instid;primaryKey"     json:"instid"`
	Name       string `gorm:"column:name"                  json:"name"`
	Owner      string `gorm:"column:owner"                 json:"owner"` // 开课部门代码
	LecturerID string `gorm:"column:lecturerid"            json:"lecturer_id"`
	ClassSize  int    `gorm:"column:csize"                 json:"class_size"`
	SetID      string `gorm:"column:setid;primaryKey"      json:"set_id"`
}

// ModuleInstance 课程实例，对应 cminstances_{a,b}
type ModuleInstance struct {
	InstID   int64  `gorm:"column:instid;primaryKey" json:"instid"`
	InstCode string `gorm:"column:instcode"          json:"instance_code"`
}
