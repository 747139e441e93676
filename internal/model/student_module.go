package model

// StudentModule 学生选课关联，对应 stumodules_{a,b}
// GroupCode 为实验/小班分组代码，为空表示未分组
type StudentModule struct {
	StudentID string `gorm:"column:studentid;primaryKey"  json:"student_id"`
	ModuleID  string `gorm:"column:moduleid;primaryKey"   json:"module_id"`
	InstID    int64  `gorm:"column:instid;primaryKey"     json:"instid"`
	GroupCode string `gorm:"column:modgrpcode;primaryKey" json:"group_code"`
	SetID     string `gorm:"column:setid"                 json:"set_id"`
}
