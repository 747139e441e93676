package model

// Lecturer 讲师，对应 lecturer_{a,b}
type Lecturer struct {
	LecturerID string `gorm:"column:lecturerid;primaryKey" json:"lecturer_id"`
	Name       string `gorm:"column:name"                  json:"name"`
	LinkCode   string `gorm:"column:linkcode"              json:"link_code"`
	Owner      string `gorm:"column:owner"                 json:"owner"` // 所属部门代码，可为空
}
