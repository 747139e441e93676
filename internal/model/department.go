package model

// Department 部门，对应 depts_{a,b}
type Department struct {
	DeptID string `gorm:"column:deptid;primaryKey" json:"department_id"`
	Name   string `gorm:"column:name"              json:"name"`
}
