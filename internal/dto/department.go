package dto

// Department 部门列表项
type Department struct {
	DepartmentID string `json:"department_id"`
	Name         string `json:"name"`
}

// DepartmentModules 课程代码 → 课程（含全部实例）
type DepartmentModules map[string]DepartmentModule

// DepartmentModule 部门开设的课程
type DepartmentModule struct {
	ModuleID  string                  `json:"module_id"`
	Name      string                  `json:"name"`
	Instances []ModuleInstanceSummary `json:"instances"`
}

// ModuleInstanceSummary 课程实例摘要，full_module_id 形如 COMP0016-A6U-T1
type ModuleInstanceSummary struct {
	FullModuleID string   `json:"full_module_id"`
	ClassSize    int      `json:"class_size"`
	Delivery     Delivery `json:"delivery"`
	Periods      Periods  `json:"periods"`
	InstanceCode string   `json:"instance_code"`
}
