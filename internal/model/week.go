package model

import "time"

// WeekMapNumeric 周模式 → 周次，对应 weekmapnumeric_{a,b}
type WeekMapNumeric struct {
	WeekID     string `gorm:"column:weekid;primaryKey"     json:"week_id"`
	WeekNumber int    `gorm:"column:weeknumber;primaryKey" json:"week_number"`
}

// WeekStructure 周次 → 该周周一日期，对应 weekstructure_{a,b}
type WeekStructure struct {
	WeekNumber int       `gorm:"column:weeknumber;primaryKey" json:"week_number"`
	StartDate  time.Time `gorm:"column:startdate;type:date"   json:"start_date"`
}
