package model

import "time"

// GenerationLock A/B 数据集切换标志，对应 timetable_lock（单行）
// A=true 表示 A 代数据为当前生效数据
type GenerationLock struct {
	Singleton bool      `gorm:"primaryKey;default:true" json:"-"`
	A         bool      `gorm:"column:a;not null"       json:"a"`
	UpdatedAt time.Time `gorm:"column:updated_at"       json:"updated_at"`
}

// TableName 指定表名
func (GenerationLock) TableName() string { return "timetable_lock" }
