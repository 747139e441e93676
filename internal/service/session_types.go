package service

import "github.com/Bogdy12/uclapi/internal/dto"

// sessionTypeLabels 排课类型代码 → 展示名称
var sessionTypeLabels = map[string]string{
	"L":    "Lecture",
	"LAB":  "Laboratory",
	"LAN":  "Language Class",
	"P":    "Practical",
	"PBL":  "Problem Based Learning",
	"PC":   "Problem Class",
	"S":    "Seminar",
	"T":    "Tutorial",
	"W":    "Workshop",
	"CLI":  "Clinical",
	"DEM":  "Demonstration",
	"FE":   "Field Excursion",
	"FW":   "Fieldwork",
	"E":    "Exam",
	"LEC":  "Lecture",
	"SEM":  "Seminar",
	"TUT":  "Tutorial",
	"OTH":  "Other",
	"REV":  "Revision",
	"BRI":  "Briefing",
	"PRES": "Presentation",
}

// SessionTypeLabel 未收录的类型代码返回 "Unknown"
func SessionTypeLabel(code string) string {
	if label, ok := sessionTypeLabels[code]; ok {
		return label
	}
	return dto.Unknown
}
