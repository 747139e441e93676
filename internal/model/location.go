package model

// Room 房间，对应 rooms_{a,b}
type Room struct {
	RoomID       string `gorm:"column:roomid;primaryKey" json:"room_id"`
	SiteID       string `gorm:"column:siteid;primaryKey" json:"site_id"`
	RoomName     string `gorm:"column:roomname"          json:"room_name"`
	Capacity     int    `gorm:"column:capacity"          json:"capacity"`
	BookableType string `gorm:"column:bookabletype"      json:"bookable_type"`
}

// Site 楼宇/站点，对应 sites_{a,b}
type Site struct {
	SiteID   string `gorm:"column:siteid;primaryKey" json:"site_id"`
	SiteName string `gorm:"column:sitename"          json:"site_name"`
	Address1 string `gorm:"column:address1"          json:"address1"`
	Address2 string `gorm:"column:address2"          json:"address2"`
	Address3 string `gorm:"column:address3"          json:"address3"`
	Address4 string `gorm:"column:address4"          json:"address4"`
}
