package models

import "gorm.io/gorm"

// Setting is the single-row shop configuration read by the bot API.
type Setting struct {
	ID             int    `gorm:"primaryKey" json:"id"`
	ShopName       string `gorm:"size:100" json:"shop_name"`
	Maintenance    bool   `gorm:"default:false" json:"maintenance"`
	ClosedRegister bool   `gorm:"default:false" json:"closed_register"`
	LinkSupport    string `gorm:"size:255" json:"link_support"`
	LinkChannel    string `gorm:"size:255" json:"link_channel"`
}

func (Setting) TableName() string {
	return "settings"
}

func GetSetting(db *gorm.DB) (*Setting, error) {
	var s Setting
	if err := db.First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}
