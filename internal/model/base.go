package model

import (
	"time"
)

// BaseModel 模板只插入不修改也不删除，因此没有软删除字段；ID 由 snowflake 在应用层分配
type BaseModel struct {
	ID        int64     `gorm:"primaryKey;autoIncrement:false" json:"id,string"`
	CreatedAt time.Time `gorm:"not null;default:now();index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}
