package database

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Profile 表示一个用户档案，主键由外部账号体系分配（文本，不由本库生成）。
// CurrentResumeID 是"当前选中简历"的可选指针，不设数据库外键
// （与 resumes 互相引用会形成环），由 store 层在写入前校验并在删除时置空。
type Profile struct {
	ID              string     `gorm:"primaryKey;size:64"`
	FullName        *string    `gorm:"size:255"`
	CurrentResumeID *uuid.UUID `gorm:"column:current_resume;type:uuid;index"`
	CreatedAt       time.Time
	Resumes         []Resume `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// Resume 表示一次上传的简历文件及其解析出的纯文本。
// ResumeText 在解析完成前为空；IsActive 表示当前生效简历，
// 任一用户至多一份生效简历由 store 层的事务保证。
type Resume struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID           string    `gorm:"size:64;not null;index"`
	User             Profile   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	OriginalFilename string    `gorm:"size:255"`
	StoragePath      string    `gorm:"size:512"`
	MimeType         string    `gorm:"size:128"`
	Size             int64
	ResumeText       *string `gorm:"type:text"`
	IsActive         bool    `gorm:"default:true;index"`
	CreatedAt        time.Time
}

// BeforeCreate 在插入前生成主键，避免依赖特定数据库的 uuid 函数。
func (r *Resume) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// Review 表示一份针对简历生成或提交的评价，创建后不再修改。
// UserID 允许为空（匿名评价），且不设数据库外键：
// preserve 策略下档案删除后评价保留，引用随之悬挂。
type Review struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    *string   `gorm:"size:64;index"`
	Filename  string    `gorm:"size:255"`
	Review    string    `gorm:"type:text"`
	CreatedAt time.Time
}

// BeforeCreate 在插入前生成主键。
func (r *Review) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// RecentReview 是 recent_reviews 视图的一行投影（最新 100 条评价）。
type RecentReview struct {
	ID        uuid.UUID
	UserID    *string
	Filename  string
	Review    string
	CreatedAt time.Time
}

// TableName 将模型映射到只读视图。
func (RecentReview) TableName() string { return "recent_reviews" }
