package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"resumereview/internal/database"
	"resumereview/internal/metrics"
)

// ReviewCascade 指定删除档案时对其署名评价的处理策略。
type ReviewCascade string

const (
	// CascadePreserve 保留评价原样，user_id 变为悬挂引用（与源系统一致）。
	CascadePreserve ReviewCascade = "preserve"
	// CascadeDetach 在删除事务内将评价的 user_id 置空。
	CascadeDetach ReviewCascade = "detach"
)

// Store 封装针对 profiles / resumes / reviews 的全部写入与查询。
// 每个操作在单个事务内完成，错误按 ErrNotFound / ErrConstraintViolation 分类。
// 访问控制不在本层：调用方需自行完成授权后再调用。
type Store struct {
	db            *gorm.DB
	logger        *slog.Logger
	reviewCascade ReviewCascade
}

// Options 控制 Store 的可选行为。零值表示默认日志器与 preserve 策略。
type Options struct {
	Logger        *slog.Logger
	ReviewCascade ReviewCascade
}

// New 构造 Store。
func New(db *gorm.DB, opts Options) *Store {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cascade := opts.ReviewCascade
	if cascade == "" {
		cascade = CascadePreserve
	}
	return &Store{
		db:            db,
		logger:        logger,
		reviewCascade: cascade,
	}
}

func (s *Store) observe(operation string, start time.Time, err error) {
	metrics.ObserveStoreOperation(operation, time.Since(start), err == nil)
}

// CreateProfile 新建档案，id 由外部分配；主键冲突返回 ErrConstraintViolation。
func (s *Store) CreateProfile(ctx context.Context, id string, fullName *string) (*database.Profile, error) {
	if id == "" {
		return nil, errors.New("create profile: id is required")
	}

	start := time.Now()
	profile := database.Profile{ID: id, FullName: fullName}
	err := s.db.WithContext(ctx).Create(&profile).Error
	s.observe("create_profile", start, err)
	if err != nil {
		return nil, fmt.Errorf("create profile: %w", classify(err))
	}
	return &profile, nil
}

// GetProfile 按 id 读取档案。
func (s *Store) GetProfile(ctx context.Context, id string) (*database.Profile, error) {
	start := time.Now()
	var profile database.Profile
	err := s.db.WithContext(ctx).First(&profile, "id = ?", id).Error
	s.observe("get_profile", start, err)
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", classify(err))
	}
	return &profile, nil
}

// CreateResumeParams 描述一次简历上传需要落库的字段。
// Active 为 nil 时默认 true：新上传即成为当前生效简历。
type CreateResumeParams struct {
	UserID           string
	OriginalFilename string
	StoragePath      string
	MimeType         string
	Size             int64
	ResumeText       *string
	Active           *bool
}

// CreateResume 插入一份新简历；user_id 指向不存在的档案时返回 ErrConstraintViolation。
// 新简历为生效状态时，同一事务内先清除该用户其余简历的生效标记，
// 保证"任一用户至多一份生效简历"在创建路径上同样成立。
func (s *Store) CreateResume(ctx context.Context, params CreateResumeParams) (*database.Resume, error) {
	start := time.Now()
	active := true
	if params.Active != nil {
		active = *params.Active
	}

	resume := database.Resume{
		UserID:           params.UserID,
		OriginalFilename: params.OriginalFilename,
		StoragePath:      params.StoragePath,
		MimeType:         params.MimeType,
		Size:             params.Size,
		ResumeText:       params.ResumeText,
		IsActive:         active,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if active {
			if err := tx.Model(&database.Resume{}).
				Where("user_id = ? AND is_active = ?", params.UserID, true).
				Update("is_active", false).Error; err != nil {
				return fmt.Errorf("clear active flags: %w", err)
			}
		}
		if err := tx.Create(&resume).Error; err != nil {
			return fmt.Errorf("insert resume: %w", err)
		}
		if !active {
			// 带 default 标签的零值布尔不会出现在 INSERT 列中，这里补一条更新。
			if err := tx.Model(&resume).Update("is_active", false).Error; err != nil {
				return fmt.Errorf("mark inactive: %w", err)
			}
		}
		return nil
	})
	s.observe("create_resume", start, err)
	if err != nil {
		return nil, fmt.Errorf("create resume: %w", classify(err))
	}
	return &resume, nil
}

// GetResume 按 id 读取简历。
func (s *Store) GetResume(ctx context.Context, id uuid.UUID) (*database.Resume, error) {
	start := time.Now()
	var resume database.Resume
	err := s.db.WithContext(ctx).First(&resume, "id = ?", id).Error
	s.observe("get_resume", start, err)
	if err != nil {
		return nil, fmt.Errorf("get resume: %w", classify(err))
	}
	return &resume, nil
}

// SetActiveResume 将 resumeID 标记为 userID 的当前生效简历，并清除其余简历的标记。
// 先清后设在同一事务内执行，避免并发选择留下两份生效简历。
// 简历不存在或不属于该用户时返回 ErrNotFound。
func (s *Store) SetActiveResume(ctx context.Context, userID string, resumeID uuid.UUID) error {
	start := time.Now()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var resume database.Resume
		if err := tx.Where("id = ? AND user_id = ?", resumeID, userID).First(&resume).Error; err != nil {
			return fmt.Errorf("find resume: %w", err)
		}
		if err := tx.Model(&database.Resume{}).
			Where("user_id = ? AND id <> ?", userID, resumeID).
			Update("is_active", false).Error; err != nil {
			return fmt.Errorf("clear active flags: %w", err)
		}
		if err := tx.Model(&database.Resume{}).
			Where("id = ?", resumeID).
			Update("is_active", true).Error; err != nil {
			return fmt.Errorf("mark active: %w", err)
		}
		return nil
	})
	s.observe("set_active_resume", start, err)
	if err != nil {
		return fmt.Errorf("set active resume: %w", classify(err))
	}
	return nil
}

// SetResumeText 写入解析完成后的纯文本内容；简历不存在时返回 ErrNotFound。
func (s *Store) SetResumeText(ctx context.Context, resumeID uuid.UUID, text string) error {
	start := time.Now()
	result := s.db.WithContext(ctx).Model(&database.Resume{}).
		Where("id = ?", resumeID).
		Update("resume_text", text)
	err := result.Error
	if err == nil && result.RowsAffected == 0 {
		err = ErrNotFound
	}
	s.observe("set_resume_text", start, err)
	if err != nil {
		return fmt.Errorf("set resume text: %w", classify(err))
	}
	return nil
}

// SetCurrentResume 更新档案的"当前选中简历"指针；resumeID 为 nil 时清除。
// 指针不隐含所有权，但必须指向存在的简历，否则返回 ErrConstraintViolation；
// 档案不存在时返回 ErrNotFound。
func (s *Store) SetCurrentResume(ctx context.Context, userID string, resumeID *uuid.UUID) error {
	start := time.Now()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if resumeID != nil {
			var count int64
			if err := tx.Model(&database.Resume{}).Where("id = ?", *resumeID).Count(&count).Error; err != nil {
				return fmt.Errorf("check resume: %w", err)
			}
			if count == 0 {
				return fmt.Errorf("resume %s: %w", *resumeID, ErrConstraintViolation)
			}
		}
		result := tx.Model(&database.Profile{}).
			Where("id = ?", userID).
			Update("current_resume", resumeID)
		if result.Error != nil {
			return fmt.Errorf("update profile: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("profile %q: %w", userID, ErrNotFound)
		}
		return nil
	})
	s.observe("set_current_resume", start, err)
	if err != nil {
		return fmt.Errorf("set current resume: %w", classify(err))
	}
	return nil
}

// CreateReviewParams 描述一条评价。UserID 为 nil 表示匿名评价。
type CreateReviewParams struct {
	UserID   *string
	Filename string
	Review   string
}

// CreateReview 插入一条评价。匿名评价总是成功；署名评价要求档案存在，
// 存在性检查与插入在同一事务内完成（reviews 表无外键，见 Review 模型说明）。
func (s *Store) CreateReview(ctx context.Context, params CreateReviewParams) (*database.Review, error) {
	start := time.Now()
	review := database.Review{
		UserID:   params.UserID,
		Filename: params.Filename,
		Review:   params.Review,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if params.UserID != nil {
			var count int64
			if err := tx.Model(&database.Profile{}).Where("id = ?", *params.UserID).Count(&count).Error; err != nil {
				return fmt.Errorf("check reviewer: %w", err)
			}
			if count == 0 {
				return fmt.Errorf("reviewer %q: %w", *params.UserID, ErrConstraintViolation)
			}
		}
		if err := tx.Create(&review).Error; err != nil {
			return fmt.Errorf("insert review: %w", err)
		}
		return nil
	})
	s.observe("create_review", start, err)
	if err != nil {
		return nil, fmt.Errorf("create review: %w", classify(err))
	}
	return &review, nil
}

// DeleteProfile 删除档案并级联删除其全部简历。署名评价按配置的策略处理：
// preserve 保留悬挂引用并记录数量，detach 在同一事务内将 user_id 置空。
// 其他档案指向被级联删除简历的 current_resume 指针一并清除。
func (s *Store) DeleteProfile(ctx context.Context, id string) error {
	start := time.Now()
	var dangling int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&database.Profile{}).
			Where("current_resume IN (?)",
				tx.Model(&database.Resume{}).Select("id").Where("user_id = ?", id),
			).
			Update("current_resume", nil).Error; err != nil {
			return fmt.Errorf("clear current resume pointers: %w", err)
		}

		result := tx.Delete(&database.Profile{}, "id = ?", id)
		if result.Error != nil {
			return fmt.Errorf("delete row: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("profile %q: %w", id, ErrNotFound)
		}

		switch s.reviewCascade {
		case CascadeDetach:
			if err := tx.Model(&database.Review{}).
				Where("user_id = ?", id).
				Update("user_id", nil).Error; err != nil {
				return fmt.Errorf("detach reviews: %w", err)
			}
		default:
			if err := tx.Model(&database.Review{}).
				Where("user_id = ?", id).
				Count(&dangling).Error; err != nil {
				return fmt.Errorf("count reviews: %w", err)
			}
		}
		return nil
	})
	s.observe("delete_profile", start, err)
	if err != nil {
		return fmt.Errorf("delete profile: %w", classify(err))
	}
	if dangling > 0 {
		s.logger.Warn("profile deleted with reviews left behind",
			slog.String("profile_id", id),
			slog.Int64("dangling_reviews", dangling),
		)
	}
	return nil
}

// DeleteResume 删除单份简历；引用它的 current_resume 指针在同一事务内置空。
// 简历不存在时返回 ErrNotFound。
func (s *Store) DeleteResume(ctx context.Context, id uuid.UUID) error {
	start := time.Now()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&database.Profile{}).
			Where("current_resume = ?", id).
			Update("current_resume", nil).Error; err != nil {
			return fmt.Errorf("clear current resume pointers: %w", err)
		}
		result := tx.Delete(&database.Resume{}, "id = ?", id)
		if result.Error != nil {
			return fmt.Errorf("delete row: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("resume %s: %w", id, ErrNotFound)
		}
		return nil
	})
	s.observe("delete_resume", start, err)
	if err != nil {
		return fmt.Errorf("delete resume: %w", classify(err))
	}
	return nil
}

// ListRecentReviews 读取 recent_reviews 视图：最多 100 条最新评价，按创建时间倒序。
func (s *Store) ListRecentReviews(ctx context.Context) ([]database.RecentReview, error) {
	start := time.Now()
	var rows []database.RecentReview
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&rows).Error
	s.observe("list_recent_reviews", start, err)
	if err != nil {
		return nil, fmt.Errorf("list recent reviews: %w", err)
	}
	return rows, nil
}
