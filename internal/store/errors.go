package store

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// 错误分类只覆盖关系引擎能表达的两类失败；
// 重试、恢复等处理属于调用方，这里不做任何包装之外的事。
var (
	// ErrNotFound 表示操作指向的行不存在。
	ErrNotFound = errors.New("store: not found")

	// ErrConstraintViolation 表示主键冲突，或外键指向不存在的行。
	ErrConstraintViolation = errors.New("store: constraint violation")
)

// IsNotFound 判断错误是否表示目标行不存在。
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConstraintViolation 判断错误是否表示完整性约束冲突。
func IsConstraintViolation(err error) bool {
	return errors.Is(err, ErrConstraintViolation)
}

// classify 将 GORM 翻译后的驱动错误映射到本层的错误分类，
// 无法识别的错误原样返回。
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	case errors.Is(err, gorm.ErrDuplicatedKey),
		errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%w: %v", ErrConstraintViolation, err)
	default:
		return err
	}
}
