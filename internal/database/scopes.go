package database

import (
	"gorm.io/gorm"
)

// Active excludes soft-deleted rows from a query.
func Active(db *gorm.DB) *gorm.DB {
	return db.Where("is_deleted = ?", false)
}

// OwnedBy restricts a query to rows owned by the given user.
func OwnedBy(userID uint64) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ?", userID)
	}
}
