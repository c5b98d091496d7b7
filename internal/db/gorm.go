package db

import (
	"errors"

	"github.com/blacktop/otool/internal/model"
	"gorm.io/gorm"
)

// gormDB implements the queries shared by the gorm backed databases.
type gormDB struct {
	db *gorm.DB
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Image{},
		&model.Dependency{},
		&model.Rpath{},
	)
}

func ordered(db *gorm.DB) *gorm.DB {
	return db.Order("ordinal")
}

func (s *gormDB) preloaded() *gorm.DB {
	return s.db.Preload("Dependencies", ordered).Preload("Rpaths", ordered)
}

// Save inserts or replaces the image keyed by its path. Previously stored
// dependencies and rpaths of the image are replaced.
func (s *gormDB) Save(i *model.Image) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("image_path = ?", i.Path).Delete(&model.Dependency{}).Error; err != nil {
			return err
		}
		if err := tx.Where("image_path = ?", i.Path).Delete(&model.Rpath{}).Error; err != nil {
			return err
		}
		for idx := range i.Dependencies {
			i.Dependencies[idx].ID = 0
		}
		for idx := range i.Rpaths {
			i.Rpaths[idx].ID = 0
		}
		return tx.Unscoped().Save(i).Error
	})
}

// Get returns the image for the given path.
// It returns model.ErrNotFound if the path does not exist.
func (s *gormDB) Get(path string) (*model.Image, error) {
	var img model.Image
	if err := s.preloaded().Where("path = ?", path).First(&img).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	return &img, nil
}

func (s *gormDB) List() ([]*model.Image, error) {
	var images []*model.Image
	if err := s.preloaded().Order("path").Find(&images).Error; err != nil {
		return nil, err
	}
	return images, nil
}

func (s *gormDB) Dependents(dylib string) ([]*model.Image, error) {
	var images []*model.Image
	users := s.db.Model(&model.Dependency{}).
		Select("image_path").
		Where("path = ? AND kind <> ?", dylib, "selfId")
	if err := s.preloaded().
		Where("path IN (?)", users).
		Order("path").
		Find(&images).Error; err != nil {
		return nil, err
	}
	return images, nil
}

// Delete removes the image for the given path.
// It returns model.ErrNotFound if the path does not exist.
func (s *gormDB) Delete(path string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Unscoped().Where("path = ?", path).Delete(&model.Image{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return model.ErrNotFound
		}
		if err := tx.Where("image_path = ?", path).Delete(&model.Dependency{}).Error; err != nil {
			return err
		}
		return tx.Where("image_path = ?", path).Delete(&model.Rpath{}).Error
	})
}

// Close closes the database.
func (s *gormDB) Close() error {
	db, err := s.db.DB()
	if err != nil {
		return err
	}
	return db.Close()
}
