package database

import (
	"fmt"
	"log"

	"skill_matrix_backend/internal/config"
	"skill_matrix_backend/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	return db, nil
}

// Migrate is split out so tests can run the same schema on SQLite.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Employee{},
		&model.Team{},
		&model.JobRole{},
		&model.JobRoleSkillRequirement{},
		&model.SkillDomain{},
		&model.SkillSubcategory{},
		&model.Skill{},
		&model.EmployeeSkill{},
		&model.SkillGap{},
		&model.TestTemplate{},
		&model.TestSection{},
		&model.Question{},
		&model.QuestionOption{},
		&model.Assessment{},
		&model.AssessmentResponse{},
	)
}
