package bundler

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SourceFile stores the original source file contents.
type SourceFile struct {
	FileName string `gorm:"primaryKey"`
	Contents string
}

// Unit is one rewritten input. Input and Output are JSON trees.
type Unit struct {
	FileName     string `gorm:"primaryKey"`
	Input        string
	Output       string
	Conditionals int
	Hoisted      int
	Captures     int
	Scopes       int
	Tidied       int
}

// Declaration is a top-level item of a unit.
type Declaration struct {
	FileName string `gorm:"primaryKey;index"`
	Name     string `gorm:"primaryKey"`
	Keyword  string
}

// Reference records a name the rewritten unit reads.
type Reference struct {
	FileName string `gorm:"primaryKey;index"`
	Name     string `gorm:"primaryKey;index"`
}

// getMigrations returns the list of migrations for the bundle database.
func getMigrations() []*gormigrate.Migration {
	return []*gormigrate.Migration{
		{
			ID: "202610010001",
			Migrate: func(tx *gorm.DB) error {
				// Create initial schema.
				return tx.AutoMigrate(
					&SourceFile{},
					&Unit{},
				)
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(
					&Unit{},
					&SourceFile{},
				)
			},
		},
		{
			ID: "202610150001",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(
					&Declaration{},
					&Reference{},
				)
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(
					&Reference{},
					&Declaration{},
				)
			},
		},
	}
}

// Migrate performs database migrations using gormigrate.
func Migrate(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, getMigrations())
	return m.Migrate()
}

// CheckMigration checks if the database schema is up to date.
func CheckMigration(db *gorm.DB) (bool, error) {
	// A missing migrations table means no migration has run yet. Use a
	// silent logger to avoid spurious warnings on fresh databases.
	var lastMigration string
	err := db.Session(&gorm.Session{Logger: db.Logger.LogMode(logger.Silent)}).
		Table(gormigrate.DefaultOptions.TableName).
		Select("id").
		Order("id DESC").
		Limit(1).
		Scan(&lastMigration).Error

	if err != nil {
		return false, nil
	}

	migrations := getMigrations()
	if len(migrations) == 0 {
		return true, nil
	}

	// The last migration in our list should match the last applied migration.
	expectedLastID := migrations[len(migrations)-1].ID
	return lastMigration == expectedLastID, nil
}
