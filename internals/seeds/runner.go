package seeds

import (
	"path/filepath"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"admissions_backend/internals/seeds/courses"
	users "admissions_backend/internals/seeds/users/auth"
)

// RunAllSeeds loads the JSON fixtures in dir (users.json, courses.json).
func RunAllSeeds(db *gorm.DB, dir string) error {
	if err := users.SeedUsersFromJSON(db, filepath.Join(dir, "users.json")); err != nil {
		return errors.Wrap(err, "users")
	}
	if err := courses.SeedCoursesFromJSON(db, filepath.Join(dir, "courses.json")); err != nil {
		return errors.Wrap(err, "courses")
	}
	return nil
}
