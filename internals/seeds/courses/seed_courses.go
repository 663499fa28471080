package courses

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	courseModel "admissions_backend/internals/features/academics/courses/model"
	"admissions_backend/internals/logger"
)

type CourseSeed struct {
	Code           string            `json:"code"`
	Name           string            `json:"name"`
	Department     string            `json:"department"`
	DurationYears  int16             `json:"duration_years"`
	TotalSemesters int16             `json:"total_semesters"`
	Session        string            `json:"session"`
	SemesterFee    decimal.Decimal   `json:"semester_fee"`
	OtherFees      map[string]string `json:"other_fees"`
}

func SeedCoursesFromJSON(db *gorm.DB, filePath string) error {
	logger.Info("seeding courses", zap.String("file", filePath))

	file, err := os.ReadFile(filePath)
	if err != nil {
		return errors.Wrap(err, "read courses seed")
	}
	var inputs []CourseSeed
	if err := json.Unmarshal(file, &inputs); err != nil {
		return errors.Wrap(err, "decode courses seed")
	}
	for _, in := range inputs {
		if err := db.Transaction(func(tx *gorm.DB) error { return seedCourse(tx, in) }); err != nil {
			return err
		}
	}
	return nil
}

// seedCourse creates the course once and fills a flat semester fee schedule.
func seedCourse(tx *gorm.DB, in CourseSeed) error {
	var c courseModel.CourseModel
	err := tx.Where("course_code = ?", in.Code).Take(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		dept := in.Department
		c = courseModel.CourseModel{
			CourseCode:           in.Code,
			CourseName:           in.Name,
			CourseDepartment:     &dept,
			CourseDurationYears:  in.DurationYears,
			CourseTotalSemesters: in.TotalSemesters,
			CourseIsActive:       true,
		}
		if err := tx.Create(&c).Error; err != nil {
			return errors.Wrapf(err, "seed course %s", in.Code)
		}
	} else if err != nil {
		return errors.Wrap(err, "find course")
	}

	sems := make([]courseModel.CourseSemesterFeeModel, 0, in.TotalSemesters)
	for i := int16(1); i <= in.TotalSemesters; i++ {
		sems = append(sems, courseModel.CourseSemesterFeeModel{
			CourseSemesterFeeCourseID: c.CourseID,
			CourseSemesterFeeSession:  in.Session,
			CourseSemesterFeeSemester: i,
			CourseSemesterFeeAmount:   in.SemesterFee,
		})
	}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&sems).Error; err != nil {
		return errors.Wrap(err, "seed semester fees")
	}

	for feeType, amount := range in.OtherFees {
		amt, err := decimal.NewFromString(amount)
		if err != nil {
			return errors.Wrapf(err, "other fee %s", feeType)
		}
		id := c.CourseID
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&courseModel.OtherFeeScheduleModel{
			OtherFeeScheduleCourseID: &id,
			OtherFeeScheduleSession:  in.Session,
			OtherFeeScheduleFeeType:  feeType,
			OtherFeeScheduleAmount:   amt,
		}).Error; err != nil {
			return errors.Wrap(err, "seed other fees")
		}
	}
	logger.Info("course seeded", zap.String("code", in.Code), zap.String("session", in.Session))
	return nil
}
