package academic

import (
	"context"
	"strings"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
)

var (
	// errors
	ErrLevelNotFound   = core.NewNotFoundError("level")
	ErrClassNotFound   = core.NewNotFoundError("class")
	ErrSubjectNotFound = core.NewNotFoundError("subject")

	errLevelInUse     = errors.New("this level still has classes or subjects")
	errClassHasPupils = errors.New("this class still has students")
	errNameExists     = errors.New("this name is already used")
	errCodeExists     = errors.New("this code is already used")
	errTeacherMissing = errors.New("teacher not found")
)

type (
	Repository interface {
		CreateLevel(ctx context.Context, l Level) (Level, error)
		QueryLevels(ctx context.Context) ([]Level, error) // sorted by Order then Name
		GetLevelByID(ctx context.Context, id string) (Level, error)
		UpdateLevel(ctx context.Context, l Level) (Level, error)
		DeleteLevel(ctx context.Context, id string) error

		CreateClass(ctx context.Context, c Class) (Class, error)
		QueryClasses(ctx context.Context, filter ClassFilter) ([]Class, error) // sorted by Name
		GetClassByID(ctx context.Context, id string) (Class, error)
		UpdateClass(ctx context.Context, c Class) (Class, error)
		DeleteClass(ctx context.Context, id string) error

		CreateSubject(ctx context.Context, s Subject) (Subject, error)
		QuerySubjects(ctx context.Context, filter SubjectFilter) ([]Subject, error) // sorted by Name
		GetSubjectByID(ctx context.Context, id string) (Subject, error)
		UpdateSubject(ctx context.Context, s Subject) (Subject, error)
		DeleteSubject(ctx context.Context, id string) error
	}

	// Directory answers questions about the people attached to classes.
	Directory interface {
		TeacherExists(ctx context.Context, id string) (bool, error)
		CountStudents(ctx context.Context, classID string) (int, error)
	}

	Service struct {
		repo Repository
		dir  Directory
	}
)

func NewService(repo Repository, dir Directory) *Service {
	vala.BeginValidation().Validate(
		vala.IsNotNil(repo, "repo"),
		vala.IsNotNil(dir, "dir"),
	).CheckAndPanic()
	return &Service{repo: repo, dir: dir}
}

// Levels

func (svc *Service) CreateLevel(ctx context.Context, nl NewLevel) (Level, error) {
	if err := nl.Validate(); err != nil {
		return Level{}, err
	}
	if err := svc.checkLevelName(ctx, nl.Name, ""); err != nil {
		return Level{}, err
	}
	return svc.repo.CreateLevel(ctx, Level{Name: nl.Name, Order: nl.Order})
}

func (svc *Service) QueryLevels(ctx context.Context) ([]Level, error) {
	return svc.repo.QueryLevels(ctx)
}

func (svc *Service) GetLevel(ctx context.Context, id string) (Level, error) {
	return svc.repo.GetLevelByID(ctx, id)
}

func (svc *Service) UpdateLevel(ctx context.Context, id string, nl NewLevel) (Level, error) {
	l, err := svc.repo.GetLevelByID(ctx, id)
	if err != nil {
		return Level{}, err
	}
	if err = nl.Validate(); err != nil {
		return Level{}, err
	}
	if err = svc.checkLevelName(ctx, nl.Name, l.ID); err != nil {
		return Level{}, err
	}
	l.Name = nl.Name
	l.Order = nl.Order
	return svc.repo.UpdateLevel(ctx, l)
}

// DeleteLevel fails while classes or subjects refer to the level.
func (svc *Service) DeleteLevel(ctx context.Context, id string) error {
	if _, err := svc.repo.GetLevelByID(ctx, id); err != nil {
		return err
	}
	classes, err := svc.repo.QueryClasses(ctx, ClassFilter{LevelID: id})
	if err != nil {
		return err
	}
	subjects, err := svc.repo.QuerySubjects(ctx, SubjectFilter{LevelID: id})
	if err != nil {
		return err
	}
	if len(classes) > 0 || len(subjects) > 0 {
		return core.NewValidationError(errLevelInUse)
	}
	return svc.repo.DeleteLevel(ctx, id)
}

func (svc *Service) checkLevelName(ctx context.Context, name, excludedID string) error {
	levels, err := svc.repo.QueryLevels(ctx)
	if err != nil {
		return err
	}
	for _, l := range levels {
		if l.ID != excludedID && strings.EqualFold(l.Name, name) {
			return core.NewValidationError(errNameExists, core.FieldError{Field: "name", Error: errNameExists.Error()})
		}
	}
	return nil
}

// Classes

func (svc *Service) CreateClass(ctx context.Context, nc NewClass) (Class, error) {
	if err := nc.Validate(); err != nil {
		return Class{}, err
	}
	if err := svc.checkClass(ctx, nc, ""); err != nil {
		return Class{}, err
	}
	return svc.repo.CreateClass(ctx, Class{
		Name:      nc.Name,
		LevelID:   nc.LevelID,
		Capacity:  nc.Capacity,
		TeacherID: nc.TeacherID,
	})
}

func (svc *Service) QueryClasses(ctx context.Context, filter ClassFilter) ([]Class, error) {
	filter.LevelID = core.CleanString(filter.LevelID)
	filter.TeacherID = core.CleanString(filter.TeacherID)
	return svc.repo.QueryClasses(ctx, filter)
}

func (svc *Service) GetClass(ctx context.Context, id string) (ClassDetail, error) {
	c, err := svc.repo.GetClassByID(ctx, id)
	if err != nil {
		return ClassDetail{}, err
	}
	l, err := svc.repo.GetLevelByID(ctx, c.LevelID)
	if err != nil && !core.IsNotFound(err) {
		return ClassDetail{}, err
	}
	enrolled, err := svc.dir.CountStudents(ctx, c.ID)
	if err != nil {
		return ClassDetail{}, err
	}
	return ClassDetail{Class: c, Level: l, Enrolled: enrolled}, nil
}

func (svc *Service) UpdateClass(ctx context.Context, id string, nc NewClass) (Class, error) {
	c, err := svc.repo.GetClassByID(ctx, id)
	if err != nil {
		return Class{}, err
	}
	if err = nc.Validate(); err != nil {
		return Class{}, err
	}
	if err = svc.checkClass(ctx, nc, c.ID); err != nil {
		return Class{}, err
	}
	c.Name = nc.Name
	c.LevelID = nc.LevelID
	c.Capacity = nc.Capacity
	c.TeacherID = nc.TeacherID
	return svc.repo.UpdateClass(ctx, c)
}

// DeleteClass fails while students are enrolled in the class.
func (svc *Service) DeleteClass(ctx context.Context, id string) error {
	if _, err := svc.repo.GetClassByID(ctx, id); err != nil {
		return err
	}
	enrolled, err := svc.dir.CountStudents(ctx, id)
	if err != nil {
		return err
	}
	if enrolled > 0 {
		return core.NewValidationError(errClassHasPupils)
	}
	return svc.repo.DeleteClass(ctx, id)
}

func (svc *Service) checkClass(ctx context.Context, nc NewClass, excludedID string) error {
	var fldErrs []core.FieldError
	if _, err := svc.repo.GetLevelByID(ctx, nc.LevelID); err != nil {
		if !core.IsNotFound(err) {
			return err
		}
		fldErrs = append(fldErrs, core.FieldError{Field: "level_id", Error: err.Error()})
	}
	if nc.TeacherID != "" {
		ok, err := svc.dir.TeacherExists(ctx, nc.TeacherID)
		if err != nil {
			return err
		}
		if !ok {
			fldErrs = append(fldErrs, core.FieldError{Field: "teacher_id", Error: errTeacherMissing.Error()})
		}
	}
	classes, err := svc.repo.QueryClasses(ctx, ClassFilter{})
	if err != nil {
		return err
	}
	for _, c := range classes {
		if c.ID != excludedID && strings.EqualFold(c.Name, nc.Name) {
			fldErrs = append(fldErrs, core.FieldError{Field: "name", Error: errNameExists.Error()})
			break
		}
	}
	if len(fldErrs) > 0 {
		return core.NewValidationError(nil, fldErrs...)
	}
	return nil
}

// Subjects

func (svc *Service) CreateSubject(ctx context.Context, ns NewSubject) (Subject, error) {
	if err := ns.Validate(); err != nil {
		return Subject{}, err
	}
	if err := svc.checkSubject(ctx, ns, ""); err != nil {
		return Subject{}, err
	}
	return svc.repo.CreateSubject(ctx, Subject{Name: ns.Name, Code: ns.Code, LevelIDs: ns.LevelIDs})
}

func (svc *Service) QuerySubjects(ctx context.Context, filter SubjectFilter) ([]Subject, error) {
	filter.LevelID = core.CleanString(filter.LevelID)
	return svc.repo.QuerySubjects(ctx, filter)
}

func (svc *Service) GetSubject(ctx context.Context, id string) (Subject, error) {
	return svc.repo.GetSubjectByID(ctx, id)
}

func (svc *Service) UpdateSubject(ctx context.Context, id string, ns NewSubject) (Subject, error) {
	s, err := svc.repo.GetSubjectByID(ctx, id)
	if err != nil {
		return Subject{}, err
	}
	if err = ns.Validate(); err != nil {
		return Subject{}, err
	}
	if err = svc.checkSubject(ctx, ns, s.ID); err != nil {
		return Subject{}, err
	}
	s.Name = ns.Name
	s.Code = ns.Code
	s.LevelIDs = ns.LevelIDs
	return svc.repo.UpdateSubject(ctx, s)
}

func (svc *Service) DeleteSubject(ctx context.Context, id string) error {
	return svc.repo.DeleteSubject(ctx, id)
}

func (svc *Service) checkSubject(ctx context.Context, ns NewSubject, excludedID string) error {
	var fldErrs []core.FieldError
	for _, id := range ns.LevelIDs {
		if _, err := svc.repo.GetLevelByID(ctx, id); err != nil {
			if !core.IsNotFound(err) {
				return err
			}
			fldErrs = append(fldErrs, core.FieldError{Field: "level_ids", Error: err.Error() + ": " + id})
		}
	}
	subjects, err := svc.repo.QuerySubjects(ctx, SubjectFilter{})
	if err != nil {
		return err
	}
	for _, s := range subjects {
		if s.ID != excludedID && s.Code == ns.Code {
			fldErrs = append(fldErrs, core.FieldError{Field: "code", Error: errCodeExists.Error()})
			break
		}
	}
	if len(fldErrs) > 0 {
		return core.NewValidationError(nil, fldErrs...)
	}
	return nil
}
