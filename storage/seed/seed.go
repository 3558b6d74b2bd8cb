// Package seed installs the default field templates and the optional demo records.
package seed

import (
	"context"
	"fmt"
	"io/fs"
	"time"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"
	"gopkg.in/yaml.v3"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/academic"
	"github.com/trezcool/shule/core/exam"
	"github.com/trezcool/shule/core/field"
	"github.com/trezcool/shule/core/manager"
	"github.com/trezcool/shule/core/parent"
	"github.com/trezcool/shule/core/person"
	"github.com/trezcool/shule/core/student"
	"github.com/trezcool/shule/core/teacher"
)

const (
	TemplatesPath = "seed/templates.yaml"
	DemoPath      = "seed/demo.yaml"

	dateLayout = "2006-01-02"
)

type (
	// Templates is the document listing the default template of each kind.
	Templates struct {
		Templates []field.Template `yaml:"templates"`
	}

	personDoc struct {
		Key       string                 `yaml:"key"`
		Firstname string                 `yaml:"firstname"`
		Lastname  string                 `yaml:"lastname"`
		Email     string                 `yaml:"email"`
		Phone     string                 `yaml:"phone"`
		Fields    map[string]interface{} `yaml:"fields"`
	}

	// Demo is the document holding the demo records. Keys link records within the document.
	Demo struct {
		Levels []struct {
			Key   string `yaml:"key"`
			Name  string `yaml:"name"`
			Order int    `yaml:"order"`
		} `yaml:"levels"`
		Classes []struct {
			Key      string `yaml:"key"`
			Name     string `yaml:"name"`
			Level    string `yaml:"level"`
			Capacity int    `yaml:"capacity"`
			Teacher  string `yaml:"teacher"`
		} `yaml:"classes"`
		Subjects []struct {
			Key    string   `yaml:"key"`
			Name   string   `yaml:"name"`
			Code   string   `yaml:"code"`
			Levels []string `yaml:"levels"`
		} `yaml:"subjects"`
		Teachers []struct {
			personDoc `yaml:",inline"`
			Subjects  []string `yaml:"subjects"`
			Classes   []string `yaml:"classes"`
		} `yaml:"teachers"`
		Parents  []personDoc `yaml:"parents"`
		Students []struct {
			personDoc `yaml:",inline"`
			Class     string   `yaml:"class"`
			Parents   []string `yaml:"parents"`
			BirthDate string   `yaml:"birth_date"`
		} `yaml:"students"`
		Managers []struct {
			personDoc `yaml:",inline"`
			Position  string `yaml:"position"`
		} `yaml:"managers"`
		Questions []struct {
			Subject string   `yaml:"subject"`
			Level   string   `yaml:"level"`
			Type    string   `yaml:"type"`
			Text    string   `yaml:"text"`
			Choices []string `yaml:"choices"`
			Answers []string `yaml:"answers"`
			Points  float64  `yaml:"points"`
		} `yaml:"questions"`
	}

	Services struct {
		Templates *field.Service
		Academic  *academic.Service
		Students  *student.Service
		Teachers  *teacher.Service
		Parents   *parent.Service
		Managers  *manager.Service
		Exams     *exam.Service
	}

	Seeder struct {
		fsys   fs.FS
		svcs   Services
		logger core.Logger
	}
)

func NewSeeder(fsys fs.FS, svcs Services, logger core.Logger) *Seeder {
	vala.BeginValidation().Validate(
		vala.IsNotNil(fsys, "fsys"),
		vala.IsNotNil(svcs.Templates, "svcs.Templates"),
		vala.IsNotNil(logger, "logger"),
	).CheckAndPanic()
	return &Seeder{fsys: fsys, svcs: svcs, logger: logger}
}

// ReadTemplates decodes a templates document.
func ReadTemplates(fsys fs.FS, name string) ([]field.Template, error) {
	var doc Templates
	if err := readYAML(fsys, name, &doc); err != nil {
		return nil, err
	}
	for i, tpl := range doc.Templates {
		if _, err := field.ParseKind(string(tpl.Kind)); err != nil {
			return nil, errors.Wrapf(err, "templates[%d]", i)
		}
	}
	return doc.Templates, nil
}

func readYAML(fsys fs.FS, name string, out interface{}) error {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return errors.Wrapf(err, "reading %s", name)
	}
	if err = yaml.Unmarshal(data, out); err != nil {
		return errors.Wrapf(err, "decoding %s", name)
	}
	return nil
}

// InstallTemplates saves the default templates of the kinds that have none yet.
func (s *Seeder) InstallTemplates(ctx context.Context) error {
	tpls, err := ReadTemplates(s.fsys, TemplatesPath)
	if err != nil {
		return err
	}
	for _, tpl := range tpls {
		_, installed, err := s.svcs.Templates.Install(ctx, tpl)
		if err != nil {
			return errors.Wrapf(err, "installing %s template", tpl.Kind)
		}
		if installed {
			s.logger.Info(fmt.Sprintf("installed default %s template", tpl.Kind))
		}
	}
	return nil
}

// LoadDemo creates the demo records, unless some level already exists.
func (s *Seeder) LoadDemo(ctx context.Context) error {
	vala.BeginValidation().Validate(
		vala.IsNotNil(s.svcs.Academic, "svcs.Academic"),
		vala.IsNotNil(s.svcs.Students, "svcs.Students"),
		vala.IsNotNil(s.svcs.Teachers, "svcs.Teachers"),
		vala.IsNotNil(s.svcs.Parents, "svcs.Parents"),
		vala.IsNotNil(s.svcs.Managers, "svcs.Managers"),
		vala.IsNotNil(s.svcs.Exams, "svcs.Exams"),
	).CheckAndPanic()

	levels, err := s.svcs.Academic.QueryLevels(ctx)
	if err != nil {
		return errors.Wrap(err, "querying levels")
	}
	if len(levels) > 0 {
		s.logger.Info("demo data already loaded")
		return nil
	}

	var demo Demo
	if err = readYAML(s.fsys, DemoPath, &demo); err != nil {
		return err
	}
	if err = s.loadDemo(ctx, demo); err != nil {
		return errors.Wrap(err, "loading demo data")
	}
	s.logger.Info("demo data loaded")
	return nil
}

type keys map[string]string

func (k keys) ids(kind string, refs []string) ([]string, error) {
	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		id, err := k.id(kind, ref)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (k keys) id(kind, ref string) (string, error) {
	if ref == "" {
		return "", nil
	}
	id, ok := k[ref]
	if !ok {
		return "", errors.Errorf("unknown %s key %q", kind, ref)
	}
	return id, nil
}

func input(doc personDoc) person.Input {
	return person.Input{Firstname: doc.Firstname, Lastname: doc.Lastname, DynamicFields: doc.Fields}
}

func (s *Seeder) loadDemo(ctx context.Context, demo Demo) error {
	levels, classes, subjects, teachers, parents := keys{}, keys{}, keys{}, keys{}, keys{}

	for _, l := range demo.Levels {
		lvl, err := s.svcs.Academic.CreateLevel(ctx, academic.NewLevel{Name: l.Name, Order: l.Order})
		if err != nil {
			return errors.Wrapf(err, "level %q", l.Key)
		}
		levels[l.Key] = lvl.ID
	}

	for _, c := range demo.Classes {
		levelID, err := levels.id("level", c.Level)
		if err != nil {
			return err
		}
		nc := academic.NewClass{Name: c.Name, LevelID: levelID}
		if c.Capacity > 0 {
			nc.Capacity = null.IntFrom(c.Capacity)
		}
		cls, err := s.svcs.Academic.CreateClass(ctx, nc)
		if err != nil {
			return errors.Wrapf(err, "class %q", c.Key)
		}
		classes[c.Key] = cls.ID
	}

	for _, sub := range demo.Subjects {
		levelIDs, err := levels.ids("level", sub.Levels)
		if err != nil {
			return err
		}
		subject, err := s.svcs.Academic.CreateSubject(ctx, academic.NewSubject{Name: sub.Name, Code: sub.Code, LevelIDs: levelIDs})
		if err != nil {
			return errors.Wrapf(err, "subject %q", sub.Key)
		}
		subjects[sub.Key] = subject.ID
	}

	for _, t := range demo.Teachers {
		subjectIDs, err := subjects.ids("subject", t.Subjects)
		if err != nil {
			return err
		}
		classIDs, err := classes.ids("class", t.Classes)
		if err != nil {
			return err
		}
		tch, err := s.svcs.Teachers.Create(ctx, teacher.NewTeacher{
			Input: input(t.personDoc), Email: t.Email, Phone: t.Phone, SubjectIDs: subjectIDs, ClassIDs: classIDs,
		})
		if err != nil {
			return errors.Wrapf(err, "teacher %q", t.Email)
		}
		if t.Key != "" {
			teachers[t.Key] = tch.ID
		}
	}

	// class teachers are set once both exist
	for _, c := range demo.Classes {
		if c.Teacher == "" {
			continue
		}
		teacherID, err := teachers.id("teacher", c.Teacher)
		if err != nil {
			return err
		}
		detail, err := s.svcs.Academic.GetClass(ctx, classes[c.Key])
		if err != nil {
			return err
		}
		nc := academic.NewClass{Name: detail.Name, LevelID: detail.LevelID, Capacity: detail.Capacity, TeacherID: teacherID}
		if _, err = s.svcs.Academic.UpdateClass(ctx, detail.ID, nc); err != nil {
			return errors.Wrapf(err, "class %q teacher", c.Key)
		}
	}

	for _, p := range demo.Parents {
		prnt, err := s.svcs.Parents.Create(ctx, parent.NewParent{Input: input(p), Email: p.Email, Phone: p.Phone})
		if err != nil {
			return errors.Wrapf(err, "parent %q", p.Email)
		}
		if p.Key != "" {
			parents[p.Key] = prnt.ID
		}
	}

	for _, st := range demo.Students {
		classID, err := classes.id("class", st.Class)
		if err != nil {
			return err
		}
		parentIDs, err := parents.ids("parent", st.Parents)
		if err != nil {
			return err
		}
		ns := student.NewStudent{Input: input(st.personDoc), ClassID: classID, ParentIDs: parentIDs}
		if st.BirthDate != "" {
			bd, err := time.Parse(dateLayout, st.BirthDate)
			if err != nil {
				return errors.Wrapf(err, "student %s birth date", st.personDoc.Firstname)
			}
			ns.BirthDate = null.TimeFrom(bd)
		}
		if _, err = s.svcs.Students.Create(ctx, ns); err != nil {
			return errors.Wrapf(err, "student %s %s", st.Firstname, st.Lastname)
		}
	}

	for _, m := range demo.Managers {
		nm := manager.NewManager{Input: input(m.personDoc), Email: m.Email, Phone: m.Phone, Position: m.Position}
		if _, err := s.svcs.Managers.Create(ctx, nm); err != nil {
			return errors.Wrapf(err, "manager %q", m.Email)
		}
	}

	for i, q := range demo.Questions {
		subjectID, err := subjects.id("subject", q.Subject)
		if err != nil {
			return err
		}
		levelID, err := levels.id("level", q.Level)
		if err != nil {
			return err
		}
		nq := exam.NewQuestion{
			SubjectID: subjectID,
			LevelID:   levelID,
			Type:      exam.QuestionType(q.Type),
			Text:      q.Text,
			Choices:   q.Choices,
			Answers:   q.Answers,
			Points:    q.Points,
		}
		if _, err = s.svcs.Exams.CreateQuestion(ctx, nq); err != nil {
			return errors.Wrapf(err, "questions[%d]", i)
		}
	}
	return nil
}
