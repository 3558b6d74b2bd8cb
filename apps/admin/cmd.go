package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/field"
	"github.com/trezcool/shule/core/manager"
	"github.com/trezcool/shule/core/parent"
	"github.com/trezcool/shule/core/student"
	"github.com/trezcool/shule/core/teacher"
	"github.com/trezcool/shule/services/spreadsheet"
	inmemdb "github.com/trezcool/shule/storage/database/inmem"
	"github.com/trezcool/shule/storage/seed"
)

var (
	errHelp         = errors.New("help provided")
	errInvalidFound = errors.New("invalid templates found")
)

type (
	commandLine struct {
		fsys   fs.FS // holds the default templates
		out    io.Writer
		logger core.Logger
	}

	exporter interface {
		Export(ctx context.Context) (core.Sheet, error)
	}
)

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  lint-templates [-file PATH] - check a templates document, the default one without -file")
	fmt.Fprintln(cli.out, "  sample-sheet -kind KIND -out PATH [-file PATH] - write an empty import workbook for KIND")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	lintCmd := flag.NewFlagSet("lint-templates", flag.ContinueOnError)
	lintCmd.SetOutput(cli.out)
	lintFile := lintCmd.String("file", "", "The templates YAML document to check.")

	sampleCmd := flag.NewFlagSet("sample-sheet", flag.ContinueOnError)
	sampleCmd.SetOutput(cli.out)
	sampleKind := sampleCmd.String("kind", "", "The entity kind: student, teacher, parent or manager.")
	sampleOut := sampleCmd.String("out", "", "The .xlsx file to write.")
	sampleFile := sampleCmd.String("file", "", "The templates YAML document to use instead of the default one.")

	switch args[1] {
	case "lint-templates":
		if err := lintCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		return cli.lintTemplates(*lintFile)
	case "sample-sheet":
		if err := sampleCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *sampleKind == "" || *sampleOut == "" {
			sampleCmd.Usage()
			return errHelp
		}
		return cli.sampleSheet(*sampleKind, *sampleOut, *sampleFile)
	default:
		cli.printUsage()
		return errHelp
	}
}

// readTemplates reads file from disk, or the default templates when file is empty.
func (cli *commandLine) readTemplates(file string) ([]field.Template, error) {
	if file == "" {
		return seed.ReadTemplates(cli.fsys, seed.TemplatesPath)
	}
	abs, err := filepath.Abs(file)
	if err != nil {
		return nil, errors.Wrap(err, "resolving templates path")
	}
	return seed.ReadTemplates(os.DirFS(filepath.Dir(abs)), filepath.Base(abs))
}

func (cli *commandLine) lintTemplates(file string) error {
	tpls, err := cli.readTemplates(file)
	if err != nil {
		return err
	}

	invalid := false
	for _, tpl := range tpls {
		ut := field.UpdateTemplate{Fields: tpl.Fields}
		if err := ut.Validate(); err != nil {
			invalid = true
			fmt.Fprintf(cli.out, "%s: invalid\n", tpl.Kind)
			fields, ok := core.ErrorFields(err)
			if !ok {
				fields = map[string]string{"error": err.Error()}
			}
			keys := make([]string, 0, len(fields))
			for k := range fields {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(cli.out, "  %s: %s\n", k, fields[k])
			}
			continue
		}
		fmt.Fprintf(cli.out, "%s: %d fields OK\n", tpl.Kind, len(tpl.Fields))
	}
	if invalid {
		return errInvalidFound
	}
	return nil
}

func (cli *commandLine) sampleSheet(kindName, out, file string) error {
	kind, err := field.ParseKind(kindName)
	if err != nil {
		return err
	}
	tpls, err := cli.readTemplates(file)
	if err != nil {
		return err
	}

	ctx := context.Background()
	exporters, tplSvc, err := newExporters()
	if err != nil {
		return err
	}
	for _, tpl := range tpls {
		if _, _, err = tplSvc.Install(ctx, tpl); err != nil {
			return err
		}
	}

	sheet, err := exporters[kind].Export(ctx)
	if err != nil {
		return errors.Wrapf(err, "building %s sheet", kind)
	}

	f, err := os.Create(out)
	if err != nil {
		return errors.Wrap(err, "creating workbook")
	}
	if err = spreadsheet.Write(f, core.Humanize(string(kind))+"s", sheet); err != nil {
		_ = f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return errors.Wrap(err, "closing workbook")
	}
	cli.logger.Info(fmt.Sprintf("wrote %s sample sheet to %s", kind, out))
	fmt.Fprintf(cli.out, "%s: %d columns written to %s\n", kind, len(sheet.Headers), out)
	return nil
}

// newExporters wires the person services on an empty in-memory store.
func newExporters() (map[field.Kind]exporter, *field.Service, error) {
	db, err := inmemdb.Open()
	if err != nil {
		return nil, nil, errors.Wrap(err, "opening database")
	}
	dir := inmemdb.NewDirectory(db)
	studentRepo := inmemdb.NewStudentRepository(db)
	tplSvc := field.NewService(inmemdb.NewTemplateRepository(db))

	return map[field.Kind]exporter{
		field.KindStudent: student.NewService(studentRepo, dir, tplSvc),
		field.KindTeacher: teacher.NewService(inmemdb.NewTeacherRepository(db), dir, tplSvc),
		field.KindParent:  parent.NewService(inmemdb.NewParentRepository(db), studentRepo, tplSvc),
		field.KindManager: manager.NewService(inmemdb.NewManagerRepository(db), tplSvc),
	}, tplSvc, nil
}
