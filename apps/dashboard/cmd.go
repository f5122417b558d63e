package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/akademik/apps/shell"
	"github.com/trezcool/akademik/core"
	"github.com/trezcool/akademik/core/class"
	"github.com/trezcool/akademik/core/dashboard"
	"github.com/trezcool/akademik/core/student"
	"github.com/trezcool/akademik/core/subject"
	"github.com/trezcool/akademik/services/export"
	"github.com/trezcool/akademik/services/presenter"
)

var (
	createFileFunc = func(name string) (io.WriteCloser, error) { return os.Create(name) } // mockable

	errHelp     = errors.New("help provided")
	errNotFound = errors.New("not found")
)

type commandLine struct {
	shell   *shell.Shell
	console *presentersvc.Console
	out     io.Writer
}

func (cli *commandLine) printUsage() {
	_, _ = fmt.Fprintln(cli.out, "Usage:")
	_, _ = fmt.Fprintln(cli.out, "  dashboard                                    - show the signed in user and the student statistics")
	_, _ = fmt.Fprintln(cli.out, "  whoami                                       - show the signed in user")
	_, _ = fmt.Fprintln(cli.out, "  students list|add|edit|delete|export [FLAGS] - manage students")
	_, _ = fmt.Fprintln(cli.out, "  subjects list|add|edit|delete [FLAGS]        - manage subjects")
	_, _ = fmt.Fprintln(cli.out, "  classes list|add|edit|delete [FLAGS]         - manage classes")
	_, _ = fmt.Fprintln(cli.out, "  classes students|enroll|unenroll [FLAGS]     - manage the students of a class")
	_, _ = fmt.Fprintln(cli.out, "Run a command with -h for its flags.")
}

func (cli *commandLine) run(ctx context.Context, args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	switch args[1] {
	case "dashboard":
		return cli.dashboard(ctx)
	case "whoami":
		return cli.whoami(ctx)
	case "students":
		return cli.students(ctx, args[2:])
	case "subjects":
		return cli.subjects(ctx, args[2:])
	case "classes":
		return cli.classes(ctx, args[2:])
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(cli.out)
	return fs
}

// parse parses `args` and registers the -yes flag on mutating commands.
func (cli *commandLine) parse(fs *flag.FlagSet, args []string, confirms bool) error {
	var yes *bool
	if confirms {
		yes = fs.Bool("yes", false, "Answer yes to every confirmation.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return errHelp
		}
		return err
	}
	if yes != nil {
		cli.console.AssumeYes = *yes
	}
	return nil
}

// visited returns the names of the flags set on the command line.
func visited(fs *flag.FlagSet) map[string]bool {
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

func parseNullInt(name, value string) (null.Int, error) {
	if value = core.CleanString(value); value == "" {
		return null.Int{}, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return null.Int{}, fmt.Errorf("-%s must be a number (got '%s')", name, value)
	}
	return null.IntFrom(n), nil
}

func nullString(value string) null.String {
	if value = core.CleanString(value); value == "" {
		return null.String{}
	}
	return null.StringFrom(value)
}

func formatNullInt(n null.Int) string {
	if !n.Valid {
		return "-"
	}
	return strconv.Itoa(n.Int)
}

func (cli *commandLine) table() *tabwriter.Writer {
	return tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
}

func requireID(fs *flag.FlagSet, id string) (int64, error) {
	if id == "" {
		fs.Usage()
		return 0, errHelp
	}
	return core.ParseID(id)
}

// Dashboard

func (cli *commandLine) dashboard(ctx context.Context) error {
	cli.shell.Start(ctx)
	if err := cli.printIdentity(); err != nil {
		return err
	}
	if !cli.shell.Dashboard.Loaded() {
		return errors.New("statistics unavailable")
	}

	st := cli.shell.Dashboard.Stats()
	w := cli.table()
	_, _ = fmt.Fprintln(w, "\nMAJOR\tTOTAL\tACTIVE\tNOT ACTIVE")
	_, _ = fmt.Fprintf(w, "%s\t%d\t%d\t%d\n", dashboard.LabelSI, st.SITotal, st.SIActive, st.SINotActive)
	_, _ = fmt.Fprintf(w, "%s\t%d\t%d\t%d\n", dashboard.LabelTI, st.TITotal, st.TIActive, st.TINotActive)
	_, _ = fmt.Fprintf(w, "All\t%d\t\t\n", st.TotalStudents)
	return w.Flush()
}

func (cli *commandLine) whoami(ctx context.Context) error {
	if err := cli.shell.Session.Load(ctx); err != nil {
		return err
	}
	return cli.printIdentity()
}

func (cli *commandLine) printIdentity() error {
	if !cli.shell.Session.Loaded() {
		return errors.New("not signed in")
	}
	id := cli.shell.Session.Identity()
	role := "user"
	if id.IsAdmin {
		role = "admin"
	}
	_, err := fmt.Fprintf(cli.out, "%s <%s> (%s)\n", id.Name, id.Email, role)
	return err
}

// Students

type studentFlags struct {
	id, nim, name, email, major, batch, status *string
}

func newStudentFlags(fs *flag.FlagSet, withID bool) *studentFlags {
	f := &studentFlags{
		nim:    fs.String("nim", "", "Student number."),
		name:   fs.String("name", "", "Full name."),
		email:  fs.String("email", "", "Email address."),
		major:  fs.String("major", "", "Major."),
		batch:  fs.String("batch", "", "Year entered university."),
		status: fs.String("status", "", "One of ACTIVE, NOT_ACTIVE, DROPOUT."),
	}
	if withID {
		f.id = fs.String("id", "", "The student's id.")
	}
	return f
}

// apply copies the flags set on the command line into `s`.
func (f *studentFlags) apply(set map[string]bool, s *student.Student) error {
	if set["nim"] {
		s.NIM = core.CleanString(*f.nim)
	}
	if set["name"] {
		s.Name = core.CleanString(*f.name)
	}
	if set["email"] {
		s.Email = core.CleanString(*f.email)
	}
	if set["major"] {
		s.Major = core.CleanString(*f.major)
	}
	if set["batch"] {
		batch, err := parseNullInt("batch", *f.batch)
		if err != nil {
			return err
		}
		s.Batch = batch
	}
	if set["status"] {
		s.Status = core.CleanString(*f.status)
	}
	return nil
}

func (cli *commandLine) studentsUsage() {
	_, _ = fmt.Fprintln(cli.out, "Usage:")
	_, _ = fmt.Fprintln(cli.out, "  students list")
	_, _ = fmt.Fprintln(cli.out, "  students add -nim NIM -name NAME [-email EMAIL] [-major MAJOR] [-batch YEAR] [-status STATUS]")
	_, _ = fmt.Fprintln(cli.out, "  students edit -id ID [-nim NIM] [-name NAME] [-email EMAIL] [-major MAJOR] [-batch YEAR] [-status STATUS]")
	_, _ = fmt.Fprintln(cli.out, "  students delete -id ID [-yes]")
	_, _ = fmt.Fprintln(cli.out, "  students export [-o FILE]")
}

func (cli *commandLine) students(ctx context.Context, args []string) error {
	if len(args) == 0 {
		cli.studentsUsage()
		return errHelp
	}

	switch args[0] {
	case "list":
		if err := cli.parse(cli.newFlagSet("students list"), args[1:], false); err != nil {
			return err
		}
		if err := cli.shell.Navigate(ctx, shell.PageStudents); err != nil {
			return err
		}
		return cli.printStudents(cli.shell.Students.List())

	case "add":
		fs := cli.newFlagSet("students add")
		flags := newStudentFlags(fs, false)
		if err := cli.parse(fs, args[1:], false); err != nil {
			return err
		}
		if *flags.nim == "" || *flags.name == "" {
			fs.Usage()
			return errHelp
		}
		form := cli.shell.StudentForm
		form.OpenForCreate()
		var applyErr error
		_ = form.Edit(func(s *student.Student) {
			if s.Status == "" {
				s.Status = student.StatusActive
			}
			applyErr = flags.apply(visited(fs), s)
		})
		if applyErr != nil {
			form.Close()
			return applyErr
		}
		return form.Submit(ctx)

	case "edit":
		fs := cli.newFlagSet("students edit")
		flags := newStudentFlags(fs, true)
		if err := cli.parse(fs, args[1:], false); err != nil {
			return err
		}
		id, err := requireID(fs, *flags.id)
		if err != nil {
			return err
		}
		if err := cli.shell.Navigate(ctx, shell.PageStudents); err != nil {
			return err
		}
		rec, ok := cli.shell.Students.Find(id)
		if !ok {
			return errNotFound
		}
		form := cli.shell.StudentForm
		form.OpenForEdit(rec)
		var applyErr error
		_ = form.Edit(func(s *student.Student) { applyErr = flags.apply(visited(fs), s) })
		if applyErr != nil {
			form.Close()
			return applyErr
		}
		return form.Submit(ctx)

	case "delete":
		fs := cli.newFlagSet("students delete")
		idFlag := fs.String("id", "", "The student's id.")
		if err := cli.parse(fs, args[1:], true); err != nil {
			return err
		}
		id, err := requireID(fs, *idFlag)
		if err != nil {
			return err
		}
		return cli.reportDelete(cli.shell.StudentForm.Remove(ctx, id))

	case "export":
		fs := cli.newFlagSet("students export")
		file := fs.String("o", "students.xlsx", "The xlsx file to write.")
		if err := cli.parse(fs, args[1:], false); err != nil {
			return err
		}
		if err := cli.shell.Navigate(ctx, shell.PageStudents); err != nil {
			return err
		}
		return cli.exportStudents(*file, cli.shell.Students.List())

	default:
		cli.studentsUsage()
		return errHelp
	}
}

func (cli *commandLine) printStudents(students []student.Student) error {
	w := cli.table()
	_, _ = fmt.Fprintln(w, "ID\tNIM\tNAME\tEMAIL\tMAJOR\tBATCH\tSTATUS")
	for _, s := range students {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			s.ID, s.NIM, s.Name, s.Email, s.Major, formatNullInt(s.Batch), student.StatusLabel(s.Status))
	}
	return w.Flush()
}

func (cli *commandLine) exportStudents(name string, students []student.Student) (err error) {
	f, err := createFileFunc(name)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if err = exportsvc.Students(f, students); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cli.out, "%d students exported to %s\n", len(students), name)
	return nil
}

func (cli *commandLine) reportDelete(deleted bool, err error) error {
	if err != nil {
		return err
	}
	if !deleted {
		_, _ = fmt.Fprintln(cli.out, "cancelled")
	}
	return nil
}

// Subjects

type subjectFlags struct {
	id, code, name, major, sks *string
}

func newSubjectFlags(fs *flag.FlagSet, withID bool) *subjectFlags {
	f := &subjectFlags{
		code:  fs.String("code", "", "Subject code."),
		name:  fs.String("name", "", "Subject name."),
		major: fs.String("major", "", "Major the subject belongs to."),
		sks:   fs.String("sks", "", "Credit units."),
	}
	if withID {
		f.id = fs.String("id", "", "The subject's id.")
	}
	return f
}

func (f *subjectFlags) apply(set map[string]bool, s *subject.Subject) error {
	if set["code"] {
		s.Code = core.CleanString(*f.code)
	}
	if set["name"] {
		s.Name = core.CleanString(*f.name)
	}
	if set["major"] {
		s.Major = nullString(*f.major)
	}
	if set["sks"] {
		sks, err := parseNullInt("sks", *f.sks)
		if err != nil {
			return err
		}
		s.Sks = sks
	}
	return nil
}

func (cli *commandLine) subjectsUsage() {
	_, _ = fmt.Fprintln(cli.out, "Usage:")
	_, _ = fmt.Fprintln(cli.out, "  subjects list")
	_, _ = fmt.Fprintln(cli.out, "  subjects add -code CODE -name NAME [-major MAJOR] [-sks SKS]")
	_, _ = fmt.Fprintln(cli.out, "  subjects edit -id ID [-code CODE] [-name NAME] [-major MAJOR] [-sks SKS]")
	_, _ = fmt.Fprintln(cli.out, "  subjects delete -id ID [-yes]")
}

func (cli *commandLine) subjects(ctx context.Context, args []string) error {
	if len(args) == 0 {
		cli.subjectsUsage()
		return errHelp
	}

	switch args[0] {
	case "list":
		if err := cli.parse(cli.newFlagSet("subjects list"), args[1:], false); err != nil {
			return err
		}
		if err := cli.shell.Navigate(ctx, shell.PageSubjects); err != nil {
			return err
		}
		w := cli.table()
		_, _ = fmt.Fprintln(w, "ID\tCODE\tNAME\tMAJOR\tSKS")
		for _, s := range cli.shell.Subjects.List() {
			major := "-"
			if s.Major.Valid {
				major = s.Major.String
			}
			_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", s.ID, s.Code, s.Name, major, formatNullInt(s.Sks))
		}
		return w.Flush()

	case "add":
		fs := cli.newFlagSet("subjects add")
		flags := newSubjectFlags(fs, false)
		if err := cli.parse(fs, args[1:], false); err != nil {
			return err
		}
		if *flags.code == "" || *flags.name == "" {
			fs.Usage()
			return errHelp
		}
		form := cli.shell.SubjectForm
		form.OpenForCreate()
		var applyErr error
		_ = form.Edit(func(s *subject.Subject) { applyErr = flags.apply(visited(fs), s) })
		if applyErr != nil {
			form.Close()
			return applyErr
		}
		return form.Submit(ctx)

	case "edit":
		fs := cli.newFlagSet("subjects edit")
		flags := newSubjectFlags(fs, true)
		if err := cli.parse(fs, args[1:], false); err != nil {
			return err
		}
		id, err := requireID(fs, *flags.id)
		if err != nil {
			return err
		}
		if err := cli.shell.Navigate(ctx, shell.PageSubjects); err != nil {
			return err
		}
		rec, ok := cli.shell.Subjects.Find(id)
		if !ok {
			return errNotFound
		}
		form := cli.shell.SubjectForm
		form.OpenForEdit(rec)
		var applyErr error
		_ = form.Edit(func(s *subject.Subject) { applyErr = flags.apply(visited(fs), s) })
		if applyErr != nil {
			form.Close()
			return applyErr
		}
		return form.Submit(ctx)

	case "delete":
		fs := cli.newFlagSet("subjects delete")
		idFlag := fs.String("id", "", "The subject's id.")
		if err := cli.parse(fs, args[1:], true); err != nil {
			return err
		}
		id, err := requireID(fs, *idFlag)
		if err != nil {
			return err
		}
		return cli.reportDelete(cli.shell.SubjectForm.Remove(ctx, id))

	default:
		cli.subjectsUsage()
		return errHelp
	}
}

// Classes

type classFlags struct {
	id, code, name, subject, semester, year *string
}

func newClassFlags(fs *flag.FlagSet, withID bool) *classFlags {
	f := &classFlags{
		code:     fs.String("code", "", "Class code."),
		name:     fs.String("name", "", "Class name. Defaults to \"SUBJECT - YEAR - SEMESTER\"."),
		subject:  fs.String("subject", "", "The subject's id."),
		semester: fs.String("semester", "", "Semester, eg: Odd, Even."),
		year:     fs.String("year", "", "Academic year."),
	}
	if withID {
		f.id = fs.String("id", "", "The class's id.")
	}
	return f
}

func (f *classFlags) apply(set map[string]bool, c *class.Class) error {
	if set["code"] {
		c.Code = core.CleanString(*f.code)
	}
	if set["name"] {
		c.Name = core.CleanString(*f.name)
	}
	if set["subject"] {
		id, err := core.ParseID(*f.subject)
		if err != nil {
			return err
		}
		if id != c.SubjectID {
			c.SubjectName = ""
		}
		c.SubjectID = id
	}
	if set["semester"] {
		c.Semester = core.CleanString(*f.semester)
	}
	if set["year"] {
		year, err := parseNullInt("year", *f.year)
		if err != nil {
			return err
		}
		c.Year = year
	}
	return nil
}

func (cli *commandLine) classesUsage() {
	_, _ = fmt.Fprintln(cli.out, "Usage:")
	_, _ = fmt.Fprintln(cli.out, "  classes list")
	_, _ = fmt.Fprintln(cli.out, "  classes add -code CODE -subject ID -semester SEMESTER -year YEAR [-name NAME]")
	_, _ = fmt.Fprintln(cli.out, "  classes edit -id ID [-code CODE] [-subject ID] [-semester SEMESTER] [-year YEAR] [-name NAME]")
	_, _ = fmt.Fprintln(cli.out, "  classes delete -id ID [-yes]")
	_, _ = fmt.Fprintln(cli.out, "  classes students -id ID")
	_, _ = fmt.Fprintln(cli.out, "  classes enroll -id ID -student ID")
	_, _ = fmt.Fprintln(cli.out, "  classes unenroll -id ID -student ID [-yes]")
}

func (cli *commandLine) classes(ctx context.Context, args []string) error {
	if len(args) == 0 {
		cli.classesUsage()
		return errHelp
	}

	switch args[0] {
	case "list":
		if err := cli.parse(cli.newFlagSet("classes list"), args[1:], false); err != nil {
			return err
		}
		if err := cli.shell.Navigate(ctx, shell.PageViewClasses); err != nil {
			return err
		}
		w := cli.table()
		_, _ = fmt.Fprintln(w, "ID\tCODE\tNAME\tSUBJECT\tSEMESTER\tYEAR\tSTUDENTS")
		for _, c := range cli.shell.Classes.List() {
			_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%d\n",
				c.ID, c.Code, c.Name, c.SubjectName, c.Semester, formatNullInt(c.Year), len(c.StudentIDs))
		}
		return w.Flush()

	case "add":
		fs := cli.newFlagSet("classes add")
		flags := newClassFlags(fs, false)
		if err := cli.parse(fs, args[1:], false); err != nil {
			return err
		}
		if *flags.code == "" || *flags.subject == "" {
			fs.Usage()
			return errHelp
		}
		_ = cli.shell.Navigate(ctx, shell.PageAddClass) // subject options failures are logged only
		form := cli.shell.ClassForm
		var applyErr error
		_ = form.Edit(func(c *class.Class) { applyErr = flags.apply(visited(fs), c) })
		if applyErr != nil {
			form.Close()
			return applyErr
		}
		return form.Submit(ctx)

	case "edit":
		fs := cli.newFlagSet("classes edit")
		flags := newClassFlags(fs, true)
		if err := cli.parse(fs, args[1:], false); err != nil {
			return err
		}
		id, err := requireID(fs, *flags.id)
		if err != nil {
			return err
		}
		if err := cli.shell.Navigate(ctx, shell.PageViewClasses); err != nil {
			return err
		}
		rec, ok := cli.shell.Classes.Find(id)
		if !ok {
			return errNotFound
		}
		form := cli.shell.ClassForm
		_ = form.LoadSubjectOptions(ctx)
		form.OpenForEdit(rec)
		var applyErr error
		_ = form.Edit(func(c *class.Class) { applyErr = flags.apply(visited(fs), c) })
		if applyErr != nil {
			form.Close()
			return applyErr
		}
		return form.Submit(ctx)

	case "delete":
		fs := cli.newFlagSet("classes delete")
		idFlag := fs.String("id", "", "The class's id.")
		if err := cli.parse(fs, args[1:], true); err != nil {
			return err
		}
		id, err := requireID(fs, *idFlag)
		if err != nil {
			return err
		}
		return cli.reportDelete(cli.shell.ClassForm.Remove(ctx, id))

	case "students":
		fs := cli.newFlagSet("classes students")
		idFlag := fs.String("id", "", "The class's id.")
		if err := cli.parse(fs, args[1:], false); err != nil {
			return err
		}
		id, err := requireID(fs, *idFlag)
		if err != nil {
			return err
		}
		enr := cli.shell.Enrollment
		if err := enr.Open(ctx, class.Class{ID: id}); err != nil {
			return err
		}
		defer enr.Close()

		cls, _ := enr.Class()
		_, _ = fmt.Fprintf(cli.out, "%s (%s)\n\nEnrolled:\n", cls.Name, cls.Code)
		if err := cli.printStudents(enr.Enrolled()); err != nil {
			return err
		}
		_, _ = fmt.Fprintln(cli.out, "\nAvailable:")
		return cli.printStudents(enr.Unenrolled())

	case "enroll", "unenroll":
		fs := cli.newFlagSet("classes " + args[0])
		idFlag := fs.String("id", "", "The class's id.")
		studentFlag := fs.String("student", "", "The student's id.")
		if err := cli.parse(fs, args[1:], args[0] == "unenroll"); err != nil {
			return err
		}
		id, err := requireID(fs, *idFlag)
		if err != nil {
			return err
		}
		sid, err := requireID(fs, *studentFlag)
		if err != nil {
			return err
		}
		enr := cli.shell.Enrollment
		if err := enr.Open(ctx, class.Class{ID: id}); err != nil {
			return err
		}
		defer enr.Close()
		if args[0] == "enroll" {
			return enr.Add(ctx, sid)
		}
		return cli.reportDelete(enr.Remove(ctx, sid))

	default:
		cli.classesUsage()
		return errHelp
	}
}
