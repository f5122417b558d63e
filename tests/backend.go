package testutil

import (
	"bytes"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/akademik/core"
	"github.com/trezcool/akademik/core/class"
	"github.com/trezcool/akademik/core/dashboard"
	"github.com/trezcool/akademik/core/session"
	"github.com/trezcool/akademik/core/student"
	"github.com/trezcool/akademik/core/subject"
)

var Majors = []string{dashboard.LabelSI, dashboard.LabelTI}

// Request is a request received by the fake backend.
type Request struct {
	Method string
	Path   string // path without the "/api" prefix
	Route  string // matched route, eg: "/students/:id"
	Header http.Header
	Body   []byte
}

// Backend is an in-memory fake of the REST API served under "/api".
type Backend struct {
	*httptest.Server

	mu       sync.Mutex
	pk       int64
	students map[int64]*student.Student
	subjects map[int64]*subject.Subject
	classes  map[int64]*class.Class
	identity session.Identity
	majors   []string
	failures map[string]int // "METHOD route" -> status
	requests []Request
}

func NewBackend(t *testing.T) *Backend {
	t.Helper()
	b := &Backend{
		students: make(map[int64]*student.Student),
		subjects: make(map[int64]*subject.Subject),
		classes:  make(map[int64]*class.Class),
		failures: make(map[string]int),
		majors:   Majors,
		identity: session.Identity{
			Name:    "admin",
			Email:   "admin@example.com",
			Picture: "https://ui-avatars.com/api/?name=admin",
			IsAdmin: true,
			Roles:   "ROLE_ADMIN",
		},
	}
	b.Server = httptest.NewServer(b.router())
	t.Cleanup(b.Close)
	return b
}

func (b *Backend) router() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(b.capture)

	api := e.Group("/api")
	api.GET("/user", b.getUser)

	api.GET("/students", b.listStudents)
	api.POST("/students", b.createStudent)
	api.GET("/students/major-options", b.majorOptions)
	api.GET("/students/statistics", b.statistics)
	api.GET("/students/:id", b.getStudent)
	api.PUT("/students/:id", b.updateStudent)
	api.DELETE("/students/:id", b.deleteStudent)

	api.GET("/subjects", b.listSubjects)
	api.POST("/subjects", b.createSubject)
	api.PUT("/subjects/:id", b.updateSubject)
	api.DELETE("/subjects/:id", b.deleteSubject)

	api.GET("/classes", b.listClasses)
	api.POST("/classes", b.createClass)
	api.GET("/classes/:id", b.getClass)
	api.PUT("/classes/:id", b.updateClass)
	api.DELETE("/classes/:id", b.deleteClass)
	api.POST("/classes/:id/students/:sid", b.enroll)
	api.DELETE("/classes/:id/students/:sid", b.unenroll)
	return e
}

// capture records every request and applies the injected failures.
func (b *Backend) capture(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		req := ctx.Request()
		body, _ := ioutil.ReadAll(req.Body)
		req.Body = ioutil.NopCloser(bytes.NewReader(body))

		route := trimAPI(ctx.Path())
		b.mu.Lock()
		b.requests = append(b.requests, Request{
			Method: req.Method,
			Path:   trimAPI(req.URL.Path),
			Route:  route,
			Header: req.Header.Clone(),
			Body:   body,
		})
		code, fail := b.failures[req.Method+" "+route]
		b.mu.Unlock()

		if fail {
			return ctx.NoContent(code)
		}
		return next(ctx)
	}
}

func trimAPI(p string) string {
	if len(p) >= 4 && p[:4] == "/api" {
		return p[4:]
	}
	return p
}

// Fail makes every `method` request on `route` (eg: "/subjects/:id") answer `code`.
func (b *Backend) Fail(method, route string, code int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[method+" "+route] = code
}

// Recover removes every injected failure.
func (b *Backend) Recover() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = make(map[string]int)
}

// Requests returns the recorded requests, optionally filtered by method.
func (b *Backend) Requests(methods ...string) []Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(methods) == 0 {
		return append([]Request(nil), b.requests...)
	}
	reqs := make([]Request, 0)
	for _, r := range b.requests {
		for _, m := range methods {
			if r.Method == m {
				reqs = append(reqs, r)
			}
		}
	}
	return reqs
}

// LastRequest returns the last recorded `method` request.
func (b *Backend) LastRequest(t *testing.T, method string) Request {
	t.Helper()
	reqs := b.Requests(method)
	if len(reqs) == 0 {
		t.Fatalf("no %s request recorded", method)
	}
	return reqs[len(reqs)-1]
}

func (b *Backend) ResetRequests() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.requests = nil
}

func (b *Backend) SetIdentity(id session.Identity) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.identity = id
}

// Seeding

func (b *Backend) nextID() int64 {
	b.pk++
	return b.pk
}

func (b *Backend) AddStudent(s student.Student) student.Student {
	b.mu.Lock()
	defer b.mu.Unlock()
	s.ID = b.nextID()
	b.students[s.ID] = &s
	return s
}

func (b *Backend) AddSubject(s subject.Subject) subject.Subject {
	b.mu.Lock()
	defer b.mu.Unlock()
	s.ID = b.nextID()
	b.subjects[s.ID] = &s
	return s
}

func (b *Backend) AddClass(c class.Class) class.Class {
	b.mu.Lock()
	defer b.mu.Unlock()
	c.ID = b.nextID()
	b.classes[c.ID] = &c
	return c.Clone()
}

func (b *Backend) Students() []student.Student {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.studentList()
}

func (b *Backend) Subjects() []subject.Subject {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.subjectList()
}

func (b *Backend) Class(id int64) (class.Class, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	c, ok := b.classes[id]
	if !ok {
		return class.Class{}, false
	}
	return c.Clone(), true
}

func (b *Backend) studentList() []student.Student {
	list := make([]student.Student, 0, len(b.students))
	for _, s := range b.students {
		list = append(list, *s)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

func (b *Backend) subjectList() []subject.Subject {
	list := make([]subject.Subject, 0, len(b.subjects))
	for _, s := range b.subjects {
		list = append(list, *s)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

func (b *Backend) classList() []class.Class {
	list := make([]class.Class, 0, len(b.classes))
	for _, c := range b.classes {
		list = append(list, c.Clone())
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

// Handlers

func bind(ctx echo.Context, v interface{}) error {
	if err := json.NewDecoder(ctx.Request().Body).Decode(v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func paramID(ctx echo.Context, name string) (int64, error) {
	id, err := core.ParseID(ctx.Param(name))
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return id, nil
}

func (b *Backend) getUser(ctx echo.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return ctx.JSON(http.StatusOK, b.identity)
}

func (b *Backend) listStudents(ctx echo.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return ctx.JSON(http.StatusOK, b.studentList())
}

// SetMajorOptions changes the options served by "/students/major-options".
func (b *Backend) SetMajorOptions(options ...string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.majors = options
}

func (b *Backend) majorOptions(ctx echo.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return ctx.JSON(http.StatusOK, echo.Map{"options": b.majors})
}

func (b *Backend) statistics(ctx echo.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	count := func(major, status string) int {
		var n int
		for _, s := range b.students {
			if s.Major == major && (status == "" || s.Status == status) {
				n++
			}
		}
		return n
	}
	return ctx.JSON(http.StatusOK, echo.Map{
		"siTotal":       count(dashboard.LabelSI, ""),
		"tiTotal":       count(dashboard.LabelTI, ""),
		"siActive":      count(dashboard.LabelSI, student.StatusActive),
		"tiActive":      count(dashboard.LabelTI, student.StatusActive),
		"siNotActive":   count(dashboard.LabelSI, student.StatusNotActive),
		"tiNotActive":   count(dashboard.LabelTI, student.StatusNotActive),
		"totalStudents": len(b.students),
	})
}

func (b *Backend) getStudent(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.students[id]
	if !ok {
		return ctx.NoContent(http.StatusNotFound)
	}
	return ctx.JSON(http.StatusOK, s)
}

func (b *Backend) createStudent(ctx echo.Context) error {
	var s student.Student
	if err := bind(ctx, &s); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, other := range b.students {
		if s.NIM != "" && other.NIM == s.NIM {
			return ctx.NoContent(http.StatusBadRequest)
		}
	}
	s.ID = b.nextID()
	b.students[s.ID] = &s
	return ctx.JSON(http.StatusCreated, s)
}

func (b *Backend) updateStudent(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	var s student.Student
	if err := bind(ctx, &s); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.students[id]; !ok {
		return ctx.NoContent(http.StatusNotFound)
	}
	s.ID = id
	b.students[id] = &s
	return ctx.JSON(http.StatusOK, s)
}

func (b *Backend) deleteStudent(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.students[id]; !ok {
		return ctx.NoContent(http.StatusNotFound)
	}
	delete(b.students, id)
	for _, c := range b.classes {
		c.StudentIDs = without(c.StudentIDs, id)
	}
	return ctx.NoContent(http.StatusOK)
}

func (b *Backend) listSubjects(ctx echo.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return ctx.JSON(http.StatusOK, b.subjectList())
}

func (b *Backend) createSubject(ctx echo.Context) error {
	var s subject.Subject
	if err := bind(ctx, &s); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	s.ID = b.nextID()
	b.subjects[s.ID] = &s
	return ctx.JSON(http.StatusCreated, s)
}

func (b *Backend) updateSubject(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	var s subject.Subject
	if err := bind(ctx, &s); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subjects[id]; !ok {
		return ctx.NoContent(http.StatusNotFound)
	}
	s.ID = id
	b.subjects[id] = &s
	return ctx.JSON(http.StatusOK, s)
}

// deleteSubject refuses to delete a subject referenced by a class.
func (b *Backend) deleteSubject(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subjects[id]; !ok {
		return ctx.NoContent(http.StatusNotFound)
	}
	for _, c := range b.classes {
		if c.SubjectID == id {
			return ctx.NoContent(http.StatusConflict)
		}
	}
	delete(b.subjects, id)
	return ctx.NoContent(http.StatusOK)
}

func (b *Backend) listClasses(ctx echo.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return ctx.JSON(http.StatusOK, b.classList())
}

func (b *Backend) getClass(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	c, ok := b.classes[id]
	if !ok {
		return ctx.NoContent(http.StatusNotFound)
	}
	return ctx.JSON(http.StatusOK, c)
}

func (b *Backend) createClass(ctx echo.Context) error {
	var c class.Class
	if err := bind(ctx, &c); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	c.ID = b.nextID()
	b.classes[c.ID] = &c
	return ctx.JSON(http.StatusCreated, c)
}

func (b *Backend) updateClass(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	var c class.Class
	if err := bind(ctx, &c); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.classes[id]; !ok {
		return ctx.NoContent(http.StatusNotFound)
	}
	c.ID = id
	b.classes[id] = &c
	return ctx.JSON(http.StatusOK, c)
}

func (b *Backend) deleteClass(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.classes[id]; !ok {
		return ctx.NoContent(http.StatusNotFound)
	}
	delete(b.classes, id)
	return ctx.NoContent(http.StatusOK)
}

func (b *Backend) membership(ctx echo.Context) (*class.Class, int64, error) {
	id, err := paramID(ctx, "id")
	if err != nil {
		return nil, 0, err
	}
	sid, err := paramID(ctx, "sid")
	if err != nil {
		return nil, 0, err
	}
	c, ok := b.classes[id]
	if !ok {
		return nil, 0, echo.NewHTTPError(http.StatusNotFound)
	}
	if _, ok := b.students[sid]; !ok {
		return nil, 0, echo.NewHTTPError(http.StatusNotFound)
	}
	return c, sid, nil
}

func (b *Backend) enroll(ctx echo.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	c, sid, err := b.membership(ctx)
	if err != nil {
		return err
	}
	if !c.HasStudent(sid) {
		c.StudentIDs = append(c.StudentIDs, sid)
	}
	return ctx.JSON(http.StatusOK, c)
}

func (b *Backend) unenroll(ctx echo.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	c, sid, err := b.membership(ctx)
	if err != nil {
		return err
	}
	c.StudentIDs = without(c.StudentIDs, sid)
	return ctx.JSON(http.StatusOK, c)
}

func without(ids []int64, id int64) []int64 {
	kept := make([]int64, 0, len(ids))
	for _, i := range ids {
		if i != id {
			kept = append(kept, i)
		}
	}
	return kept
}
