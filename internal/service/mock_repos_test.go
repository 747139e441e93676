package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Bogdy12/uclapi/internal/dataset"
	"github.com/Bogdy12/uclapi/internal/dto"
	"github.com/Bogdy12/uclapi/internal/model"
	"github.com/Bogdy12/uclapi/internal/repository"
)

var (
	errDBDown  = errors.New("数据库不可用")
	testLogger = zap.NewNop()
)

// ── Mock WeekRepository ──

type mockWeekRepo struct {
	structures []model.WeekStructure
	maps       []model.WeekMapNumeric
	loads      int
}

func newMockWeekRepo() *mockWeekRepo {
	return &mockWeekRepo{}
}

func (m *mockWeekRepo) addWeek(number int, start time.Time) {
	m.structures = append(m.structures, model.WeekStructure{WeekNumber: number, StartDate: start})
}

func (m *mockWeekRepo) mapWeek(weekID string, numbers ...int) {
	for _, n := range numbers {
		m.maps = append(m.maps, model.WeekMapNumeric{WeekID: weekID, WeekNumber: n})
	}
}

func (m *mockWeekRepo) ListStructures(_ context.Context) ([]model.WeekStructure, error) {
	m.loads++
	return m.structures, nil
}

func (m *mockWeekRepo) ListNumericMaps(_ context.Context) ([]model.WeekMapNumeric, error) {
	return m.maps, nil
}

// ── Mock DepartmentRepository ──

type mockDeptRepo struct {
	depts map[string]*model.Department
	calls int
}

func newMockDeptRepo() *mockDeptRepo {
	return &mockDeptRepo{depts: make(map[string]*model.Department)}
}

func (m *mockDeptRepo) GetByID(_ context.Context, id string) (*model.Department, error) {
	m.calls++
	if d, ok := m.depts[id]; ok {
		return d, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDeptRepo) List(_ context.Context) ([]model.Department, error) {
	var out []model.Department
	for _, d := range m.depts {
		out = append(out, *d)
	}
	return out, nil
}

// ── Mock LecturerRepository ──

type mockLecturerRepo struct {
	lecturers map[string]*model.Lecturer
}

func newMockLecturerRepo() *mockLecturerRepo {
	return &mockLecturerRepo{lecturers: make(map[string]*model.Lecturer)}
}

func (m *mockLecturerRepo) GetByID(_ context.Context, upi string) (*model.Lecturer, error) {
	if l, ok := m.lecturers[upi]; ok {
		return l, nil
	}
	return nil, gorm.ErrRecordNotFound
}

// ── Mock LocationRepository ──

type mockLocationRepo struct {
	rooms map[string]*model.Room // "site___room"
	sites map[string]*model.Site
	err   error
}

func newMockLocationRepo() *mockLocationRepo {
	return &mockLocationRepo{
		rooms: make(map[string]*model.Room),
		sites: make(map[string]*model.Site),
	}
}

func (m *mockLocationRepo) FindRoom(_ context.Context, siteID, roomID string) (*model.Room, error) {
	if m.err != nil {
		return nil, m.err
	}
	if r, ok := m.rooms[roomKey(siteID, roomID)]; ok {
		return r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockLocationRepo) FindSite(_ context.Context, siteID string) (*model.Site, error) {
	if s, ok := m.sites[siteID]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

// ── Mock ModuleRepository ──

type mockModuleRepo struct {
	modules   []model.Module
	instances map[int64]*model.ModuleInstance
}

func newMockModuleRepo() *mockModuleRepo {
	return &mockModuleRepo{instances: make(map[int64]*model.ModuleInstance)}
}

func (m *mockModuleRepo) add(mod model.Module, instCode string) {
	m.modules = append(m.modules, mod)
	m.instances[mod.InstID] = &model.ModuleInstance{InstID: mod.InstID, InstCode: instCode}
}

func (m *mockModuleRepo) Get(_ context.Context, moduleID string, instID int64) (*model.Module, error) {
	for i := range m.modules {
		if m.modules[i].ModuleID == moduleID && m.modules[i].InstID == instID {
			mod := m.modules[i]
			return &mod, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockModuleRepo) ListByModuleID(_ context.Context, moduleID string) ([]model.Module, error) {
	var out []model.Module
	for _, mod := range m.modules {
		if mod.ModuleID == moduleID {
			out = append(out, mod)
		}
	}
	return out, nil
}

func (m *mockModuleRepo) ListByOwner(_ context.Context, deptID, setID string) ([]model.Module, error) {
	var out []model.Module
	for _, mod := range m.modules {
		if mod.Owner == deptID && mod.SetID == setID {
			out = append(out, mod)
		}
	}
	return out, nil
}

func (m *mockModuleRepo) GetInstance(_ context.Context, instID int64) (*model.ModuleInstance, error) {
	if inst, ok := m.instances[instID]; ok {
		return inst, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockModuleRepo) FindInstanceByCode(_ context.Context, instCode string) (*model.ModuleInstance, error) {
	for _, inst := range m.instances {
		if inst.InstCode == instCode {
			return inst, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// ── Mock SessionRepository ──

type mockSessionRepo struct {
	sessions     []model.Session
	bookings     map[int64][]model.Booking
	bookingCalls map[int64]int
}

func newMockSessionRepo() *mockSessionRepo {
	return &mockSessionRepo{
		bookings:     make(map[int64][]model.Booking),
		bookingCalls: make(map[int64]int),
	}
}

func (m *mockSessionRepo) ListByModule(_ context.Context, moduleID string, instID int64) ([]model.Session, error) {
	var out []model.Session
	for _, s := range m.sessions {
		if s.ModuleID == moduleID && s.InstID == instID {
			out = append(out, s)
		}
	}
	return out, nil
}

// hookSessionRepo 在查询排课时段时执行 hook，用于模拟解析过程中发生的切换
type hookSessionRepo struct {
	*mockSessionRepo
	hook func()
}

func (h *hookSessionRepo) ListByModule(ctx context.Context, moduleID string, instID int64) ([]model.Session, error) {
	if h.hook != nil {
		h.hook()
	}
	return h.mockSessionRepo.ListByModule(ctx, moduleID, instID)
}

func (m *mockSessionRepo) ListBookings(_ context.Context, slotID int64) ([]model.Booking, error) {
	m.bookingCalls[slotID]++
	return m.bookings[slotID], nil
}

// ── Mock StudentModuleRepository ──

type mockStudentModuleRepo struct {
	links map[string][]model.StudentModule
}

func newMockStudentModuleRepo() *mockStudentModuleRepo {
	return &mockStudentModuleRepo{links: make(map[string][]model.StudentModule)}
}

func (m *mockStudentModuleRepo) ListByStudent(_ context.Context, studentID string) ([]model.StudentModule, error) {
	return m.links[studentID], nil
}

// ── 按数据集代返回不同数据的仓储 ──

// generationOf 固定代优先，否则取切换标志
func generationOf(ctx context.Context, flag *stubGenerationReader) dataset.Generation {
	if gen, ok := dataset.PinnedFrom(ctx); ok {
		return gen
	}
	return flag.gen
}

type genWeekRepo struct {
	flag       *stubGenerationReader
	structures map[dataset.Generation][]model.WeekStructure
	maps       []model.WeekMapNumeric
}

func (m *genWeekRepo) ListStructures(ctx context.Context) ([]model.WeekStructure, error) {
	return m.structures[generationOf(ctx, m.flag)], nil
}

func (m *genWeekRepo) ListNumericMaps(_ context.Context) ([]model.WeekMapNumeric, error) {
	return m.maps, nil
}

type genDeptRepo struct {
	flag  *stubGenerationReader
	names map[dataset.Generation]string
}

func (m *genDeptRepo) GetByID(ctx context.Context, id string) (*model.Department, error) {
	return &model.Department{DeptID: id, Name: m.names[generationOf(ctx, m.flag)]}, nil
}

func (m *genDeptRepo) List(_ context.Context) ([]model.Department, error) {
	return nil, nil
}

// ── 外部协作方 ──

type fakeCoords struct {
	err error
}

func (f *fakeCoords) Coordinates(_ context.Context, siteID, roomID string) (string, string, error) {
	if f.err != nil {
		return "", "", f.err
	}
	return "51.52" + siteID, "-0.13" + roomID, nil
}

type fakeDescriber struct {
	calls int
	err   error
}

func (f *fakeDescriber) Describe(_ context.Context, code string) (dto.InstanceDescription, error) {
	f.calls++
	if f.err != nil {
		return dto.InstanceDescription{}, f.err
	}
	return dto.InstanceDescription{
		Delivery: dto.Delivery{FHEQLevel: 6, IsUndergraduate: true},
		Periods:  dto.Periods{TeachingPeriods: dto.TeachingPeriods{Term1: code != ""}},
	}, nil
}

type fakeStore struct {
	mu   sync.Mutex
	data map[string]string
	err  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: make(map[string]string)}
}

func (f *fakeStore) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", false, f.err
	}
	v, ok := f.data[key]
	return v, ok, nil
}

func (f *fakeStore) Set(_ context.Context, key, value string, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = value
	return nil
}

type submission struct {
	studentID string
	events    dto.DateKeyedEvents
}

type fakeQueue struct {
	submitted []submission
}

func (f *fakeQueue) Submit(studentID string, events dto.DateKeyedEvents) bool {
	f.submitted = append(f.submitted, submission{studentID: studentID, events: events})
	return true
}

type fakeBuilder struct {
	result dto.DateKeyedEvents
	err    error
	calls  int
}

func (f *fakeBuilder) BuildPersonalTimetable(_ context.Context, _ string) (dto.DateKeyedEvents, error) {
	f.calls++
	return f.result, f.err
}

// ── 测试夹具 ──

type fixture struct {
	weeks     *mockWeekRepo
	depts     *mockDeptRepo
	lecturers *mockLecturerRepo
	locations *mockLocationRepo
	modules   *mockModuleRepo
	sessions  *mockSessionRepo
	students  *mockStudentModuleRepo
	coords    *fakeCoords
	describer *fakeDescriber
	gens      *stubGenerationReader

	repo      *repository.Repository
	cache     *LookupCache
	calendar  *WeekCalendar
	resolvers *EntityResolvers
	assembler *EventAssembler
}

func monday(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newFixture() *fixture {
	f := &fixture{
		weeks:     newMockWeekRepo(),
		depts:     newMockDeptRepo(),
		lecturers: newMockLecturerRepo(),
		locations: newMockLocationRepo(),
		modules:   newMockModuleRepo(),
		sessions:  newMockSessionRepo(),
		students:  newMockStudentModuleRepo(),
		coords:    &fakeCoords{},
		describer: &fakeDescriber{},
		gens:      &stubGenerationReader{gen: dataset.GenerationA},
	}
	f.repo = &repository.Repository{
		Week:          f.weeks,
		Department:    f.depts,
		Lecturer:      f.lecturers,
		Location:      f.locations,
		Module:        f.modules,
		Session:       f.sessions,
		StudentModule: f.students,
	}
	f.cache = NewLookupCache()
	f.calendar = NewWeekCalendar(f.weeks, f.gens, testLogger)
	f.resolvers = NewEntityResolvers(f.repo, f.cache, f.gens, f.coords, f.describer, "@ucl.ac.uk", testLogger)
	f.assembler = NewEventAssembler(f.repo, f.calendar, f.resolvers, time.UTC, testLogger)
	return f
}

// seed 写入一组典型数据：
//   - 周模式 W1 → 第 1、2 周（2023-10-02、2023-10-09）
//   - COMP0016 实例 101（A6U-T1）与 102（A6U-T2）
//   - 时段 1：周一 09:00，无预订；时段 2：周三 14:00，有两条预订
func (f *fixture) seed() {
	f.weeks.addWeek(1, monday(2023, 10, 2))
	f.weeks.addWeek(2, monday(2023, 10, 9))
	f.weeks.mapWeek("W1", 1, 2)

	f.depts.depts["COMPS_ENG"] = &model.Department{DeptID: "COMPS_ENG", Name: "Computer Science"}
	f.lecturers.lecturers["ABCDE12"] = &model.Lecturer{
		LecturerID: "ABCDE12", Name: "Dr Ada", LinkCode: "a.ada", Owner: "COMPS_ENG",
	}
	f.lecturers.lecturers["MODLEC1"] = &model.Lecturer{
		LecturerID: "MODLEC1", Name: "Prof Module", LinkCode: "p.module",
	}

	f.locations.sites["212"] = &model.Site{SiteID: "212", SiteName: "Cruciform Building", Address1: "Gower Street"}
	f.locations.rooms[roomKey("212", "B15")] = &model.Room{
		SiteID: "212", RoomID: "B15", RoomName: "Cruciform B.3.15", Capacity: 80, BookableType: "CB",
	}

	f.modules.add(model.Module{
		ModuleID: "COMP0016", InstID: 101, Name: "Systems Engineering",
		Owner: "COMPS_ENG", LecturerID: "MODLEC1", ClassSize: 150, SetID: "LIVE-23-24",
	}, "A6U-T1")
	f.modules.add(model.Module{
		ModuleID: "COMP0016", InstID: 102, Name: "Systems Engineering",
		Owner: "COMPS_ENG", LecturerID: "MODLEC1", ClassSize: 40, SetID: "LIVE-23-24",
	}, "A6U-T2")

	f.sessions.sessions = append(f.sessions.sessions,
		model.Session{
			SlotID: 1, ModuleID: "COMP0016", InstID: 101, WeekID: "W1", Weekday: 1,
			StartTime: "09:00", FinishTime: "11:00", Duration: 120, Owner: "COMPS_ENG",
			SiteID: "212", RoomID: "B15", LecturerID: "ABCDE12", ModuleType: "L",
		},
		model.Session{
			SlotID: 2, ModuleID: "COMP0016", InstID: 101, WeekID: "W1", Weekday: 3,
			StartTime: "14:00", FinishTime: "15:00", Duration: 60, Owner: "COMPS_ENG",
			SiteID: "212", RoomID: "B15", LecturerID: "  ", ModuleType: "ZZZ",
		},
	)
	f.sessions.bookings[2] = []model.Booking{
		{
			BookingID: 10, SlotID: 2, StartDateTime: time.Date(2023, 11, 6, 16, 0, 0, 0, time.UTC),
			StartTime: "16:00", FinishTime: "17:00", Title: "Moved lab", SiteID: "212", RoomID: "B15",
			ContactDisplay: "Timetabling",
		},
		{
			BookingID: 11, SlotID: 2, StartDateTime: time.Date(2023, 11, 8, 10, 0, 0, 0, time.UTC),
			StartTime: "10:00", FinishTime: "11:00", Title: "Extra lab", ContactDisplay: "Timetabling",
		},
	}
}

func (f *fixture) module(instID int64) model.Module {
	mod, _ := f.modules.Get(context.Background(), "COMP0016", instID)
	return *mod
}
