package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Bogdy12/uclapi/internal/dto"
	"github.com/Bogdy12/uclapi/internal/model"
	"github.com/Bogdy12/uclapi/internal/repository"
)

// ModuleSelector 待展开的课程实例；GroupCode 非空时仅代表该实验/小班分组
type ModuleSelector struct {
	Module    model.Module
	GroupCode string
}

// SelectorsFor 不带分组的选择器
func SelectorsFor(modules []model.Module) []ModuleSelector {
	selectors := make([]ModuleSelector, 0, len(modules))
	for _, m := range modules {
		selectors = append(selectors, ModuleSelector{Module: m})
	}
	return selectors
}

// ── 选择器去重 ──
//
// 键为 "moduleid instid"，分组选择器的键再拼接分组代码。
// 处理每个选择器时先删除同一实例的未分组键，再写入自己的键：
//   - 先选整门课、再选某分组 → 只保留分组
//   - 同一实例的不同分组 → 全部保留
//   - 同键重复 → 后者覆盖前者，位置不变

type selectorSet struct {
	keys  []string
	byKey map[string]ModuleSelector
}

func dedupSelectors(selectors []ModuleSelector) []ModuleSelector {
	set := selectorSet{byKey: make(map[string]ModuleSelector, len(selectors))}
	for _, sel := range selectors {
		key := sel.Module.ModuleID + " " + strconv.FormatInt(sel.Module.InstID, 10)
		set.remove(key)
		set.put(key+sel.GroupCode, sel)
	}

	out := make([]ModuleSelector, 0, len(set.keys))
	for _, k := range set.keys {
		out = append(out, set.byKey[k])
	}
	return out
}

func (s *selectorSet) remove(key string) {
	if _, ok := s.byKey[key]; !ok {
		return
	}
	delete(s.byKey, key)
	for i, k := range s.keys {
		if k == key {
			s.keys = append(s.keys[:i], s.keys[i+1:]...)
			break
		}
	}
}

func (s *selectorSet) put(key string, sel ModuleSelector) {
	if _, ok := s.byKey[key]; !ok {
		s.keys = append(s.keys, key)
	}
	s.byKey[key] = sel
}

// EventAssembler 将课程实例展开为按日期分组的课程事件
type EventAssembler struct {
	repo      *repository.Repository
	calendar  *WeekCalendar
	resolvers *EntityResolvers
	loc       *time.Location
	logger    *zap.Logger
}

// NewEventAssembler 创建 EventAssembler；loc 用于换算预订时间所在日期
func NewEventAssembler(
	repo *repository.Repository,
	calendar *WeekCalendar,
	resolvers *EntityResolvers,
	loc *time.Location,
	logger *zap.Logger,
) *EventAssembler {
	if loc == nil {
		loc = time.UTC
	}
	return &EventAssembler{
		repo:      repo,
		calendar:  calendar,
		resolvers: resolvers,
		loc:       loc,
		logger:    logger,
	}
}

// ═══════════════════════════════════════════════════════════
// AssembleEvents
// ═══════════════════════════════════════════════════════════
//
// 每个排课时段：
//   - 存在房间预订：每条预订生成一个事件，日期/时间/标题/联系人/地点取自预订
//   - 无预订：按周历展开，每个日期生成一个事件，数据取自排课时段
// 讲师优先取排课时段上的讲师，为空时退回课程讲师。
// 整次组装使用同一份周历快照，期间发生的 Invalidate 不影响本次结果。

func (a *EventAssembler) AssembleEvents(ctx context.Context, selectors []ModuleSelector) (dto.DateKeyedEvents, error) {
	ctx, err := a.resolvers.scope.bind(ctx)
	if err != nil {
		return nil, fmt.Errorf("读取数据集代失败: %w", err)
	}
	weeks, err := a.calendar.EnsureLoaded(ctx)
	if err != nil {
		return nil, err
	}

	events := dto.DateKeyedEvents{}
	bookingsBySlot := make(map[int64][]model.Booking)

	for _, sel := range dedupSelectors(selectors) {
		module := sel.Module

		sessions, err := a.repo.Session.ListByModule(ctx, module.ModuleID, module.InstID)
		if err != nil {
			return nil, fmt.Errorf("查询课程 %s/%d 排课失败: %w", module.ModuleID, module.InstID, err)
		}
		if len(sessions) == 0 {
			continue
		}

		instance, err := a.resolvers.InstanceDetails(ctx, module.InstID)
		if err != nil {
			return nil, err
		}

		for _, session := range sessions {
			bookings, ok := bookingsBySlot[session.SlotID]
			if !ok {
				bookings, err = a.repo.Session.ListBookings(ctx, session.SlotID)
				if err != nil {
					return nil, fmt.Errorf("查询时段 %d 预订失败: %w", session.SlotID, err)
				}
				bookingsBySlot[session.SlotID] = bookings
			}

			base, err := a.baseEvent(ctx, module, session, instance)
			if err != nil {
				return nil, err
			}

			if len(bookings) == 0 {
				location, err := a.location(ctx, session.SiteID, session.RoomID)
				if err != nil {
					return nil, err
				}
				for _, date := range weeks.DatesFor(session.WeekID, session.Weekday) {
					ev := base
					ev.StartTime = session.StartTime
					ev.EndTime = session.FinishTime
					ev.Location = location
					ev.SessionTitle = module.Name
					ev.Contact = dto.Unknown
					events.Add(date.Format(dto.DateLayout), ev)
				}
				continue
			}

			for _, booking := range bookings {
				location, err := a.location(ctx, booking.SiteID, booking.RoomID)
				if err != nil {
					return nil, err
				}
				ev := base
				ev.StartTime = booking.StartTime
				ev.EndTime = booking.FinishTime
				ev.Location = location
				ev.SessionTitle = booking.Title
				ev.Contact = booking.ContactDisplay
				events.Add(booking.StartDateTime.In(a.loc).Format(dto.DateLayout), ev)
			}
		}
	}

	a.logger.Debug("课程事件组装完成",
		zap.Int("selectors", len(selectors)),
		zap.Int("events", events.Count()),
	)
	return events, nil
}

// baseEvent 填充与具体日期无关的字段
func (a *EventAssembler) baseEvent(
	ctx context.Context,
	module model.Module,
	session model.Session,
	instance dto.InstanceDetails,
) (dto.EnrichedEvent, error) {
	dept, err := a.resolvers.DepartmentName(ctx, session.Owner)
	if err != nil {
		return dto.EnrichedEvent{}, err
	}

	lecturerID := session.LecturerID
	if strings.TrimSpace(lecturerID) == "" {
		lecturerID = module.LecturerID
	}
	lecturer, err := a.resolvers.LecturerDetails(ctx, lecturerID)
	if err != nil {
		return dto.EnrichedEvent{}, err
	}

	return dto.EnrichedEvent{
		Duration: session.Duration,
		Module: dto.ModuleSummary{
			ModuleID:       module.ModuleID,
			DepartmentID:   session.Owner,
			DepartmentName: departmentNameOrUnknown(dept),
			Name:           module.Name,
			Lecturer:       lecturerToDTO(lecturer),
		},
		SessionType:    session.ModuleType,
		SessionTypeStr: SessionTypeLabel(session.ModuleType),
		Instance:       instance,
	}, nil
}

func (a *EventAssembler) location(ctx context.Context, siteID, roomID string) (dto.Location, error) {
	room, err := a.resolvers.RoomDetails(ctx, siteID, roomID)
	if err != nil {
		return dto.Location{}, err
	}
	return roomToDTO(room), nil
}
