package sqlite_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/warp/workforce-engine/schedule"
	"github.com/warp/workforce-engine/store/sqlite"
)

func day(s string) time.Time {
	t, err := schedule.ParseDate(s, time.UTC)
	Expect(err).NotTo(HaveOccurred())
	return t
}

var _ = Describe("SQLite Store", func() {
	var (
		ctx   context.Context
		store *sqlite.Store
		now   time.Time
	)

	BeforeEach(func() {
		ctx = context.Background()
		now = time.Date(2025, 5, 1, 9, 30, 0, 0, time.UTC)

		logger, _ := test.NewNullLogger()
		var err error
		store, err = sqlite.New(":memory:", sqlite.WithLogger(logger))
		Expect(err).NotTo(HaveOccurred())

		hours := schedule.MustTimeRange("09:00", "17:00")
		Expect(store.CreateUser(ctx, schedule.User{
			ID:             "alice",
			Name:           "Alice",
			Email:          "alice@example.com",
			EmploymentType: schedule.EmploymentContract,
			WorkingHours:   &hours,
			SkillPathIDs:   []string{"barista"},
			CreatedAt:      now,
		})).To(Succeed())
	})

	AfterEach(func() {
		Expect(store.Close()).To(Succeed())
	})

	Describe("Migrations", func() {
		It("should leave the schema at the latest version", func() {
			version, err := store.MigrationVersion()
			Expect(err).NotTo(HaveOccurred())
			Expect(version).To(BeNumerically(">=", 1))
		})
	})

	Describe("Users", func() {
		It("should round-trip working hours and skill paths", func() {
			u, err := store.GetUser(ctx, "alice")
			Expect(err).NotTo(HaveOccurred())
			Expect(u.EmploymentType).To(Equal(schedule.EmploymentContract))
			Expect(u.WorkingHours).NotTo(BeNil())
			Expect(u.WorkingHours.String()).To(Equal("09:00-17:00"))
			Expect(u.SkillPathIDs).To(ConsistOf("barista"))
			Expect(u.CreatedAt.Equal(now)).To(BeTrue())
		})

		It("should reject a duplicate id", func() {
			err := store.CreateUser(ctx, schedule.User{ID: "alice", Name: "Other", EmploymentType: schedule.Contractor, CreatedAt: now})
			Expect(errors.Is(err, schedule.ErrConflict)).To(BeTrue())
		})

		It("should return ErrNotFound for an unknown user", func() {
			_, err := store.GetUser(ctx, "nobody")
			Expect(schedule.IsNotFound(err)).To(BeTrue())
		})

		It("should list users by employment type", func() {
			Expect(store.CreateUser(ctx, schedule.User{ID: "bob", Name: "Bob", EmploymentType: schedule.Contractor, CreatedAt: now})).To(Succeed())

			users, err := store.ListUsersByEmploymentType(ctx, schedule.EmploymentContract)
			Expect(err).NotTo(HaveOccurred())
			Expect(users).To(HaveLen(1))
			Expect(users[0].ID).To(Equal("alice"))
		})
	})

	Describe("Availabilities", func() {
		var window schedule.Availability

		BeforeEach(func() {
			window = schedule.Availability{
				ID:             "a1",
				UserID:         "alice",
				EmploymentType: schedule.EmploymentContract,
				TimeRange:      schedule.MustTimeRange("09:00", "17:00"),
				Date:           day("2025-05-05"),
				CreatedAt:      now,
				UpdatedAt:      now,
			}
		})

		It("should save and load a recurring window", func() {
			pattern, err := schedule.NewRecurrencePattern(schedule.FrequencyWeekly, 1, []int{1, 3}, nil,
				[]time.Time{day("2025-05-07")}, day("2025-06-30"))
			Expect(err).NotTo(HaveOccurred())
			window.Recurrence = &pattern

			Expect(store.SaveAvailability(ctx, window)).To(Succeed())

			got, err := store.GetAvailability(ctx, "a1")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Date.Equal(window.Date)).To(BeTrue())
			Expect(got.TimeRange).To(Equal(window.TimeRange))
			Expect(got.Recurrence).NotTo(BeNil())
			Expect(got.Recurrence.DaysOfWeek()).To(Equal([]int{1, 3}))
			Expect(got.Recurrence.IsDateExcluded(day("2025-05-07"))).To(BeTrue())
		})

		It("should update in place on a second save", func() {
			Expect(store.SaveAvailability(ctx, window)).To(Succeed())

			window.TimeRange = schedule.MustTimeRange("10:00", "12:00")
			Expect(store.SaveAvailability(ctx, window)).To(Succeed())

			got, err := store.GetAvailability(ctx, "a1")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.TimeRange.String()).To(Equal("10:00-12:00"))
		})

		It("should reject a second window at the same start minute", func() {
			Expect(store.SaveAvailability(ctx, window)).To(Succeed())

			dup := window
			dup.ID = "a2"
			dup.TimeRange = schedule.MustTimeRange("09:00", "10:00")
			err := store.SaveAvailability(ctx, dup)
			Expect(errors.Is(err, schedule.ErrConflict)).To(BeTrue())
		})

		It("should reject a window for an unknown user", func() {
			window.UserID = "ghost"
			err := store.SaveAvailability(ctx, window)
			Expect(schedule.IsNotFound(err)).To(BeTrue())
		})

		It("should find windows within an inclusive date range", func() {
			Expect(store.SaveAvailability(ctx, window)).To(Succeed())

			later := window
			later.ID = "a2"
			later.Date = day("2025-05-12")
			Expect(store.SaveAvailability(ctx, later)).To(Succeed())

			found, err := store.FindAvailabilitiesByUserAndDateRange(ctx, "alice", day("2025-05-05"), day("2025-05-11"))
			Expect(err).NotTo(HaveOccurred())
			Expect(found).To(HaveLen(1))
			Expect(found[0].ID).To(Equal("a1"))
		})

		It("should delete a window once", func() {
			Expect(store.SaveAvailability(ctx, window)).To(Succeed())
			Expect(store.DeleteAvailability(ctx, "a1")).To(Succeed())
			Expect(schedule.IsNotFound(store.DeleteAvailability(ctx, "a1"))).To(BeTrue())
		})
	})

	Describe("Leave requests", func() {
		It("should persist the approval decision", func() {
			lr := schedule.NewLeaveRequest("l1", "alice", schedule.Holiday, day("2025-06-02"), day("2025-06-06"), "trip", true, now)
			Expect(store.SaveLeaveRequest(ctx, lr)).To(Succeed())

			Expect(lr.Approve("manager", "enjoy", now.Add(time.Hour))).To(Succeed())
			Expect(store.SaveLeaveRequest(ctx, lr)).To(Succeed())

			got, err := store.GetLeaveRequest(ctx, "l1")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Status).To(Equal(schedule.LeaveApproved))
			Expect(got.ApproverID).NotTo(BeNil())
			Expect(*got.ApproverID).To(Equal("manager"))
			Expect(got.ApprovalDate).NotTo(BeNil())
			Expect(got.Comments).To(Equal("enjoy"))
			Expect(schedule.FormatDate(got.StartDate)).To(Equal("2025-06-02"))
			Expect(schedule.FormatDate(got.EndDate)).To(Equal("2025-06-06"))
		})

		It("should find requests intersecting a range", func() {
			inside := schedule.NewLeaveRequest("l1", "alice", schedule.Holiday, day("2025-06-02"), day("2025-06-06"), "", true, now)
			outside := schedule.NewLeaveRequest("l2", "alice", schedule.Holiday, day("2025-07-01"), day("2025-07-02"), "", true, now)
			Expect(store.SaveLeaveRequest(ctx, inside)).To(Succeed())
			Expect(store.SaveLeaveRequest(ctx, outside)).To(Succeed())

			found, err := store.FindLeaveRequestsByUserAndDateRange(ctx, "alice", day("2025-06-06"), day("2025-06-30"))
			Expect(err).NotTo(HaveOccurred())
			Expect(found).To(HaveLen(1))
			Expect(found[0].ID).To(Equal("l1"))
		})

		It("should list requests by status", func() {
			sick := schedule.NewLeaveRequest("l1", "alice", schedule.SickLeave, day("2025-05-02"), day("2025-05-02"), "flu", false, now)
			holiday := schedule.NewLeaveRequest("l2", "alice", schedule.Holiday, day("2025-06-02"), day("2025-06-02"), "", true, now)
			Expect(store.SaveLeaveRequest(ctx, sick)).To(Succeed())
			Expect(store.SaveLeaveRequest(ctx, holiday)).To(Succeed())

			pending, err := store.ListLeaveRequestsByStatus(ctx, schedule.LeavePending)
			Expect(err).NotTo(HaveOccurred())
			Expect(pending).To(HaveLen(1))
			Expect(pending[0].ID).To(Equal("l2"))
		})
	})

	Describe("Shifts", func() {
		var shift schedule.WorkSchedule

		BeforeEach(func() {
			shift = schedule.WorkSchedule{
				ID:          "s1",
				UserID:      "alice",
				SkillPathID: "barista",
				Date:        day("2025-05-05"),
				TimeRange:   schedule.MustTimeRange("08:00", "12:00"),
				Notes:       "opening",
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			Expect(store.SaveShift(ctx, shift)).To(Succeed())
		})

		It("should find shifts on a day ordered by start", func() {
			late := shift
			late.ID = "s2"
			late.TimeRange = schedule.MustTimeRange("13:00", "17:00")
			Expect(store.SaveShift(ctx, late)).To(Succeed())

			found, err := store.FindShiftsByUserAndDate(ctx, "alice", day("2025-05-05"))
			Expect(err).NotTo(HaveOccurred())
			Expect(found).To(HaveLen(2))
			Expect(found[0].ID).To(Equal("s1"))
			Expect(found[1].ID).To(Equal("s2"))
			Expect(found[0].Notes).To(Equal("opening"))
		})

		It("should reject a second shift at the same start minute", func() {
			dup := shift
			dup.ID = "s2"
			Expect(errors.Is(store.SaveShift(ctx, dup), schedule.ErrConflict)).To(BeTrue())
		})

		It("should delete a shift", func() {
			Expect(store.DeleteShift(ctx, "s1")).To(Succeed())
			_, err := store.GetShift(ctx, "s1")
			Expect(schedule.IsNotFound(err)).To(BeTrue())
		})
	})

	Describe("WithTx", func() {
		It("should roll back every write when fn fails", func() {
			boom := errors.New("boom")
			err := store.WithTx(ctx, func(tx schedule.Store) error {
				Expect(tx.SaveShift(ctx, schedule.WorkSchedule{
					ID:        "s9",
					UserID:    "alice",
					Date:      day("2025-05-06"),
					TimeRange: schedule.MustTimeRange("08:00", "09:00"),
					CreatedAt: now,
					UpdatedAt: now,
				})).To(Succeed())
				return boom
			})
			Expect(err).To(MatchError(boom))

			_, err = store.GetShift(ctx, "s9")
			Expect(schedule.IsNotFound(err)).To(BeTrue())
		})

		It("should commit when fn succeeds", func() {
			err := store.WithTx(ctx, func(tx schedule.Store) error {
				return tx.CreateUser(ctx, schedule.User{ID: "carol", Name: "Carol", EmploymentType: schedule.CivilContract, CreatedAt: now})
			})
			Expect(err).NotTo(HaveOccurred())

			_, err = store.GetUser(ctx, "carol")
			Expect(err).NotTo(HaveOccurred())
		})
	})
})
