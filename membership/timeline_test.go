package membership_test

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"hackreg-backend/entity"
	"hackreg-backend/membership"
)

var _ = Describe("ProjectTimeline", func() {
	Specify("stages absent from the map default to pending", func() {
		out := membership.ProjectTimeline(nil)
		Expect(out).To(HaveLen(4))
		for _, s := range out {
			Expect(s.Status).To(Equal(entity.StagePending))
		}
	})

	Specify("persisted statuses overwrite the template in fixed order", func() {
		out := membership.ProjectTimeline(membership.SeedStatus())
		Expect(out).To(HaveLen(4))
		Expect(out[0].Stage).To(Equal(membership.StageRegistration))
		Expect(out[0].Status).To(Equal(entity.StageCompleted))
		Expect(out[1].Stage).To(Equal(membership.StageTeamFormation))
		Expect(out[1].Status).To(Equal(entity.StageInProgress))
		Expect(out[2].Stage).To(Equal(membership.StageProblemStatement))
		Expect(out[2].Status).To(Equal(entity.StagePending))
		Expect(out[3].Stage).To(Equal(membership.StageFirstReview))
		Expect(out[3].Status).To(Equal(entity.StagePending))
	})

	Specify("unknown stage names in the map are ignored", func() {
		out := membership.ProjectTimeline(map[string]entity.StageStatus{
			"Final Review": entity.StageCompleted,
		})
		for _, s := range out {
			Expect(s.Status).To(Equal(entity.StagePending))
		}
	})

	Specify("projection is idempotent", func() {
		status := membership.SeedStatus()
		first := membership.ProjectTimeline(status)
		second := membership.ProjectTimeline(status)
		Expect(second).To(Equal(first))
	})

	Specify("the input map is not mutated", func() {
		status := map[string]entity.StageStatus{
			membership.StageRegistration: entity.StageCompleted,
		}
		_ = membership.ProjectTimeline(status)
		Expect(status).To(HaveLen(1))
	})
})
