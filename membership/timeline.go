package membership

import "hackreg-backend/entity"

const (
	StageRegistration     = "Registration"
	StageTeamFormation    = "Team Formation"
	StageProblemStatement = "Problem Statement"
	StageFirstReview      = "First Review"
)

type StageState struct {
	Stage  string             `json:"stage"`
	Status entity.StageStatus `json:"status"`
	Date   string             `json:"date"`
}

// The pipeline template is fixed, both order and dates.
var stageTemplate = []StageState{
	{Stage: StageRegistration, Status: entity.StagePending, Date: "Jan 10"},
	{Stage: StageTeamFormation, Status: entity.StagePending, Date: "Jan 24"},
	{Stage: StageProblemStatement, Status: entity.StagePending, Date: "Feb 07"},
	{Stage: StageFirstReview, Status: entity.StagePending, Date: "Feb 21"},
}

// ProjectTimeline overlays the persisted per-stage status map onto the
// template. Stages absent from the map stay pending. The input is never
// mutated, repeated calls yield identical output.
func ProjectTimeline(status map[string]entity.StageStatus) []StageState {
	out := make([]StageState, len(stageTemplate))
	copy(out, stageTemplate)

	for i := range out {
		if s, ok := status[out[i].Stage]; ok {
			out[i].Status = s
		}
	}

	return out
}

// SeedStatus is the status map written when a team is first created.
func SeedStatus() map[string]entity.StageStatus {
	return map[string]entity.StageStatus{
		StageRegistration:     entity.StageCompleted,
		StageTeamFormation:    entity.StageInProgress,
		StageProblemStatement: entity.StagePending,
		StageFirstReview:      entity.StagePending,
	}
}
