package entity

import "go.mongodb.org/mongo-driver/bson/primitive"

type Role string

const (
	RoleLeader Role = "Leader"
	RoleMember Role = "Member"
)

type StageStatus string

const (
	StagePending    StageStatus = "pending"
	StageInProgress StageStatus = "inProgress"
	StageCompleted  StageStatus = "completed"
)

type Member struct {
	Name        string `bson:"name" json:"name"`
	Email       string `bson:"email" json:"email"`
	Phone       string `bson:"phone" json:"phone"`
	CollegeName string `bson:"college_name" json:"collegeName"`
	GitHub      string `bson:"github,omitempty" json:"github,omitempty"`
	LinkedIn    string `bson:"linkedin,omitempty" json:"linkedin,omitempty"`
	Photo       string `bson:"photo,omitempty" json:"photo,omitempty"`
	Resume      string `bson:"resume,omitempty" json:"resume,omitempty"`
	Role        Role   `bson:"role" json:"role"`
}

// Team is keyed by its name; the name is chosen at creation and never
// changes. Status is sparse, stages absent from the map are pending.
// Version guards every member-list write, see handler.mutateTeam.
type Team struct {
	ID       primitive.ObjectID     `bson:"_id,omitempty" json:"-"`
	TeamName string                 `bson:"team_name" json:"teamName"`
	Members  []Member               `bson:"members" json:"members"`
	Status   map[string]StageStatus `bson:"status" json:"status"`
	Version  int64                  `bson:"version" json:"-"`
}
