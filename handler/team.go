package handler

import (
	"context"
	"io"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"hackreg-backend/entity"
	"hackreg-backend/errs"
	"hackreg-backend/events"
	"hackreg-backend/log"
	"hackreg-backend/membership"
)

const (
	maxWriteAttempts = 3
	writeBackoff     = 50 * time.Millisecond
)

type teamHandler struct {
	cTeams *mongo.Collection
}

// resolve scans every team document for one whose member list contains the
// email. First match wins; a given email is expected to appear in at most
// one team, but that is only enforced by the scan-before-write check at
// registration, not by the store.
func (h *teamHandler) resolve(ctx context.Context, email string) (*entity.Team, entity.Role, error) {
	cursor, err := h.cTeams.Find(ctx, bson.M{})
	if err != nil {
		log.Logger.Error("database error", zap.Error(err))
		return nil, "", errs.ErrDatabase
	}
	defer cursor.Close(context.Background())

	for cursor.Next(ctx) {
		t := &entity.Team{}
		if err := cursor.Decode(t); err != nil {
			log.Logger.Error("decode error", zap.Error(err))
			return nil, "", errs.ErrDatabase
		}

		if role, ok := membership.RoleOf(t.Members, email); ok {
			return t, role, nil
		}
	}
	if err := cursor.Err(); err != nil {
		log.Logger.Error("cursor error", zap.Error(err))
		return nil, "", errs.ErrDatabase
	}

	return nil, "", errs.ErrNoTeam
}

// mutateTeam runs fn against a fresh snapshot and writes the whole member
// list and status map back, guarded by the document version. A lost race
// re-reads and retries; fn must therefore be safe to re-run. fn returning
// false means nothing needs to be written.
func (h *teamHandler) mutateTeam(ctx context.Context, teamName string, fn func(*entity.Team) (bool, error)) (*entity.Team, error) {
	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		t := &entity.Team{}
		err := h.cTeams.FindOne(ctx, bson.M{"team_name": teamName}).Decode(t)
		if err != nil {
			if err == mongo.ErrNoDocuments {
				return nil, errs.ErrNotFound
			}

			log.Logger.Error("database error", zap.Error(err), zap.String("team", teamName))
			return nil, errs.ErrDatabase
		}

		write, err := fn(t)
		if err != nil {
			return nil, err
		}
		if !write {
			return t, nil
		}

		res, err := h.cTeams.UpdateOne(ctx,
			bson.M{"_id": t.ID, "version": t.Version},
			bson.M{
				"$set": bson.M{"members": t.Members, "status": t.Status},
				"$inc": bson.M{"version": 1},
			})
		if err != nil {
			log.Logger.Error("database error", zap.Error(err), zap.String("team", teamName))
			return nil, errs.ErrDatabase
		}

		if res.MatchedCount == 1 {
			t.Version++
			return t, nil
		}

		time.Sleep(writeBackoff)
	}

	return nil, errs.ErrConflict
}

func (h *teamHandler) MyTeam(c *gin.Context) {
	claims, okc := claimsFrom(c)
	if !okc {
		fail(c, errs.ErrUnauthorized)
		return
	}

	t, role, err := h.resolve(c.Request.Context(), claims.Email)
	if err != nil {
		fail(c, err)
		return
	}

	ok(c, "", gin.H{"team": t, "role": role})
}

type registerRequest struct {
	TeamName string        `json:"teamName"`
	Member   entity.Member `json:"member"`
}

// RegisterTeam is the join-or-create flow: a new team name creates the
// team with the caller as leader and the seeded status map, an existing
// one appends the caller as a plain member while under capacity.
func (h *teamHandler) RegisterTeam(c *gin.Context) {
	claims, okc := claimsFrom(c)
	if !okc {
		fail(c, errs.ErrUnauthorized)
		return
	}

	req := &registerRequest{}
	if err := c.ShouldBindJSON(req); err != nil {
		fail(c, errs.ErrTeamNameRequired)
		return
	}

	if req.TeamName == "" {
		fail(c, errs.ErrTeamNameRequired)
		return
	}

	m := req.Member
	// identity comes from the session, not the form
	m.Email = claims.Email

	if err := membership.Validate(m); err != nil {
		fail(c, err)
		return
	}

	ctx := c.Request.Context()

	if _, _, err := h.resolve(ctx, claims.Email); err == nil {
		fail(c, errs.ErrHasTeam)
		return
	} else if err != errs.ErrNoTeam {
		fail(c, err)
		return
	}

	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		t := &entity.Team{}
		err := h.cTeams.FindOne(ctx, bson.M{"team_name": req.TeamName}).Decode(t)
		if err == mongo.ErrNoDocuments {
			members, _ := membership.Join(nil, m)
			_, err := h.cTeams.InsertOne(ctx, &entity.Team{
				TeamName: req.TeamName,
				Members:  members,
				Status:   membership.SeedStatus(),
				Version:  1,
			})
			if err != nil {
				if mongo.IsDuplicateKeyError(err) {
					// lost the create race, retry as a join
					continue
				}

				log.Logger.Error("failed inserting new team", zap.Error(err), zap.String("team", req.TeamName))
				fail(c, errs.ErrDatabase)
				return
			}

			events.PublishTeam(&events.TeamEvent{Type: events.TCreate, TeamName: req.TeamName, Email: m.Email, Members: members})
			ok(c, "Team created and you are the leader!", gin.H{"result": "created", "role": entity.RoleLeader})
			return
		}
		if err != nil {
			log.Logger.Error("database error", zap.Error(err), zap.String("team", req.TeamName))
			fail(c, errs.ErrDatabase)
			return
		}

		newMembers, result := membership.Join(t.Members, m)
		if result == membership.RejectedFull {
			fail(c, errs.ErrTeamFull)
			return
		}

		res, err := h.cTeams.UpdateOne(ctx,
			bson.M{"_id": t.ID, "version": t.Version},
			bson.M{"$set": bson.M{"members": newMembers}, "$inc": bson.M{"version": 1}})
		if err != nil {
			log.Logger.Error("database error", zap.Error(err), zap.String("team", req.TeamName))
			fail(c, errs.ErrDatabase)
			return
		}

		if res.MatchedCount == 1 {
			events.PublishTeam(&events.TeamEvent{Type: events.TJoin, TeamName: req.TeamName, Email: m.Email, Members: newMembers})
			ok(c, "Successfully joined the team!", gin.H{"result": "joined", "role": entity.RoleMember})
			return
		}

		time.Sleep(writeBackoff)
	}

	fail(c, errs.ErrConflict)
}

// UpdateMembers replaces the whole member list in one write. Leadership is
// checked against the stored document, never against anything the client
// sent.
func (h *teamHandler) UpdateMembers(c *gin.Context) {
	claims, okc := claimsFrom(c)
	if !okc {
		fail(c, errs.ErrUnauthorized)
		return
	}

	req := &struct {
		Members []entity.Member `json:"members"`
	}{}
	if err := c.ShouldBindJSON(req); err != nil {
		fail(c, errs.ErrMemberCount)
		return
	}

	if err := membership.ValidateList(req.Members); err != nil {
		fail(c, err)
		return
	}

	ctx := c.Request.Context()
	t, _, err := h.resolve(ctx, claims.Email)
	if err != nil {
		fail(c, err)
		return
	}

	updated, err := h.mutateTeam(ctx, t.TeamName, func(t *entity.Team) (bool, error) {
		// the lookup snapshot is stale by now, leadership has to hold on
		// the snapshot the version guard covers
		role, found := membership.RoleOf(t.Members, claims.Email)
		if !found {
			return false, errs.ErrNoTeam
		}
		if role != entity.RoleLeader {
			return false, errs.ErrNotLeader
		}

		t.Members = req.Members
		return true, nil
	})
	if err != nil {
		fail(c, err)
		return
	}

	events.PublishTeam(&events.TeamEvent{Type: events.TUpdate, TeamName: updated.TeamName, Email: claims.Email, Members: updated.Members})
	ok(c, "saved", gin.H{"team": updated})
}

// DeleteMember removes the member at the given join-order index. Removing
// the leader promotes the first remaining non-leader in the same write and
// tells the acting session to sign out, since the leader just removed
// themselves. The sole remaining member is never removed.
func (h *teamHandler) DeleteMember(c *gin.Context) {
	claims, okc := claimsFrom(c)
	if !okc {
		fail(c, errs.ErrUnauthorized)
		return
	}

	idx, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		fail(c, errs.ErrInvalidIndex)
		return
	}

	ctx := c.Request.Context()
	t, _, err := h.resolve(ctx, claims.Email)
	if err != nil {
		fail(c, err)
		return
	}

	var outcome membership.RemoveOutcome
	var removed entity.Member
	updated, err := h.mutateTeam(ctx, t.TeamName, func(t *entity.Team) (bool, error) {
		role, found := membership.RoleOf(t.Members, claims.Email)
		if !found {
			return false, errs.ErrNoTeam
		}
		if role != entity.RoleLeader {
			return false, errs.ErrNotLeader
		}

		if idx < 0 || idx >= len(t.Members) {
			return false, errs.ErrInvalidIndex
		}
		removed = t.Members[idx]

		newMembers, out, err := membership.Remove(t.Members, idx)
		if err != nil {
			return false, err
		}

		outcome = out
		if out == membership.NoOp {
			return false, nil
		}

		t.Members = newMembers
		return true, nil
	})
	if err != nil {
		fail(c, err)
		return
	}

	switch outcome {
	case membership.NoOp:
		ok(c, "nothing to do", gin.H{"outcome": "noop", "forceSignOut": false})
	case membership.LeaderTransferred:
		events.PublishTeam(&events.TeamEvent{Type: events.TPromote, TeamName: updated.TeamName, Email: removed.Email, Members: updated.Members})
		ok(c, "leader removed and succession applied", gin.H{
			"outcome":      "leaderTransferred",
			"forceSignOut": removed.Email == claims.Email,
			"members":      updated.Members,
		})
	default:
		events.PublishTeam(&events.TeamEvent{Type: events.TKick, TeamName: updated.TeamName, Email: removed.Email, Members: updated.Members})
		ok(c, "member removed", gin.H{
			"outcome":      "removed",
			"forceSignOut": false,
			"members":      updated.Members,
		})
	}
}

func (h *teamHandler) Timeline(c *gin.Context) {
	claims, okc := claimsFrom(c)
	if !okc {
		fail(c, errs.ErrUnauthorized)
		return
	}

	t, _, err := h.resolve(c.Request.Context(), claims.Email)
	if err != nil {
		fail(c, err)
		return
	}

	ok(c, "", gin.H{"timeline": membership.ProjectTimeline(t.Status)})
}

// Events streams team changes over SSE so a dashboard can refresh
// without polling. The subscription lives for the request; the headers
// are flushed up front so the client sees the stream before the first
// event arrives.
func (h *teamHandler) Events(c *gin.Context) {
	if _, okc := claimsFrom(c); !okc {
		fail(c, errs.ErrUnauthorized)
		return
	}

	ch := events.ConsumeTeam(c.Request.Context())

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.WriteHeaderNow()
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case event := <-ch:
			c.SSEvent("team", event)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

func NewTeamHandler(client *mongo.Client) *teamHandler {
	_, err := client.Database("hackreg").Collection("teams").Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{Keys: bson.D{{Key: "team_name", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	if err != nil {
		log.Logger.Fatal("unable to create index", zap.Error(err))
	}

	return &teamHandler{
		cTeams: client.Database("hackreg").Collection("teams"),
	}
}
