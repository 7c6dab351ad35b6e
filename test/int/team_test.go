package int

import (
	"strconv"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"hackreg-backend/entity"
	"hackreg-backend/errs"
)

var _ = Describe("Team", func() {
	var user1, user2 User

	BeforeEach(func() {
		cleanupMongo()
		user1 = registerUser(0)
		user2 = registerUser(1)
	})

	Describe("Register", func() {
		Specify("happy path - new team name creates the team", func() {
			res := user1.RegisterTeam("Falcons", "Alice")
			Expect(res.Code).To(Equal(0))
			Expect(res.Data["result"]).To(Equal("created"))
			Expect(res.Data["role"]).To(Equal("Leader"))

			members := teamMembers(user1.MyTeam())
			Expect(members).To(HaveLen(1))
			Expect(members[0].Role).To(Equal(entity.RoleLeader))
			Expect(members[0].Email).To(Equal(user1.Email))
		})

		Specify("happy path - existing team name joins it", func() {
			Expect(user1.RegisterTeam("Falcons", "Alice").Code).To(Equal(0))

			res := user2.RegisterTeam("Falcons", "Bob")
			Expect(res.Code).To(Equal(0))
			Expect(res.Data["result"]).To(Equal("joined"))
			Expect(res.Data["role"]).To(Equal("Member"))

			members := teamMembers(user2.MyTeam())
			Expect(members).To(HaveLen(2))
			Expect(members[1].Email).To(Equal(user2.Email))
			Expect(members[1].Role).To(Equal(entity.RoleMember))
		})

		Specify("sad path - team already has 3 members", func() {
			users := []User{user1, user2, registerUser(2)}
			for i, u := range users {
				Expect(u.RegisterTeam("Falcons", "Member"+strconv.Itoa(i)).Code).To(Equal(0))
			}

			late := registerUser(3)
			res := late.RegisterTeam("Falcons", "Dave")
			Expect(res).To(MatchBackendError(errs.ErrTeamFull))

			// stored document is unchanged
			members := teamMembers(user1.MyTeam())
			Expect(members).To(HaveLen(3))
		})

		Specify("sad path - already part of a team", func() {
			Expect(user1.RegisterTeam("Falcons", "Alice").Code).To(Equal(0))

			res := user1.RegisterTeam("Eagles", "Alice")
			Expect(res).To(MatchBackendError(errs.ErrHasTeam))
		})

		Specify("sad path - phone with letters", func() {
			m := memberRecord("Alice")
			m["phone"] = "12345abcde"
			res := request("POST", "/team", user1.AccessToken, map[string]interface{}{
				"teamName": "Falcons",
				"member":   m,
			})
			Expect(res).To(MatchBackendError(errs.ErrPhoneFormat))
		})

		Specify("sad path - no session", func() {
			res := request("GET", "/team", "", nil)
			Expect(res).To(MatchBackendError(errs.ErrUnauthorized))
		})
	})

	Describe("Timeline", func() {
		Specify("a fresh team gets the seeded pipeline", func() {
			Expect(user1.RegisterTeam("Falcons", "Alice").Code).To(Equal(0))

			res := request("GET", "/team/timeline", user1.AccessToken, nil)
			Expect(res.Code).To(Equal(0))

			stages := res.Data["timeline"].([]interface{})
			Expect(stages).To(HaveLen(4))

			first := stages[0].(map[string]interface{})
			Expect(first["stage"]).To(Equal("Registration"))
			Expect(first["status"]).To(Equal("completed"))

			second := stages[1].(map[string]interface{})
			Expect(second["stage"]).To(Equal("Team Formation"))
			Expect(second["status"]).To(Equal("inProgress"))
		})
	})

	Describe("Delete member", func() {
		BeforeEach(func() {
			Expect(user1.RegisterTeam("Falcons", "Alice").Code).To(Equal(0))
			Expect(user2.RegisterTeam("Falcons", "Bob").Code).To(Equal(0))
		})

		Specify("leader removes a member", func() {
			res := request("DELETE", "/team/members/1", user1.AccessToken, nil)
			Expect(res.Code).To(Equal(0))
			Expect(res.Data["outcome"]).To(Equal("removed"))
			Expect(res.Data["forceSignOut"]).To(Equal(false))

			members := teamMembers(user1.MyTeam())
			Expect(members).To(HaveLen(1))
			Expect(members[0].Email).To(Equal(user1.Email))
			Expect(members[0].Role).To(Equal(entity.RoleLeader))

			res = user2.MyTeam()
			Expect(res).To(MatchBackendError(errs.ErrNoTeam))
		})

		Specify("leader removing themselves transfers leadership and signs out", func() {
			res := request("DELETE", "/team/members/0", user1.AccessToken, nil)
			Expect(res.Code).To(Equal(0))
			Expect(res.Data["outcome"]).To(Equal("leaderTransferred"))
			Expect(res.Data["forceSignOut"]).To(Equal(true))

			members := teamMembers(user2.MyTeam())
			Expect(members).To(HaveLen(1))
			Expect(members[0].Email).To(Equal(user2.Email))
			Expect(members[0].Role).To(Equal(entity.RoleLeader))
		})

		Specify("the sole remaining member is a no-op", func() {
			Expect(request("DELETE", "/team/members/1", user1.AccessToken, nil).Code).To(Equal(0))

			res := request("DELETE", "/team/members/0", user1.AccessToken, nil)
			Expect(res.Code).To(Equal(0))
			Expect(res.Data["outcome"]).To(Equal("noop"))
			Expect(res.Data["forceSignOut"]).To(Equal(false))

			Expect(teamMembers(user1.MyTeam())).To(HaveLen(1))
		})

		Specify("sad path - a plain member may not delete", func() {
			res := request("DELETE", "/team/members/0", user2.AccessToken, nil)
			Expect(res).To(MatchBackendError(errs.ErrNotLeader))
		})
	})

	Describe("Update members", func() {
		BeforeEach(func() {
			Expect(user1.RegisterTeam("Falcons", "Alice").Code).To(Equal(0))
			Expect(user2.RegisterTeam("Falcons", "Bob").Code).To(Equal(0))
		})

		Specify("leader edits member fields in one replacement write", func() {
			members := teamMembers(user1.MyTeam())
			members[1].CollegeName = "Another College"

			res := request("PUT", "/team/members", user1.AccessToken, map[string]interface{}{
				"members": members,
			})
			Expect(res.Code).To(Equal(0))

			updated := teamMembers(user1.MyTeam())
			Expect(updated[1].CollegeName).To(Equal("Another College"))
		})

		Specify("sad path - a plain member may not edit", func() {
			members := teamMembers(user2.MyTeam())

			res := request("PUT", "/team/members", user2.AccessToken, map[string]interface{}{
				"members": members,
			})
			Expect(res).To(MatchBackendError(errs.ErrNotLeader))
		})

		Specify("sad path - two leaders in the replacement list", func() {
			members := teamMembers(user1.MyTeam())
			members[1].Role = entity.RoleLeader

			res := request("PUT", "/team/members", user1.AccessToken, map[string]interface{}{
				"members": members,
			})
			Expect(res).To(MatchBackendError(errs.ErrOneLeader))
		})

		Specify("sad path - a demoted leader can no longer act on the team", func() {
			members := teamMembers(user1.MyTeam())
			members[0].Role = entity.RoleMember
			members[1].Role = entity.RoleLeader

			res := request("PUT", "/team/members", user1.AccessToken, map[string]interface{}{
				"members": members,
			})
			Expect(res.Code).To(Equal(0))

			// leadership is re-checked against the stored document on
			// every write, not against the earlier session's view
			res = request("DELETE", "/team/members/1", user1.AccessToken, nil)
			Expect(res).To(MatchBackendError(errs.ErrNotLeader))

			res = request("PUT", "/team/members", user1.AccessToken, map[string]interface{}{
				"members": members,
			})
			Expect(res).To(MatchBackendError(errs.ErrNotLeader))
		})
	})

	Describe("End to end", func() {
		Specify("register, join, kick", func() {
			By("user A registers Falcons and becomes Leader")
			Expect(user1.RegisterTeam("Falcons", "Alice").Code).To(Equal(0))

			By("user B joins Falcons as Member")
			res := user2.RegisterTeam("Falcons", "Bob")
			Expect(res.Code).To(Equal(0))
			Expect(res.Data["role"]).To(Equal("Member"))
			Expect(teamMembers(user1.MyTeam())).To(HaveLen(2))

			By("user A deletes user B")
			Expect(request("DELETE", "/team/members/1", user1.AccessToken, nil).Code).To(Equal(0))

			members := teamMembers(user1.MyTeam())
			Expect(members).To(HaveLen(1))
			Expect(members[0].Email).To(Equal(user1.Email))
			Expect(members[0].Role).To(Equal(entity.RoleLeader))

			for _, m := range members {
				Expect(m.Email).NotTo(Equal(user2.Email))
			}
		})
	})
})
