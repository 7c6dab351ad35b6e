// Package membership holds the member-list rules: who is in a team, who
// leads it, and how the list changes on join, edit and removal. Everything
// here is pure so the handlers can re-run it inside their retry loops.
package membership

import (
	"regexp"

	"hackreg-backend/entity"
	"hackreg-backend/errs"
)

const MaxTeamSize = 3

var phonePattern = regexp.MustCompile(`^\d+$`)

// Find returns the index of the member with the given email, matching
// exactly. Team names and emails are case and whitespace sensitive.
func Find(members []entity.Member, email string) (int, bool) {
	for i, m := range members {
		if m.Email == email {
			return i, true
		}
	}

	return 0, false
}

func RoleOf(members []entity.Member, email string) (entity.Role, bool) {
	i, ok := Find(members, email)
	if !ok {
		return "", false
	}

	return members[i].Role, true
}

type JoinResult int

const (
	Created JoinResult = iota
	Joined
	RejectedFull
)

// Join appends m to the list, deciding the member's role: the first entry
// of a team is its leader, everyone after joins as a plain member. A full
// team is left untouched.
func Join(members []entity.Member, m entity.Member) ([]entity.Member, JoinResult) {
	if len(members) == 0 {
		m.Role = entity.RoleLeader
		return []entity.Member{m}, Created
	}

	if len(members) >= MaxTeamSize {
		return members, RejectedFull
	}

	m.Role = entity.RoleMember
	out := make([]entity.Member, len(members), len(members)+1)
	copy(out, members)
	return append(out, m), Joined
}

type RemoveOutcome int

const (
	Removed RemoveOutcome = iota
	LeaderTransferred
	NoOp
)

// Remove deletes the member at idx preserving the order of the rest.
// Removing the leader promotes the first remaining non-leader in the same
// replacement list. The sole remaining member cannot be removed.
func Remove(members []entity.Member, idx int) ([]entity.Member, RemoveOutcome, error) {
	if idx < 0 || idx >= len(members) {
		return members, NoOp, errs.ErrInvalidIndex
	}

	if members[idx].Role == entity.RoleLeader && len(members) == 1 {
		return members, NoOp, nil
	}

	out := make([]entity.Member, 0, len(members)-1)
	out = append(out, members[:idx]...)
	out = append(out, members[idx+1:]...)

	if members[idx].Role != entity.RoleLeader {
		return out, Removed, nil
	}

	for i := range out {
		if out[i].Role != entity.RoleLeader {
			out[i].Role = entity.RoleLeader
			break
		}
	}

	return out, LeaderTransferred, nil
}

// Validate checks the required member fields and the digits-only phone
// rule before any store call is made.
func Validate(m entity.Member) error {
	if m.Name == "" {
		return errs.ErrNameRequired
	}

	if m.Email == "" {
		return errs.ErrEmailRequired
	}

	if m.Phone == "" {
		return errs.ErrPhoneRequired
	}

	if !phonePattern.MatchString(m.Phone) {
		return errs.ErrPhoneFormat
	}

	if m.CollegeName == "" {
		return errs.ErrCollegeRequired
	}

	return nil
}

// ValidateList checks a full replacement list as written by the leader-only
// edit: size bounds, one leader, member validity and unique emails.
func ValidateList(members []entity.Member) error {
	if len(members) < 1 || len(members) > MaxTeamSize {
		return errs.ErrMemberCount
	}

	leaders := 0
	seen := map[string]struct{}{}
	for _, m := range members {
		if err := Validate(m); err != nil {
			return err
		}

		if _, dup := seen[m.Email]; dup {
			return errs.ErrAlreadyExists
		}
		seen[m.Email] = struct{}{}

		if m.Role == entity.RoleLeader {
			leaders++
		}
	}

	if leaders != 1 {
		return errs.ErrOneLeader
	}

	return nil
}
