package schedule

import "time"

// User is the employee every availability, leave request and shift points at.
type User struct {
	ID             string
	Name           string
	Email          string
	EmploymentType EmploymentType

	// WorkingHours drives availability generation. Nil disables it.
	WorkingHours *TimeRange

	// SkillPathIDs restricts which shifts the user can be assigned.
	// Empty means unrestricted.
	SkillPathIDs []string

	CreatedAt time.Time
}

func (u User) HasSkillPath(id string) bool {
	for _, p := range u.SkillPathIDs {
		if p == id {
			return true
		}
	}
	return false
}
