// Package directory merges the remote OpenProject principal listing with a
// fixed built-in user table and resolves chat mentions for assignees.
package directory

import "strings"

// Principal mirrors an OpenProject v3 principal record. The listing endpoint
// returns users, groups, and placeholder accounts mixed together; _type
// distinguishes them.
type Principal struct {
	Type  string `json:"_type"`
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Login string `json:"login"`
	Email string `json:"email"`
}

// User is the merged display record served by GET /users.
type User struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Login   string `json:"login"`
	Email   string `json:"email,omitempty"`
	Mention string `json:"mention,omitempty"`
}

// Overrides is the built-in user table. Remote records win on id collision;
// entries listed only here are appended to the merged result. The Mention
// column carries the chat handle used by due/overdue reminders.
//
// Two people sharing a display name is undefined behavior: MentionFor returns
// the first match in table order and no tiebreak is attempted.
var Overrides = []User{
	{ID: 4, Name: "Ada Lovelace", Login: "ada", Mention: "@ada"},
	{ID: 7, Name: "Grace Hopper", Login: "grace", Mention: "@grace"},
	{ID: 11, Name: "Edsger Dijkstra", Login: "edsger", Mention: "@edsger"},
	{ID: 15, Name: "Barbara Liskov", Login: "barbara", Mention: "@barbara"},
}

// Merge combines remote principals with the override table. Order: remote
// records first (in listing order), then override-only entries.
func Merge(remote []Principal) []User {
	users := make([]User, 0, len(remote)+len(Overrides))
	seen := make(map[int]struct{}, len(remote))

	for _, p := range remote {
		users = append(users, User{ID: p.ID, Name: p.Name, Login: p.Login, Email: p.Email})
		seen[p.ID] = struct{}{}
	}
	for _, o := range Overrides {
		if _, ok := seen[o.ID]; ok {
			continue
		}
		users = append(users, o)
	}
	return users
}

// MentionFor resolves a chat mention for a display name by exact
// case-insensitive match against the override table. Unmatched names fall
// back to the raw string.
func MentionFor(name string) string {
	for _, o := range Overrides {
		if strings.EqualFold(o.Name, name) {
			return o.Mention
		}
	}
	return name
}
