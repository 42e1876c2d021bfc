package seed

import (
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/schoolsaas/core"
)

// State carries what steps need from the rows created before them.
type State struct {
	// Now is the run clock. Relative dates ("today", "yesterday") are computed from it.
	Now time.Time
	// PasswordHash is shared by every seeded account.
	PasswordHash string

	ids   map[core.Table]map[string]string
	roles map[string]string // user key -> role
}

func NewState(now time.Time, passwordHash string) *State {
	return &State{
		Now:          now.UTC(),
		PasswordHash: passwordHash,
		ids:          make(map[core.Table]map[string]string),
		roles:        make(map[string]string),
	}
}

func (st *State) set(table core.Table, key, id string) {
	if key == "" {
		return
	}
	if st.ids[table] == nil {
		st.ids[table] = make(map[string]string)
	}
	st.ids[table][key] = id
}

// ID returns the id of the row created for fixture key in table.
func (st *State) ID(table core.Table, key string) (string, error) {
	id, ok := st.ids[table][key]
	if !ok {
		return "", errors.Errorf("unknown %s %q", table.Entity(), key)
	}
	return id, nil
}

// OptionalID is ID for nullable references. An empty key resolves to nil.
func (st *State) OptionalID(table core.Table, key string) (*string, error) {
	if key == "" {
		return nil, nil
	}
	id, err := st.ID(table, key)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// UserID returns the id of user key, making sure the user has the role the referencing record needs.
func (st *State) UserID(key, role string) (string, error) {
	id, err := st.ID(core.TableUsers, key)
	if err != nil {
		return "", err
	}
	if role != "" && st.roles[key] != role {
		return "", errors.Errorf("user %q has role %s, %s required", key, st.roles[key], role)
	}
	return id, nil
}

// Today returns the run date at midnight UTC, shifted by days.
func (st *State) Today(days int) time.Time {
	return core.DateOf(st.Now).AddDate(0, 0, days)
}
