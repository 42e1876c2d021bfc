package core

import (
	"strings"

	"github.com/pkg/errors"
)

// Table names a relational table of the schema.
type Table string

const (
	TableUsers               Table = "users"
	TableProfiles            Table = "profiles"
	TableSchools             Table = "schools"
	TableClasses             Table = "classes"
	TableSubjects            Table = "subjects"
	TableTeachers            Table = "teachers"
	TableParents             Table = "parents"
	TableStudents            Table = "students"
	TableClassSubjects       Table = "class_subjects"
	TableTimetables          Table = "timetables"
	TableAttendances         Table = "attendances"
	TableExams               Table = "exams"
	TableResults             Table = "results"
	TableAssignments         Table = "assignments"
	TableFeeStructures       Table = "fee_structures"
	TableFeePayments         Table = "fee_payments"
	TableMeetings            Table = "meetings"
	TableMeetingParticipants Table = "meeting_participants"
	TableNotifications       Table = "notifications"
	TableAnnouncements       Table = "announcements"
)

// Tables lists every table in creation (parent-to-child) order.
var Tables = []Table{
	TableUsers,
	TableProfiles,
	TableSchools,
	TableClasses,
	TableSubjects,
	TableTeachers,
	TableParents,
	TableStudents,
	TableClassSubjects,
	TableTimetables,
	TableAttendances,
	TableExams,
	TableResults,
	TableAssignments,
	TableFeeStructures,
	TableFeePayments,
	TableMeetings,
	TableMeetingParticipants,
	TableNotifications,
	TableAnnouncements,
}

// References maps each table to the tables its foreign keys point to.
// It mirrors the REFERENCES clauses of the migrations.
var References = map[Table][]Table{
	TableUsers:               nil,
	TableProfiles:            {TableUsers},
	TableSchools:             nil,
	TableClasses:             {TableSchools},
	TableSubjects:            nil,
	TableTeachers:            {TableUsers},
	TableParents:             {TableUsers},
	TableStudents:            {TableUsers, TableClasses, TableParents},
	TableClassSubjects:       {TableClasses, TableSubjects, TableTeachers},
	TableTimetables:          {TableClasses, TableSubjects, TableTeachers},
	TableAttendances:         {TableStudents, TableTeachers},
	TableExams:               {TableClasses, TableTeachers},
	TableResults:             {TableStudents, TableExams, TableSubjects},
	TableAssignments:         {TableStudents, TableSubjects, TableTeachers},
	TableFeeStructures:       {TableClasses},
	TableFeePayments:         {TableStudents},
	TableMeetings:            {TableTeachers},
	TableMeetingParticipants: {TableMeetings, TableUsers},
	TableNotifications:       {TableUsers},
	TableAnnouncements:       nil,
}

// Entity returns a human readable singular name, e.g. "fee payment" for fee_payments.
func (t Table) Entity() string {
	name := strings.ReplaceAll(string(t), "_", " ")
	switch {
	case strings.HasSuffix(name, "sses"):
		return strings.TrimSuffix(name, "es")
	case strings.HasSuffix(name, "s"):
		return strings.TrimSuffix(name, "s")
	}
	return name
}

// PurgeOrder returns every table ordered so that a table always comes before the tables it references.
// Deleting rows in that order never leaves a dangling foreign key.
func PurgeOrder() ([]Table, error) {
	order, err := CreationOrder()
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
		order[i], order[j] = order[j], order[i]
	}
	return order, nil
}

// CreationOrder topologically sorts References: a table always comes after the tables it references.
// Ties keep the order of Tables.
func CreationOrder() ([]Table, error) {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[Table]int, len(Tables))
	order := make([]Table, 0, len(Tables))

	var visit func(t Table) error
	visit = func(t Table) error {
		switch state[t] {
		case done:
			return nil
		case visiting:
			return errors.Errorf("foreign key cycle through %q", t)
		}
		state[t] = visiting
		refs, ok := References[t]
		if !ok {
			return errors.Errorf("unknown table %q", t)
		}
		for _, ref := range refs {
			if err := visit(ref); err != nil {
				return err
			}
		}
		state[t] = done
		order = append(order, t)
		return nil
	}

	for _, t := range Tables {
		if err := visit(t); err != nil {
			return nil, err
		}
	}
	return order, nil
}
