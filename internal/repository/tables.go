package repository

import "github.com/alexanderramin/sprintdesk/internal/backend"

// column maps a scalar or many-to-one field to its SQL column. ref names
// the table a many-to-one column points at.
type column struct {
	name string
	ref  string
}

// link maps a many-to-many field to its join table.
type link struct {
	table  string
	owner  string
	target string
}

type tableSpec struct {
	table   string
	columns map[backend.Field]column
	links   map[backend.Field]link
}

var tables = map[backend.Kind]tableSpec{
	backend.KindProject: {
		table: "projects",
		columns: map[backend.Field]column{
			backend.FieldID:                 {name: "id"},
			backend.FieldName:               {name: "name"},
			backend.FieldProjectActive:      {name: "active"},
			backend.FieldProjectDescription: {name: "description"},
			backend.FieldProjectStage:       {name: "stage_id", ref: "project_stages"},
		},
	},
	backend.KindProjectStage: {
		table: "project_stages",
		columns: map[backend.Field]column{
			backend.FieldID:   {name: "id"},
			backend.FieldName: {name: "name"},
		},
	},
	backend.KindTag: {
		table: "tags",
		columns: map[backend.Field]column{
			backend.FieldID:       {name: "id"},
			backend.FieldName:     {name: "name"},
			backend.FieldTagColor: {name: "color"},
		},
	},
	backend.KindTask: {
		table: "tasks",
		columns: map[backend.Field]column{
			backend.FieldID:              {name: "id"},
			backend.FieldName:            {name: "name"},
			backend.FieldTaskProject:     {name: "project_id", ref: "projects"},
			backend.FieldTaskParent:      {name: "parent_id", ref: "tasks"},
			backend.FieldTaskDescription: {name: "description"},
		},
		links: map[backend.Field]link{
			backend.FieldTaskTags:  {table: "task_tags", owner: "task_id", target: "tag_id"},
			backend.FieldTaskUsers: {table: "task_users", owner: "task_id", target: "user_id"},
		},
	},
	backend.KindUser: {
		table: "users",
		columns: map[backend.Field]column{
			backend.FieldID:        {name: "id"},
			backend.FieldName:      {name: "name"},
			backend.FieldUserLogin: {name: "login"},
		},
	},
}
