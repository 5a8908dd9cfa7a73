package postgres

import "github.com/ErlanBelekov/jobbee-api/internal/query"

var JobDefaults = query.Defaults{Sort: "-postingDate", Exclude: []string{"version"}}

var UserDefaults = query.Defaults{Sort: "-createdAt"}

const locationJSON = `json_build_object(
	'type', 'Point',
	'coordinates', json_build_array(location_lng, location_lat),
	'formattedAddress', formatted_address,
	'city', city,
	'state', state,
	'zipcode', zipcode,
	'country', country)`

var jobSchema = &schema{
	table:  "jobs",
	key:    "id",
	search: "search_vector",
	fields: map[string]field{
		"user":             {expr: "user_id", kind: kindUUID},
		"title":            {expr: "title", kind: kindString},
		"slug":             {expr: "slug", kind: kindString},
		"description":      {expr: "description", kind: kindString},
		"email":            {expr: "email", kind: kindString},
		"address":          {expr: "address", kind: kindString},
		"location":         {expr: locationJSON, kind: kindJSON},
		"location.city":    {expr: "city", kind: kindString, hidden: true},
		"location.state":   {expr: "state", kind: kindString, hidden: true},
		"location.zipcode": {expr: "zipcode", kind: kindString, hidden: true},
		"location.country": {expr: "country", kind: kindString, hidden: true},
		"company":          {expr: "company", kind: kindString},
		"industry":         {expr: "industry", kind: kindStringArray},
		"jobType":          {expr: "job_type", kind: kindString},
		"minEducation":     {expr: "min_education", kind: kindString},
		"positions":        {expr: "positions", kind: kindInt},
		"experience":       {expr: "experience", kind: kindString},
		"salary":           {expr: "salary", kind: kindNumber},
		"postingDate":      {expr: "posting_date", kind: kindTime},
		"lastDate":         {expr: "last_date", kind: kindTime},
		"version":          {expr: "version", kind: kindInt},
	},
	ordered: []string{
		"title", "slug", "description", "email", "address", "location", "company",
		"industry", "jobType", "minEducation", "positions", "experience", "salary",
		"postingDate", "lastDate", "user", "version",
	},
}

// Password and reset columns are deliberately absent.
var userSchema = &schema{
	table: "users",
	key:   "id",
	fields: map[string]field{
		"name":      {expr: "name", kind: kindString},
		"email":     {expr: "email", kind: kindString},
		"role":      {expr: "role", kind: kindString},
		"createdAt": {expr: "created_at", kind: kindTime},
	},
	ordered: []string{"name", "email", "role", "createdAt"},
}
