package domain

import (
	"slices"
	"time"

	"github.com/cockroachdb/errors"
)

var (
	ErrJobNotFound = errors.Mark(errors.New("Job not found!"), ErrNotFound)
	ErrNoLocation  = errors.Mark(errors.New("location could not be resolved"), ErrNotFound)
)

func StatNotFound(topic string) error {
	return errors.Mark(errors.Newf("No stat found for topic %s", topic), ErrNotFound)
}

var (
	Industries = []string{
		"Business",
		"Information Technology",
		"Banking",
		"Insurance",
		"Telco",
		"Other",
	}
	JobTypes = []string{"Permanent", "Fixed term", "Internship"}

	EducationLevels = []string{"Bachelors", "Masters", "PhD"}

	ExperienceLevels = []string{
		"No Experience",
		"1 Year - 2 Years",
		"2 Years - 5 Years",
		"5 Years+",
	}
)

const (
	DefaultPositions     = 1
	DefaultApplyWindow   = 7 * 24 * time.Hour
	MaxTitleLength       = 100
	MaxDescriptionLength = 1000
)

// Location is a GeoJSON point plus the address parts returned by the geocoder.
type Location struct {
	Type             string     `json:"type"`
	Coordinates      [2]float64 `json:"coordinates"` // [lng, lat]
	FormattedAddress string     `json:"formattedAddress"`
	City             string     `json:"city"`
	State            string     `json:"state"`
	Zipcode          string     `json:"zipcode"`
	Country          string     `json:"country"`
}

func (l Location) Longitude() float64 { return l.Coordinates[0] }
func (l Location) Latitude() float64  { return l.Coordinates[1] }

type Candidate struct {
	UserID    string    `json:"id"`
	Resume    string    `json:"resume"`
	AppliedAt time.Time `json:"appliedAt"`
}

// Application is a candidate entry seen from the applicant's side.
type Application struct {
	JobID  string
	Resume string
}

type Job struct {
	ID           string
	UserID       string
	Title        string
	Slug         string
	Description  string
	Email        string
	Address      string
	Location     Location
	Company      string
	Industry     []string
	JobType      string
	MinEducation string
	Positions    int
	Experience   string
	Salary       float64
	PostingDate  time.Time
	LastDate     time.Time
	Candidates   []Candidate
	Version      int
}

// AcceptsApplications reports whether the application deadline is still open at now.
func (j *Job) AcceptsApplications(now time.Time) bool {
	return !j.LastDate.Before(now)
}

// CandidateIndex returns the position of userID in the candidate list, or -1.
func (j *Job) CandidateIndex(userID string) int {
	return slices.IndexFunc(j.Candidates, func(c Candidate) bool { return c.UserID == userID })
}

// JobStat is one experience bucket of the per-topic aggregate.
type JobStat struct {
	Experience   string  `json:"_id"`
	TotalJobs    int     `json:"totalJobs"`
	AvgPositions float64 `json:"avgPositions"`
	AvgSalary    float64 `json:"avgSalary"`
	MinSalary    float64 `json:"minSalary"`
	MaxSalary    float64 `json:"maxSalary"`
}

// JobSummary is the short form listed under a user's profile.
type JobSummary struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	PostingDate time.Time `json:"postingDate"`
}

func ValidIndustry(v string) bool   { return slices.Contains(Industries, v) }
func ValidJobType(v string) bool    { return slices.Contains(JobTypes, v) }
func ValidEducation(v string) bool  { return slices.Contains(EducationLevels, v) }
func ValidExperience(v string) bool { return slices.Contains(ExperienceLevels, v) }
