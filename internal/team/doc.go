// Package team loads the team lookup table that drives a scraping run.
//
// The lookup table is a CSV with one row per varsity team: school name,
// "City, ST" location, the team's MaxPreps stats page, and the lower-case state
// abbreviation used to select a run's teams.
package team
