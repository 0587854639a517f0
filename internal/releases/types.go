// gamestats: release tallies and award prediction over game release exports
// SPDX-License-Identifier: MIT
//
// Type definitions for release records and tallies.

package releases

// Column names of the quarterly release exports.
const (
	ColumnTitle      = "Title"
	ColumnMonth      = "Month"
	ColumnDay        = "Day"
	ColumnPlatforms  = "Platform(s)"
	ColumnGenres     = "Genre(s)"
	ColumnDevelopers = "Developer(s)"
	ColumnPublishers = "Publisher(s)"
)

// Record is one game release row.
type Record struct {
	Title      string   `json:"title"`
	Month      string   `json:"month"`
	Day        string   `json:"day"`
	Platforms  string   `json:"platforms"`
	Genres     string   `json:"genres"`
	Developers []string `json:"developers"`
	Publishers []string `json:"publishers"`
}

// Field extracts the list of names a record contributes to a tally.
type Field func(Record) []string

// Entry is one tallied name.
type Entry struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Options configures a tally run.
type Options struct {
	Paths       []string
	Column      string
	Separator   string
	Top         int
	Parallelism int
}

// Result is the outcome of a tally run.
type Result struct {
	Column  string   `json:"column"`
	Files   []string `json:"files"`
	Records int      `json:"records"`
	Pairs   int      `json:"pairs"`
	Names   int      `json:"distinct_names"`
	Winner  Entry    `json:"winner"`
	Top     []Entry  `json:"top"`
}
