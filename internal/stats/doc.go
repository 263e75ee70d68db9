// Package stats classifies and merges MaxPreps team statistics tables.
//
// A print page carries an unknown number of unlabeled HTML tables. The stats
// package normalizes each table's header vocabulary, decides which of the four
// statistical categories (batting, baserunning, fielding, pitching) it belongs to
// from the headers alone, and outer-joins all tables of one category into a single
// wide row-per-athlete table keyed by jersey number and athlete name.
package stats
