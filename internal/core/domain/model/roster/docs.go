// Package roster holds the agent directory and the daily roster entries.
//
// The roster of an outlet for a date is the set of active entries whose agent
// is still active and in a sales role. It is rebuilt each day from the agents
// flagged as default roster, and can be overridden manually.
package roster
