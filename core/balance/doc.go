// Package balance implements the daily schedule balancing engine: an ordered
// sequence of repair passes (cap repair, gap fill, weekly oversight, exception
// ladder) that mutates per-day provider/hours tables until every individual
// holds exactly the daily target of coverage, or the day is flagged
// unbalanced. Every mutation is recorded in the change log.
package balance
