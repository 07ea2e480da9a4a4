// Package report renders assessment documents into client-facing PDF reports.
package report
